package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateConfigFromFlags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--out", "./build",
		"--client-file", "api.ts",
		"--contracts-file", "types.ts",
		"--transport-file", "runtime.ts",
		"--base-url-name", "API_ROOT",
		"--include-namespaces", "Users,Pets",
		"--exclude-namespaces", "Internal",
		"--dry-run",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if captured.Out != "./build" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if captured.ClientFile != "api.ts" {
		t.Errorf("client file mismatch: got %q", captured.ClientFile)
	}
	if captured.ContractsFile != "types.ts" {
		t.Errorf("contracts file mismatch: got %q", captured.ContractsFile)
	}
	if captured.TransportFile != "runtime.ts" {
		t.Errorf("transport file mismatch: got %q", captured.TransportFile)
	}
	if captured.BaseURLName != "API_ROOT" {
		t.Errorf("base url name mismatch: got %q", captured.BaseURLName)
	}
	if want := []string{"Users", "Pets"}; !equalStringSlices(captured.IncludeNamespaces, want) {
		t.Errorf("include namespaces mismatch: got %v", captured.IncludeNamespaces)
	}
	if want := []string{"Internal"}; !equalStringSlices(captured.ExcludeNamespaces, want) {
		t.Errorf("exclude namespaces mismatch: got %v", captured.ExcludeNamespaces)
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !captured.Force {
		t.Errorf("expected force true")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config
clientFile: cfg-client.ts
baseUrlName: CFG_ROOT
includeNamespaces:
  - CfgUsers
excludeNamespaces: CfgInternal
dryRun: true
force: false
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-namespaces", "FlagNs",
		"--dry-run=false",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if captured.Out != "from-config" {
		t.Errorf("out: want from-config got %q", captured.Out)
	}
	if captured.ClientFile != "cfg-client.ts" {
		t.Errorf("client file: want cfg-client.ts got %q", captured.ClientFile)
	}
	if captured.BaseURLName != "CFG_ROOT" {
		t.Errorf("base url name mismatch: got %q", captured.BaseURLName)
	}
	if want := []string{"FlagNs"}; !equalStringSlices(captured.IncludeNamespaces, want) {
		t.Errorf("include namespaces: want %v got %v", want, captured.IncludeNamespaces)
	}
	if want := []string{"CfgInternal"}; !equalStringSlices(captured.ExcludeNamespaces, want) {
		t.Errorf("exclude namespaces: want %v got %v", want, captured.ExcludeNamespaces)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "spec.yaml",
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "missing input",
			args: []string{"generate"},
			want: "--input is required",
		},
		{
			name: "client and contracts collide",
			args: []string{"generate", "--input", "spec.yaml", "--client-file", "same.ts", "--contracts-file", "same.ts"},
			want: "must differ",
		},
		{
			name: "include and exclude overlap",
			args: []string{"generate", "--input", "spec.yaml", "--include-namespaces", "Users", "--exclude-namespaces", "Users"},
			want: "overlap",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)

			err := root.Execute()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err.Error(), tc.want)
			}
		})
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
