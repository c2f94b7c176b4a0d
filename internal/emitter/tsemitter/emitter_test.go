package tsemitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmit_WritesArtifacts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), testModel(), Options{OutDir: dir})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.ClientFile != "client.ts" || res.ContractsFile != "contracts.ts" || res.TransportFile != "transport.ts" {
		t.Errorf("resolved names: %+v", res)
	}
	if res.BaseURLName != "BASE_URL" {
		t.Errorf("base url name: got %q", res.BaseURLName)
	}

	contracts, err := os.ReadFile(filepath.Join(dir, "contracts.ts"))
	if err != nil {
		t.Fatalf("read contracts: %v", err)
	}
	if !strings.Contains(string(contracts), "export interface User {") {
		t.Errorf("contracts content wrong:\n%s", contracts)
	}

	client, err := os.ReadFile(filepath.Join(dir, "client.ts"))
	if err != nil {
		t.Fatalf("read client: %v", err)
	}
	if !strings.Contains(string(client), "export const Users = {") {
		t.Errorf("client content wrong:\n%s", client)
	}

	transport, err := os.ReadFile(filepath.Join(dir, "transport.ts"))
	if err != nil {
		t.Fatalf("read transport: %v", err)
	}
	if string(transport) != RenderTransport() {
		t.Error("transport file should match the static runtime")
	}

	for _, f := range []string{"client.ts", "contracts.ts", "transport.ts"} {
		st, err := os.Stat(filepath.Join(dir, f))
		if err != nil {
			t.Fatalf("stat %s: %v", f, err)
		}
		if st.Mode().Perm() != 0o644 {
			t.Errorf("%s: mode %v, want 0644", f, st.Mode().Perm())
		}
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("expected exactly 3 files, got %d", len(entries))
	}
}

func TestEmit_DryRunPlansWithoutWriting(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), testModel(), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(res.Planned) != 3 {
		t.Fatalf("plan: expected 3 files, got %+v", res.Planned)
	}
	// Plan is sorted by path.
	want := []string{"client.ts", "contracts.ts", "transport.ts"}
	for i, pf := range res.Planned {
		if pf.RelPath != want[i] {
			t.Errorf("plan[%d]: got %q, want %q", i, pf.RelPath, want[i])
		}
		if pf.Size <= 0 {
			t.Errorf("plan[%d]: size not recorded", i)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote files: %v", entries)
	}
}

func TestEmit_RefusesNonEmptyDirWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Emit(context.Background(), testModel(), Options{OutDir: dir})
	if err == nil {
		t.Fatal("expected error for non-empty output directory")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("error should point at --force: %v", err)
	}

	res, err := Emit(context.Background(), testModel(), Options{OutDir: dir, Force: true})
	if err != nil {
		t.Fatalf("emit with force: %v", err)
	}
	if len(res.Planned) != 3 {
		t.Errorf("plan: %+v", res.Planned)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.txt")); err != nil {
		t.Errorf("unrelated file should survive: %v", err)
	}
}

func TestEmit_CustomFileNames(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), testModel(), Options{
		OutDir:        dir,
		ClientFile:    "api",
		ContractsFile: "types.ts",
		TransportFile: "runtime",
		BaseURLName:   "API_ROOT",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.ClientFile != "api.ts" || res.ContractsFile != "types.ts" || res.TransportFile != "runtime.ts" {
		t.Errorf("resolved names: %+v", res)
	}

	client, err := os.ReadFile(filepath.Join(dir, "api.ts"))
	if err != nil {
		t.Fatalf("read client: %v", err)
	}
	if !strings.Contains(string(client), `from "./types";`) || !strings.Contains(string(client), `from "./runtime";`) {
		t.Errorf("imports should track custom file names:\n%s", client)
	}
	if !strings.Contains(string(client), "export const API_ROOT = ") {
		t.Errorf("custom constant missing:\n%s", client)
	}
}

func TestEmit_Deterministic(t *testing.T) {
	t.Parallel()
	read := func(t *testing.T) map[string]string {
		t.Helper()
		dir := t.TempDir()
		if _, err := Emit(context.Background(), testModel(), Options{OutDir: dir}); err != nil {
			t.Fatalf("emit: %v", err)
		}
		out := map[string]string{}
		for _, f := range []string{"client.ts", "contracts.ts", "transport.ts"} {
			data, err := os.ReadFile(filepath.Join(dir, f))
			if err != nil {
				t.Fatal(err)
			}
			out[f] = string(data)
		}
		return out
	}

	a, b := read(t), read(t)
	for f := range a {
		if a[f] != b[f] {
			t.Errorf("%s differs between runs", f)
		}
	}
}

func TestEmit_Validation(t *testing.T) {
	t.Parallel()
	if _, err := Emit(context.Background(), nil, Options{OutDir: t.TempDir()}); err == nil {
		t.Error("expected error for nil model")
	}
	if _, err := Emit(context.Background(), testModel(), Options{}); err == nil {
		t.Error("expected error for missing out dir")
	}
}
