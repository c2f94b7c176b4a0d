package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sodeprecated/openapi-to-ts-client/internal/emitter/tsemitter"
	genspec "github.com/sodeprecated/openapi-to-ts-client/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input             string
	Out               string
	ClientFile        string
	ContractsFile     string
	TransportFile     string
	BaseURLName       string
	IncludeNamespaces []string
	ExcludeNamespaces []string
	ConfigPath        string
	DryRun            bool
	Force             bool
	Verbose           bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Out: "."}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript contracts and a typed client from an OpenAPI document",
		Long: "Generate TypeScript data contracts and a typed API client from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  openapi2ts generate --input spec.yaml --out ./src/api
  openapi2ts --config openapi2ts.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("out", "", "Output directory (defaults to current directory)")
	flags.String("client-file", "", "Client artifact filename (default client.ts)")
	flags.String("contracts-file", "", "Contracts artifact filename (default contracts.ts)")
	flags.String("transport-file", "", "Transport runtime filename (default transport.ts)")
	flags.String("base-url-name", "", "Name of the emitted base-URL constant (default BASE_URL)")
	flags.StringSlice("include-namespaces", nil, "Only include operations in these namespaces")
	flags.StringSlice("exclude-namespaces", nil, "Exclude operations in these namespaces")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("client-file") {
		value, err := flags.GetString("client-file")
		if err != nil {
			return err
		}
		cfg.ClientFile = strings.TrimSpace(value)
	}
	if flags.Changed("contracts-file") {
		value, err := flags.GetString("contracts-file")
		if err != nil {
			return err
		}
		cfg.ContractsFile = strings.TrimSpace(value)
	}
	if flags.Changed("transport-file") {
		value, err := flags.GetString("transport-file")
		if err != nil {
			return err
		}
		cfg.TransportFile = strings.TrimSpace(value)
	}
	if flags.Changed("base-url-name") {
		value, err := flags.GetString("base-url-name")
		if err != nil {
			return err
		}
		cfg.BaseURLName = strings.TrimSpace(value)
	}
	if flags.Changed("include-namespaces") {
		value, err := flags.GetStringSlice("include-namespaces")
		if err != nil {
			return err
		}
		cfg.IncludeNamespaces = sanitizeList(value)
	}
	if flags.Changed("exclude-namespaces") {
		value, err := flags.GetStringSlice("exclude-namespaces")
		if err != nil {
			return err
		}
		cfg.ExcludeNamespaces = sanitizeList(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.ClientFile = strings.TrimSpace(c.ClientFile)
	c.ContractsFile = strings.TrimSpace(c.ContractsFile)
	c.TransportFile = strings.TrimSpace(c.TransportFile)
	c.BaseURLName = strings.TrimSpace(c.BaseURLName)
	c.IncludeNamespaces = sanitizeList(c.IncludeNamespaces)
	c.ExcludeNamespaces = sanitizeList(c.ExcludeNamespaces)
	if c.Out == "" {
		c.Out = "."
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if c.ClientFile != "" && c.ClientFile == c.ContractsFile {
		return newUsageError("generate: --client-file and --contracts-file must differ")
	}
	overlap := intersect(c.IncludeNamespaces, c.ExcludeNamespaces)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude namespaces overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	// 1) Load the document (file or http/https URL) with validation and
	// v2-to-v3 conversion.
	doc, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Resolve schemas and collect operations into the shared model.
	model, err := genspec.BuildClientModel(
		ctx,
		doc,
		genspec.WithIncludeNamespaces(cfg.IncludeNamespaces),
		genspec.WithExcludeNamespaces(cfg.ExcludeNamespaces),
	)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			return newUsageError(fmt.Sprintf("spec: %s", se.Message))
		}
		return fmt.Errorf("build model: %w", err)
	}

	for _, w := range model.Warnings {
		fmt.Fprintf(os.Stderr, "[WARN] %s: %s\n", w.Code, w.Message)
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	// 3) Emit both artifacts plus the transport runtime.
	res, err := tsemitter.Emit(ctx, model, tsemitter.Options{
		OutDir:        cfg.Out,
		ClientFile:    cfg.ClientFile,
		ContractsFile: cfg.ContractsFile,
		TransportFile: cfg.TransportFile,
		BaseURLName:   cfg.BaseURLName,
		Force:         cfg.Force,
		DryRun:        cfg.DryRun,
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(res.Planned), paths)
	} else if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Wrote %s, %s, %s to %s\n", res.ContractsFile, res.ClientFile, res.TransportFile, absOut)
	}

	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, err.Error()))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		switch normalizeKey(key) {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "clientfile":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ClientFile = str
		case "contractsfile":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ContractsFile = str
		case "transportfile":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.TransportFile = str
		case "baseurlname":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.BaseURLName = str
		case "includenamespaces":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.IncludeNamespaces = sanitizeList(list)
		case "excludenamespaces":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ExcludeNamespaces = sanitizeList(list)
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
