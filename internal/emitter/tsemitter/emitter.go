package tsemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	genspec "github.com/sodeprecated/openapi-to-ts-client/internal/spec"
)

// Options controls how the TypeScript emitter renders the output artifacts.
type Options struct {
	OutDir        string // required; target directory to write into
	ClientFile    string // client artifact filename; defaults to client.ts
	ContractsFile string // contracts artifact filename; defaults to contracts.ts
	TransportFile string // transport runtime filename; defaults to transport.ts
	BaseURLName   string // emitted base-URL constant name; defaults to BASE_URL
	Force         bool   // overwrite existing files
	DryRun        bool   // don't write, only plan
	Verbose       bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and final resolved names.
type Result struct {
	ClientFile    string
	ContractsFile string
	TransportFile string
	BaseURLName   string
	Planned       []PlannedFile
}

// Emit renders the contracts and client artifacts plus the transport runtime
// from the resolved model. Rendering is a pure function of (model, opts);
// only the final write touches the filesystem.
func Emit(ctx context.Context, model *genspec.ClientModel, opts Options) (*Result, error) {
	_ = ctx
	if model == nil {
		return nil, fmt.Errorf("tsemitter: nil ClientModel")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}

	clientFile := tsFileName(opts.ClientFile, "client.ts")
	contractsFile := tsFileName(opts.ContractsFile, "contracts.ts")
	transportFile := tsFileName(opts.TransportFile, "transport.ts")
	baseURLName := strings.TrimSpace(opts.BaseURLName)
	if baseURLName == "" {
		baseURLName = "BASE_URL"
	}

	files := map[string][]byte{}
	files[contractsFile] = []byte(RenderContracts(model))
	files[clientFile] = []byte(RenderClient(model, ClientOptions{
		ContractsModule: moduleSpecifier(contractsFile),
		TransportModule: moduleSpecifier(transportFile),
		BaseURLName:     baseURLName,
	}))
	files[transportFile] = []byte(RenderTransport())

	// Plan in deterministic order
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{
		ClientFile:    clientFile,
		ContractsFile: contractsFile,
		TransportFile: transportFile,
		BaseURLName:   baseURLName,
		Planned:       planned,
	}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	// Pre-flight: if the directory exists, is not empty, and force is off,
	// refuse rather than clobber.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("tsemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-tsemitter-*")
		if err != nil {
			return fmt.Errorf("create temp for %s: %w", rel, err)
		}
		tmpPath := tmp.Name()
		if _, err := tmp.Write(content); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("close temp %s: %w", rel, err)
		}
		if err := os.Chmod(tmpPath, 0o644); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("chmod %s: %w", rel, err)
		}
		if err := os.Rename(tmpPath, p); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func tsFileName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if !strings.HasSuffix(name, ".ts") {
		name += ".ts"
	}
	return name
}

// moduleSpecifier converts a filename into a relative import specifier.
func moduleSpecifier(file string) string {
	return "./" + strings.TrimSuffix(filepath.ToSlash(file), ".ts")
}
