package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lookbusy1344/rvasm-go/config"
	"github.com/lookbusy1344/rvasm-go/encoder"
	"github.com/lookbusy1344/rvasm-go/isa"
	"github.com/lookbusy1344/rvasm-go/loader"
	"github.com/lookbusy1344/rvasm-go/parser"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		inputString string
		output      string
		verbose     bool
		cfgPaths    []string
		arch        string
		format      string
	)

	cmd := &cobra.Command{
		Use:     "rvasm [input-file]",
		Short:   "A data-driven RISC-V assembler",
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasFile := len(args) == 1
			hasString := inputString != ""

			if !hasFile && !hasString {
				return fmt.Errorf("a source file or -s/--string is required")
			}
			if hasFile && hasString {
				return fmt.Errorf("only one source allowed: either a file or -s/--string")
			}
			if format != "flat" {
				return fmt.Errorf("unsupported output format %q: only \"flat\" is implemented", format)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if arch == "" {
				arch = cfg.Assembler.DefaultArch
			}

			spec := isa.NewSpec()
			if err := loadISADocuments(spec, cfg, arch, cfgPaths, verbose); err != nil {
				return err
			}

			var src, filename string
			if hasFile {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[0], err)
				}
				src, filename = string(data), args[0]
			} else {
				src, filename = inputString, "<string>"
			}

			root, err := parser.NewParser(src, filename, spec).ParseProgram()
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}

			image, err := encoder.NewEmitter(spec).Emit(root)
			if err != nil {
				return fmt.Errorf("emit error: %w", err)
			}

			if verbose {
				fmt.Fprintf(os.Stderr, "rvasm: emitted %d bytes\n", len(image))
			}

			return writeOutput(output, image)
		},
	}

	cmd.Flags().StringVarP(&inputString, "string", "s", "", "inline assembly source (mutually exclusive with an input file)")
	cmd.Flags().StringVarP(&output, "output", "o", "a.out", "output file path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic output")
	cmd.Flags().StringArrayVar(&cfgPaths, "cfg", nil, "an additional ISA-description document to load (repeatable)")
	cmd.Flags().StringVar(&arch, "arch", "", "named architecture to resolve against the cfg search path (default from config)")
	cmd.Flags().StringVar(&format, "format", "flat", "output format (only \"flat\" is supported)")

	return cmd
}

// loadISADocuments loads the named arch's document from the config's
// search path (unless arch is empty), then every --cfg document in order.
func loadISADocuments(spec *isa.Spec, cfg *config.Config, arch string, cfgPaths []string, verbose bool) error {
	if arch != "" {
		path := filepath.Join(cfg.Assembler.CfgSearchPath, arch+".toml")
		if verbose {
			fmt.Fprintf(os.Stderr, "rvasm: loading arch %s from %s\n", arch, path)
		}
		if err := loader.LoadFile(spec, path); err != nil {
			return fmt.Errorf("loading arch %s: %w", arch, err)
		}
	}
	for _, p := range cfgPaths {
		if verbose {
			fmt.Fprintf(os.Stderr, "rvasm: loading %s\n", p)
		}
		if err := loader.LoadFile(spec, p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

func writeOutput(path string, image []byte) error {
	f, err := os.Create(path) // #nosec G304 -- user-specified output path
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(image); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}
