// Command veltranoc is the external collaborator's entry point into the
// transpiler: "veltranoc build file.vl" lexes, parses, type-checks, and
// generates Rust; "veltranoc check file.vl" stops after type-checking and
// reports diagnostics only.
//
// Grounded on cmd/devcmd/main.go's named exit-code constants and
// read-file-then-run-pipeline shape, and cli/main.go's cobra command/flag
// wiring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/checker"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/codegen"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/config"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/lexer"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/parser"
)

// Exit code constants (cmd/devcmd/main.go's pattern, extended with a
// dedicated code for checker diagnostics).
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitIOError          = 2
	ExitDiagnostics      = 3
	ExitGenerationError  = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		configPath       string
		preserveComments bool
		richErrors       bool
		cratePaths       []string
	)

	exitCode := ExitSuccess

	runBuild := func(cmd *cobra.Command, cliArgs []string, checkOnlyMode bool) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			exitCode = ExitIOError
			return err
		}
		if cmd.Flags().Changed("preserve-comments") {
			cfg.PreserveComments = preserveComments
		}
		if len(cratePaths) > 0 {
			cfg.CratePaths = cratePaths
		}

		source, err := os.ReadFile(cliArgs[0])
		if err != nil {
			exitCode = ExitIOError
			return fmt.Errorf("reading %s: %w", cliArgs[0], err)
		}

		registry := buildRegistry(cfg)
		out, diags, err := transpile(string(source), cliArgs[0], cfg.PreserveComments, checkOnlyMode, registry)
		if err != nil {
			exitCode = ExitGenerationError
			return err
		}
		if diags.HasErrors() {
			exitCode = ExitDiagnostics
			if richErrors {
				fmt.Fprintln(os.Stderr, diags.Rich(string(source)))
			} else {
				fmt.Fprintln(os.Stderr, diags.Compact())
			}
			return nil
		}
		if !checkOnlyMode {
			fmt.Print(out)
		}
		return nil
	}

	root := &cobra.Command{
		Use:           "veltranoc",
		Short:         "Transpile Veltrano source to Rust",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to veltrano.yaml")
	root.PersistentFlags().BoolVar(&preserveComments, "preserve-comments", false, "reproduce comments in generated Rust")
	root.PersistentFlags().BoolVar(&richErrors, "rich-errors", false, "render diagnostics with caret-pointing source context")
	root.PersistentFlags().StringSliceVar(&cratePaths, "crate-path", nil, "Cargo workspace root to search for interop signatures (repeatable)")

	buildCmd := &cobra.Command{
		Use:   "build <file.vl>",
		Short: "Type-check and generate Rust",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cliArgs []string) error {
			return runBuild(cmd, cliArgs, false)
		},
	}
	checkCmd := &cobra.Command{
		Use:   "check <file.vl>",
		Short: "Type-check only, reporting diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cliArgs []string) error {
			return runBuild(cmd, cliArgs, true)
		},
	}
	root.AddCommand(buildCmd, checkCmd)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if exitCode == ExitSuccess {
			exitCode = ExitInvalidArguments
		}
		return exitCode
	}
	return exitCode
}

// buildRegistry assembles the priority-ordered querier stack (spec.md
// §4.4): the built-ins, the source scanner over configured crate paths
// (when any are set), and rustdoc (when its cache directory opens).
// Registry.Register orders queriers by priority, so resolution tries the
// built-ins first, then rustdoc, then the source scanner last.
func buildRegistry(cfg *config.Config) *interop.Registry {
	registry := interop.NewRegistry()
	registry.Register(interop.NewBuiltinQuerier())
	if len(cfg.CratePaths) > 0 {
		registry.Register(interop.NewSourceQuerier(cfg.CratePaths))
	}
	if q, err := interop.NewRustdocQuerier(cfg.RustdocCacheDir, cfg.RustdocCacheTTL); err == nil {
		registry.Register(q)
	}
	return registry
}

// transpile runs the lex -> parse -> check -> (optionally) generate
// pipeline. Lex and parse diagnostics are returned as a non-empty
// collection rather than an error, matching the checker's own "never
// short-circuit on first error" convention; only a source-file-level
// problem (there isn't one here beyond I/O, handled by the caller) would
// surface as err.
func transpile(source, filename string, preserveComments, checkOnly bool, registry *interop.Registry) (string, *errors.Collection, error) {
	toks, lexDiags := lexer.New(source, filename, preserveComments, nil).Lex()
	if lexDiags.HasErrors() {
		return "", lexDiags, nil
	}

	prog, parseDiags := parser.New(toks, preserveComments, nil).Parse()
	if parseDiags.HasErrors() {
		return "", parseDiags, nil
	}

	c := checker.New(registry, nil)
	result, checkDiags := c.Check(prog)
	if checkDiags.HasErrors() || checkOnly {
		return "", checkDiags, nil
	}

	out := codegen.New(result, preserveComments).Generate(prog)
	return out, checkDiags, nil
}
