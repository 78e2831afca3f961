// Command numparse prints the numbers found in text files or stdin.
//
// Usage:
//
//	numparse [flags] [file...]
//
// Examples:
//
//	echo "123 456,789 90.19" | numparse
//	numparse -p 'foo:\s*<NUM>' -f 'mod(values[0], 3) == 0' notes.txt
//	numparse -p 'foo:\s*<NUM>\s*bar:\s*<NUM>' -m '{foo: values[0], bar: values[1]}' -o yaml data.txt
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/az-ai-labs/numparse"
	"github.com/az-ai-labs/numparse/exprfn"
	"github.com/az-ai-labs/numparse/internal/config"
	"github.com/az-ai-labs/numparse/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// stdinName is the argument that selects standard input.
const stdinName = "-"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"pattern":    exprfn.KeyPattern,
	"map":        exprfn.KeyMap,
	"filter":     exprfn.KeyFilter,
	"format":     "format",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "numparse [flags] [file...]",
		Short: "Extract numbers from text",
		Long: `numparse finds integers, comma-grouped integers and decimals in text and
prints each match with its parsed values.

A pattern narrows the search: every <NUM> in it is replaced by the number
pattern, and only the placeholders produce values. Map and filter are
expr-lang expressions evaluated per match against "values".

Reads standard input when no file (or "-") is given.

Examples:
  # All numbers on stdin
  echo "123 456,789 90.19" | numparse

  # Numbers after "foo:" that are divisible by 3
  numparse -p 'foo:\s*<NUM>' -f 'mod(values[0], 3) == 0' notes.txt

  # Pairs as records, printed as YAML
  numparse -p '<NUM>-<NUM>' -m '{lo: values[0], hi: values[1]}' -o yaml ranges.txt`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := make(map[string]any)
			for name, key := range flagKeys {
				f := cmd.Flags().Lookup(name)
				if f != nil && f.Changed {
					overrides[key] = f.Value.String()
				}
			}

			cfg, err := config.Load(configPath, overrides)
			if err != nil {
				return err
			}

			log, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if len(args) == 0 {
				args = []string{stdinName}
			}
			return extractAll(cfg, log, args, stdin, stdout)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	flags.StringP("pattern", "p", "", "template containing "+numparse.Placeholder)
	flags.StringP("map", "m", "", "expression transforming values into a list or record")
	flags.StringP("filter", "f", "", "expression selecting matches to keep")
	flags.StringP("format", "o", config.FormatJSON, "output format: json, yaml or text")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", logging.FormatConsole, "log format: console or json")

	return cmd
}

// extractAll runs one extractor over every input, writing results in
// argument order.
func extractAll(cfg *config.Config, log *zap.Logger, inputs []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := exprfn.FromMap(cfg.Extract)
	if err != nil {
		return err
	}
	e, err := numparse.New(opts)
	if err != nil {
		return err
	}
	log.Debug("extractor ready",
		zap.String("regexp", e.String()),
		zap.Bool("custom", e.Custom()),
		zap.Bool("map", opts.Map != nil),
		zap.Bool("filter", opts.Filter != nil),
	)

	w, err := newWriter(cfg.Format, stdout)
	if err != nil {
		return err
	}

	for _, name := range inputs {
		text, err := readInput(name, stdin)
		if err != nil {
			return err
		}

		start := time.Now()
		matches, err := e.Extract(text)
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(name), err)
		}
		log.Info("extracted",
			zap.String("input", displayName(name)),
			zap.Int("bytes", len(text)),
			zap.Int("matches", len(matches)),
			zap.Duration("elapsed", time.Since(start)),
		)

		if err := w.write(displayName(name), matches); err != nil {
			return err
		}
	}
	return w.close()
}

func readInput(name string, stdin io.Reader) (string, error) {
	if name == stdinName {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func displayName(name string) string {
	if name == stdinName {
		return "<stdin>"
	}
	return name
}
