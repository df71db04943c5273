package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"stringact/internal/facts"
	"stringact/internal/host"
	"stringact/internal/term"
)

var (
	printFacts  bool
	literalArgs bool
	factQuery   string
)

// listCmd prints the available actions
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available actions and their minimum arity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEvaluator(nil)
		if err != nil {
			return err
		}
		for _, a := range e.Actions() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", a.Name(), a.MinArgs())
		}
		return nil
	},
}

// runCmd runs one action
var runCmd = &cobra.Command{
	Use:   "run <action> [args...]",
	Short: "Run one action and print its outputs",
	Long: `Runs an action and prints one output per line.

Examples:
  stringact run string/random abcdef 5 3 '[1, 2]'
  stringact run string/replace 'o+' '"0"' foo boo
  stringact run --facts string/replace oo xx foobar root`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAction,
}

// batchCmd runs a YAML file of calls concurrently
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run a YAML list of calls concurrently",
	Long: `Reads a YAML list of calls and runs them concurrently:

  - action: string/random
    args: ["abc", 4, [2, 2]]
  - action: string/replace
    args: ["o", "0", "foo"]`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	for _, c := range []*cobra.Command{runCmd, batchCmd} {
		c.Flags().BoolVar(&printFacts, "facts", false, "Print Mangle facts instead of plain outputs")
		c.Flags().StringVar(&factQuery, "query", "", "Print only the facts matching a Mangle atom")
	}
	runCmd.Flags().BoolVar(&literalArgs, "literal", false, "Take every argument as a plain string")
}

func runAction(cmd *cobra.Command, args []string) error {
	terms, err := parseArgs(args[1:], literalArgs)
	if err != nil {
		return err
	}

	rec := factRecorder()
	e, err := newEvaluator(rec)
	if err != nil {
		return err
	}

	logger.Debug("Running action", zap.String("action", args[0]), zap.Int("args", len(terms)))
	res := e.Run(cmdContext(cmd), args[0], terms)

	if rec != nil {
		if ferr := printRecorded(cmd, rec); ferr != nil {
			return ferr
		}
	} else {
		for _, s := range res.Strings() {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
	}

	if res.Err != nil {
		logger.Debug("Action failed", zap.String("kind", res.Kind()), zap.Error(res.Err))
		return fmt.Errorf("%s: %w", res.Kind(), res.Err)
	}
	return nil
}

// batchEntry is one call in a batch file.
type batchEntry struct {
	Action string `yaml:"action"`
	Args   []any  `yaml:"args"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read batch: %w", err)
	}
	var entries []batchEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse batch: %w", err)
	}

	calls := make([]host.Call, len(entries))
	for i, entry := range entries {
		t, err := term.FromGo(entry.Args)
		if err != nil {
			return fmt.Errorf("call %d: %w", i, err)
		}
		items, _ := t.AsList()
		calls[i] = host.Call{Action: entry.Action, Args: items}
	}

	rec := factRecorder()
	e, err := newEvaluator(rec)
	if err != nil {
		return err
	}

	results, batchErr := e.Batch(cmdContext(cmd), calls)

	if rec != nil {
		if err := printRecorded(cmd, rec); err != nil {
			return err
		}
	} else {
		for i, res := range results {
			for _, s := range res.Strings() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, s)
			}
		}
	}
	return batchErr
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func factRecorder() *facts.Recorder {
	if printFacts || factQuery != "" {
		return facts.NewRecorder()
	}
	return nil
}

func printRecorded(cmd *cobra.Command, rec *facts.Recorder) error {
	atoms := rec.Facts()
	if factQuery != "" {
		var err error
		if atoms, err = rec.Query(factQuery); err != nil {
			return err
		}
	}
	for _, atom := range atoms {
		fmt.Fprintf(cmd.OutOrStdout(), "%s.\n", atom)
	}
	return nil
}
