package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stringact/internal/config"
	"stringact/internal/facts"
	"stringact/internal/host"
	"stringact/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	seed       uint64

	// Logger
	logger *zap.Logger

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "stringact",
	Short: "stringact - run string actions over typed arguments",
	Long: `stringact evaluates the string/random and string/replace actions.

Each argument is parsed as YAML, so 5 is a number, "5" is a string and
[1, [2, 3]] is a nested list. Lists in the variadic tail are flattened.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		_ = logging.Sync()
	},
}

func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Random.Seed = &seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	if verbose {
		lc := cfg.Logging
		lc.DebugMode = true
		logging.SetBase(logger, logging.Options{DebugMode: true, Enabled: lc.IsCategoryEnabled})
	} else if err := logging.Configure(logging.Options{
		DebugMode: cfg.Logging.DebugMode,
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Enabled:   cfg.Logging.IsCategoryEnabled,
	}); err != nil {
		return err
	}

	logger.Debug("Config loaded", zap.String("path", configPath), zap.Int("max_length", cfg.Random.MaxLength))
	return nil
}

// newEvaluator builds the evaluator from the loaded config, optionally
// recording every output into rec.
func newEvaluator(rec *facts.Recorder) (*host.Evaluator, error) {
	var opts []host.Option
	if rec != nil {
		opts = append(opts, host.WithRecorder(rec))
	}
	return host.FromConfig(cfg, opts...)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "stringact.yaml", "Config file")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed string/random for reproducible output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
