package main

import (
	"fmt"
	"os"

	"careerdesk/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgPath string
	dataDir string
	verbose bool

	// Loaded in PersistentPreRunE, shared by every command
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "desk",
	Short: "CareerDesk - resume and cover letter workbench",
	Long: `CareerDesk keeps one master profile of experience, projects, and skills
in plain JSON, tailors it to a job ad with an LLM, and renders the result
to HTML and PDF.

Run "desk serve" for the web workbench, or use the offline commands
(build, new-job, export) to work straight from the data files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version has no use for the config or the logger
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.Data.Dir = dataDir
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildLogger maps the logging config onto zap. The verbose flag forces
// debug level and console encoding regardless of the config.
func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Format == "text" || verbose {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "careerdesk.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Data directory override (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Build flags
	buildCmd.Flags().StringVar(&buildJob, "job", "", "Job config slug or path (default: all configs)")
	buildCmd.Flags().BoolVar(&buildOpen, "open", false, "Open the generated HTML in the default browser")

	// New-job flags
	newJobCmd.Flags().StringVar(&newJobName, "name", "", "Job config name (e.g., acme-ml-researcher)")
	newJobCmd.Flags().StringVar(&newJobTitle, "title", "", "Target role title (e.g., ML Researcher)")
	newJobCmd.MarkFlagRequired("name")

	// Add commands to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(newJobCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
