package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-parser/cmd/pdf-parser/ui"
	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
)

// Version is printed by the version command; main sets it.
var Version = "dev"

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *domain.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdf-parser",
	Short: "Extract text, images, tables and layout from PDF documents",
	Long: `pdf-parser runs an optional OCR pass over a PDF and extracts its text layer,
embedded images, tables (as an Excel workbook) and a typed sequence of layout
elements into an output directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		logger = newLogger(cfg.Log, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	reportError(logger, err, verbose)
	return err
}
