package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-parser/cmd/pdf-parser/ui"
	"github.com/spherical/pdf-parser/internal/sample"
)

var (
	sampleOutput string
	sampleFont   string
)

var sampleCmd = &cobra.Command{
	Use:   "generate-sample",
	Short: "Write a bilingual sample PDF with text, tables and an image",
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "sample.pdf", "output PDF path")
	sampleCmd.Flags().StringVar(&sampleFont, "font", "", "CJK TrueType font (default: search "+sample.FontEnv+" and system fonts)")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	opts := []sample.Option{sample.WithLogger(logger)}
	if sampleFont != "" {
		opts = append(opts, sample.WithFont(sampleFont))
	}

	spin := ui.NewSpinner("Generating sample PDF...")
	spin.Start()
	err := sample.Generate(sampleOutput, opts...)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("generate sample: %w", err)
	}

	ui.Success("Sample PDF written to %s", sampleOutput)
	return nil
}
