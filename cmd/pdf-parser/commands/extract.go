package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-parser/cmd/pdf-parser/ui"
	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/spherical/pdf-parser/internal/export"
	"github.com/spherical/pdf-parser/internal/runner"
)

// elementPreview is how many elements the summary lists.
const elementPreview = 10

var (
	extractInput      string
	extractOutput     string
	extractOCR        bool
	extractText       bool
	extractImages     bool
	extractTables     bool
	extractStructured bool
	extractAll        bool
	extractKeepTemp   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract content from a PDF",
	Long: `Extract content from a PDF into the output directory. Without any operation
flag every operation runs.`,
	Example: `  pdf-parser extract -i report.pdf
  pdf-parser extract -i scan.pdf -o out --ocr --extract-text
  pdf-parser extract -i report.pdf --extract-tables --keep-temp`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "input", "i", "", "input PDF file (required)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output directory (default from config, ./pdf_output)")
	extractCmd.Flags().BoolVar(&extractOCR, "ocr", false, "run an OCR pass and save the OCR'd PDF")
	extractCmd.Flags().BoolVar(&extractText, "extract-text", false, "extract the text layer")
	extractCmd.Flags().BoolVar(&extractImages, "extract-images", false, "extract embedded images")
	extractCmd.Flags().BoolVar(&extractTables, "extract-tables", false, "extract tables to an Excel workbook")
	extractCmd.Flags().BoolVar(&extractStructured, "extract-structured", false, "extract typed layout elements")
	extractCmd.Flags().BoolVar(&extractAll, "extract-all", false, "run every operation")
	extractCmd.Flags().BoolVar(&extractKeepTemp, "keep-temp", false, "keep the scratch directory")
	_ = extractCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(extractCmd)
}

func extractOptions() domain.Options {
	if extractAll {
		opts := domain.AllOptions()
		opts.KeepTemp = extractKeepTemp
		return opts
	}
	return domain.Options{
		OCR:        extractOCR,
		Text:       extractText,
		Images:     extractImages,
		Tables:     extractTables,
		Structured: extractStructured,
		KeepTemp:   extractKeepTemp,
	}.WithDefaults()
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputDir := extractOutput
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	showBar := ui.IsStderrTerminal() && !verbose
	runLogger := logger
	if showBar {
		runLogger = quietLogger(cfg.Log)
	}

	ui.Section("PDF Extraction")
	ui.Info("Input: %s", extractInput)
	ui.Info("Output: %s", outputDir)
	ui.Newline()

	start := time.Now()
	r := runner.New(cfg, runLogger)
	events, err := r.Run(ctx, runner.Request{
		Input:     extractInput,
		OutputDir: outputDir,
		Options:   extractOptions(),
	})
	if err != nil {
		return err
	}

	results, runErr := render(events, showBar)
	if runErr != nil {
		return fmt.Errorf("extraction failed: %w", runErr)
	}

	summarize(results, time.Since(start))
	return nil
}

// render drains events onto a progress bar, or as log lines when stderr is
// not a terminal. It returns the complete payload or the error event's error.
func render(events <-chan domain.ProgressEvent, showBar bool) (export.Results, error) {
	var bar *ui.ProgressBar
	if showBar {
		bar = ui.NewProgressBar(runner.PercentDone, "Starting")
	}

	var results export.Results
	var runErr error
	for ev := range events {
		switch ev.Type {
		case domain.EventStart:
			if bar != nil {
				bar.Describe(ev.Message)
			} else {
				logger.Info("%s", ev.Message)
			}
		case domain.EventProgress:
			if bar != nil {
				bar.Describe(ev.Message)
				bar.Set(int64(ev.Percent))
			} else {
				logger.Info("[%3d%%] %s", ev.Percent, ev.Message)
			}
		case domain.EventComplete:
			if bar != nil {
				bar.Finish()
			}
			results, _ = ev.Payload.(export.Results)
		case domain.EventError:
			if bar != nil {
				bar.Clear()
			}
			runErr = ev.Err
		}
	}
	return results, runErr
}

func summarize(res export.Results, elapsed time.Duration) {
	ui.Success("Extraction completed in %s", ui.FormatDuration(elapsed))

	ui.Section("Extraction Summary")
	rows := [][]string{{"Output directory", res.OutputDir}}
	if res.OCRFile != "" {
		rows = append(rows, []string{"OCR PDF", res.OCRFile})
	}
	if res.TextFile != "" {
		rows = append(rows, []string{"Text", fmt.Sprintf("%s (%d chars)", res.TextFile, len([]rune(res.Text)))})
	}
	if res.ImagesDir != "" {
		rows = append(rows, []string{"Images", fmt.Sprintf("%s (%d files)", res.ImagesDir, len(res.ImageFiles))})
	}
	if res.TablesFile != "" {
		rows = append(rows, []string{"Tables", fmt.Sprintf("%s (%d sheets)", res.TablesFile, res.TableCount)})
	}
	if res.StructuredFile != "" {
		rows = append(rows, []string{"Structured", fmt.Sprintf("%s (%d elements)", res.StructuredFile, len(res.Elements))})
	}
	ui.Table([]string{"Output", "Value"}, rows)

	if len(res.Elements) > 0 {
		ui.Section("Document Elements")
		ui.Table([]string{"Type", "Count"}, elementCounts(res.Elements))

		limit := len(res.Elements)
		if !ui.Verbose() && limit > elementPreview {
			limit = elementPreview
		}
		ui.Newline()
		for i, el := range res.Elements[:limit] {
			ui.Message("%2d. [%s] p%d %s", i+1, ui.Highlight(string(el.Type)), el.Page, ui.Truncate(el.Text, 100))
		}
		if limit < len(res.Elements) {
			ui.Message("... %d more in %s", len(res.Elements)-limit, res.StructuredFile)
		}
	}

	if len(res.Degraded) > 0 {
		ui.Newline()
		ui.Warning("Some operations produced no output, see the log for details:")
		fmt.Print(ui.FormatList(res.Degraded))
	}
}

func elementCounts(elements []domain.Element) [][]string {
	counts := map[domain.ElementType]int{}
	for _, el := range elements {
		counts[el.Type]++
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{t, strconv.Itoa(counts[domain.ElementType(t)])})
	}
	return rows
}
