package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar wraps a progressbar instance for percentage progress.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar running to total.
func NewProgressBar(total int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionEnableColorCodes(!noColorFlag),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

// Set moves the bar to current.
func (p *ProgressBar) Set(current int64) {
	_ = p.bar.Set64(current)
}

// Describe replaces the text in front of the bar.
func (p *ProgressBar) Describe(description string) {
	p.bar.Describe(description)
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Clear removes the bar from the line without completing it.
func (p *ProgressBar) Clear() {
	_ = p.bar.Clear()
}

// Spinner wraps a spinner for work without a known length.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the animation
func (s *Spinner) Start() {
	if IsStderrTerminal() {
		s.spinner.Start()
	}
}

// Stop stops the animation and clears the line
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Message prints a plain line
func Message(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
	fmt.Fprintln(os.Stdout)
}

// Error prints an error line to stderr
func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// Success prints a success line
func Success(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Warning prints a warning line
func Warning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, args...))
}

// Info prints an informational line
func Info(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", color.CyanString("ℹ"), fmt.Sprintf(format, args...))
}

// Newline prints a newline.
func Newline() {
	fmt.Fprintln(os.Stdout)
}

// Section prints an underlined section header.
func Section(title string) {
	fmt.Fprintf(os.Stdout, "\n%s\n", color.New(color.Bold).Sprint(title))
	fmt.Fprintf(os.Stdout, "%s\n\n", strings.Repeat("=", len([]rune(title))))
}
