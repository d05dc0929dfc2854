// Package progress renders terminal progress for long-running analysis runs.
package progress

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// Bar wraps a progress bar for per-file analysis feedback. All output goes
// to stderr so piped report output stays clean.
type Bar struct {
	bar   *progressbar.ProgressBar
	label string
}

// NewSpinner creates a spinner for operations with no known total, such as
// rendering a report.
func NewSpinner(label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar, label: label}
}

// NewBar creates a progress bar sized to the number of files in the run.
func NewBar(label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, label: label}
}

// TickFile advances the bar by one file and shows the file just processed.
// Safe for concurrent use.
func (b *Bar) TickFile(path string) {
	b.bar.Describe(fmt.Sprintf("%s %s", b.label, filepath.Base(path)))
	b.bar.Add(1)
}

// FinishSuccess clears the bar completely.
func (b *Bar) FinishSuccess() {
	b.bar.Finish()
	b.bar.Clear()
}

// FinishError clears the bar and prints the failure to stderr.
func (b *Bar) FinishError(err error) {
	b.bar.Finish()
	b.bar.Clear()
	fmt.Fprintf(os.Stderr, "  %s error: %v\n", b.label, err)
}
