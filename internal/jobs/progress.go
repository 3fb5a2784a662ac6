package jobs

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// overallProgress advances once per completed job regardless of outcome.
// The bar renders only on interactive terminals; batch runs rely on the
// structured log stream instead.
type overallProgress struct {
	bar *progressbar.ProgressBar
}

func newOverallProgress(total int) *overallProgress {
	visible := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionClearOnFinish(),
	)
	return &overallProgress{bar: bar}
}

func (p *overallProgress) advance() {
	_ = p.bar.Add(1)
}

func (p *overallProgress) finish() {
	_ = p.bar.Finish()
}
