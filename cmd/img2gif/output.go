package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/img2gif/internal/convert"
	"github.com/handiism/img2gif/internal/model"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5DADE2"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#F39C12"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F8C8D"))
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// printer renders progress events and the final summary. Events arrive from
// worker goroutines.
type printer struct {
	w       io.Writer
	verbose bool
	quiet   bool
	mu      sync.Mutex
}

func newPrinter(w io.Writer, verbose, quiet bool) *printer {
	return &printer{w: w, verbose: verbose, quiet: quiet}
}

func (p *printer) progress(event convert.ProgressEvent) {
	if p.quiet {
		return
	}
	if event.Level == convert.LevelVerbose && !p.verbose {
		return
	}

	var prefix string
	switch event.Level {
	case convert.LevelError:
		prefix = styleError.Render("✗ ")
	case convert.LevelWarning:
		prefix = styleWarning.Render("! ")
	case convert.LevelSuccess:
		prefix = styleSuccess.Render("✓ ")
	case convert.LevelInfo:
		prefix = styleInfo.Render("• ")
	default:
		prefix = "  "
	}

	msg := event.Message
	if event.Level == convert.LevelVerbose && event.Total > 0 {
		msg = fmt.Sprintf("%s %s", styleDim.Render(fmt.Sprintf("[%d/%d]", event.Done, event.Total)), msg)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, prefix+msg)
}

func (p *printer) header(input []string, output string, cfg model.GifConfig) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, styleTitle.Render("img2gif"))
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "Input:  %s\n", strings.Join(input, ", "))
	fmt.Fprintf(p.w, "Output: %s\n", output)

	loop := "forever"
	if cfg.Loop() > 0 {
		loop = fmt.Sprintf("%d more time(s)", cfg.Loop())
	}
	fmt.Fprintf(p.w, "Timing: %v per frame (%.2f fps), loop %s\n", cfg.FrameDuration(), cfg.FPS(), loop)
	if cfg.ShouldResize() {
		fmt.Fprintf(p.w, "Resize: %dx%d, aspect ratio kept: %v\n", cfg.Width(), cfg.Height(), cfg.MaintainAspectRatio())
	}
	fmt.Fprintln(p.w)
}

func (p *printer) summary(r *model.ConversionResult) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "%s %d frames, %dx%d, %.1f KB → %s\n",
		styleSuccess.Render("Done!"), r.FrameCount, r.Width, r.Height, float64(r.Bytes)/1024, r.OutputPath)
	if r.Skipped() > 0 {
		fmt.Fprintln(p.w, styleWarning.Render(fmt.Sprintf("%d frame(s) skipped:", r.Skipped())))
		for _, w := range r.Warnings {
			fmt.Fprintln(p.w, "  "+w.String())
		}
	}
}
