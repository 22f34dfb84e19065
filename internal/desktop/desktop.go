// Package desktop connects the search session to the local machine: it opens
// links in the system browser and writes text to the system clipboard by
// running the platform's helper commands.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// ErrNoHelper is returned when no suitable helper command is installed.
var ErrNoHelper = errors.New("desktop: no helper command available")

// command is a helper program with fixed leading arguments.
type command struct {
	name string
	args []string
}

// runner starts a command, optionally feeding stdin.
type runner func(ctx context.Context, name string, args []string, stdin string) error

func execRunner(ctx context.Context, name string, args []string, stdin string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// firstAvailable returns the first candidate found on PATH.
func firstAvailable(lookPath func(string) (string, error), candidates []command) (command, error) {
	for _, c := range candidates {
		if _, err := lookPath(c.name); err == nil {
			return c, nil
		}
	}
	return command{}, ErrNoHelper
}

func browserCandidates(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{name: "open"}}
	case "windows":
		return []command{{name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}}
	default:
		return []command{{name: "xdg-open"}, {name: "wslview"}}
	}
}

func clipboardCandidates(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{name: "pbcopy"}}
	case "windows":
		return []command{{name: "clip"}}
	default:
		return []command{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

// BrowserOpener opens URLs with the platform's URL handler.
type BrowserOpener struct {
	goos     string
	lookPath func(string) (string, error)
	run      runner
}

// NewBrowserOpener returns an opener for the running platform.
func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{goos: runtime.GOOS, lookPath: exec.LookPath, run: execRunner}
}

// Open launches the browser for url. Any failure means the request was blocked.
func (o *BrowserOpener) Open(ctx context.Context, url string) error {
	c, err := firstAvailable(o.lookPath, browserCandidates(o.goos))
	if err != nil {
		return err
	}
	return o.run(ctx, c.name, append(append([]string(nil), c.args...), url), "")
}

// CommandClipboard writes text through the platform's clipboard helper.
type CommandClipboard struct {
	goos     string
	lookPath func(string) (string, error)
	run      runner
}

// NewCommandClipboard returns a clipboard for the running platform.
func NewCommandClipboard() *CommandClipboard {
	return &CommandClipboard{goos: runtime.GOOS, lookPath: exec.LookPath, run: execRunner}
}

// WriteText replaces the clipboard content with text.
func (c *CommandClipboard) WriteText(ctx context.Context, text string) error {
	cmd, err := firstAvailable(c.lookPath, clipboardCandidates(c.goos))
	if err != nil {
		return err
	}
	return c.run(ctx, cmd.name, cmd.args, text)
}

// Recorder stands in for the browser and clipboard when desktop integration
// is off. It logs and remembers every request and always succeeds.
type Recorder struct {
	mu        sync.Mutex
	logger    *slog.Logger
	opened    []string
	clipboard string
}

// NewRecorder returns a Recorder logging through logger.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger.With("component", "desktop_recorder")}
}

// Open records url.
func (r *Recorder) Open(ctx context.Context, url string) error {
	r.mu.Lock()
	r.opened = append(r.opened, url)
	r.mu.Unlock()
	r.logger.InfoContext(ctx, "open requested", "url", url)
	return nil
}

// WriteText records text as the clipboard content.
func (r *Recorder) WriteText(ctx context.Context, text string) error {
	r.mu.Lock()
	r.clipboard = text
	r.mu.Unlock()
	r.logger.InfoContext(ctx, "clipboard write requested", "bytes", len(text))
	return nil
}

// Opened returns the recorded URLs in request order.
func (r *Recorder) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.opened...)
}

// Clipboard returns the last recorded clipboard text.
func (r *Recorder) Clipboard() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clipboard
}
