package cmd

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

const (
	defaultFallbackTermWidth  = 120
	defaultFallbackTermHeight = 30
)

var (
	stdinIsPiped     = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	stdoutIsPiped    = func() bool { stat, _ := os.Stdout.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	newResizeTicker  = func(d time.Duration) resizeTicker { return realResizeTicker{Ticker: time.NewTicker(d)} }
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type realResizeTicker struct {
	*time.Ticker
}

func (t realResizeTicker) C() <-chan time.Time { return t.Ticker.C }

// viewSize is the size the interactive view is laid out for.
type viewSize struct {
	Width  int
	Height int
}

// resolveViewSize prefers the --width/--height flags, then the detected
// terminal size, then fixed fallbacks.
func resolveViewSize(flagWidth, flagHeight, detectedWidth, detectedHeight int) viewSize {
	pick := func(flag, detected, fallback int) int {
		switch {
		case flag > 0:
			return flag
		case detected > 0:
			return detected
		default:
			return fallback
		}
	}
	return viewSize{
		Width:  pick(flagWidth, detectedWidth, defaultFallbackTermWidth),
		Height: pick(flagHeight, detectedHeight, defaultFallbackTermHeight),
	}
}

// detectTerminalSize returns the best-effort terminal width/height by probing
// stdout, stderr, and stdin, then falling back to $COLUMNS.
func detectTerminalSize() (int, int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return 0, 0
}

// getProgramOptions handles piped stdin by reopening the terminal for
// interactive input/output, so the report can arrive on stdin while keys
// still come from the keyboard.
func getProgramOptions() ([]tea.ProgramOption, func()) {
	cleanup := func() {}
	if !stdinIsPiped() {
		return nil, cleanup
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// No /dev/tty (e.g. CI): fall back to stdin.
		return nil, cleanup
	}
	cleanup = func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut), withTTYResizeWatcher(ctx, ttyOut))
	}

	return opts, func() {
		cancel()
		cleanup()
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}

	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// withTTYResizeWatcher polls the terminal size and sends resize messages
// when signals are unreliable (piped stdin on Windows). It stops when ctx is
// canceled.
func withTTYResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		if ctx == nil || out == nil {
			return
		}

		go func() {
			t := newResizeTicker(250 * time.Millisecond)
			defer t.Stop()

			lastW, lastH := 0, 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C():
					w, h, err := termGetSize(int(out.Fd()))
					if err != nil {
						continue
					}
					if w == lastW && h == lastH {
						continue
					}
					lastW, lastH = w, h
					sendWindowSize(p, tea.WindowSizeMsg{Width: w, Height: h})
				}
			}
		}()
	}
}
