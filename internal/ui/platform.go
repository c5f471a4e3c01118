package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// copyToClipboardFn is the active clipboard implementation. Tests replace it
// via StubClipboard.
var copyToClipboardFn = copyToClipboardImpl

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error { return copyToClipboardFn(text) }

// StubClipboard replaces the clipboard with fn and returns a restore
// function.
func StubClipboard(fn func(string) error) (restore func()) {
	orig := copyToClipboardFn
	copyToClipboardFn = fn
	return func() { copyToClipboardFn = orig }
}

func copyToClipboardImpl(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "pbcopy")
	case "linux":
		// xclip, then xsel, then wl-copy (Wayland)
		switch {
		case lookPath("xclip"):
			cmd = exec.CommandContext(ctx, "xclip", "-selection", "clipboard")
		case lookPath("xsel"):
			cmd = exec.CommandContext(ctx, "xsel", "--clipboard", "--input")
		case lookPath("wl-copy"):
			cmd = exec.CommandContext(ctx, "wl-copy")
		default:
			return fmt.Errorf("no clipboard command found (install xclip, xsel, or wl-clipboard)")
		}
	case "windows":
		cmd = exec.CommandContext(ctx, "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	_, _ = stdin.Write([]byte(text))
	_ = stdin.Close()
	return cmd.Wait()
}

func lookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
