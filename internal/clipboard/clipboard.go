// Package clipboard copies identifier lists to the system clipboard via shell
// commands, so that missing DOIs can be pasted into a deposit form.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard command is found.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// lookPathFunc matches exec.LookPath.
type lookPathFunc func(file string) (string, error)

// command returns the clipboard command for goos, looking executables up
// with lookPath. Linux tries wl-copy, then xclip, then xsel.
func command(goos string, lookPath lookPathFunc) ([]string, error) {
	var candidates [][]string
	switch goos {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "windows":
		candidates = [][]string{{"clip"}}
	case "linux", "freebsd", "openbsd":
		candidates = [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether a clipboard command exists on this system.
func IsAvailable() bool {
	_, err := command(runtime.GOOS, exec.LookPath)
	return err == nil
}

// Copy copies text to the system clipboard.
func Copy(text string) error {
	args, err := command(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// CopyLines copies lines, one per line, skipping blanks. It returns the
// number of lines copied.
func CopyLines(lines []string) (int, error) {
	text := Join(lines)
	if text == "" {
		return 0, nil
	}
	return strings.Count(text, "\n") + 1, Copy(text)
}

// Join joins the non-blank lines with newlines.
func Join(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
