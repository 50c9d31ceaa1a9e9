// Package opener opens exported files with the desktop's default application.
package opener

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// EnvProgram names an environment variable overriding the program used to
// open files (for example "libreoffice" or "zathura").
const EnvProgram = "RVC_OPENER"

// Opener opens files with a program, or the platform default when empty.
type Opener struct {
	program string
}

// New creates an opener. An empty program means the platform default.
func New(program string) *Opener {
	return &Opener{program: program}
}

// FromEnv creates an opener honouring RVC_OPENER.
func FromEnv() *Opener {
	return New(os.Getenv(EnvProgram))
}

// Open starts the program on path without waiting for it to exit.
func (o *Opener) Open(path string) error {
	// Fail fast if file doesn't exist
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("checking file: %w", err)
	}

	args, err := o.command(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return exec.Command(args[0], args[1:]...).Start()
}

// command returns the argv that opens path on goos.
func (o *Opener) command(goos, path string) ([]string, error) {
	if o.program != "" {
		return []string{o.program, path}, nil
	}
	switch goos {
	case "darwin":
		return []string{"open", path}, nil
	case "windows":
		return []string{"cmd", "/c", "start", "", path}, nil
	case "linux", "freebsd", "openbsd":
		return []string{"xdg-open", path}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s (set %s)", goos, EnvProgram)
	}
}
