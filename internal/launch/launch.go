// Package launch hands URLs to the platform's default opener.
package launch

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnsupportedScheme is returned for URLs that are not web or mail links.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Opener opens a URL outside the application.
type Opener interface {
	Open(rawURL string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(rawURL string) error

func (f OpenerFunc) Open(rawURL string) error { return f(rawURL) }

// System opens URLs with the operating system's handler.
type System struct {
	// GOOS overrides runtime.GOOS; empty means the running platform.
	GOOS string
	// start runs the command; nil means (*exec.Cmd).Start.
	start func(*exec.Cmd) error
}

// Open validates rawURL and starts the platform opener without waiting for it.
func (s System) Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}

	cmd, err := s.command(rawURL)
	if err != nil {
		return err
	}

	start := s.start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return fmt.Errorf("failed to open %s: %w", rawURL, err)
	}
	return nil
}

func (s System) command(rawURL string) (*exec.Cmd, error) {
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	switch goos {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// Validate accepts absolute http, https and mailto URLs.
func Validate(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("invalid URL %q: missing host", rawURL)
		}
		return nil
	case "mailto":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
