package launch

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{url: "https://openrouter.ai/docs"},
		{url: "http://e.co"},
		{url: "mailto:someone@example.com"},
		{url: "HTTPS://EXAMPLE.COM"},
		{url: "javascript:alert(1)", wantErr: true},
		{url: "file:///etc/passwd", wantErr: true},
		{url: "relative/path", wantErr: true},
		{url: "https://", wantErr: true},
		{url: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := Validate(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, Validate("javascript:alert(1)"), ErrUnsupportedScheme)
}

func TestSystemOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{goos: "linux", want: []string{"xdg-open", "http://e.co"}},
		{goos: "darwin", want: []string{"open", "http://e.co"}},
		{goos: "windows", want: []string{"rundll32", "url.dll,FileProtocolHandler", "http://e.co"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			var got []string
			s := System{GOOS: tt.goos, start: func(cmd *exec.Cmd) error {
				got = cmd.Args
				return nil
			}}
			require.NoError(t, s.Open("http://e.co"))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSystemOpenErrors(t *testing.T) {
	s := System{GOOS: "plan9", start: func(*exec.Cmd) error { return nil }}
	assert.Error(t, s.Open("http://e.co"))

	s = System{GOOS: "linux", start: func(*exec.Cmd) error { return errors.New("no display") }}
	err := s.Open("http://e.co")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")

	called := false
	s = System{GOOS: "linux", start: func(*exec.Cmd) error { called = true; return nil }}
	assert.Error(t, s.Open("javascript:alert(1)"))
	assert.False(t, called)
}
