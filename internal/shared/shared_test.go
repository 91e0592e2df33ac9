package shared

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "https://example.com")
			if (err != nil) != tt.wantErr {
				t.Fatalf("browserCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if filepath.Base(cmd.Path) != tt.want && cmd.Args[0] != tt.want {
				t.Errorf("browserCommand() = %v, want %s", cmd.Args, tt.want)
			}
			if cmd.Args[len(cmd.Args)-1] != "https://example.com" {
				t.Errorf("url should be the last argument, got %v", cmd.Args)
			}
		})
	}
}

func TestOpenBrowserEmptyURL(t *testing.T) {
	if err := OpenBrowser(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "handoff.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello")
}

func TestPlural(t *testing.T) {
	if got := Plural(1, "site", "sites"); got != "site" {
		t.Errorf("Plural(1) = %s", got)
	}
	if got := Plural(3, "site", "sites"); got != "sites" {
		t.Errorf("Plural(3) = %s", got)
	}
}
