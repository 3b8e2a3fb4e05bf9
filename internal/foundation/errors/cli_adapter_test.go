package errors

import (
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"config", ConfigError("missing file").Build(), 7},
		{"network", NetworkError("timeout").Build(), 8},
		{"sitemap", SitemapError("empty slug").Build(), 11},
		{"unclassified", stderrors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	err := WrapError(stderrors.New("no such file"), CategoryDataset, "load stations").Build()

	got := quiet.FormatError(err)
	if got != "Error: load stations: no such file" {
		t.Errorf("unexpected message %q", got)
	}

	verbose := NewCLIErrorAdapter(true, nil)
	if !strings.Contains(verbose.FormatError(err), "[dataset:fatal]") {
		t.Errorf("verbose output should include classification, got %q", verbose.FormatError(err))
	}
}
