// Package probe inspects stream URLs with ffprobe.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

// Runner executes a command and returns its stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return out.Bytes(), errBuf.Bytes(), err
}

// Result is the probe outcome for one URL.
type Result struct {
	URL     string         `json:"url"`
	Format  map[string]any `json:"format,omitempty"`
	Streams []any          `json:"streams,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Prober runs ffprobe against stream URLs.
type Prober struct {
	Binary  string        // defaults to "ffprobe"
	Timeout time.Duration // per URL; 0 means none
	Run     Runner        // defaults to ExecRunner
}

// Probe inspects one URL. Failures are reported in Result.Error.
func (p *Prober) Probe(ctx context.Context, url string) Result {
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	run := p.Run
	if run == nil {
		run = ExecRunner
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	stdout, stderr, err := run(ctx, bin,
		"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", url)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = "ffprobe failed"
		}
		return Result{URL: url, Error: msg}
	}

	var payload struct {
		Format  map[string]any `json:"format"`
		Streams []any          `json:"streams"`
	}
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return Result{URL: url, Error: "Invalid ffprobe JSON output"}
	}
	if payload.Format == nil {
		payload.Format = map[string]any{}
	}
	if payload.Streams == nil {
		payload.Streams = []any{}
	}
	return Result{URL: url, Format: payload.Format, Streams: payload.Streams}
}

// ProbeAll probes urls in order, stopping early only if ctx is done.
func (p *Prober) ProbeAll(ctx context.Context, urls []string) ([]Result, error) {
	results := make([]Result, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, p.Probe(ctx, u))
	}
	return results, nil
}

// ReadURLs returns the non-blank trimmed lines of r.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read URL list").Build()
	}
	return urls, nil
}

// WriteJSON writes results as indented JSON with a trailing newline.
func WriteJSON(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return derrors.WrapError(err, derrors.CategoryProbe, "encode probe results").Build()
	}
	return nil
}
