package probe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(t *testing.T, outputs map[string]string) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		require.Equal(t, "ffprobe", name)
		require.Equal(t, []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams"}, args[:len(args)-1])
		url := args[len(args)-1]
		out, ok := outputs[url]
		if !ok {
			return nil, []byte("  Connection refused \n"), errors.New("exit status 1")
		}
		return []byte(out), nil, nil
	}
}

func TestProbeAll(t *testing.T) {
	p := &Prober{Run: fakeRunner(t, map[string]string{
		"http://ok":      `{"format":{"format_name":"mp3","bit_rate":"128000"},"streams":[{"codec_name":"mp3"}]}`,
		"http://garbage": `not json`,
		"http://bare":    `{}`,
	})}

	results, err := p.ProbeAll(t.Context(), []string{"http://ok", "http://garbage", "http://down", "http://bare"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "mp3", results[0].Format["format_name"])
	assert.Len(t, results[0].Streams, 1)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, "Invalid ffprobe JSON output", results[1].Error)
	assert.Equal(t, "Connection refused", results[2].Error)
	assert.NotNil(t, results[3].Format)
	assert.NotNil(t, results[3].Streams)
}

func TestProbeAllStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	p := &Prober{Run: fakeRunner(t, nil)}
	results, err := p.ProbeAll(ctx, []string{"http://a"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestReadURLs(t *testing.T) {
	urls, err := ReadURLs(strings.NewReader("http://a\n\n  http://b  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a", "http://b"}, urls)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []Result{{URL: "http://a?x=1&y=2", Error: "boom"}}))
	assert.Equal(t, "[\n  {\n    \"url\": \"http://a?x=1&y=2\",\n    \"error\": \"boom\"\n  }\n]\n", buf.String())
}
