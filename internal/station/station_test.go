package station

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

func TestFlexIntDecoding(t *testing.T) {
	var got []struct {
		Bitrate FlexInt `json:"bitrate"`
	}
	data := `[{"bitrate":"128"},{"bitrate":96},{"bitrate":null},{"bitrate":128.0},{"bitrate":""},{}]`
	require.NoError(t, json.Unmarshal([]byte(data), &got))

	want := []int{128, 96, 0, 128, 0, 0}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].Bitrate.Int(), "entry %d", i)
	}
}

func TestFlexIntRejectsGarbage(t *testing.T) {
	var v struct {
		Bitrate FlexInt `json:"bitrate"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"bitrate":"fast"}`), &v))
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "Patra", Station{City: " Patra ", State: "Western Greece"}.Location())
	assert.Equal(t, "Attica", Station{State: "Attica"}.Location())
	assert.Empty(t, Station{}.Location())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "stations.json")
	lat := 37.98
	in := []Station{{
		Slug:    "radiofono-athina",
		UUID:    "9617a958-0601-11e8-ae97-52543be04c81",
		Name:    "Ραδιόφωνο Αθήνα",
		State:   "Attica",
		Genres:  []string{"pop", "news"},
		Bitrate: 128,
		GeoLat:  &lat,
	}}
	require.NoError(t, Save(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"slug\""))
	assert.True(t, strings.HasSuffix(text, "]\n"))
	assert.Contains(t, text, "Ραδιόφωνο Αθήνα")
	assert.Contains(t, text, `"geo_long": null`)

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryDataset))
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
