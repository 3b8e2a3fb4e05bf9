package slug

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestTransliterate(t *testing.T) {
	tests := map[string]string{
		"Ραδιόφωνο Αθήνα": "Radiofono Athina",
		"Θεσσαλονίκη":     "Thessaloniki",
		"ΧΑΝΙΑ":           "ChANIA",
		"Ψυχή":            "Psychi",
		"Κέρκυρας":        "Kerkyras",
		"Ϊ ΐ ϋ":           "I i y",
		"Café Del Mar":    "Cafe Del Mar",
		"Ⅻ ǅ ﬁ":           "XII Dz fi",
		"µ ϐ":             "m v",
	}
	for in, want := range tests {
		assert.Equal(t, want, Transliterate(in), in)
	}
}

func TestMake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ραδιόφωνο Αθήνα", "radiofono-athina"},
		{"Radio Athens 98.4 FM", "radio-athens-98-4-fm"},
		{"  --Love   Radio!!  ", "love-radio"},
		{"ΣΚΑΪ 100,3", "skai-100-3"},
		{"Δίεση 101,3", "diesi-101-3"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
		{"Радио", ""},
		{"Ⅻ ǅ ﬁ", "xii-dz-fi"},
		{"Radio ²⁴", "radio-24"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeTruncatesAndTrims(t *testing.T) {
	// 79 letters then a separator: the cut lands on the hyphen, which must be trimmed.
	in := strings.Repeat("a", 79) + " bcd"
	got := Make(in)
	assert.Equal(t, strings.Repeat("a", 79), got)

	long := strings.Repeat("Αθήνα ", 40)
	got = Make(long)
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.Regexp(t, slugPattern, got)
}

func TestMakeOr(t *testing.T) {
	assert.Equal(t, "other", MakeOr("???", "other"))
	assert.Equal(t, "athina", MakeOr("Αθήνα", "other"))
	assert.Equal(t, "", MakeOr("", ""))
}

func TestJoinRespectsMaxLength(t *testing.T) {
	base := strings.Repeat("x", MaxLength)
	got := Join(base, "9617a958")
	assert.Len(t, got, MaxLength)
	assert.True(t, strings.HasSuffix(got, "-9617a958"))
	assert.Equal(t, "a", Join("a", ""))
	assert.Equal(t, "2", Join("", "2"))
}

func FuzzMake(f *testing.F) {
	for _, seed := range []string{"Ραδιόφωνο Αθήνα", "", "---", "a--b", strings.Repeat("ω-", 60), "Ἀθῆναι", "日本語 radio"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		out := Make(in)
		if len(out) > MaxLength {
			t.Fatalf("slug too long: %d", len(out))
		}
		if out != "" && !slugPattern.MatchString(out) {
			t.Fatalf("slug %q does not match pattern", out)
		}
		if Make(out) != out {
			t.Fatalf("Make is not idempotent on %q", out)
		}
	})
}
