package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseSlug(t *testing.T) {
	tests := []struct {
		name string
		in   Station
		want string
	}{
		{"name and city", Station{Name: "Kiss FM", City: "Athens"}, "kiss-fm-athens"},
		{"city preferred over state", Station{Name: "Kiss FM", City: "Patra", State: "Western Greece"}, "kiss-fm-patra"},
		{"state when no city", Station{Name: "Kiss FM", State: "Crete"}, "kiss-fm-crete"},
		{"location already in name", Station{Name: "Radio Athens", State: "athens"}, "radio-athens"},
		{"greek location in greek name", Station{Name: "Ραδιόφωνο Αθήνα", State: "Αθήνα"}, "radiofono-athina"},
		{"location matches after transliteration", Station{Name: "Ράδιο Αθήνα", State: "Athina"}, "radio-athina"},
		{"raw substring suppresses location", Station{Name: "Athinaiki Radio", State: "Athina"}, "athinaiki-radio"},
		{"partial slug token is not a match", Station{Name: "Αθηναϊκό Ράδιο", State: "Athina"}, "athinaiko-radio-athina"},
		{"uuid fallback", Station{UUID: "9617A958-0601-11e8-ae97-52543be04c81"}, "9617a958"},
		{"raw id fallback", Station{Name: "!!!", UUID: "not-a-uuid-value"}, "not-a-uu"},
		{"last resort", Station{}, "station"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseSlug(tt.in))
		})
	}
}

func TestAssignSlugs(t *testing.T) {
	stations := []Station{
		{Name: "Kiss FM", City: "Athens", UUID: "9617a958-0601-11e8-ae97-52543be04c81"},
		{Name: "Kiss FM", City: "Athens", UUID: "aaaaaaaa-0601-11e8-ae97-52543be04c81"},
		{Name: "Kiss FM", City: "Athens"},
		{Name: "X", Slug: "existing-slug"},
		{Name: "Y", Slug: "existing-slug"},
		{Name: "Z", Slug: "Bad Slug!"},
	}

	changed := AssignSlugs(stations)
	assert.Equal(t, 5, changed)

	got := make([]string, len(stations))
	for i, st := range stations {
		got[i] = st.Slug
	}
	assert.Equal(t, []string{
		"kiss-fm-athens",
		"kiss-fm-athens-aaaaaaaa",
		"kiss-fm-athens-2",
		"existing-slug",
		"y",
		"z",
	}, got)

	assert.Zero(t, AssignSlugs(stations), "assignment must be idempotent")
	for i, st := range stations {
		assert.Equal(t, got[i], st.Slug)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("kiss-fm"))
	assert.False(t, ValidSlug("Kiss-FM"))
	assert.False(t, ValidSlug("kiss--fm"))
	assert.False(t, ValidSlug("-kiss"))
	assert.False(t, ValidSlug(""))
}
