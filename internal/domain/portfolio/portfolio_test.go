package portfolio

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalBothEncodings(t *testing.T) {
	cases := map[string]ID{
		`{"_id":"65f0c1"}`:          "65f0c1",
		`{"_id":{"$oid":"65f0c1"}}`: "65f0c1",
		`{"_id":42}`:                "42",
		`{"_id":null}`:              "",
		`{"username":"abc"}`:        "",
	}
	for in, want := range cases {
		var d Document
		require.NoError(t, json.Unmarshal([]byte(in), &d), in)
		assert.Equal(t, want, d.ID, in)
	}
}

func TestID_MarshalsAsBareString(t *testing.T) {
	b, err := json.Marshal(Document{ID: "65f0c1"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"_id":"65f0c1"`)

	b, err = json.Marshal(Document{})
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"_id"`)
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Empty(t, d.FullName)
	assert.NotNil(t, d.Education)
	assert.NotNil(t, d.Skills)
	assert.NotNil(t, d.Projects)
	assert.NotNil(t, d.Certifications)
	assert.True(t, d.ShowEmail)
	assert.True(t, d.ShowContactForm)
	assert.Equal(t, ThemeMinimalWhite, d.Layout.Theme)
	assert.False(t, d.Exists())
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	in := &Document{
		ID:          "p1",
		Username:    "abc",
		FullName:    "A B",
		SocialLinks: SocialLinks{GitHub: "https://github.com/abc"},
		Education:   []Education{{Degree: "BSc", Institution: "Uni", StartYear: "2018", EndYear: "2022"}},
		Skills:      []Skill{{Skill: "Go", Level: "Advanced"}},
		Projects:    []Project{},
		Certifications: []Certification{
			{Title: "CKA", Issuer: "CNCF", Date: "2023"},
		},
		Experience: []Experience{{Title: "Engineer", Company: "Acme"}},
		ShowEmail:  true,
		Layout:     Layout{Theme: ThemeCyberpunk},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Document
	require.NoError(t, json.Unmarshal(b, &out))
	if diff := cmp.Diff(in, &out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClone_IsDeep(t *testing.T) {
	d := Default()
	require.NoError(t, d.AddItem(SectionSkills, map[string]string{"skill": "Go"}))

	c := d.Clone()
	require.NoError(t, c.UpdateItem(SectionSkills, 0, "skill", "Rust"))

	assert.Equal(t, "Go", d.Skills[0].Skill)
	assert.Equal(t, "Rust", c.Skills[0].Skill)
}

func TestParseTheme(t *testing.T) {
	th, ok := ParseTheme("sleek-black-gold")
	assert.True(t, ok)
	assert.Equal(t, ThemeSleekBlackGold, th)

	th, ok = ParseTheme("Minimal White")
	assert.True(t, ok)
	assert.Equal(t, ThemeMinimalWhite, th)

	_, ok = ParseTheme("../../etc/passwd")
	assert.False(t, ok)

	assert.Len(t, Themes, 10)
	for _, th := range Themes {
		assert.Equal(t, "/static/themes/"+string(th)+".css", th.Stylesheet())
	}
	assert.Empty(t, Theme("nope").Stylesheet())
}

func TestResolveTheme(t *testing.T) {
	th, ok := ResolveTheme("")
	assert.True(t, ok)
	assert.Equal(t, DefaultTheme, th)

	th, ok = ResolveTheme("ocean-breeze")
	assert.True(t, ok)
	assert.Equal(t, ThemeOceanBreeze, th)

	th, ok = ResolveTheme("neon-nights")
	assert.False(t, ok)
	assert.Equal(t, DefaultTheme, th)
}
