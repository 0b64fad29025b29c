package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func anchors(nav []NavEntry) []string {
	out := make([]string, len(nav))
	for i, n := range nav {
		out[i] = n.Anchor
	}
	return out
}

func TestVisibilityOf_EmptyDocument(t *testing.T) {
	d := &Document{}
	v := VisibilityOf(d)

	assert.False(t, v.About)
	assert.False(t, v.Projects)
	assert.False(t, v.Experience)
	assert.False(t, v.Contact)
	assert.Equal(t, []string{"home"}, anchors(v.Nav()))
}

func TestVisibilityOf_AboutMergesSubsections(t *testing.T) {
	d := &Document{Skills: []Skill{{Skill: "Go"}}}
	v := VisibilityOf(d)

	assert.True(t, v.About)
	assert.False(t, v.AboutText)
	assert.False(t, v.Education)
	assert.Equal(t, []string{"home", "about", "skills"}, anchors(v.Nav()))
}

func TestVisibilityOf_Contact(t *testing.T) {
	assert.True(t, VisibilityOf(&Document{Phone: "123"}).Contact)
	assert.True(t, VisibilityOf(&Document{ShowEmail: true}).Contact)

	v := VisibilityOf(&Document{ShowContactForm: true})
	assert.True(t, v.Contact)
	assert.False(t, v.ContactMessage)

	v = VisibilityOf(&Document{ShowContactForm: false, ContactMessage: "hi", Phone: "1"})
	assert.False(t, v.ContactMessage)
}

func TestVisibilityOf_FullDocumentNavOrder(t *testing.T) {
	d := &Document{
		AboutMe:        "hello",
		Education:      []Education{{Degree: "BSc"}},
		Skills:         []Skill{{Skill: "Go"}},
		Certifications: []Certification{{Title: "CKA"}},
		Projects:       []Project{{Title: "p"}},
		Experience:     []Experience{{Title: "e"}},
		ShowEmail:      true,
	}
	assert.Equal(t,
		[]string{"home", "about", "education", "skills", "certifications", "projects", "experience", "contact"},
		anchors(VisibilityOf(d).Nav()),
	)
}
