package portfolio

// Visibility says which parts of the public page have data behind them.
// A section without data is not rendered and gets no nav entry.
type Visibility struct {
	About          bool
	AboutText      bool
	Education      bool
	Skills         bool
	Certifications bool
	Projects       bool
	Experience     bool
	Contact        bool
	ContactMessage bool
	GitHub         bool
	LinkedIn       bool
	EmailIcon      bool
}

type NavEntry struct {
	Anchor string
	Label  string
}

func VisibilityOf(d *Document) Visibility {
	v := Visibility{
		AboutText:      d.AboutMe != "",
		Education:      len(d.Education) > 0,
		Skills:         len(d.Skills) > 0,
		Certifications: len(d.Certifications) > 0,
		Projects:       len(d.Projects) > 0,
		Experience:     len(d.Experience) > 0,
		Contact:        d.ShowEmail || d.Phone != "" || d.ShowContactForm,
		ContactMessage: d.ShowContactForm && d.ContactMessage != "",
		GitHub:         d.SocialLinks.GitHub != "",
		LinkedIn:       d.SocialLinks.LinkedIn != "",
		EmailIcon:      d.Email != "",
	}
	v.About = v.AboutText || v.Education || v.Skills || v.Certifications
	return v
}

// Nav lists the navbar entries in page order.
func (v Visibility) Nav() []NavEntry {
	nav := []NavEntry{{Anchor: "home", Label: "Home"}}
	add := func(ok bool, anchor, label string) {
		if ok {
			nav = append(nav, NavEntry{Anchor: anchor, Label: label})
		}
	}
	add(v.About, "about", "About")
	add(v.Education, "education", "Education")
	add(v.Skills, "skills", "Skills")
	add(v.Certifications, "certifications", "Certifications")
	add(v.Projects, "projects", "Projects")
	add(v.Experience, "experience", "Experience")
	add(v.Contact, "contact", "Contact")
	return nav
}
