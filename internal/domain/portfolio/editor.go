package portfolio

import (
	"fmt"
	"strconv"

	"github.com/khoahotran/portli/pkg/apperror"
)

// Section names an editable repeated section of a Document.
type Section string

const (
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
)

// EditableSections is the editor's display order.
var EditableSections = []Section{SectionEducation, SectionSkills, SectionProjects, SectionCertifications}

var educationFields = map[string]func(*Education) *string{
	"degree":      func(e *Education) *string { return &e.Degree },
	"institution": func(e *Education) *string { return &e.Institution },
	"start_year":  func(e *Education) *string { return &e.StartYear },
	"end_year":    func(e *Education) *string { return &e.EndYear },
	"description": func(e *Education) *string { return &e.Description },
}

var skillFields = map[string]func(*Skill) *string{
	"skill": func(s *Skill) *string { return &s.Skill },
	"level": func(s *Skill) *string { return &s.Level },
}

var projectFields = map[string]func(*Project) *string{
	"title":       func(p *Project) *string { return &p.Title },
	"description": func(p *Project) *string { return &p.Description },
	"tech_stack":  func(p *Project) *string { return &p.TechStack },
	"live_link":   func(p *Project) *string { return &p.LiveLink },
	"repo_link":   func(p *Project) *string { return &p.RepoLink },
}

var certificationFields = map[string]func(*Certification) *string{
	"title":       func(c *Certification) *string { return &c.Title },
	"issuer":      func(c *Certification) *string { return &c.Issuer },
	"date":        func(c *Certification) *string { return &c.Date },
	"description": func(c *Certification) *string { return &c.Description },
}

var scalarFields = map[string]func(*Document) *string{
	"full_name":       func(d *Document) *string { return &d.FullName },
	"title":           func(d *Document) *string { return &d.Title },
	"short_bio":       func(d *Document) *string { return &d.ShortBio },
	"email":           func(d *Document) *string { return &d.Email },
	"phone":           func(d *Document) *string { return &d.Phone },
	"about_me":        func(d *Document) *string { return &d.AboutMe },
	"profile_image":   func(d *Document) *string { return &d.ProfileImage },
	"contact_message": func(d *Document) *string { return &d.ContactMessage },
}

var flagFields = map[string]func(*Document) *bool{
	"show_email":        func(d *Document) *bool { return &d.ShowEmail },
	"show_contact_form": func(d *Document) *bool { return &d.ShowContactForm },
}

func ParseSection(s string) (Section, error) {
	switch Section(s) {
	case SectionEducation, SectionSkills, SectionProjects, SectionCertifications:
		return Section(s), nil
	}
	return "", apperror.NewInvalidInput(fmt.Sprintf("unknown section %q", s), nil)
}

// IsScalarField reports whether name is a top-level field UpdateScalar accepts.
func IsScalarField(name string) bool {
	_, str := scalarFields[name]
	_, flag := flagFields[name]
	return str || flag
}

// Len returns the number of records in the section.
func (d *Document) Len(section Section) int {
	switch section {
	case SectionEducation:
		return len(d.Education)
	case SectionSkills:
		return len(d.Skills)
	case SectionProjects:
		return len(d.Projects)
	case SectionCertifications:
		return len(d.Certifications)
	}
	return 0
}

// AddItem appends a record built from template to the section. Fields not
// named in template are left empty; an empty template appends a blank record.
func (d *Document) AddItem(section Section, template map[string]string) error {
	switch section {
	case SectionEducation:
		var item Education
		if err := fill(&item, educationFields, template); err != nil {
			return err
		}
		d.Education = append(d.Education, item)
	case SectionSkills:
		var item Skill
		if err := fill(&item, skillFields, template); err != nil {
			return err
		}
		d.Skills = append(d.Skills, item)
	case SectionProjects:
		var item Project
		if err := fill(&item, projectFields, template); err != nil {
			return err
		}
		d.Projects = append(d.Projects, item)
	case SectionCertifications:
		var item Certification
		if err := fill(&item, certificationFields, template); err != nil {
			return err
		}
		d.Certifications = append(d.Certifications, item)
	default:
		return apperror.NewInvalidInput(fmt.Sprintf("unknown section %q", section), nil)
	}
	return nil
}

// RemoveItem deletes the record at index; later records shift down by one.
func (d *Document) RemoveItem(section Section, index int) error {
	if err := d.checkIndex(section, index); err != nil {
		return err
	}
	switch section {
	case SectionEducation:
		d.Education = remove(d.Education, index)
	case SectionSkills:
		d.Skills = remove(d.Skills, index)
	case SectionProjects:
		d.Projects = remove(d.Projects, index)
	case SectionCertifications:
		d.Certifications = remove(d.Certifications, index)
	}
	return nil
}

// UpdateItem replaces one field of the record at index.
func (d *Document) UpdateItem(section Section, index int, field, value string) error {
	if err := d.checkIndex(section, index); err != nil {
		return err
	}
	switch section {
	case SectionEducation:
		return set(&d.Education[index], educationFields, field, value)
	case SectionSkills:
		return set(&d.Skills[index], skillFields, field, value)
	case SectionProjects:
		return set(&d.Projects[index], projectFields, field, value)
	case SectionCertifications:
		return set(&d.Certifications[index], certificationFields, field, value)
	}
	return nil
}

// UpdateScalar replaces a top-level field. The two visibility flags take
// "true"/"false" (or "on" from a checkbox).
func (d *Document) UpdateScalar(field, value string) error {
	if get, ok := scalarFields[field]; ok {
		*get(d) = value
		return nil
	}
	if get, ok := flagFields[field]; ok {
		b, err := parseFlag(value)
		if err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("field %s expects a boolean", field), err)
		}
		*get(d) = b
		return nil
	}
	return apperror.NewInvalidInput(fmt.Sprintf("unknown field %q", field), nil)
}

func (d *Document) UpdateSocial(platform, value string) error {
	switch platform {
	case "linkedin":
		d.SocialLinks.LinkedIn = value
	case "github":
		d.SocialLinks.GitHub = value
	default:
		return apperror.NewInvalidInput(fmt.Sprintf("unknown social platform %q", platform), nil)
	}
	return nil
}

func (d *Document) UpdateLayout(field, value string) error {
	if field != "theme" {
		return apperror.NewInvalidInput(fmt.Sprintf("unknown layout field %q", field), nil)
	}
	t, ok := ParseTheme(value)
	if !ok {
		return apperror.NewInvalidInput(fmt.Sprintf("unknown theme %q", value), nil)
	}
	d.Layout.Theme = t
	return nil
}

func (d *Document) checkIndex(section Section, index int) error {
	if _, err := ParseSection(string(section)); err != nil {
		return err
	}
	if index < 0 || index >= d.Len(section) {
		return apperror.NewInvalidInput(fmt.Sprintf("%s has no item at index %d", section, index), nil)
	}
	return nil
}

func fill[T any](item *T, fields map[string]func(*T) *string, template map[string]string) error {
	for name, value := range template {
		if err := set(item, fields, name, value); err != nil {
			return err
		}
	}
	return nil
}

func set[T any](item *T, fields map[string]func(*T) *string, field, value string) error {
	get, ok := fields[field]
	if !ok {
		return apperror.NewInvalidInput(fmt.Sprintf("unknown field %q", field), nil)
	}
	*get(item) = value
	return nil
}

func remove[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func parseFlag(v string) (bool, error) {
	if v == "on" {
		return true, nil
	}
	if v == "" || v == "off" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
