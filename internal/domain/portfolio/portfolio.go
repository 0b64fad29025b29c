package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	StartYear   string `json:"start_year"`
	EndYear     string `json:"end_year"`
	Description string `json:"description"`
}

type Skill struct {
	Skill string `json:"skill"`
	Level string `json:"level"`
}

type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TechStack   string `json:"tech_stack"`
	LiveLink    string `json:"live_link"`
	RepoLink    string `json:"repo_link"`
}

type Certification struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type SocialLinks struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

type Layout struct {
	Theme Theme `json:"theme"`
}

// Document is the whole portfolio of one user. It is always read and
// written as a single aggregate.
type Document struct {
	ID       ID     `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`

	FullName     string `json:"full_name"`
	Title        string `json:"title"`
	ShortBio     string `json:"short_bio"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AboutMe      string `json:"about_me"`
	ProfileImage string `json:"profile_image"`

	SocialLinks SocialLinks `json:"social_links"`

	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Experience     []Experience    `json:"experience,omitempty"`

	ShowEmail       bool   `json:"show_email"`
	ShowContactForm bool   `json:"show_contact_form"`
	ContactMessage  string `json:"contact_message"`

	Layout Layout `json:"layout"`
}

// Default is what the editor starts from when the user has no portfolio yet.
func Default() *Document {
	return &Document{
		Education:       []Education{},
		Skills:          []Skill{},
		Projects:        []Project{},
		Certifications:  []Certification{},
		ShowEmail:       true,
		ShowContactForm: true,
		Layout:          Layout{Theme: DefaultTheme},
	}
}

// Normalize replaces nil sections with empty ones so a document fetched
// from the backend behaves like one built locally.
func (d *Document) Normalize() {
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
}

// Exists reports whether the backend actually returned a portfolio. An empty
// JSON body decodes into a zero Document.
func (d *Document) Exists() bool {
	return d != nil && (!d.ID.IsZero() || d.Username != "" || d.FullName != "" || d.Title != "")
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := *d
	c.Education = append([]Education(nil), d.Education...)
	c.Skills = append([]Skill(nil), d.Skills...)
	c.Projects = append([]Project(nil), d.Projects...)
	c.Certifications = append([]Certification(nil), d.Certifications...)
	if d.Experience != nil {
		c.Experience = append([]Experience(nil), d.Experience...)
	}
	c.Normalize()
	return &c
}

// ID is the backend identifier of a portfolio. The backend sends it either
// as a bare string or wrapped as {"$oid": "..."}; both decode to the same value.
type ID string

func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	case '{':
		var wrapped struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		*id = ID(wrapped.OID)
		return nil
	default:
		// numeric primary keys
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported portfolio id encoding %s", string(data))
		}
		*id = ID(n.String())
		return nil
	}
}

// Gateway is the backend surface the portfolio use cases depend on.
type Gateway interface {
	GetUserPortfolio(ctx context.Context) (*Document, error)
	SavePortfolio(ctx context.Context, doc *Document) (*Document, error)
	DeletePortfolio(ctx context.Context, id ID) error
	GetPublicPortfolio(ctx context.Context, username string) (*Document, error)
}
