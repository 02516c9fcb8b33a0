// Package cv reads curriculum vitae documents.
package cv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

// Present is shown in place of a missing end date.
const Present = "heute"

type Person struct {
	Title         string `json:"title"`
	Image         string `json:"image,omitempty"`
	BirthdayPlace string `json:"birthday_place,omitempty"`
}

type Social struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Station is one entry of the education, experience or project lists.
// Organization holds the institution or the company.
type Station struct {
	Title        string   `json:"title"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date,omitempty"`
	Period       string   `json:"period"`
	Organization string   `json:"organization"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags,omitempty"`
}

// period renders a time span as "MM/YYYY – MM/YYYY", using Present for an
// open end.
func period(start, end string) string {
	to := Present
	if end != "" {
		to = monthYear(end)
	}
	return monthYear(start) + " – " + to
}

func monthYear(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("01/2006")
}

type CV struct {
	Person     Person    `json:"person"`
	Social     Social    `json:"social"`
	Engagement string    `json:"engagement,omitempty"`
	Skills     []string  `json:"skills"`
	Education  []Station `json:"education"`
	Experience []Station `json:"experience"`
	Projects   []Station `json:"projects"`
}

type rawStation struct {
	Title       string   `json:"title"`
	StartDate   string   `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Institution string   `json:"institution"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type rawCV struct {
	Person struct {
		Title         string  `json:"title"`
		Image         *string `json:"image"`
		BirthdayPlace *string `json:"birthday_place"`
	} `json:"person"`
	Social struct {
		GitHub   *string `json:"github"`
		LinkedIn *string `json:"linkedin"`
	} `json:"social"`
	Engagement *string      `json:"engagement"`
	Skills     []string     `json:"skills"`
	Education  []rawStation `json:"education"`
	Experience []rawStation `json:"experience"`
	Projects   []rawStation `json:"projects"`
}

// Load reads a YAML or TOML CV document.
func Load(path string) (*CV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cv: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates a CV document. Stations whose end date lies
// before their start date are rejected.
func Parse(path string, data []byte) (*CV, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing cv: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing cv: %w", err)
		}
	}

	var raw rawCV
	if err := schema.Decode(schema.CV(), path, doc, &raw); err != nil {
		return nil, err
	}

	c := &CV{
		Person: Person{
			Title:         raw.Person.Title,
			Image:         deref(raw.Person.Image),
			BirthdayPlace: deref(raw.Person.BirthdayPlace),
		},
		Social:     Social{GitHub: deref(raw.Social.GitHub), LinkedIn: deref(raw.Social.LinkedIn)},
		Engagement: deref(raw.Engagement),
		Skills:     raw.Skills,
	}
	for _, list := range []struct {
		field string
		raw   []rawStation
		dst   *[]Station
	}{
		{"education", raw.Education, &c.Education},
		{"experience", raw.Experience, &c.Experience},
		{"projects", raw.Projects, &c.Projects},
	} {
		for i, r := range list.raw {
			s, err := station(r)
			if err != nil {
				return nil, fmt.Errorf("%s: %s %d: %w", path, list.field, i+1, err)
			}
			*list.dst = append(*list.dst, s)
		}
	}
	return c, nil
}

func station(r rawStation) (Station, error) {
	s := Station{
		Title:        r.Title,
		StartDate:    r.StartDate,
		EndDate:      deref(r.EndDate),
		Organization: r.Institution,
		Location:     r.Location,
		Description:  r.Description,
		Tags:         r.Tags,
	}
	s.Period = period(s.StartDate, s.EndDate)
	if r.Company != "" {
		s.Organization = r.Company
	}
	if s.EndDate != "" && s.EndDate < s.StartDate {
		return Station{}, fmt.Errorf("end_date %s is before start_date %s", s.EndDate, s.StartDate)
	}
	return s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
