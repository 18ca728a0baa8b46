package models

import (
	"net/url"
	"strconv"
	"strings"
)

// Criteria narrows a profile list. A zero field imposes no constraint.
type Criteria struct {
	City                  string   `json:"city,omitempty"`
	State                 string   `json:"state,omitempty"`
	BloodType             string   `json:"blood_type,omitempty"`
	ThalassemiaSpecialist *bool    `json:"thalassemia_specialist,omitempty"`
	Available             *bool    `json:"available,omitempty"`
	SeverityLevel         string   `json:"severity_level,omitempty"`
	MinRating             *float64 `json:"min_rating,omitempty"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Criteria
	UserType Role `json:"user_type,omitempty"`
	Limit    int  `json:"limit,omitempty"`
	Offset   int  `json:"offset,omitempty"`
}

// ParseCriteria reads criteria from query or form values. Empty and
// malformed values are ignored.
func ParseCriteria(v url.Values) Criteria {
	c := Criteria{
		City:          strings.TrimSpace(v.Get("city")),
		State:         strings.TrimSpace(v.Get("state")),
		BloodType:     strings.ToUpper(strings.TrimSpace(v.Get("blood_type"))),
		SeverityLevel: strings.TrimSpace(v.Get("severity_level")),
	}
	c.ThalassemiaSpecialist = optBool(v.Get("thalassemia_specialist"))
	c.Available = optBool(v.Get("available"))
	if s := strings.TrimSpace(v.Get("min_rating")); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			c.MinRating = &f
		}
	}
	return c
}

func optBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		b := true
		return &b
	case "false", "0", "no":
		b := false
		return &b
	}
	return nil
}

// Values encodes c back into query values, skipping absent criteria.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("city", c.City)
	set("state", c.State)
	set("blood_type", c.BloodType)
	set("severity_level", c.SeverityLevel)
	if c.ThalassemiaSpecialist != nil {
		v.Set("thalassemia_specialist", strconv.FormatBool(*c.ThalassemiaSpecialist))
	}
	if c.Available != nil {
		v.Set("available", strconv.FormatBool(*c.Available))
	}
	if c.MinRating != nil {
		v.Set("min_rating", strconv.FormatFloat(*c.MinRating, 'f', -1, 64))
	}
	return v
}

// IsEmpty reports whether c constrains nothing.
func (c Criteria) IsEmpty() bool {
	return len(c.Values()) == 0
}
