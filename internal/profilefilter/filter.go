// Package profilefilter narrows an in-memory profile list to the records a
// dashboard tab should show.
package profilefilter

import (
	"strings"

	"github.com/harentsoaR/thalcare/internal/models"
)

// Filter keeps the records of category's role that satisfy every present
// criterion, in input order. records is never modified.
func Filter(records []models.Profile, category models.Category, c models.Criteria) []models.Profile {
	role := category.Role()
	out := make([]models.Profile, 0, len(records))
	for _, p := range records {
		if p.UserType == role && Match(p, c) {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether p satisfies every present criterion. A record
// without the compared field fails a non-empty criterion on that field.
func Match(p models.Profile, c models.Criteria) bool {
	if c.City != "" && !containsFold(p.City, c.City) {
		return false
	}
	if c.State != "" && !containsFold(p.State, c.State) {
		return false
	}
	if c.BloodType != "" && p.BloodType != c.BloodType {
		return false
	}
	if c.SeverityLevel != "" && !strings.EqualFold(p.SeverityLevel, c.SeverityLevel) {
		return false
	}
	if !boolMatch(p.ThalassemiaSpecialist, c.ThalassemiaSpecialist) {
		return false
	}
	if !boolMatch(p.Available, c.Available) {
		return false
	}
	if c.MinRating != nil && (p.Rating == nil || *p.Rating < *c.MinRating) {
		return false
	}
	return true
}

// Count returns how many records each tab would list before criteria.
func Count(records []models.Profile) map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, p := range records {
		if cat := models.CategoryFor(p.UserType); cat != "" {
			counts[cat]++
		}
	}
	return counts
}

func containsFold(have, want string) bool {
	if have == "" {
		return false
	}
	return strings.Contains(strings.ToLower(have), strings.ToLower(want))
}

func boolMatch(have, want *bool) bool {
	if want == nil {
		return true
	}
	return have != nil && *have == *want
}
