package profilefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/thalcare/internal/models"
)

func boolp(b bool) *bool { return &b }
func floatp(f float64) *float64 { return &f }

func sample() []models.Profile {
	return []models.Profile{
		{ID: "1", UserType: models.RoleDonor, City: "Pune, West", State: "Maharashtra", BloodType: "O+", Available: boolp(true)},
		{ID: "2", UserType: models.RoleDonor, City: "Mumbai", State: "Maharashtra", BloodType: "A+", Available: boolp(false)},
		{ID: "3", UserType: models.RolePatient, City: "Pune", BloodType: "O+", SeverityLevel: "major"},
		{ID: "4", UserType: models.RoleHospital, Name: "City Care", City: "pune", ThalassemiaSpecialist: boolp(true), Rating: floatp(4.5)},
		{ID: "5", UserType: models.RoleHospital, Name: "General", City: "Delhi", ThalassemiaSpecialist: boolp(false), Rating: floatp(3.1)},
		{ID: "6", UserType: models.RoleDoctor, FirstName: "Asha", Available: boolp(true), ThalassemiaSpecialist: boolp(true)},
		{ID: "7", UserType: models.RoleDonor, BloodType: "O+"},
	}
}

func ids(ps []models.Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterCategoryOnly(t *testing.T) {
	got := Filter(sample(), models.CategoryDonors, models.Criteria{})
	assert.Equal(t, []string{"1", "2", "7"}, ids(got))

	for _, p := range Filter(sample(), models.CategoryHospitals, models.Criteria{}) {
		assert.Equal(t, models.RoleHospital, p.UserType)
	}
}

func TestFilterCitySubstringIgnoresCase(t *testing.T) {
	records := []models.Profile{
		{ID: "a", UserType: models.RoleDonor, City: "Pune, West"},
		{ID: "b", UserType: models.RoleDonor, City: "Mumbai"},
	}
	got := Filter(records, models.CategoryDonors, models.Criteria{City: "Pune"})
	assert.Equal(t, []string{"a"}, ids(got))

	got = Filter(records, models.CategoryDonors, models.Criteria{City: "pUNE"})
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestFilterMissingFieldFailsCriterion(t *testing.T) {
	got := Filter(sample(), models.CategoryDonors, models.Criteria{City: "a"})
	assert.NotContains(t, ids(got), "7")

	got = Filter(sample(), models.CategoryDonors, models.Criteria{Available: boolp(false)})
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFilterExactAndBooleanCriteria(t *testing.T) {
	tests := []struct {
		name     string
		category models.Category
		criteria models.Criteria
		want     []string
	}{
		{"blood type", models.CategoryDonors, models.Criteria{BloodType: "O+"}, []string{"1", "7"}},
		{"blood type is exact", models.CategoryDonors, models.Criteria{BloodType: "O"}, []string{}},
		{"available donors", models.CategoryDonors, models.Criteria{Available: boolp(true)}, []string{"1"}},
		{"specialist hospitals", models.CategoryHospitals, models.Criteria{ThalassemiaSpecialist: boolp(true)}, []string{"4"}},
		{"non specialist hospitals", models.CategoryHospitals, models.Criteria{ThalassemiaSpecialist: boolp(false)}, []string{"5"}},
		{"min rating", models.CategoryHospitals, models.Criteria{MinRating: floatp(4)}, []string{"4"}},
		{"severity", models.CategoryPatients, models.Criteria{SeverityLevel: "MAJOR"}, []string{"3"}},
		{"state", models.CategoryDonors, models.Criteria{State: "maha"}, []string{"1", "2"}},
		{"available doctors", models.CategoryDoctors, models.Criteria{Available: boolp(true), ThalassemiaSpecialist: boolp(true)}, []string{"6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), tt.category, tt.criteria)))
		})
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	c := models.Criteria{City: "pune", BloodType: "O+"}
	once := Filter(sample(), models.CategoryDonors, c)
	twice := Filter(once, models.CategoryDonors, c)
	assert.Equal(t, once, twice)
}

func TestFilterShrinksAsCriteriaAreAdded(t *testing.T) {
	steps := []models.Criteria{
		{},
		{State: "Maharashtra"},
		{State: "Maharashtra", BloodType: "O+"},
		{State: "Maharashtra", BloodType: "O+", City: "pune"},
		{State: "Maharashtra", BloodType: "O+", City: "pune", Available: boolp(false)},
	}
	prev := len(sample()) + 1
	for _, c := range steps {
		n := len(Filter(sample(), models.CategoryDonors, c))
		assert.LessOrEqual(t, n, prev)
		prev = n
	}
	assert.Zero(t, prev)
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	records := sample()
	before := ids(records)
	got := Filter(records, models.CategoryDonors, models.Criteria{BloodType: "O+"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "7", got[1].ID)
	assert.Equal(t, before, ids(records))
}

func TestCount(t *testing.T) {
	counts := Count(sample())
	assert.Equal(t, 3, counts[models.CategoryDonors])
	assert.Equal(t, 1, counts[models.CategoryPatients])
	assert.Equal(t, 2, counts[models.CategoryHospitals])
	assert.Equal(t, 1, counts[models.CategoryDoctors])
}
