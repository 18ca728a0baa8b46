package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/store"
)

// Defaults of the resource matching endpoints.
const (
	defaultResourceLimit = 10
	defaultServiceLimit  = 50
)

// ResourcesForPatient serves GET /resources/for-patient?user_id=...: available
// donors of the patient's blood type in the patient's city, and thalassemia
// specialist hospitals there. blood_type and city override the profile.
func (h *Handler) ResourcesForPatient(c *gin.Context) {
	id := strings.TrimSpace(c.Query("user_id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id is required"})
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer"})
		return
	}
	if limit == 0 {
		limit = defaultResourceLimit
	}

	ctx := c.Request.Context()
	patient, err := h.Store.Profile(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && patient.UserType != models.RolePatient) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Patient not found"})
		return
	}
	if err != nil {
		h.Log.Error("load patient", zap.String("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve patient"})
		return
	}

	res := models.PatientResources{
		BloodType: strings.ToUpper(strings.TrimSpace(c.Query("blood_type"))),
		City:      strings.TrimSpace(c.Query("city")),
	}
	if res.BloodType == "" {
		res.BloodType = patient.BloodType
	}
	if res.City == "" {
		res.City = patient.City
	}

	yes := true
	donors, err := h.Store.ListProfiles(ctx, store.Query{
		Role:     models.RoleDonor,
		Criteria: models.Criteria{BloodType: res.BloodType, City: res.City, Available: &yes},
		Limit:    limit,
	})
	if err != nil {
		h.Log.Error("match donors", zap.String("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to match donors"})
		return
	}
	hospitals, err := h.Store.ListProfiles(ctx, store.Query{
		Role:     models.RoleHospital,
		Criteria: models.Criteria{City: res.City, ThalassemiaSpecialist: &yes},
		Limit:    limit,
	})
	if err != nil {
		h.Log.Error("match hospitals", zap.String("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to match hospitals"})
		return
	}

	res.MatchedDonors = details(donors)
	res.SpecialistHospitals = details(hospitals)
	c.JSON(http.StatusOK, res)
}

// HospitalsByServices serves GET /hospitals/by-services?services=Transfusion,Chelation:
// hospitals offering any of the listed services, optionally in one city.
func (h *Handler) HospitalsByServices(c *gin.Context) {
	var wanted []string
	for _, s := range strings.Split(c.Query("services"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			wanted = append(wanted, s)
		}
	}
	if len(wanted) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "services is required"})
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer"})
		return
	}
	if limit == 0 {
		limit = defaultServiceLimit
	}

	candidates, err := h.Store.ListProfiles(c.Request.Context(), store.Query{
		Role:     models.RoleHospital,
		Criteria: models.Criteria{City: strings.TrimSpace(c.Query("city"))},
		Limit:    store.MaxLimit,
	})
	if err != nil {
		h.Log.Error("list hospitals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve hospitals"})
		return
	}

	out := models.ServiceHospitals{Hospitals: make([]models.ProfileDetail, 0)}
	for _, p := range candidates {
		if len(out.Hospitals) == limit {
			break
		}
		if offersAny(stringList(p.Specific["services"]), wanted) {
			out.Hospitals = append(out.Hospitals, p.Detail())
		}
	}
	out.Count = len(out.Hospitals)
	c.JSON(http.StatusOK, out)
}

func details(profiles []models.Profile) []models.ProfileDetail {
	out := make([]models.ProfileDetail, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Detail())
	}
	return out
}

func offersAny(offered, wanted []string) bool {
	for _, o := range offered {
		for _, w := range wanted {
			if strings.EqualFold(strings.TrimSpace(o), w) {
				return true
			}
		}
	}
	return false
}

// stringList reads a list stored in SpecificData; documents decoded from
// Mongo carry primitive.A rather than []string.
func stringList(v any) []string {
	var items []any
	switch l := v.(type) {
	case []string:
		return l
	case primitive.A:
		items = l
	case []any:
		items = l
	default:
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprint(it))
	}
	return out
}
