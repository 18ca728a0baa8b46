package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/store"
	"github.com/harentsoaR/thalcare/internal/utils"
)

// Defaults of GET /hospitals/nearby.
const (
	defaultRadiusKm     = 50.0
	defaultNearbyLimit  = 10
	maxNearbyCandidates = store.MaxLimit
)

// ListProfiles serves GET /profiles (e.g. /profiles?user_type=donor&city=Pune&limit=20).
func (h *Handler) ListProfiles(c *gin.Context) {
	q := store.Query{Criteria: models.ParseCriteria(c.Request.URL.Query())}

	if s := c.Query("user_type"); s != "" {
		role, err := models.ParseRole(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		q.Role = role
	}
	var err error
	if q.Limit, err = intQuery(c, "limit"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be an integer"})
		return
	}
	if q.Offset, err = intQuery(c, "offset"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "offset must be an integer"})
		return
	}

	h.respondProfiles(c, q)
}

// Search runs criteria sent as JSON, with the same semantics as the
// dashboard's in-memory filter.
func (h *Handler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	if req.UserType != "" && !req.UserType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown user type " + strconv.Quote(string(req.UserType))})
		return
	}
	h.respondProfiles(c, store.Query{
		Role:     req.UserType,
		Criteria: req.Criteria,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
}

func (h *Handler) respondProfiles(c *gin.Context, q store.Query) {
	profiles, err := h.Store.ListProfiles(c.Request.Context(), q)
	if err != nil {
		h.Log.Error("list profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve profiles"})
		return
	}
	c.JSON(http.StatusOK, models.ProfileList{Profiles: profiles, Count: len(profiles)})
}

// GetProfile returns a profile with its role-specific data.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.Store.Profile(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	if err != nil {
		h.Log.Error("load profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve profile"})
		return
	}
	c.JSON(http.StatusOK, profile.Detail())
}

// NearbyHospital is a hospital with its distance from the searched point.
type NearbyHospital struct {
	models.Profile
	DistanceKm float64 `json:"distance_km"`
}

// NearbyHospitals serves GET /hospitals/nearby?lat=18.52&lng=73.85&radius_km=25,
// closest first.
func (h *Handler) NearbyHospitals(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "lat and lng must be valid coordinates"})
		return
	}
	radius := defaultRadiusKm
	if s := c.Query("radius_km"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil || r <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "radius_km must be a positive number"})
			return
		}
		radius = r
	}
	limit, err := intQuery(c, "limit")
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer"})
		return
	}
	if limit == 0 {
		limit = defaultNearbyLimit
	}

	hospitals, err := h.Store.ListProfiles(c.Request.Context(), store.Query{
		Role:     models.RoleHospital,
		Criteria: models.ParseCriteria(c.Request.URL.Query()),
		Limit:    maxNearbyCandidates,
	})
	if err != nil {
		h.Log.Error("list hospitals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve hospitals"})
		return
	}

	nearby := make([]NearbyHospital, 0)
	for _, p := range hospitals {
		if p.Location == nil {
			continue
		}
		d := utils.HaversineKm(lat, lng, p.Location.Lat, p.Location.Lng)
		if d <= radius {
			nearby = append(nearby, NearbyHospital{Profile: p, DistanceKm: d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"hospitals": nearby, "count": len(nearby)})
}

// intQuery reads an optional integer query parameter; absent means 0.
func intQuery(c *gin.Context, key string) (int, error) {
	s := c.Query(key)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
