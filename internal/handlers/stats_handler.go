package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/models"
)

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Store.CountByRole(c.Request.Context(), models.Criteria{})
	if err != nil {
		h.Log.Error("count profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetDetailedStats adds availability and specialist counts to the totals,
// plus per-role counts for a location when city or state is given.
func (h *Handler) GetDetailedStats(c *gin.Context) {
	ctx := c.Request.Context()
	yes := true

	var out models.DetailedStats
	var err error
	fail := func() {
		h.Log.Error("count profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve stats"})
	}

	if out.Stats, err = h.Store.CountByRole(ctx, models.Criteria{}); err != nil {
		fail()
		return
	}
	available, err := h.Store.CountByRole(ctx, models.Criteria{Available: &yes})
	if err != nil {
		fail()
		return
	}
	out.AvailableDonors = available.DonorCount
	specialist, err := h.Store.CountByRole(ctx, models.Criteria{ThalassemiaSpecialist: &yes})
	if err != nil {
		fail()
		return
	}
	out.SpecialistHospitals = specialist.HospitalCount

	city, state := strings.TrimSpace(c.Query("city")), strings.TrimSpace(c.Query("state"))
	if city != "" || state != "" {
		local, err := h.Store.CountByRole(ctx, models.Criteria{City: city, State: state})
		if err != nil {
			h.Log.Error("count profiles by location", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve stats"})
			return
		}
		out.FilteredByLocation = &local
		out.LocationFilter = map[string]string{}
		if city != "" {
			out.LocationFilter["city"] = city
		}
		if state != "" {
			out.LocationFilter["state"] = state
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
