package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/api/middleware"
	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/services"
	"github.com/certchain/backend/internal/store"
)

// AdminHandler exposes the super-admin institution lifecycle endpoints and
// platform statistics.
type AdminHandler struct {
	institutions *services.InstitutionService
	logger       *zap.Logger
}

func NewAdminHandler(institutions *services.InstitutionService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		institutions: institutions,
		logger:       logger.With(zap.String("handler", "admin")),
	}
}

func (ah *AdminHandler) ListInstitutions(c *gin.Context) {
	filter := store.InstitutionFilter{
		Status: models.InstitutionStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	institutions, err := ah.institutions.List(c.Request.Context(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"institutions": institutions, "count": len(institutions)})
}

func (ah *AdminHandler) GetInstitution(c *gin.Context) {
	institution, err := ah.institutions.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, institution)
}

type lifecycleRequest struct {
	Notes string `json:"notes"`
}

type transitionFunc func(c *gin.Context, id, notes string) (*models.Institution, error)

func (ah *AdminHandler) lifecycle(c *gin.Context, apply transitionFunc) {
	var req lifecycleRequest
	// Notes are optional on every lifecycle action.
	_ = c.ShouldBindJSON(&req)

	institution, err := apply(c, c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, institution)
}

func (ah *AdminHandler) Approve(c *gin.Context) {
	ah.lifecycle(c, func(c *gin.Context, id, notes string) (*models.Institution, error) {
		return ah.institutions.Approve(c.Request.Context(), middleware.CurrentIdentity(c), id, notes)
	})
}

func (ah *AdminHandler) Reject(c *gin.Context) {
	ah.lifecycle(c, func(c *gin.Context, id, notes string) (*models.Institution, error) {
		return ah.institutions.Reject(c.Request.Context(), middleware.CurrentIdentity(c), id, notes)
	})
}

func (ah *AdminHandler) Suspend(c *gin.Context) {
	ah.lifecycle(c, func(c *gin.Context, id, notes string) (*models.Institution, error) {
		return ah.institutions.Suspend(c.Request.Context(), middleware.CurrentIdentity(c), id, notes)
	})
}

func (ah *AdminHandler) Reactivate(c *gin.Context) {
	ah.lifecycle(c, func(c *gin.Context, id, notes string) (*models.Institution, error) {
		return ah.institutions.Reactivate(c.Request.Context(), middleware.CurrentIdentity(c), id, notes)
	})
}

func (ah *AdminHandler) Deactivate(c *gin.Context) {
	ah.lifecycle(c, func(c *gin.Context, id, notes string) (*models.Institution, error) {
		return ah.institutions.Deactivate(c.Request.Context(), middleware.CurrentIdentity(c), id, notes)
	})
}

func (ah *AdminHandler) Stats(c *gin.Context) {
	stats, err := ah.institutions.Stats(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
