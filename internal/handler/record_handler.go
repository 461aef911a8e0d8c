package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perum-adp-api/internal/dto"
	"github.com/noah-isme/perum-adp-api/internal/models"
	appErrors "github.com/noah-isme/perum-adp-api/pkg/errors"
	"github.com/noah-isme/perum-adp-api/pkg/response"
)

type lifecycleManager interface {
	ListActive(ctx context.Context, kind models.RecordKind, criteria models.FilterCriteria) ([]dto.RecordView, error)
	ListArchived(ctx context.Context, kind models.RecordKind, criteria models.FilterCriteria) ([]dto.RecordView, error)
	Archive(ctx context.Context, kind models.RecordKind, id string, actor *models.JWTClaims) (*models.TransitionResult, error)
	Restore(ctx context.Context, kind models.RecordKind, archiveID string, actor *models.JWTClaims) (*models.TransitionResult, error)
	RecentActivity(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// RecordHandler exposes the lifecycle views and transitions over HTTP.
type RecordHandler struct {
	service lifecycleManager
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(service lifecycleManager) *RecordHandler {
	return &RecordHandler{service: service}
}

// ListActive godoc
// @Summary List active records of one kind
// @Tags Records
// @Produce json
// @Param kind path string true "Record kind"
// @Param date query string false "Calendar day filter (YYYY-MM-DD)"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /records/{kind} [get]
func (h *RecordHandler) ListActive(c *gin.Context) {
	h.list(c, func(ctx context.Context, kind models.RecordKind, criteria models.FilterCriteria) ([]dto.RecordView, error) {
		return h.service.ListActive(ctx, kind, criteria)
	})
}

// ListArchived godoc
// @Summary List archived records of one kind
// @Tags Records
// @Produce json
// @Param kind path string true "Record kind"
// @Param date query string false "Calendar day filter (YYYY-MM-DD)"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /records/{kind}/archived [get]
func (h *RecordHandler) ListArchived(c *gin.Context) {
	h.list(c, func(ctx context.Context, kind models.RecordKind, criteria models.FilterCriteria) ([]dto.RecordView, error) {
		return h.service.ListArchived(ctx, kind, criteria)
	})
}

// Archive godoc
// @Summary Move an active record into the archive
// @Tags Records
// @Produce json
// @Param kind path string true "Record kind"
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{kind}/{id}/archive [post]
func (h *RecordHandler) Archive(c *gin.Context) {
	h.transition(c, func(ctx context.Context, kind models.RecordKind, id string, actor *models.JWTClaims) (*models.TransitionResult, error) {
		return h.service.Archive(ctx, kind, id, actor)
	})
}

// Restore godoc
// @Summary Move an archived record back to the active view
// @Tags Records
// @Produce json
// @Param kind path string true "Record kind"
// @Param id path string true "Archived record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{kind}/archived/{id}/restore [post]
func (h *RecordHandler) Restore(c *gin.Context) {
	h.transition(c, func(ctx context.Context, kind models.RecordKind, id string, actor *models.JWTClaims) (*models.TransitionResult, error) {
		return h.service.Restore(ctx, kind, id, actor)
	})
}

// Activity godoc
// @Summary Recent lifecycle activity across all kinds
// @Tags Records
// @Produce json
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {object} response.Envelope
// @Router /records/activity [get]
func (h *RecordHandler) Activity(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.service.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}

type listFunc func(context.Context, models.RecordKind, models.FilterCriteria) ([]dto.RecordView, error)

func (h *RecordHandler) list(c *gin.Context, lister listFunc) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	criteria, err := models.ParseFilterCriteria(c.Query("date"), c.Query("q"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	views, err := lister(c.Request.Context(), models.RecordKind(c.Param("kind")), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, map[string]interface{}{"count": len(views)})
}

type transitionFunc func(context.Context, models.RecordKind, string, *models.JWTClaims) (*models.TransitionResult, error)

// transition runs one lifecycle move. Partial completions are still HTTP 200:
// the primary write succeeded and the payload carries the warning.
func (h *RecordHandler) transition(c *gin.Context, mover transitionFunc) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "record service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := mover(c.Request.Context(), models.RecordKind(c.Param("kind")), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewTransitionResponse(*result), nil)
}
