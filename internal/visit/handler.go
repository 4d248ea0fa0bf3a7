package visit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aleksishere/wsb-GymManager/internal/api"
	"github.com/aleksishere/wsb-GymManager/internal/auth"
	"github.com/aleksishere/wsb-GymManager/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Reception panel
// @Description  Staff-only: every member with in-gym status, membership and weekly quota.
// @Tags         reception
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} visit.PanelEntry
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /reception [get]
func (h *Handler) Panel(c *gin.Context) {
	entries, err := h.service.ReceptionPanel(c.Request.Context())
	if err != nil {
		logger.Error("Failed to build reception panel", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load reception panel"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary      Toggle a member's visit
// @Description  Staff-only: checks the member out if inside, otherwise checks them in.
// @Tags         reception
// @Produce      json
// @Security     BearerAuth
// @Param        userID path int true "Member user ID"
// @Success      200 {object} visit.ToggleResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /reception/toggle/{userID} [post]
func (h *Handler) Toggle(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveMembership):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "User has no active membership"})
		case errors.Is(err, ErrWeeklyLimitExceeded):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "Weekly entry limit exceeded"})
		case errors.Is(err, ErrAlreadyOpen):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Visit already open"})
		default:
			logger.Error("Failed to toggle visit", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to toggle visit"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Force-close stale visits
// @Description  Staff-only: closes every open visit older than 24 hours.
// @Tags         reception
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /reception/sweep [post]
func (h *Handler) Sweep(c *gin.Context) {
	closed, err := h.service.SweepStale(c.Request.Context())
	if err != nil {
		logger.Error("Failed to sweep stale visits", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to sweep stale visits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"closed": closed})
}

// @Summary      List my recent visits
// @Tags         visits
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} visit.Visit
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /visits [get]
func (h *Handler) ListMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	visits, err := h.service.RecentVisits(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load visits"})
		return
	}

	c.JSON(http.StatusOK, visits)
}
