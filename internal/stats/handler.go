package stats

import (
	"net/http"
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/api"
	"github.com/aleksishere/wsb-GymManager/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DashboardResponse struct {
	MonthlyRevenue    decimal.Decimal  `json:"monthly_revenue"`
	HistoricalRevenue []MonthlyRevenue `json:"historical_revenue"`
	PopularClasses    []PopularClass   `json:"popular_classes"`
	ActiveMembers     []ActiveMember   `json:"active_members"`
}

type Handler struct {
	repo  Repository
	nowFn func() time.Time
}

func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo:  repo,
		nowFn: time.Now,
	}
}

// @Summary      Admin dashboard
// @Description  Admin-only: revenue, popular classes and active members.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} stats.DashboardResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.nowFn()

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	monthly, err := h.repo.RevenueBetween(ctx, monthStart, nextMonth)
	if err != nil {
		logger.Error("Failed to compute monthly revenue", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to build dashboard"})
		return
	}

	historical, err := h.repo.RevenueByMonth(ctx, 12)
	if err != nil {
		logger.Error("Failed to compute historical revenue", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to build dashboard"})
		return
	}

	popular, err := h.repo.PopularClasses(ctx, 5)
	if err != nil {
		logger.Error("Failed to compute popular classes", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to build dashboard"})
		return
	}

	y, m, d := now.Date()
	members, err := h.repo.ActiveMembers(ctx, time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
	if err != nil {
		logger.Error("Failed to list active members", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to build dashboard"})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		MonthlyRevenue:    monthly,
		HistoricalRevenue: historical,
		PopularClasses:    popular,
		ActiveMembers:     members,
	})
}
