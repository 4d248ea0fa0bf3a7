package membership

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aleksishere/wsb-GymManager/internal/api"
	"github.com/aleksishere/wsb-GymManager/internal/auth"
	"github.com/aleksishere/wsb-GymManager/internal/email"
	"github.com/aleksishere/wsb-GymManager/internal/logger"
	"github.com/aleksishere/wsb-GymManager/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service     Service
	userRepo    user.Repository
	emailSender email.Sender
}

func NewHandler(service Service, userRepo user.Repository, emailSender email.Sender) *Handler {
	return &Handler{
		service:     service,
		userRepo:    userRepo,
		emailSender: emailSender,
	}
}

// @Summary      Create a membership type
// @Description  Admin-only: add a type to the catalog
// @Tags         admin,memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.CreateMembershipTypeRequest true "Membership type payload"
// @Success      201 {object} membership.MembershipType
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/membership-types [post]
func (h *Handler) CreateType(c *gin.Context) {
	var req CreateMembershipTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	mt, err := h.service.CreateType(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidDuration):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to create membership type", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create membership type"})
		}
		return
	}

	c.JSON(http.StatusCreated, mt)
}

// @Summary      List membership types
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.MembershipType
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /memberships/types [get]
func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.service.ListTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch membership types"})
		return
	}

	c.JSON(http.StatusOK, types)
}

// @Summary      Purchase a membership
// @Description  Buys the given membership type for the authenticated member.
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        typeID path int true "Membership type ID"
// @Success      201 {object} membership.PurchaseResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /memberships/buy/{typeID} [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	typeID, err := strconv.Atoi(c.Param("typeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership type ID"})
		return
	}

	ctx := c.Request.Context()
	um, mt, err := h.service.Purchase(ctx, userID, typeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTypeNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership type not found"})
		default:
			logger.Error("Failed to purchase membership", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to purchase membership"})
		}
		return
	}

	logger.Info("Membership purchased", "user_id", userID, "type", mt.Name)

	if u, err := h.userRepo.FindByID(ctx, userID); err == nil {
		h.emailSender.SendMembershipConfirmation(ctx, u.Email, u.Name, mt.Name, um.ExpirationDate)
	}

	c.JSON(http.StatusCreated, PurchaseResponse{Membership: um, TypeName: mt.Name})
}

// @Summary      Grant a membership
// @Description  Staff-only: create a ledger row with explicit dates (back-dated or comped).
// @Tags         admin,memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.GrantMembershipRequest true "Grant payload"
// @Success      201 {object} membership.UserMembership
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /reception/memberships/grant [post]
func (h *Handler) Grant(c *gin.Context) {
	var req GrantMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	um, err := h.service.Grant(c.Request.Context(), req.UserID, req.TypeID, req.PurchaseDate, req.ExpirationDate)
	if err != nil {
		switch {
		case errors.Is(err, ErrTypeNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership type not found"})
		case errors.Is(err, ErrInvalidDateRange):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to grant membership", "user_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to grant membership"})
		}
		return
	}

	logger.Info("Membership granted", "user_id", req.UserID, "type_id", req.TypeID)
	c.JSON(http.StatusCreated, um)
}

// @Summary      List my memberships
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.UserMembership
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /memberships [get]
func (h *Handler) ListMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	memberships, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load memberships"})
		return
	}

	c.JSON(http.StatusOK, memberships)
}
