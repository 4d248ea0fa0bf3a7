package class

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

// @Summary      Class schedule
// @Description  Upcoming class sessions with availability and the caller's enrollment flag.
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} class.SessionWithAvailability
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes [get]
func (h *Handler) Schedule(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	sessions, err := h.service.ListUpcoming(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to load class schedule", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load class schedule"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      Create a class session
// @Description  Staff-only: schedule a class; past dates are rejected.
// @Tags         classes,admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body class.CreateClassRequest true "Class payload"
// @Success      201 {object} class.ClassSession
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidClassDate), errors.Is(err, ErrClassInPast):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to create class session", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create class session"})
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}

// @Summary      Delete a class session
// @Description  Staff-only: removes the session and its enrollments.
// @Tags         classes,admin
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class session ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes/{classID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	if err := h.service.DeleteSession(c.Request.Context(), classID); err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class session not found"})
		default:
			logger.Error("Failed to delete class session", "class_id", classID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete class session"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Class session deleted"})
}

// @Summary      Sign up for a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class session ID"
// @Success      201 {object} class.SignupResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes/{classID}/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	ctx := c.Request.Context()
	enrollment, session, err := h.service.Signup(ctx, userID, classID)
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class session not found"})
		case errors.Is(err, ErrClassFull):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Class session is full"})
		case errors.Is(err, ErrAlreadyEnrolled):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Already enrolled in this class"})
		case errors.Is(err, ErrNoActiveMembership):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "User has no active membership"})
		default:
			logger.Error("Failed to sign up for class", "user_id", userID, "class_id", classID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to sign up for class"})
		}
		return
	}

	if u, err := h.userRepo.FindByID(ctx, userID); err == nil {
		h.emailSender.SendEnrollmentConfirmation(ctx, u.Email, u.Name, session.Name, session.Date)
	}

	c.JSON(http.StatusCreated, SignupResponse{Enrollment: enrollment, ClassName: session.Name})
}

// @Summary      Cancel a class enrollment
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class session ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes/{classID}/signup [delete]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, classID); err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class session not found"})
		case errors.Is(err, ErrTooLateToCancel):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Cannot cancel a class that already took place"})
		case errors.Is(err, ErrNotEnrolled):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Not enrolled in this class"})
		default:
			logger.Error("Failed to cancel enrollment", "user_id", userID, "class_id", classID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel enrollment"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Enrollment cancelled"})
}
