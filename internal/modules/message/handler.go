package message

import (
	"errors"
	"fmt"
	"net/http"

	"chatapi/internal/middleware"
	"chatapi/internal/pkg/request"
	"chatapi/internal/pkg/response"
	"chatapi/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// RegisterProtectedRoutes expects a group already guarded by JWTAuth.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	messages := protected.Group("/messages")
	{
		messages.GET("", h.List)
		messages.POST("", h.Create)
		messages.GET("/me", h.Mine)
		messages.GET("/stream", h.Stream)
		messages.GET("/:id", h.Get)
		messages.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	msgs, err := h.service.ListVisibleTo(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		internalError(c, err, "Failed to load messages")
		return
	}
	response.Success(c, http.StatusOK, "", newListResponse(msgs))
}

func (h *Handler) Mine(c *gin.Context) {
	msgs, err := h.service.ListAuthoredBy(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		internalError(c, err, "Failed to load messages")
		return
	}
	response.Success(c, http.StatusOK, "", newListResponse(msgs))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateMessageRequest
	if !request.BindJSON(c, &req) {
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Error(c, http.StatusBadRequest, errs.Error())
		return
	}

	msg, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req.Content, req.RecipientID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyContent):
			response.Error(c, http.StatusBadRequest, "Message content must not be empty")
		case errors.Is(err, ErrContentTooLong):
			response.Error(c, http.StatusBadRequest,
				fmt.Sprintf("Message content exceeds maximum length of %d characters", h.service.MaxLength()))
		case errors.Is(err, ErrRecipientNotFound):
			response.Error(c, http.StatusNotFound, fmt.Sprintf("Recipient with ID %s not found", *req.RecipientID))
		case errors.Is(err, ErrAuthorNotFound):
			response.Error(c, http.StatusUnauthorized, "User not found")
		default:
			internalError(c, err, "Failed to create message")
		}
		return
	}

	response.Success(c, http.StatusCreated, "Message created successfully", msg)
}

// Get renders a message that exists but is not visible exactly like a
// missing one.
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	msg, err := h.service.GetIfVisible(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) || errors.Is(err, ErrForbidden) {
			response.Error(c, http.StatusNotFound,
				fmt.Sprintf("Message with ID %s not found or you do not have permission to view it", id))
			return
		}
		internalError(c, err, "Failed to load message")
		return
	}
	response.Success(c, http.StatusOK, "", msg)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.service.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		if errors.Is(err, ErrMessageNotFound) || errors.Is(err, ErrForbidden) {
			response.Error(c, http.StatusNotFound,
				fmt.Sprintf("Message with ID %s not found or you do not have permission to delete it", id))
			return
		}
		internalError(c, err, "Failed to delete message")
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Message with ID %s deleted successfully", id), nil)
}

func internalError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, message)
}
