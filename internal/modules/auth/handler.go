package auth

import (
	"errors"
	"net/http"

	"chatapi/internal/middleware"
	"chatapi/internal/pkg/request"
	"chatapi/internal/pkg/response"
	"chatapi/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const tokenTypeBearer = "Bearer"

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service         *Service
	registerEnabled bool
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service, registerEnabled bool) *Handler {
	return &Handler{
		service:         service,
		registerEnabled: registerEnabled,
	}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/token-info", h.TokenInfo)
}

func (h *Handler) Register(c *gin.Context) {
	if !h.registerEnabled {
		response.Error(c, http.StatusForbidden, "User registration is disabled")
		return
	}

	var req RegisterRequest
	if !request.BindJSON(c, &req) {
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Error(c, http.StatusBadRequest, errs.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			response.Error(c, http.StatusConflict, "Username already exists")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, "User registered successfully", NewUserPublic(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !request.BindJSON(c, &req) {
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Error(c, http.StatusBadRequest, "Missing required fields: username, password")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	response.Success(c, http.StatusOK, "Login successful", LoginResponse{
		User:         NewUserPublic(result.User),
		AccessToken:  result.Access.Token,
		RefreshToken: result.RefreshToken.ID,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(h.service.AccessTTL().Seconds()),
		RefreshAt:    result.Access.Claims.RefreshAt,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	req, ok := bindRefreshToken(c)
	if !ok {
		return
	}

	access, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.Error(c, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed successfully", RefreshResponse{
		AccessToken: access.Token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(h.service.AccessTTL().Seconds()),
		RefreshAt:   access.Claims.RefreshAt,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	req, ok := bindRefreshToken(c)
	if !ok {
		return
	}

	existed, err := h.service.RevokeRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to log out")
		return
	}
	if !existed {
		response.Error(c, http.StatusBadRequest, "Invalid refresh token")
		return
	}

	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// TokenInfo describes the access token the request was authenticated with.
func (h *Handler) TokenInfo(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication token is missing")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusUnauthorized, "User not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	response.Success(c, http.StatusOK, "", TokenInfoResponse{
		User: NewUserPublic(user),
		TokenInfo: TokenInfo{
			Type:      claims.TokenType,
			IssuedAt:  claims.IssuedAt.Unix(),
			ExpiresAt: claims.ExpiresAt.Unix(),
			RefreshAt: claims.RefreshAt,
		},
	})
}

func bindRefreshToken(c *gin.Context) (RefreshTokenRequest, bool) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || validator.Validate(req) != nil {
		response.Error(c, http.StatusBadRequest, "Refresh token is required")
		return req, false
	}
	return req, true
}
