package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iai-group/arxivdigest-go/internal/platform/auth"
	httpPlatform "github.com/iai-group/arxivdigest-go/internal/platform/http"
	"github.com/iai-group/arxivdigest-go/modules/operator/model"
	"github.com/iai-group/arxivdigest-go/modules/operator/service"
)

// AuthHandler handles operator authentication HTTP requests.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new operator auth handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterResponse represents the registration response.
type RegisterResponse struct {
	Operator *model.OperatorDTO `json:"operator"`
	Tokens   *model.AuthTokens  `json:"tokens"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Operator *model.OperatorDTO `json:"operator"`
	Tokens   *model.AuthTokens  `json:"tokens"`
}

// Register godoc
// @Summary Register a new operator
// @Description Create a new operator account for the internal console
// @Tags operator
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration request"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 409 {object} httpPlatform.ErrorResponse "Operator already exists"
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /operator/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(model.CodeValidationError), "Invalid request payload")
		return
	}

	operator, tokens, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		errorCode := model.GetErrorCode(err)
		errorMessage := model.GetErrorMessage(err)

		statusCode := http.StatusInternalServerError
		if errorCode == model.CodeOperatorAlreadyExists {
			statusCode = http.StatusConflict
		} else if errorCode == model.CodeInvalidEmail || errorCode == model.CodeInvalidPassword {
			statusCode = http.StatusBadRequest
		}

		httpPlatform.RespondWithError(c, statusCode, string(errorCode), errorMessage)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, RegisterResponse{
		Operator: operator,
		Tokens:   tokens,
	})
}

// Login godoc
// @Summary Operator login
// @Description Authenticate an operator and receive JWT tokens
// @Tags operator
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 401 {object} httpPlatform.ErrorResponse "Invalid credentials"
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /operator/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(model.CodeValidationError), "Invalid request payload")
		return
	}

	operator, tokens, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		errorCode := model.GetErrorCode(err)
		errorMessage := model.GetErrorMessage(err)

		statusCode := http.StatusUnauthorized
		if errorCode != model.CodeInvalidCredentials {
			statusCode = http.StatusInternalServerError
		}

		httpPlatform.RespondWithError(c, statusCode, string(errorCode), errorMessage)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, LoginResponse{
		Operator: operator,
		Tokens:   tokens,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Get a new access token using a refresh token
// @Tags operator
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.AuthTokens
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 401 {object} httpPlatform.ErrorResponse "Invalid or expired refresh token"
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /operator/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(model.CodeValidationError), "Invalid request payload")
		return
	}

	tokens, err := h.authService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, string(model.CodeUnauthorized), "Invalid or expired refresh token")
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, tokens)
}

// Logout godoc
// @Summary Operator logout
// @Description Revoke all refresh tokens for the authenticated operator
// @Tags operator
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} httpPlatform.ErrorResponse "Unauthorized"
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /operator/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	operatorID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, string(model.CodeUnauthorized), "Unauthorized")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), operatorID); err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(model.CodeInternalError), "Failed to logout")
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// RegisterRoutes registers operator auth routes.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	operatorAuth := router.Group("/operator/auth")
	{
		operatorAuth.POST("/register", h.Register)
		operatorAuth.POST("/login", h.Login)
		operatorAuth.POST("/refresh", h.Refresh)
		operatorAuth.POST("/logout", h.Logout)
	}
}
