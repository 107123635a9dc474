package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/pkg/response"
)

// TokenRequest is the form body for POST /token.
type TokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// TokenResponse follows the OAuth2 token response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	account *ServiceAccount
	jwt     *JWTService
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(account *ServiceAccount, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{account: account, jwt: jwt, logger: logger}
}

// Token handles POST /token (password grant).
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}
	if err := h.account.Verify(req.Username, req.Password); err != nil {
		h.logger.Warn("token request rejected", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		response.Unauthorized(c, "invalid credentials")
		return
	}
	token, err := h.jwt.Generate(req.Username, RoleService)
	if err != nil {
		h.logger.Error("sign token", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.jwt.TTL().Seconds()),
	})
}
