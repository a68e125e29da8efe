package v1

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/auth"
	"alumni-talent-platform/pkg/logger"
	"alumni-talent-platform/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// IdentityProvider is the OAuth side of sign-in.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Identity, error)
}

// SessionIssuer signs session tokens.
type SessionIssuer interface {
	Issue(userID, email string) (string, error)
	TTL() time.Duration
}

type AuthHandler struct {
	authUC       domain.AuthUsecase
	provider     IdentityProvider
	sessions     SessionIssuer
	audit        *security.SecurityLogger
	frontendURL  string
	secureCookie bool
}

type AuthHandlerConfig struct {
	FrontendURL  string
	SecureCookie bool
}

func NewAuthHandler(api *gin.RouterGroup, authUC domain.AuthUsecase, provider IdentityProvider, sessions SessionIssuer, audit *security.SecurityLogger, cfg AuthHandlerConfig, limit gin.HandlerFunc) {
	handler := &AuthHandler{
		authUC:       authUC,
		provider:     provider,
		sessions:     sessions,
		audit:        audit,
		frontendURL:  cfg.FrontendURL,
		secureCookie: cfg.SecureCookie,
	}

	authGroup := api.Group("/auth")
	{
		authGroup.GET("/google/login", limit, handler.GoogleLogin)
		authGroup.GET("/google/callback", limit, handler.GoogleCallback)
		authGroup.POST("/logout", handler.Logout)
		authGroup.GET("/me", middleware.RequireSession(), handler.Me)
	}
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookie, true)
}

// GoogleLogin godoc
// @Summary      Start Google sign-in
// @Description  Redirects to Google's consent page with a one-time state cookie
// @Tags         auth
// @Success      302
// @Router       /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	h.setCookie(c, oauthStateCookie, state, int(oauthStateTTL.Seconds()))
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GoogleCallback godoc
// @Summary      Google sign-in callback
// @Description  Verifies the OAuth state and ID token, creates or syncs the user and sets the session cookie
// @Tags         auth
// @Param        code   query  string  true  "Authorization code"
// @Param        state  query  string  true  "OAuth state"
// @Success      302
// @Failure      401  {object}  response.Response
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	state := c.Query("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		c.Error(apperror.Unauthorized("Invalid OAuth state"))
		return
	}
	h.setCookie(c, oauthStateCookie, "", -1)

	code := c.Query("code")
	if code == "" {
		c.Error(apperror.BadRequest("Missing authorization code"))
		return
	}

	identity, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Log.Warn("google sign-in failed", "error", err)
		h.audit.Log(c.Request.Context(), security.SecurityEvent{
			Event:     security.EventSignInFailed,
			IP:        c.ClientIP(),
			RequestID: c.GetString(string(domain.KeyRequestID)),
		})
		c.Error(apperror.Unauthorized("Sign-in failed"))
		return
	}

	user, err := h.authUC.SignIn(c.Request.Context(), domain.SignInInput{
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.Picture,
	})
	if err != nil {
		c.Error(err)
		return
	}

	token, err := h.sessions.Issue(user.ID, user.Email)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	h.setCookie(c, middleware.SessionCookieName, token, int(h.sessions.TTL().Seconds()))
	c.Redirect(http.StatusFound, h.frontendURL+"/")
}

// Logout godoc
// @Summary      Sign out
// @Description  Clears the session cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookieName, "", -1)
	response.Success(c, http.StatusOK, "Signed out", nil)
}

// Me godoc
// @Summary      Current user
// @Description  Returns the session user with role and status read fresh from the database
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     SessionCookie
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, "Current user", middleware.CurrentUser(c))
}
