package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/server/config"
)

const refreshCookieName = "refresh_token"

type signupRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	user, err := s.auth.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already registered"})
		case errors.Is(err, common.ErrorUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username already taken"})
		case errors.Is(err, common.ErrorConflict):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Conflict: user data updated simultaneously. Please try again."})
		default:
			s.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful",
		"data":    user,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	result, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			// One generic message for both unknown email and wrong password.
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid email or password",
			})
			return
		}
		s.internalError(c, err)
		return
	}

	s.setRefreshCookie(c, result.RefreshToken, int(s.cfg.RefreshTokenValidityDuration.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Login successful",
		"accessToken": result.AccessToken,
		"user":        result.User,
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "No refresh token",
		})
		return
	}

	accessToken, err := s.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorInternal) {
			s.internalError(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Invalid session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"accessToken": accessToken,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	// Stateless logout: instruct the client to discard the cookie. Tokens
	// already issued stay valid until natural expiry.
	s.setRefreshCookie(c, "", -1)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Authorized access",
		"userId":  c.GetString(ctxKeyUserID),
	})
}

// setRefreshCookie writes the httpOnly refresh-token cookie scoped to /.
// Secure is set only in production so local development over plain HTTP
// still works.
func (s *Server) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, value, maxAge, "/", "", s.cfg.Env == config.EnvProduction, true)
}

// internalError logs the failure with its correlation identifier and returns
// a generic 500; internal detail never reaches the client.
func (s *Server) internalError(c *gin.Context, err error) {
	requestID := c.GetString(ctxKeyRequestID)
	s.logger.Error(c.Request.Context(), "request failed", "error", err, "requestId", requestID)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success":   false,
		"message":   "Internal server error",
		"requestId": requestID,
	})
}
