// internal/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/utils"
)

// RegistrationChecker answers the registration gate for a signed-in user.
type RegistrationChecker interface {
	IsRegistered(ctx context.Context, uid string) (bool, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		if c.GetHeader("Authorization") == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			key := i18n.KeyAuthInvalidToken
			if utils.IsExpired(err) {
				key = i18n.KeyAuthTokenExpired
			}
			utils.UnauthorizedResponse(c, i18n.T(lang, key))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := utils.ValidateJWT(token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("email", claims.Email)
			}
		}
		c.Next()
	}
}

// RegistrationRequired keeps users without a completed profile out of the
// marketplace. It must run after AuthRequired.
func RegistrationRequired(profiles RegistrationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := utils.GetUserIDFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		registered, err := profiles.IsRegistered(c.Request.Context(), uid)
		if err != nil {
			logrus.WithError(err).WithField("uid", uid).Error("Registration check failed")
			utils.ServiceUnavailableResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthUnavailable))
			c.Abort()
			return
		}
		if !registered {
			utils.ForbiddenResponse(c, "REGISTRATION_REQUIRED", i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRegistrationRequired))
			c.Abort()
			return
		}
		c.Next()
	}
}
