package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yukimura/org-identity-api/internal/authservice"
	"github.com/yukimura/org-identity-api/internal/constants"
	apierrors "github.com/yukimura/org-identity-api/internal/errors"
	"github.com/yukimura/org-identity-api/internal/repository"
)

// RequireAuth authenticates the request against the Auth Service. The
// caller's session credentials (cookie or bearer token) are forwarded to
// get-session; a validated identity is cached in the server-side session for
// cacheTTL so every request doesn't round-trip to the Auth Service. The
// local user row is created lazily on first sight.
//
// Caller identity only ever comes from the authenticated session, never from
// request input.
func RequireAuth(auth authservice.API, users repository.UserRepository, cacheTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		headers := sessionHeadersFromRequest(c.Request)
		if len(headers) == 0 {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Set(constants.ContextKeySessionHeaders, headers)

		session := sessions.Default(c)
		if authUserID, userID, ok := cachedIdentity(session, cacheTTL); ok {
			c.Set(constants.ContextKeyAuthUserID, authUserID)
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		authSession, err := auth.GetSession(c.Request.Context(), headers)
		if err != nil {
			log.Debug().Err(err).Msg("session validation failed")
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if authSession == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := users.EnsureByAuthID(authSession.UserID)
		if err != nil {
			log.Error().Err(err).Msg("failed to ensure local user record")
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		session.Set(constants.SessionKeyAuthUserID, authSession.UserID)
		session.Set(constants.SessionKeyUserID, user.ID)
		session.Set(constants.SessionKeyCheckedAt, time.Now().Unix())
		if err := session.Save(); err != nil {
			log.Warn().Err(err).Msg("failed to persist session cache")
		}

		c.Set(constants.ContextKeyAuthUserID, authSession.UserID)
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

func cachedIdentity(session sessions.Session, ttl time.Duration) (string, uint64, bool) {
	authUserID, ok := session.Get(constants.SessionKeyAuthUserID).(string)
	if !ok || authUserID == "" {
		return "", 0, false
	}
	userID, ok := toUint64(session.Get(constants.SessionKeyUserID))
	if !ok {
		return "", 0, false
	}
	checkedAt, ok := session.Get(constants.SessionKeyCheckedAt).(int64)
	if !ok || time.Since(time.Unix(checkedAt, 0)) > ttl {
		return "", 0, false
	}
	return authUserID, userID, true
}

// sessionHeadersFromRequest derives the headers the Auth Service needs to
// resolve the caller's session. They are forwarded verbatim; their content is
// opaque to this system.
func sessionHeadersFromRequest(r *http.Request) http.Header {
	headers := http.Header{}
	if cookie := r.Header.Get("Cookie"); cookie != "" {
		headers.Set("Cookie", cookie)
	}
	if authorization := r.Header.Get("Authorization"); authorization != "" {
		headers.Set("Authorization", authorization)
	}
	return headers
}

// GetAuthUserID retrieves the caller's Auth Service user id from context.
func GetAuthUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyAuthUserID)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

// GetUserID retrieves the caller's local user id from context.
func GetUserID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(value)
}

// SessionHeaders retrieves the forwardable Auth Service headers from context.
func SessionHeaders(c *gin.Context) http.Header {
	value, exists := c.Get(constants.ContextKeySessionHeaders)
	if !exists {
		return http.Header{}
	}
	headers, ok := value.(http.Header)
	if !ok {
		return http.Header{}
	}
	return headers
}

func toUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
