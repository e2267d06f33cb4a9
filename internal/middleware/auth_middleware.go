package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fisa/matjip-backend/internal/cache"
	apperrors "github.com/fisa/matjip-backend/internal/errors"
	"github.com/fisa/matjip-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for session information
const (
	SessionKey  = "session"
	UserIDKey   = "user_id"
	UserNameKey = "user_name"
)

// Session 요청마다 전달되는 현재 사용자 상태
type Session struct {
	UserID   string
	UserName string
	LoggedIn bool
	Claims   *util.SessionClaims
}

type AuthMiddleware struct {
	jwtSecret string
	blacklist cache.TokenBlacklist
}

func NewAuthMiddleware(jwtSecret string, blacklist cache.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

var (
	errMissingToken = errors.New("missing token")
	errTokenRevoked = errors.New("token revoked")
)

// extractToken Authorization: Bearer 헤더, 없으면 ?token= (WebSocket)
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", util.ErrInvalidToken
	}
	return parts[1], nil
}

// resolve 토큰 검증 + 로그아웃 여부 확인
func (m *AuthMiddleware) resolve(c *gin.Context) (*util.SessionClaims, error) {
	token, err := extractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}

	if m.blacklist != nil {
		revoked, err := m.blacklist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

func setSession(c *gin.Context, claims *util.SessionClaims) {
	c.Set(SessionKey, Session{
		UserID:   claims.UserID,
		UserName: claims.UserName,
		LoggedIn: true,
		Claims:   claims,
	})
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserNameKey, claims.UserName)
}

// Authenticate validates the session token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		claims, err := m.resolve(c)
		if err != nil {
			log.Warn("Authentication failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			switch {
			case errors.Is(err, errMissingToken):
				apperrors.Unauthorized(c, "로그인이 필요합니다")
			case errors.Is(err, util.ErrExpiredToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "로그인이 만료되었습니다")
			case errors.Is(err, errTokenRevoked):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "로그아웃된 세션입니다")
			case errors.Is(err, util.ErrInvalidToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
			default:
				apperrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		setSession(c, claims)
		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
		})
		c.Next()
	}
}

// OptionalAuthenticate validates the token if present
// - valid token: sets session
// - missing or invalid token: continues as guest
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		claims, err := m.resolve(c)
		if err != nil {
			if !errors.Is(err, errMissingToken) {
				log.Debug("Token rejected - continuing as guest", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"error": err.Error(),
				})
			}
			c.Next()
			return
		}

		setSession(c, claims)
		c.Next()
	}
}

// GetSession 현재 세션 (로그인하지 않았으면 LoggedIn=false)
func GetSession(c *gin.Context) Session {
	if v, exists := c.Get(SessionKey); exists {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Session{}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
