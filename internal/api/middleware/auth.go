package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Context keys for storing user information
type contextKey string

const (
	UserIDKey       contextKey = "user_id"
	JWTClaimsKey    contextKey = "jwt_claims"
	UserAccessToken contextKey = "user_access_token"
)

// AccessTokenParam carries the token for websocket upgrades, where browsers
// cannot set an Authorization header
const AccessTokenParam = "access_token"

// Claims are the access token claims issued by the auth provider
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuthMiddleware verifies HS256 access tokens signed with the project secret
type AuthMiddleware struct {
	logger *slog.Logger
	parser *jwt.Parser
	secret []byte
}

// NewAuthMiddleware creates an auth middleware. An empty secret rejects every token.
func NewAuthMiddleware(secret string, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		logger: logger,
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses and validates a raw token
func (m *AuthMiddleware) Verify(token string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("no signing secret configured")
	}

	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid token with 401
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r)
		if !ok {
			writeAuthError(w, "Missing access token")
			return
		}

		claims, err := m.Verify(token)
		if err != nil {
			m.logger.Info("auth failure",
				"ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "error", err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims, token)))
	})
}

// OptionalAuth loads the user if a valid token is present and otherwise
// continues anonymously
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.Verify(token)
		if err != nil {
			m.logger.Debug("optional auth failed", "path", r.URL.Path, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims, token)))
	})
}

func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		return token, found && token != ""
	}
	if token := strings.TrimSpace(r.URL.Query().Get(AccessTokenParam)); token != "" {
		return token, true
	}
	return "", false
}

func withClaims(ctx context.Context, claims *Claims, token string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
	ctx = context.WithValue(ctx, JWTClaimsKey, claims)
	return context.WithValue(ctx, UserAccessToken, token)
}

// GetUserID extracts the user id from the request context.
// Returns empty string if not authenticated.
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

// GetJWTClaims extracts the JWT claims from the request context
func GetJWTClaims(r *http.Request) *Claims {
	claims, _ := r.Context().Value(JWTClaimsKey).(*Claims)
	return claims
}

// SetTestUserID sets the user id in the context. Tests only.
func SetTestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "AuthenticationRequired",
		"message": message,
	}); err != nil {
		slog.Error("failed to write auth error response", "error", err)
	}
}
