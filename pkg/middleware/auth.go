package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrNoSubject = errors.New("token carries no subject")

// Verifier checks a bearer credential issued by the identity provider and
// returns the identity it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// HS256Verifier accepts tokens signed with a shared secret. The identity is
// read from the "sub" claim, or "user_id" for older tokens.
type HS256Verifier struct {
	Secret []byte
}

func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{Secret: []byte(secret)}
}

func (h *HS256Verifier) Verify(_ context.Context, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return h.Secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoSubject
	}

	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}

	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}

	return "", ErrNoSubject
}

// OIDCVerifier accepts ID tokens from an OpenID Connect issuer.
type OIDCVerifier struct {
	v *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's keys. An empty audience skips the
// client id check.
func NewOIDCVerifier(ctx context.Context, issuer, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc provider, %w", err)
	}

	return &OIDCVerifier{
		v: provider.Verifier(&oidc.Config{
			ClientID:          audience,
			SkipClientIDCheck: audience == "",
		}),
	}, nil
}

func (o *OIDCVerifier) Verify(ctx context.Context, token string) (string, error) {
	idToken, err := o.v.Verify(ctx, token)
	if err != nil {
		return "", err
	}

	if idToken.Subject == "" {
		return "", ErrNoSubject
	}

	return idToken.Subject, nil
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	token, _ := c.Cookie("auth_token")
	return token
}

// NewAuthMiddleware resolves the caller identity from the Authorization
// header (or the auth_token cookie) and sets it as userID.
func NewAuthMiddleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "User not authenticated",
				"requestID": requestID,
			})
			return
		}

		userID, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})

			zap.L().Debug("Failed to verify token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
