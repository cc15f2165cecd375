package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-auth-api/pkg/apierror"
)

const refreshType = "refresh"

// Manager issues and validates the two token kinds. Both are HS256 JWTs
// signed with the same secret; the kind is carried as a "type" claim.
// Access tokens are issued without a type claim at all, which keeps
// tokens minted before the refresh flow existed valid, so the two
// validators are deliberately asymmetric about a missing type.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL time.Duration, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// IssueAccessToken signs a short-lived token with claims {sub, exp}.
func (m *Manager) IssueAccessToken(username string) (string, error) {
	now := time.Now().UTC()
	return m.sign(jwt.MapClaims{
		"sub": username,
		"exp": now.Add(m.accessTTL).Unix(),
	})
}

// IssueRefreshToken signs a long-lived token with claims
// {sub, exp, type: "refresh"}.
func (m *Manager) IssueRefreshToken(username string) (string, error) {
	now := time.Now().UTC()
	return m.sign(jwt.MapClaims{
		"sub":  username,
		"exp":  now.Add(m.refreshTTL).Unix(),
		"type": refreshType,
	})
}

// ValidateAccess decodes the token and returns its subject. A refresh
// token is rejected here even though its signature is valid; a token
// with no type claim passes.
func (m *Manager) ValidateAccess(tokenString string) (string, error) {
	subject, tokenType, err := m.decode(tokenString)
	if err != nil {
		return "", err
	}

	if tokenType == refreshType {
		return "", apierror.Unauthorized()
	}

	return subject, nil
}

// ValidateRefresh decodes the token and returns its subject. Anything
// whose type claim is not exactly "refresh" is rejected, which covers
// access tokens since they carry no type claim.
func (m *Manager) ValidateRefresh(tokenString string) (string, error) {
	subject, tokenType, err := m.decode(tokenString)
	if err != nil {
		return "", err
	}

	if tokenType != refreshType {
		return "", apierror.Unauthorized()
	}

	return subject, nil
}

func (m *Manager) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// decode verifies signature and expiry. Malformed, tampered and expired
// tokens all collapse into the same unauthorized error.
func (m *Manager) decode(tokenString string) (subject string, tokenType string, err error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.Unauthorized()
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", apierror.Unauthorized()
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", apierror.Unauthorized()
	}

	subject, _ = claims["sub"].(string)
	if subject == "" {
		return "", "", apierror.Unauthorized()
	}

	tokenType, _ = claims["type"].(string)
	return subject, tokenType, nil
}
