package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// SystemActor is recorded as the author of writes without a caller.
const SystemActor = "system"

type Service interface {
	// GenerateAccessToken signs a token for local tooling and tests. Tokens
	// are otherwise issued by the identity provider sharing the secret.
	GenerateAccessToken(userID string, employeeID *string, role Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID *string, role Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": returnValueOrNil(employeeID),
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// ========== CLAIM HELPERS ==========

func claimString(ctx context.Context, key string) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return ""
	}
	v, _ := claims[key].(string)
	return v
}

// ActorFromContext returns the user_id claim, or SystemActor when the
// context carries no verified token.
func ActorFromContext(ctx context.Context) string {
	if userID := claimString(ctx, "user_id"); userID != "" {
		return userID
	}
	return SystemActor
}

func RoleFromContext(ctx context.Context) Role {
	return Role(claimString(ctx, "role"))
}

// EmployeeIDFromContext returns the employee_id claim, empty when absent.
func EmployeeIDFromContext(ctx context.Context) string {
	return claimString(ctx, "employee_id")
}
