package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JonMunkholm/smsdesk/internal/config"
	"github.com/JonMunkholm/smsdesk/internal/core"
)

// ErrorResponder renders an error with the given status.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error, status int)

// OwnerAuth authenticates the caller and places a core.OwnerContext on the
// request context.
//
// A bearer token is always verified when present (HS256, signed with
// cfg.JWTSecret). Without one the request is rejected, unless
// cfg.AuthRequired is false, in which case X-Owner-ID names the owner.
func OwnerAuth(cfg *config.SecurityConfig, respond ErrorResponder) func(http.Handler) http.Handler {
	secret := []byte(cfg.JWTSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				owner core.OwnerContext
				err   error
			)

			switch token := bearerToken(r); {
			case token != "":
				owner, err = ParseOwnerToken(token, secret)
			case !cfg.AuthRequired:
				owner, err = ownerFromHeader(r)
			default:
				err = core.ErrUnauthenticated
			}

			if err != nil {
				slog.Warn("auth: rejected request",
					"path", r.URL.Path,
					"method", r.Method,
					"ip", core.IPAddressFromContext(r.Context()),
					"error", err,
				)
				respond(w, r, err, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(core.ContextWithOwner(r.Context(), owner)))
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func ownerFromHeader(r *http.Request) (core.OwnerContext, error) {
	raw := strings.TrimSpace(r.Header.Get("X-Owner-ID"))
	if raw == "" {
		return core.OwnerContext{}, core.ErrUnauthenticated
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return core.OwnerContext{}, fmt.Errorf("%w: X-Owner-ID must be a positive integer", core.ErrUnauthenticated)
	}
	return core.OwnerContext{UserID: id}, nil
}

// ParseOwnerToken verifies an HS256 token and extracts the owner. The user
// ID is read from the user_id claim, falling back to sub.
func ParseOwnerToken(tokenString string, secret []byte) (core.OwnerContext, error) {
	if len(secret) == 0 {
		return core.OwnerContext{}, fmt.Errorf("%w: no signing secret configured", core.ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return core.OwnerContext{}, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	if !token.Valid {
		return core.OwnerContext{}, core.ErrInvalidToken
	}

	id, err := userIDFromClaims(claims)
	if err != nil {
		return core.OwnerContext{}, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return core.OwnerContext{UserID: id, Email: email, Role: role, Token: tokenString}, nil
}

func userIDFromClaims(claims jwt.MapClaims) (int64, error) {
	for _, key := range []string{"user_id", "sub"} {
		v, ok := claims[key]
		if !ok {
			continue
		}

		var (
			id  int64
			err error
		)
		switch v := v.(type) {
		case float64:
			// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
			if v < 1 || v >= math.MaxInt64 {
				return 0, fmt.Errorf("claim %s: out of range", key)
			}
			id = int64(v)
			if float64(id) != v {
				err = errors.New("not an integer")
			}
		case json.Number:
			id, err = v.Int64()
		case string:
			id, err = strconv.ParseInt(v, 10, 64)
		default:
			err = fmt.Errorf("unsupported type %T", v)
		}
		if err != nil {
			return 0, fmt.Errorf("claim %s: %w", key, err)
		}
		if id <= 0 {
			return 0, fmt.Errorf("claim %s: must be positive", key)
		}
		return id, nil
	}
	return 0, errors.New("token carries no user_id or sub claim")
}

// SignOwnerToken issues an HS256 token for owner. It exists for local
// development and tests; production tokens come from the session service.
func SignOwnerToken(owner core.OwnerContext, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatInt(owner.UserID, 10),
		"user_id": owner.UserID,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	if owner.Email != "" {
		claims["email"] = owner.Email
	}
	if owner.Role != "" {
		claims["role"] = owner.Role
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
