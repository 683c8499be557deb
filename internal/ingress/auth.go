package ingress

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
)

// AuthConfig configures the Bearer-JWT/ApiKey stage.
type AuthConfig struct {
	JWTSecret    string
	JWTExpiry    time.Duration
	APIKeyHashes []string // bcrypt hashes, any one match authenticates
}

// jwtClaims is the minimal claim set minted for a service-issued token.
type jwtClaims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// MintJWT issues an HS256 token for subject, expiring after cfg.JWTExpiry
// (default 1h).
func MintJWT(cfg AuthConfig, subject string) (string, error) {
	expiry := cfg.JWTExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	claims := jwtClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// Auth wraps next with the Bearer-JWT/ApiKey stage. A request already
// marked pre-authenticated by MagicLink skips this stage entirely.
func Auth(cfg AuthConfig, enabled bool, next http.Handler) http.Handler {
	if !enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPreAuthenticated(r) {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			writeErr(w, apierrors.AuthRequired())
			return
		}

		switch {
		case strings.HasPrefix(header, "Bearer "):
			token := strings.TrimPrefix(header, "Bearer ")
			subject, err := verifyJWT(cfg, token)
			if err != nil {
				writeErr(w, apierrors.AuthFailed("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, withPrincipal(r, subject))
		case strings.HasPrefix(header, "ApiKey "):
			key := strings.TrimPrefix(header, "ApiKey ")
			if !matchesAnyAPIKey(cfg.APIKeyHashes, key) {
				writeErr(w, apierrors.AuthFailed("unknown api key"))
				return
			}
			next.ServeHTTP(w, withPrincipal(r, "api-key"))
		default:
			writeErr(w, apierrors.AuthFailed("unsupported authorization scheme"))
		}
	})
}

func verifyJWT(cfg AuthConfig, tokenStr string) (string, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", apierrors.AuthFailed("invalid token")
	}
	return claims.Subject, nil
}

func matchesAnyAPIKey(hashes []string, key string) bool {
	for _, h := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(key)) == nil {
			return true
		}
	}
	return false
}
