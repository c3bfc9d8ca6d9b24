package web

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====
//
// Authentication is a thin wrapper around the core: it mints opaque user
// identities as HS256 tokens and checks them at the edge. The core never
// validates credentials.

type AuthManager struct {
	secret []byte
	ttl    time.Duration

	mu    sync.Mutex
	users map[string][32]byte // email -> sha256(password); placeholder user table
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{
		secret: []byte(secret),
		ttl:    ttl,
		users:  make(map[string][32]byte),
	}
}

type userClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *AuthManager) mint(email string) (string, error) {
	now := time.Now()
	claims := userClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   email,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthManager) verify(raw string) (string, error) {
	var claims userClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Action   string `json:"action"` // 'register' or 'login'
}

// TokenHandler implements POST /api/auth with register/login actions against
// the in-memory user table.
func (a *AuthManager) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		hashed := sha256.Sum256([]byte(req.Password))

		a.mu.Lock()
		stored, exists := a.users[req.Email]
		switch strings.ToLower(req.Action) {
		case "register":
			if exists {
				a.mu.Unlock()
				http.Error(w, "User already exists", http.StatusBadRequest)
				return
			}
			a.users[req.Email] = hashed
		case "login":
			if !exists {
				a.mu.Unlock()
				http.Error(w, "User not found", http.StatusBadRequest)
				return
			}
			if subtle.ConstantTimeCompare(stored[:], hashed[:]) != 1 {
				a.mu.Unlock()
				http.Error(w, "Invalid password", http.StatusBadRequest)
				return
			}
		default:
			a.mu.Unlock()
			http.Error(w, "Invalid action. Use 'register' or 'login'.", http.StatusBadRequest)
			return
		}
		a.mu.Unlock()

		token, err := a.mint(req.Email)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// Middleware requires a valid bearer token on the wrapped routes.
func (a *AuthManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if _, err := a.verify(parts[1]); err != nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
