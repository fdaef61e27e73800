package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// adminCookie carries the signed admin session.
const adminCookie = "kidsafe_admin"

// adminSessionTTL is how long an admin login stays valid.
const adminSessionTTL = 12 * time.Hour

// AdminConfig holds the admin-session settings. An empty PasswordHash
// disables the admin surface entirely.
type AdminConfig struct {
	// PasswordHash is the bcrypt hash of the admin password.
	PasswordHash string
	// JWTSecret signs the session cookie.
	JWTSecret []byte
}

func (a AdminConfig) enabled() bool {
	return a.PasswordHash != "" && len(a.JWTSecret) > 0
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !s.admin.enabled() {
		writeError(w, http.StatusServiceUnavailable, "admin access is not configured")
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(body.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(adminSessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.admin.JWTSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(adminSessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAdmin guards the mutating admin routes behind the session cookie.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.admin.enabled() {
			writeError(w, http.StatusServiceUnavailable, "admin access is not configured")
			return
		}

		cookie, err := r.Cookie(adminCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "admin session required")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
			return s.admin.JWTSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.Subject != "admin" {
			writeError(w, http.StatusUnauthorized, "admin session invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}
