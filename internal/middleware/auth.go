package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campuslink/backend/internal/models"
)

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
)

// Auth validates bearer tokens. Locally-issued JWTs are tried first; when a
// Firebase Auth client is configured, Firebase ID tokens are accepted too so
// mobile clients signed in through Firebase can call the API directly.
func Auth(jwtSecret string, authClient *fbauth.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authorization header required"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid authorization header format"))
				return
			}
			tokenString := parts[1]

			if userID, email, ok := parseLocalToken(tokenString, jwtSecret); ok {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), userID, email)))
				return
			}

			if authClient != nil {
				if tok, err := authClient.VerifyIDToken(r.Context(), tokenString); err == nil {
					email, _ := tok.Claims["email"].(string)
					next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), tok.UID, email)))
					return
				}
			}

			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid or expired token"))
		})
	}
}

func parseLocalToken(tokenString, jwtSecret string) (userID, email string, ok bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", false
	}

	claims, cok := token.Claims.(jwt.MapClaims)
	if !cok {
		return "", "", false
	}
	userID, uok := claims["user_id"].(string)
	if !uok || userID == "" {
		return "", "", false
	}
	email, _ = claims["email"].(string)
	return userID, email, true
}

func withIdentity(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserEmailKey, email)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUserEmail extracts the authenticated user's email from context
func GetUserEmail(ctx context.Context) string {
	email, ok := ctx.Value(UserEmailKey).(string)
	if !ok {
		return ""
	}
	return email
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
