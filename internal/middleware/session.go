package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tamu-web/internal/auth"
	"tamu-web/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "sessionID"

const SessionCookie = "tamu_session"

// Session resolves the browser session, minting a cookie on first contact.
func Session(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				sessionID = strings.TrimSpace(cookie.Value)
			}
			if sessionID == "" {
				sessionID = store.NewSession()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionID(r *http.Request) string {
	value, _ := r.Context().Value(sessionContextKey).(string)
	return value
}

// Token resolves the effective auth token: an explicit Authorization header
// wins over the token stored for the session.
func Token(r *http.Request, store *session.Store) string {
	if header := auth.ParseBearerToken(r.Header.Get("Authorization")); header != "" {
		return header
	}
	return store.Token(SessionID(r))
}

// RequireAuth gates a route on a usable token. With a shared secret the
// token is fully verified; without one only the exp claim is peeked, and
// stale sessions are torn down instead of forwarded.
func RequireAuth(store *session.Store, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := Token(r, store)
			if token == "" {
				writeAuthError(w, "Sign in to continue")
				return
			}

			if jwtSecret != "" {
				if _, err := auth.VerifyAccessToken(token, jwtSecret); err != nil {
					store.Clear(SessionID(r))
					writeAuthError(w, "Session expired, sign in again")
					return
				}
			} else if auth.Expired(token) {
				store.Clear(SessionID(r))
				writeAuthError(w, "Session expired, sign in again")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}
