package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type contextKey string

const TeacherEmailKey contextKey = "teacherEmail"

// SessionCookieName is the cookie carrying the signed teacher session.
const SessionCookieName = "studentdesk_session"

// SessionMaxAge bounds how long a signed session is accepted.
const SessionMaxAge = 7 * 24 * time.Hour

func sign(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

func CreateSessionCookie(email, secret string, now time.Time) *http.Cookie {
	value := fmt.Sprintf("%s|%d", email, now.Unix())
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value + "|" + sign(value, secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionMaxAge / time.Second),
	}
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

func ValidateSessionCookie(cookie *http.Cookie, secret string, now time.Time) (email string, err error) {
	if cookie == nil {
		return "", fmt.Errorf("no session cookie")
	}

	parts := strings.Split(cookie.Value, "|")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid session format")
	}

	value := parts[0] + "|" + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(sign(value, secret))) {
		return "", fmt.Errorf("invalid session signature")
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid session timestamp")
	}
	if now.Sub(time.Unix(issued, 0)) > SessionMaxAge {
		return "", fmt.Errorf("session expired")
	}
	return parts[0], nil
}

// RequireAuth redirects to /login unless the request carries a valid teacher session.
func RequireAuth(next http.HandlerFunc, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		email, err := ValidateSessionCookie(cookie, secret, time.Now())
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), TeacherEmailKey, email)
		next(w, r.WithContext(ctx))
	}
}

func GetTeacherEmail(r *http.Request) string {
	if val, ok := r.Context().Value(TeacherEmailKey).(string); ok {
		return val
	}
	return ""
}
