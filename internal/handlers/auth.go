package handlers

import (
	"net/http"
	"strings"
	"time"

	"studentdesk/internal/config"
	"studentdesk/internal/logging"
	"studentdesk/internal/middleware"

	"golang.org/x/crypto/bcrypt"
)

const loginTitle = "로그인 - 학생 관리"

type AuthHandler struct {
	cfg          *config.Config
	passwordHash []byte
}

// NewAuthHandler hashes the configured teacher password once so the plain
// value is not compared directly on each login.
func NewAuthHandler(cfg *config.Config) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.TeacherPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{cfg: cfg, passwordHash: hash}, nil
}

// LoginForm renders the login page, or skips to the roster when the session is still valid.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if _, err := middleware.ValidateSessionCookie(cookie, h.cfg.SessionSecret, time.Now()); err == nil {
			http.Redirect(w, r, "/students", http.StatusFound)
			return
		}
		h.cfg.Debugf("login: ignoring invalid session cookie")
	}
	renderTemplate(w, r, "login.html", map[string]interface{}{
		"Title": loginTitle,
		"Email": "",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	fail := func(msg string) {
		renderStatus(w, r, http.StatusUnauthorized, "login.html", map[string]interface{}{
			"Title": loginTitle,
			"Error": msg,
			"Email": email,
		})
	}

	if email == "" || password == "" {
		fail("이메일과 비밀번호를 입력해 주세요.")
		return
	}
	if !strings.EqualFold(email, h.cfg.TeacherEmail) ||
		bcrypt.CompareHashAndPassword(h.passwordHash, []byte(password)) != nil {
		logging.L().Infow("login rejected", "email", email)
		fail("이메일 또는 비밀번호가 올바르지 않습니다.")
		return
	}

	http.SetCookie(w, middleware.CreateSessionCookie(h.cfg.TeacherEmail, h.cfg.SessionSecret, time.Now()))
	http.Redirect(w, r, "/students", http.StatusFound)
}

// Logout clears the session cookie and redirects to login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, middleware.ClearSessionCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}
