package handlers

import (
	"net/http"

	"studentdesk/internal/config"
	"studentdesk/internal/middleware"
	"studentdesk/internal/models"
)

// RouterOptions are the dependencies of the HTTP surface.
type RouterOptions struct {
	Config    *config.Config
	Repo      *models.Repository
	AI        Rewriter
	Drafts    *DraftStore
	StaticDir string
}

// NewRouter registers every route and wraps the mux in request logging and
// panic recovery. All routes except /login, /healthz and /static require the
// teacher session.
func NewRouter(opts RouterOptions) (http.Handler, error) {
	cfg := opts.Config
	SetConfig(cfg)
	if err := InitTemplates(); err != nil {
		return nil, err
	}
	drafts := opts.Drafts
	if drafts == nil {
		drafts = NewDraftStore(DefaultDraftTTL)
	}

	authHandler, err := NewAuthHandler(cfg)
	if err != nil {
		return nil, err
	}
	studentsHandler := NewStudentsHandler(cfg, opts.Repo, drafts)
	counselingHandler := NewCounselingHandler(cfg, opts.Repo, drafts, opts.AI)
	weeklyHandler := NewWeeklyHandler(cfg, opts.Repo, drafts, opts.AI)
	healthHandler := NewHealthHandler(opts.Repo)

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(h, cfg.SessionSecret)
	}
	exact := func(path string, h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != path {
				http.NotFound(w, r)
				return
			}
			h(w, r)
		}
	}

	mux := http.NewServeMux()

	if opts.StaticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
		cfg.Debugf("ROUTE REGISTERED: /static/ -> %s", opts.StaticDir)
	}

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.Login(w, r)
		} else {
			authHandler.LoginForm(w, r)
		}
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodPost {
			authHandler.Logout(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/healthz", exact("/healthz", healthHandler.Health))

	mux.HandleFunc("/students", exact("/students", protected(studentsHandler.List)))
	mux.HandleFunc("/students/new", exact("/students/new", protected(studentsHandler.New)))
	mux.HandleFunc("/students/view", exact("/students/view", protected(studentsHandler.View)))
	mux.HandleFunc("/students/counseling", exact("/students/counseling", protected(counselingHandler.Submit)))
	mux.HandleFunc("/students/weekly", exact("/students/weekly", protected(weeklyHandler.Submit)))
	mux.HandleFunc("/", protected(studentsHandler.Home))
	cfg.Debugf("ROUTES REGISTERED: /login /logout /healthz /students{,/new,/view,/counseling,/weekly} /")

	return middleware.Recover(middleware.RequestLog(mux)), nil
}
