package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"studentdesk/internal/aiwriter"
	"studentdesk/internal/config"
	"studentdesk/internal/logging"
	"studentdesk/internal/models"
	"studentdesk/internal/util"
)

// Rewriter is the AI text service used by the counseling and grade flows.
// *aiwriter.Writer implements it.
type Rewriter interface {
	Rephrase(ctx context.Context, note, category, student string) string
	AnalyzeMistakes(ctx context.Context, student, wrong, document, category string, audience aiwriter.Audience) string
}

// Detail page tabs.
const (
	TabCounseling = "counseling"
	TabGrades     = "grades"
	TabReport     = "report"
)

func parseTab(s string) string {
	switch s {
	case TabGrades, TabReport:
		return s
	default:
		return TabCounseling
	}
}

func detailURL(name, tab string) string {
	return "/students/view?name=" + url.QueryEscape(name) + "&tab=" + tab
}

// base carries what every student page needs.
type base struct {
	cfg    *config.Config
	repo   *models.Repository
	drafts *DraftStore
}

// connected renders the blocking connection page and returns false when the
// storage backend cannot be reached.
func (b *base) connected(w http.ResponseWriter, r *http.Request) bool {
	err := b.repo.Store().Ping(r.Context())
	if err == nil {
		return true
	}
	logging.L().Errorw("storage connection failed", "path", r.URL.Path, "error", err)
	retry := "/students"
	if r.Method == http.MethodGet {
		retry = r.URL.RequestURI()
	}
	renderStatus(w, r, http.StatusServiceUnavailable, "connection_error.html", map[string]interface{}{
		"Title":    "연결 오류 - 학생 관리",
		"Detail":   err.Error(),
		"RetryURL": retry,
	})
	return false
}

// renderDetail renders one student's page from the session's drafts.
func (b *base) renderDetail(w http.ResponseWriter, r *http.Request, status int, state ViewState, name, tab string, fieldErrors map[string]string) {
	report := b.repo.BuildReport(r.Context(), name)
	if !report.Found {
		report.Student = models.Student{Name: name}
	}

	counseling := state.Counseling[name]
	if counseling.Date == "" {
		counseling.Date = util.Today()
	}
	weekly := state.Weekly[name]
	if weekly.AnalysisCategory == "" {
		weekly.AnalysisCategory = "weekly"
	}
	if weekly.Audience == "" {
		weekly.Audience = string(aiwriter.AudienceParent)
	}
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}

	flash, errMsg := state.Flash, state.Error
	renderStatus(w, r, status, "student_detail.html", map[string]interface{}{
		"Title":            name + " - 학생 관리",
		"Menu":             "manage",
		"Flash":            flash,
		"Error":            errMsg,
		"Tab":              tab,
		"Student":          report.Student,
		"Found":            report.Found,
		"Report":           report,
		"Counseling":       counseling,
		"CounselingFailed": aiwriter.IsFailure(counseling.Rewritten),
		"Weekly":           weekly,
		"WeeklyFailed":     len(weekly.failedAIFields()) > 0,
		"FieldErrors":      fieldErrors,
		"Today":            util.Today(),
	})
}

type StudentsHandler struct {
	base
}

func NewStudentsHandler(cfg *config.Config, repo *models.Repository, drafts *DraftStore) *StudentsHandler {
	return &StudentsHandler{base{cfg: cfg, repo: repo, drafts: drafts}}
}

// Home redirects the site root to the roster.
func (h *StudentsHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/students", http.StatusFound)
}

// New shows the registration form and handles its submission.
func (h *StudentsHandler) New(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.connected(w, r) {
			return
		}
		id, state := h.drafts.Load(w, r)
		flash, errMsg := state.TakeMessages()
		h.drafts.Save(id, state)
		h.renderNew(w, r, http.StatusOK, studentForm{}, nil, flash, errMsg)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StudentsHandler) renderNew(w http.ResponseWriter, r *http.Request, status int, form studentForm, fieldErrors map[string]string, flash, errMsg string) {
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	renderStatus(w, r, status, "student_new.html", map[string]interface{}{
		"Title":       "학생 등록 - 학생 관리",
		"Menu":        "register",
		"Form":        form,
		"FieldErrors": fieldErrors,
		"Flash":       flash,
		"Error":       errMsg,
	})
}

func (h *StudentsHandler) create(w http.ResponseWriter, r *http.Request) {
	if !h.connected(w, r) {
		return
	}
	form := studentFormFrom(r)
	if fieldErrors := validateForm(form); fieldErrors != nil {
		h.renderNew(w, r, http.StatusUnprocessableEntity, form, fieldErrors, "", "")
		return
	}

	student, err := h.repo.RegisterStudent(r.Context(), models.Student{
		Name:         form.Name,
		Class:        form.Class,
		OriginSchool: form.OriginSchool,
		TargetSchool: form.TargetSchool,
		Address:      form.Address,
	})
	if err != nil {
		if models.IsStudentExists(err) {
			h.renderNew(w, r, http.StatusConflict, form, map[string]string{"name": "이미 등록된 이름입니다."}, "", "")
			return
		}
		logging.L().Errorw("register student failed", "name", form.Name, "error", err)
		h.renderNew(w, r, http.StatusBadGateway, form, nil, "", "학생을 저장하지 못했습니다: "+err.Error())
		return
	}

	logging.L().Infow("student registered", "name", student.Name, "class", student.Class)
	id, state := h.drafts.Load(w, r)
	state.Flash = student.Name + " 학생을 등록했습니다."
	h.drafts.Save(id, state)
	http.Redirect(w, r, "/students/new", http.StatusSeeOther)
}

// List shows the roster, optionally filtered by class. The filter is
// remembered for the session when the query omits it.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.connected(w, r) {
		return
	}

	id, state := h.drafts.Load(w, r)
	if values, ok := r.URL.Query()["class"]; ok {
		state.ClassFilter = util.CanonicalClass(strings.Join(values, ""))
	}
	flash, errMsg := state.TakeMessages()
	h.drafts.Save(id, state)

	ctx := r.Context()
	renderTemplate(w, r, "students.html", map[string]interface{}{
		"Title":       "학생 관리",
		"Menu":        "manage",
		"Flash":       flash,
		"Error":       errMsg,
		"Classes":     h.repo.Classes(ctx),
		"ClassFilter": state.ClassFilter,
		"Students":    h.repo.Roster(ctx, state.ClassFilter),
	})
}

// View shows one student's counseling, grade entry or report tab.
func (h *StudentsHandler) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Redirect(w, r, "/students", http.StatusFound)
		return
	}
	if !h.connected(w, r) {
		return
	}

	id, state := h.drafts.Load(w, r)
	shown := state
	state.TakeMessages()
	h.drafts.Save(id, state)
	h.renderDetail(w, r, http.StatusOK, shown, name, parseTab(r.URL.Query().Get("tab")), nil)
}
