package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DraftCookieName identifies the browser session whose drafts are kept server side.
const DraftCookieName = "studentdesk_draft"

// DefaultDraftTTL is how long an untouched draft session survives.
const DefaultDraftTTL = 12 * time.Hour

type CounselingDraft struct {
	Date      string
	Note      string
	Rewritten string
}

func (d CounselingDraft) empty() bool {
	return d.Note == "" && d.Rewritten == ""
}

// WeeklyDraft holds the grade form between interactions. DocumentText is the
// extracted PDF text, kept so the analysis can be regenerated without a re-upload.
type WeeklyDraft struct {
	Period     string `form:"period" validate:"notblank,max=50"`
	Homework   string `form:"homework" validate:"omitempty,numeric"`
	Assignment string `form:"assignment" validate:"max=100"`

	WeeklyScore   string `form:"weekly_score" validate:"omitempty,numeric"`
	WeeklyAverage string `form:"weekly_average" validate:"omitempty,numeric"`
	WeeklyWrong   string `form:"weekly_wrong"`
	WeeklyNote    string `form:"weekly_note"`

	AchievementScore   string `form:"achievement_score" validate:"omitempty,numeric"`
	AchievementAverage string `form:"achievement_average" validate:"omitempty,numeric"`
	AchievementWrong   string `form:"achievement_wrong"`
	AchievementNote    string `form:"achievement_note"`

	AnalysisCategory string `form:"analysis_category" validate:"omitempty,oneof=weekly achievement"`
	Audience         string `form:"audience" validate:"omitempty,oneof=parent student"`
	Analysis         string `form:"analysis"`

	DocumentName string
	DocumentText string
}

// ViewState is everything the UI remembers for one browser between requests.
// Drafts are keyed by student name.
type ViewState struct {
	ClassFilter string
	Counseling  map[string]CounselingDraft
	Weekly      map[string]WeeklyDraft
	Flash       string
	Error       string
}

func (v ViewState) clone() ViewState {
	out := v
	out.Counseling = make(map[string]CounselingDraft, len(v.Counseling))
	for k, d := range v.Counseling {
		out.Counseling[k] = d
	}
	out.Weekly = make(map[string]WeeklyDraft, len(v.Weekly))
	for k, d := range v.Weekly {
		out.Weekly[k] = d
	}
	return out
}

// TakeMessages returns the pending flash and error and clears them.
func (v *ViewState) TakeMessages() (flash, errMsg string) {
	flash, errMsg = v.Flash, v.Error
	v.Flash, v.Error = "", ""
	return flash, errMsg
}

type draftEntry struct {
	state   ViewState
	touched time.Time
}

// DraftStore keeps one ViewState per browser session in memory. Expired
// sessions are dropped lazily on access.
type DraftStore struct {
	mu      sync.Mutex
	entries map[string]*draftEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{
		entries: make(map[string]*draftEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load returns the session id and a copy of its state, issuing a new session
// cookie when the request has none or its session expired.
func (s *DraftStore) Load(w http.ResponseWriter, r *http.Request) (string, ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expire(now)

	if c, err := r.Cookie(DraftCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			if e, ok := s.entries[c.Value]; ok {
				e.touched = now
				return c.Value, e.state.clone()
			}
		}
	}

	id := uuid.NewString()
	state := ViewState{}.clone()
	s.entries[id] = &draftEntry{state: state, touched: now}
	http.SetCookie(w, &http.Cookie{
		Name:     DraftCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, state.clone()
}

// Save replaces the stored state for id.
func (s *DraftStore) Save(id string, state ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &draftEntry{state: state.clone(), touched: s.now()}
}

// Len reports how many sessions are held.
func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *DraftStore) expire(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.touched) > s.ttl {
			delete(s.entries, id)
		}
	}
}
