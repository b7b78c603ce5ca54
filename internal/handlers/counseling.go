package handlers

import (
	"net/http"
	"strings"

	"studentdesk/internal/aiwriter"
	"studentdesk/internal/config"
	"studentdesk/internal/logging"
	"studentdesk/internal/models"
	"studentdesk/internal/util"
)

// CategoryCounseling labels counseling notes in rewrite prompts.
const CategoryCounseling = "상담"

type CounselingHandler struct {
	base
	ai Rewriter
}

func NewCounselingHandler(cfg *config.Config, repo *models.Repository, drafts *DraftStore, ai Rewriter) *CounselingHandler {
	return &CounselingHandler{base: base{cfg: cfg, repo: repo, drafts: drafts}, ai: ai}
}

// Submit handles the counseling form. action=rewrite fills the rewritten
// draft, action=discard clears it and action=save appends the note.
func (h *CounselingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/students", http.StatusSeeOther)
		return
	}

	id, state := h.drafts.Load(w, r)
	draft := CounselingDraft{
		Date:      strings.TrimSpace(r.FormValue("date")),
		Note:      r.FormValue("note"),
		Rewritten: r.FormValue("rewritten"),
	}

	switch r.FormValue("action") {
	case "rewrite":
		if strings.TrimSpace(draft.Note) == "" {
			state.Error = "다듬을 상담 내용을 먼저 입력해 주세요."
			break
		}
		draft.Rewritten = h.ai.Rephrase(r.Context(), draft.Note, CategoryCounseling, name)
		h.cfg.Debugf("counseling rewrite for %s: failure=%v", name, aiwriter.IsFailure(draft.Rewritten))
	case "discard":
		draft.Rewritten = ""
	case "save":
		if msg := h.save(r, name, draft); msg != "" {
			state.Error = msg
			break
		}
		state.Flash = "상담 기록을 저장했습니다."
		delete(state.Counseling, name)
		h.drafts.Save(id, state)
		http.Redirect(w, r, detailURL(name, TabCounseling), http.StatusSeeOther)
		return
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	if draft.empty() {
		delete(state.Counseling, name)
	} else {
		state.Counseling[name] = draft
	}
	h.drafts.Save(id, state)
	http.Redirect(w, r, detailURL(name, TabCounseling), http.StatusSeeOther)
}

// save validates and appends the draft. The rewritten text is stored when
// present, the raw note otherwise. It returns a user-facing error or "".
func (h *CounselingHandler) save(r *http.Request, name string, draft CounselingDraft) string {
	date, err := util.ParseDateLocal(draft.Date)
	if err != nil {
		return "상담 날짜를 확인해 주세요."
	}
	if err := util.ValidateNotFutureDate(date); err != nil {
		return "상담 날짜는 오늘 이후일 수 없습니다."
	}

	content := strings.TrimSpace(draft.Rewritten)
	if content == "" {
		content = strings.TrimSpace(draft.Note)
	}
	if content == "" {
		return "상담 내용을 입력해 주세요."
	}
	if aiwriter.IsFailure(content) {
		return "AI 오류 문구는 저장할 수 없습니다. 문장을 고치거나 지운 뒤 다시 저장해 주세요."
	}

	err = h.repo.AddCounseling(r.Context(), models.CounselingEntry{
		StudentName: name,
		Date:        date.Format(util.DateLayout),
		Note:        content,
	})
	if err != nil {
		logging.L().Errorw("save counseling failed", "name", name, "error", err)
		return "상담 기록을 저장하지 못했습니다: " + err.Error()
	}
	logging.L().Infow("counseling saved", "name", name, "date", draft.Date)
	return ""
}
