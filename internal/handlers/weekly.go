package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"studentdesk/internal/aiwriter"
	"studentdesk/internal/config"
	"studentdesk/internal/logging"
	"studentdesk/internal/models"
	"studentdesk/internal/pdftext"
	"studentdesk/internal/util"
)

// Rewrite prompt categories for the grade form.
const (
	CategoryWeeklyNote      = "주간 특이사항"
	CategoryAchievementNote = "성취도 특이사항"
	CategoryWeeklyTest      = "주간 테스트"
	CategoryAchievementTest = "성취도 평가"
)

const defaultMaxUploadMB = 20

type WeeklyHandler struct {
	base
	ai Rewriter
}

func NewWeeklyHandler(cfg *config.Config, repo *models.Repository, drafts *DraftStore, ai Rewriter) *WeeklyHandler {
	return &WeeklyHandler{base: base{cfg: cfg, repo: repo, drafts: drafts}, ai: ai}
}

func (h *WeeklyHandler) maxUploadBytes() int64 {
	mb := int64(defaultMaxUploadMB)
	if h.cfg != nil && h.cfg.MaxUploadMB > 0 {
		mb = h.cfg.MaxUploadMB
	}
	return mb << 20
}

// Submit handles the grade form: note rewrites, wrong-answer analysis of an
// uploaded exam PDF, and saving the weekly record.
func (h *WeeklyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The student is read from the query so an oversized upload can still
	// redirect back to the right page.
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	limit := h.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	parseErr := r.ParseMultipartForm(limit)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if name == "" {
		name = strings.TrimSpace(r.FormValue("name"))
	}
	if name == "" {
		http.Redirect(w, r, "/students", http.StatusSeeOther)
		return
	}

	id, state := h.drafts.Load(w, r)
	if parseErr != nil && !errors.Is(parseErr, http.ErrNotMultipart) {
		logging.L().Warnw("grade form rejected", "name", name, "error", parseErr)
		state.Error = "업로드한 파일이 너무 크거나 읽을 수 없습니다."
		h.drafts.Save(id, state)
		http.Redirect(w, r, detailURL(name, TabGrades), http.StatusSeeOther)
		return
	}

	draft := weeklyDraftFrom(r, state.Weekly[name])
	if msg := h.readDocument(r, &draft); msg != "" {
		state.Error = msg
	}

	ctx := r.Context()
	switch r.FormValue("action") {
	case "rewrite_weekly":
		if strings.TrimSpace(draft.WeeklyNote) == "" {
			state.Error = "다듬을 주간 특이사항을 먼저 입력해 주세요."
			break
		}
		draft.WeeklyNote = keepUnlessUnusable(&state, draft.WeeklyNote,
			h.ai.Rephrase(ctx, draft.WeeklyNote, CategoryWeeklyNote, name))
	case "rewrite_achievement":
		if strings.TrimSpace(draft.AchievementNote) == "" {
			state.Error = "다듬을 성취도 특이사항을 먼저 입력해 주세요."
			break
		}
		draft.AchievementNote = keepUnlessUnusable(&state, draft.AchievementNote,
			h.ai.Rephrase(ctx, draft.AchievementNote, CategoryAchievementNote, name))
	case "analyze":
		wrong, category := draft.WeeklyWrong, CategoryWeeklyTest
		if draft.AnalysisCategory == "achievement" {
			wrong, category = draft.AchievementWrong, CategoryAchievementTest
		}
		draft.Analysis = keepUnlessUnusable(&state, draft.Analysis,
			h.ai.AnalyzeMistakes(ctx, name, util.SortNumberList(wrong), draft.DocumentText,
				category, aiwriter.ParseAudience(draft.Audience)))
	case "save":
		if fieldErrors := h.check(draft); fieldErrors != nil {
			state.Weekly[name] = draft
			h.drafts.Save(id, state)
			state.Error = "입력값을 확인해 주세요."
			h.renderDetail(w, r, http.StatusUnprocessableEntity, state, name, TabGrades, fieldErrors)
			return
		}
		if err := h.repo.AddWeekly(ctx, weeklyRecord(name, draft)); err != nil {
			logging.L().Errorw("save weekly record failed", "name", name, "error", err)
			state.Error = "성적을 저장하지 못했습니다: " + err.Error()
			break
		}
		logging.L().Infow("weekly record saved", "name", name, "period", draft.Period)
		delete(state.Weekly, name)
		state.Flash = draft.Period + " 성적을 저장했습니다."
		h.drafts.Save(id, state)
		http.Redirect(w, r, detailURL(name, TabReport), http.StatusSeeOther)
		return
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	state.Weekly[name] = draft
	h.drafts.Save(id, state)
	http.Redirect(w, r, detailURL(name, TabGrades), http.StatusSeeOther)
}

// readDocument extracts text from an uploaded PDF into the draft. No upload
// leaves the previous document in place.
func (h *WeeklyHandler) readDocument(r *http.Request, draft *WeeklyDraft) string {
	if r.MultipartForm == nil {
		return ""
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		return ""
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "업로드한 파일을 읽지 못했습니다."
	}
	if len(data) == 0 {
		return ""
	}
	text, err := pdftext.ExtractBytes(data)
	if err != nil {
		logging.L().Warnw("pdf extraction failed", "file", header.Filename, "error", err)
		return "PDF에서 텍스트를 읽지 못했습니다: " + header.Filename
	}
	draft.DocumentName = header.Filename
	draft.DocumentText = text
	h.cfg.Debugf("extracted %d bytes of text from %s", len(text), header.Filename)
	return ""
}

// keepUnlessUnusable returns result, or prev with result shown as the page
// error when the AI call produced no usable text.
func keepUnlessUnusable(state *ViewState, prev, result string) string {
	if unusableAI(result) {
		state.Error = strings.TrimSpace(result)
		return prev
	}
	return result
}

// check validates the draft for saving and refuses AI failure strings.
func (h *WeeklyHandler) check(d WeeklyDraft) map[string]string {
	fieldErrors := validateForm(d)
	for _, field := range d.failedAIFields() {
		if fieldErrors == nil {
			fieldErrors = map[string]string{}
		}
		fieldErrors[field] = field + " holds an AI error message; edit or clear it before saving"
	}
	return fieldErrors
}

func weeklyRecord(name string, d WeeklyDraft) models.WeeklyRecord {
	return models.WeeklyRecord{
		StudentName:        name,
		Period:             d.Period,
		Homework:           util.ParseNumber(d.Homework),
		WeeklyScore:        util.ParseNumber(d.WeeklyScore),
		WeeklyAverage:      util.ParseNumber(d.WeeklyAverage),
		WeeklyWrong:        d.WeeklyWrong,
		WeeklyNote:         strings.TrimSpace(d.WeeklyNote),
		AchievementScore:   util.ParseNumber(d.AchievementScore),
		AchievementAverage: util.ParseNumber(d.AchievementAverage),
		AchievementWrong:   d.AchievementWrong,
		AchievementNote:    strings.TrimSpace(d.AchievementNote),
		Assignment:         d.Assignment,
		Analysis:           strings.TrimSpace(d.Analysis),
	}
}
