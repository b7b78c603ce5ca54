package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdesk/internal/aiwriter"
	"studentdesk/internal/models"
)

var weeklyPath = "/students/weekly?name=" + url.QueryEscape("김민준")

func weeklyForm(action string, extra map[string]string) url.Values {
	v := url.Values{
		"action":              {action},
		"period":              {"9월 2주"},
		"homework":            {"95%"},
		"assignment":          {"쎈 수학 p.30-45"},
		"weekly_score":        {"88"},
		"weekly_average":      {"71.5"},
		"weekly_wrong":        {"12 3 7"},
		"weekly_note":         {"계산 실수가 잦음"},
		"achievement_score":   {"1,000"},
		"achievement_average": {""},
		"achievement_wrong":   {""},
		"achievement_note":    {""},
		"analysis_category":   {"weekly"},
		"audience":            {"parent"},
		"analysis":            {""},
	}
	for k, val := range extra {
		v.Set(k, val)
	}
	return v
}

func (e *testEnv) postMultipart(path string, fields url.Values, fileName string, file []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vals := range fields {
		for _, v := range vals {
			require.NoError(e.t, mw.WriteField(k, v))
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("document", fileName)
		require.NoError(e.t, err)
		_, err = fw.Write(file)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func TestWeeklySave(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.register("김민준", "A1")

	rec := env.postForm(weeklyPath, weeklyForm("save", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code, body(rec))
	assert.Equal(t, detailURL("김민준", TabReport), rec.Header().Get("Location"))

	records := env.repo.Weekly(context.Background(), "김민준")
	require.Len(t, records, 1)
	assert.Equal(t, models.WeeklyRecord{
		StudentName:      "김민준",
		Period:           "9월 2주",
		Homework:         95,
		WeeklyScore:      88,
		WeeklyAverage:    71.5,
		WeeklyWrong:      "3, 7, 12",
		WeeklyNote:       "계산 실수가 잦음",
		AchievementScore: 1000,
		Assignment:       "쎈 수학 p.30-45",
	}, records[0])

	state := env.state()
	assert.NotContains(t, state.Weekly, "김민준")
	assert.Contains(t, state.Flash, "9월 2주")
}

func TestWeeklySaveValidation(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	rec := env.postForm(weeklyPath, weeklyForm("save", map[string]string{"period": " ", "weekly_score": "abc"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	page := body(rec)
	assert.Contains(t, page, "period cannot be blank")
	assert.Contains(t, page, "weekly_score must be a valid numeric value")

	assert.Empty(t, env.repo.Weekly(context.Background(), "김민준"))
	assert.Equal(t, "abc", env.state().Weekly["김민준"].WeeklyScore, "draft survives a failed save")
}

func TestWeeklySaveRejectsAIFailure(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	rec := env.postForm(weeklyPath, weeklyForm("save", map[string]string{
		"analysis": "[AI 오류] 요청 실패: dial tcp: connection refused",
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body(rec), "analysis holds an AI error message")
	assert.Empty(t, env.repo.Weekly(context.Background(), "김민준"))
}

func TestWeeklyRewriteNotes(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	rec := env.postForm(weeklyPath, weeklyForm("rewrite_weekly", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, detailURL("김민준", TabGrades), rec.Header().Get("Location"))

	// the page comes back with the rewritten weekly note in its textarea
	env.postForm(weeklyPath, weeklyForm("rewrite_achievement", map[string]string{
		"weekly_note":      env.state().Weekly["김민준"].WeeklyNote,
		"achievement_note": "서술형 감점",
	}))

	calls := env.ai.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, CategoryWeeklyNote, calls[0].category)
	assert.Equal(t, CategoryAchievementNote, calls[1].category)

	draft := env.state().Weekly["김민준"]
	assert.Equal(t, "다듬은 문장: 계산 실수가 잦음", draft.WeeklyNote)
	assert.Equal(t, "다듬은 문장: 서술형 감점", draft.AchievementNote)
	assert.Equal(t, "95", draft.Homework, "the rest of the form is kept")
}

func TestWeeklyFailedRewriteKeepsNote(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.ai.reply = "[AI 오류] 상태 코드 503: overloaded"

	rec := env.postForm(weeklyPath, weeklyForm("rewrite_weekly", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	state := env.state()
	assert.Equal(t, "계산 실수가 잦음", state.Weekly["김민준"].WeeklyNote)
	assert.Contains(t, state.Error, "상태 코드 503")

	// retrying sends the original note again
	env.ai.reply = ""
	env.postForm(weeklyPath, weeklyForm("rewrite_weekly", map[string]string{
		"weekly_note": state.Weekly["김민준"].WeeklyNote,
	}))
	calls := env.ai.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "계산 실수가 잦음", calls[1].text)
	assert.Equal(t, "다듬은 문장: 계산 실수가 잦음", env.state().Weekly["김민준"].WeeklyNote)
}

func TestWeeklyAnalyzeMissingInputIsNotStored(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.ai.reply = aiwriter.MissingInputMessage

	env.postForm(weeklyPath, weeklyForm("analyze", map[string]string{"analysis": "이전 분석"}))
	state := env.state()
	assert.Equal(t, "이전 분석", state.Weekly["김민준"].Analysis)
	assert.Equal(t, aiwriter.MissingInputMessage, state.Error)

	rec := env.postForm(weeklyPath, weeklyForm("save", map[string]string{"analysis": aiwriter.MissingInputMessage}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, env.repo.Weekly(context.Background(), "김민준"))
}

func TestWeeklyAnalyzeUsesStoredDocument(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	// establish the session, then attach a previously extracted document
	env.postForm(weeklyPath, weeklyForm("rewrite_weekly", nil))
	id := env.cookies[DraftCookieName].Value
	state := env.state()
	d := state.Weekly["김민준"]
	d.DocumentName = "exam.pdf"
	d.DocumentText = "1. 다음 중 옳은 것은?"
	state.Weekly["김민준"] = d
	env.drafts.Save(id, state)

	env.postForm(weeklyPath, weeklyForm("analyze", map[string]string{
		"analysis_category": "achievement",
		"achievement_wrong": "5 2",
		"audience":          "student",
	}))

	calls := env.ai.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, rewriteCall{
		op:       "analyze",
		text:     "2, 5",
		category: CategoryAchievementTest,
		student:  "김민준",
		document: "1. 다음 중 옳은 것은?",
		audience: aiwriter.AudienceStudent,
	}, calls[1])

	draft := env.state().Weekly["김민준"]
	assert.Equal(t, "분석: 2, 5 (student)", draft.Analysis)
	assert.Equal(t, "exam.pdf", draft.DocumentName)
}

func TestWeeklyUploadRejectsInvalidPDF(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	rec := env.postMultipart(weeklyPath, weeklyForm("analyze", nil), "notes.pdf", []byte("definitely not a pdf"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	state := env.state()
	assert.Contains(t, state.Error, "PDF에서 텍스트를 읽지 못했습니다")
	assert.Empty(t, state.Weekly["김민준"].DocumentText)
}

func TestWeeklyUploadTooLarge(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	big := bytes.Repeat([]byte("x"), 3<<20)
	rec := env.postMultipart(weeklyPath, weeklyForm("analyze", nil), "big.pdf", big)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, detailURL("김민준", TabGrades), rec.Header().Get("Location"))
	assert.Contains(t, env.state().Error, "너무 크거나")
	assert.Empty(t, env.ai.recorded())
}
