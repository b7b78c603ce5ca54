package aiwriter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGemini answers generateContent calls with a fixed status and reply and
// records every prompt it receives.
type fakeGemini struct {
	status int
	reply  string

	mu      sync.Mutex
	prompts []string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	for _, c := range body.Contents {
		for _, p := range c.Parts {
			f.prompts = append(f.prompts, p.Text)
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != http.StatusOK {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `{"error":{"code":`+strconv.Itoa(f.status)+`,"message":"permission denied","status":"PERMISSION_DENIED"}}`)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []interface{}{map[string]interface{}{"text": f.reply}},
				},
				"finishReason": "STOP",
			},
		},
	})
}

func (f *fakeGemini) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func newTestWriter(t *testing.T, api http.Handler) (*Writer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	w, err := New(context.Background(), Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return w, srv
}

func TestRephraseReturnsGeneratedText(t *testing.T) {
	api := &fakeGemini{status: http.StatusOK, reply: "  민준이가 이번 주 과제를 성실히 해 왔어요.  "}
	w, _ := newTestWriter(t, api)

	got := w.Rephrase(context.Background(), "과제 다 해옴. 집중 좋음", "상담", "김민준")
	assert.Equal(t, "민준이가 이번 주 과제를 성실히 해 왔어요.", got)
	assert.False(t, IsFailure(got))

	require.Equal(t, 1, api.calls())
	assert.Contains(t, api.prompts[0], "과제 다 해옴. 집중 좋음")
	assert.Contains(t, api.prompts[0], "김민준")
	assert.Contains(t, api.prompts[0], "상담")
}

func TestRephraseEmptyInputSkipsRemoteCall(t *testing.T) {
	api := &fakeGemini{status: http.StatusOK, reply: "unused"}
	w, _ := newTestWriter(t, api)

	for _, note := range []string{"", "   ", "\n\t"} {
		assert.Equal(t, "", w.Rephrase(context.Background(), note, "상담", "김민준"))
	}
	assert.Zero(t, api.calls())
}

func TestRephraseNonSuccessStatus(t *testing.T) {
	api := &fakeGemini{status: http.StatusForbidden}
	w, _ := newTestWriter(t, api)

	var got string
	assert.NotPanics(t, func() {
		got = w.Rephrase(context.Background(), "상담 내용", "상담", "김민준")
	})
	assert.True(t, IsFailure(got), "got %q", got)
	assert.Contains(t, got, "403")
}

func TestRephraseTransportFailure(t *testing.T) {
	api := &fakeGemini{status: http.StatusOK, reply: "x"}
	w, srv := newTestWriter(t, api)
	srv.Close()

	got := w.Rephrase(context.Background(), "상담 내용", "상담", "김민준")
	assert.True(t, IsFailure(got), "got %q", got)
	assert.Contains(t, got, "요청 실패")
}

func TestAnalyzeMistakesRequiresBothInputs(t *testing.T) {
	api := &fakeGemini{status: http.StatusOK, reply: "분석"}
	w, _ := newTestWriter(t, api)
	ctx := context.Background()

	assert.Equal(t, MissingInputMessage, w.AnalyzeMistakes(ctx, "김민준", "", "1. 다음을 계산하시오", "주간 테스트", AudienceParent))
	assert.Equal(t, MissingInputMessage, w.AnalyzeMistakes(ctx, "김민준", "3, 5", "  ", "주간 테스트", AudienceParent))
	assert.Zero(t, api.calls())

	got := w.AnalyzeMistakes(ctx, "김민준", "3, 5", "3. 이차방정식 ... 5. 근의 공식", "주간 테스트", AudienceStudent)
	assert.Equal(t, "분석", got)
	require.Equal(t, 1, api.calls())
	assert.Contains(t, api.prompts[0], "3, 5")
	assert.Contains(t, api.prompts[0], "학생용")
}

func TestAnalyzeMistakesNonSuccessStatus(t *testing.T) {
	api := &fakeGemini{status: http.StatusBadRequest}
	w, _ := newTestWriter(t, api)

	got := w.AnalyzeMistakes(context.Background(), "김민준", "1", "문항 1", "성취도 평가", AudienceParent)
	assert.True(t, IsFailure(got))
	assert.Contains(t, got, "400")
}

func TestAnalyzeMistakesTruncatesDocument(t *testing.T) {
	api := &fakeGemini{status: http.StatusOK, reply: "ok"}
	srv := httptest.NewServer(api)
	defer srv.Close()
	w, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client(), MaxDocumentRunes: 10})
	require.NoError(t, err)

	w.AnalyzeMistakes(context.Background(), "김민준", "1", strings.Repeat("가", 50)+"끝", "주간 테스트", AudienceParent)
	require.Equal(t, 1, api.calls())
	assert.Contains(t, api.prompts[0], strings.Repeat("가", 10))
	assert.NotContains(t, api.prompts[0], strings.Repeat("가", 11))
	assert.NotContains(t, api.prompts[0], "끝")
}

func TestWriterWithoutAPIKey(t *testing.T) {
	w, err := New(context.Background(), Config{})
	require.NoError(t, err)

	assert.Equal(t, "", w.Rephrase(context.Background(), "", "상담", "김민준"))
	got := w.Rephrase(context.Background(), "메모", "상담", "김민준")
	assert.True(t, IsFailure(got))
}

func TestAudiencePromptsDiffer(t *testing.T) {
	p := DefaultPrompts()
	parent := p.analysisPrompt("김민준", "2, 7", "본문", "주간 테스트", AudienceParent)
	student := p.analysisPrompt("김민준", "2, 7", "본문", "주간 테스트", AudienceStudent)

	assert.NotEqual(t, parent, student)
	assert.Contains(t, parent, "학부모용")
	assert.Contains(t, student, "학생용")
	assert.Equal(t, "학부모용", p.AudienceLabel(AudienceParent))
}

func TestParseAudience(t *testing.T) {
	assert.Equal(t, AudienceStudent, ParseAudience("student"))
	assert.Equal(t, AudienceParent, ParseAudience("parent"))
	assert.Equal(t, AudienceParent, ParseAudience(""))
	assert.Equal(t, AudienceParent, ParseAudience("teacher"))
}

func TestLoadPromptsOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rephrase:\n  instruction: \"{{student}} 메모를 짧게\"\n  rules: [\"한 문장\"]\n"), 0o600))

	p, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, "{{student}} 메모를 짧게", p.Rephrase.Instruction)
	assert.Equal(t, []string{"한 문장"}, p.Rephrase.Rules)
	assert.NotEmpty(t, p.Analysis.Audiences, "keys absent from the file keep their defaults")

	prompt := p.rephrasePrompt("원문", "상담", "이서연")
	assert.True(t, strings.HasPrefix(prompt, "이서연 메모를 짧게"))
}

func TestLoadPromptsMissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestIsFailure(t *testing.T) {
	assert.True(t, IsFailure(FailurePrefix+" 상태 코드 500: boom"))
	assert.True(t, IsFailure("  "+FailurePrefix+" 요청 실패: eof"))
	assert.False(t, IsFailure("정상 문장입니다."))
	assert.False(t, IsFailure(""))
}
