package aiwriter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"studentdesk/internal/logging"
)

// FailurePrefix starts every string this package returns in place of
// generated text when the remote call did not succeed.
const FailurePrefix = "[AI 오류]"

// MissingInputMessage is returned by AnalyzeMistakes when the wrong-answer
// list or the document text is empty.
const MissingInputMessage = "오답 번호와 시험지 PDF 내용이 모두 있어야 분석할 수 있습니다."

const (
	DefaultModel            = "gemini-2.5-flash"
	DefaultMaxDocumentRunes = 12000
)

// IsFailure reports whether s is a failure string rather than generated text.
func IsFailure(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), FailurePrefix)
}

type Config struct {
	APIKey           string
	Model            string
	BaseURL          string
	HTTPClient       *http.Client
	Prompts          *Prompts
	MaxDocumentRunes int
}

// Writer turns teacher notes into parent-facing text. Every call is a single
// attempt; failures come back as FailurePrefix strings, never as errors.
type Writer struct {
	client   *genai.Client
	model    string
	prompts  *Prompts
	maxRunes int
	config   *genai.GenerateContentConfig
}

// New creates a Writer. Without an API key the Writer still works but every
// remote call returns a failure string.
func New(ctx context.Context, cfg Config) (*Writer, error) {
	w := &Writer{
		model:    cfg.Model,
		prompts:  cfg.Prompts,
		maxRunes: cfg.MaxDocumentRunes,
	}
	if w.model == "" {
		w.model = DefaultModel
	}
	if w.prompts == nil {
		w.prompts = DefaultPrompts()
	}
	if w.maxRunes <= 0 {
		w.maxRunes = DefaultMaxDocumentRunes
	}
	w.config = &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	if sys := strings.TrimSpace(w.prompts.System); sys != "" {
		w.config.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}

	if cfg.APIKey == "" {
		logging.L().Warn("GEMINI_API_KEY not set; AI rewriting disabled")
		return w, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	w.client = client
	return w, nil
}

// Prompts returns the prompt set in use.
func (w *Writer) Prompts() *Prompts {
	return w.prompts
}

// Rephrase rewrites note as a polished message about student. category names
// the kind of note, e.g. "상담". Blank notes return "" without a remote call.
func (w *Writer) Rephrase(ctx context.Context, note, category, student string) string {
	if strings.TrimSpace(note) == "" {
		return ""
	}
	return w.generate(ctx, "rephrase", w.prompts.rephrasePrompt(note, category, student))
}

// AnalyzeMistakes writes feedback on the wrong answers of a test whose text
// was extracted from the uploaded exam document. Both wrong and document must
// be present; otherwise MissingInputMessage is returned without a remote call.
func (w *Writer) AnalyzeMistakes(ctx context.Context, student, wrong, document, category string, audience Audience) string {
	if strings.TrimSpace(wrong) == "" || strings.TrimSpace(document) == "" {
		return MissingInputMessage
	}
	document = truncateRunes(document, w.maxRunes)
	return w.generate(ctx, "analysis", w.prompts.analysisPrompt(student, wrong, document, category, audience))
}

func (w *Writer) generate(ctx context.Context, op, prompt string) string {
	log := logging.L()
	if w.client == nil {
		return FailurePrefix + " API 키가 설정되지 않았습니다."
	}

	resp, err := w.client.Models.GenerateContent(ctx, w.model, genai.Text(prompt), w.config)
	if err != nil {
		log.Warnw("generate content failed", "op", op, "model", w.model, "error", err)
		return failureText(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		log.Warnw("generate content returned no text", "op", op, "model", w.model)
		return FailurePrefix + " 응답에 생성된 문장이 없습니다."
	}
	log.Debugw("generate content ok", "op", op, "prompt_runes", utf8.RuneCountInString(prompt), "reply_runes", utf8.RuneCountInString(text))
	return text
}

// failureText formats a remote failure. Non-success HTTP statuses carry their
// code; anything else is reported as a transport failure.
func failureText(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s 상태 코드 %d: %s", FailurePrefix, apiErr.Code, apiErr.Message)
	}
	return fmt.Sprintf("%s 요청 실패: %v", FailurePrefix, err)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
