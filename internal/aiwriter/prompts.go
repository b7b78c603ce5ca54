package aiwriter

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Audience selects who an analysis is written for.
type Audience string

const (
	AudienceParent  Audience = "parent"
	AudienceStudent Audience = "student"
)

// ParseAudience maps a form value to an Audience, defaulting to parents.
func ParseAudience(s string) Audience {
	if Audience(strings.TrimSpace(s)) == AudienceStudent {
		return AudienceStudent
	}
	return AudienceParent
}

type AudiencePrompt struct {
	Label     string   `yaml:"label"`
	Tone      string   `yaml:"tone"`
	Structure []string `yaml:"structure"`
}

type Prompts struct {
	System   string `yaml:"system"`
	Rephrase struct {
		Instruction string   `yaml:"instruction"`
		Rules       []string `yaml:"rules"`
	} `yaml:"rephrase"`
	Analysis struct {
		Instruction string                      `yaml:"instruction"`
		Audiences   map[Audience]AudiencePrompt `yaml:"audiences"`
		Rules       []string                    `yaml:"rules"`
	} `yaml:"analysis"`
}

// DefaultPrompts returns the embedded prompt set.
func DefaultPrompts() *Prompts {
	p := &Prompts{}
	if err := yaml.Unmarshal(defaultPromptsYAML, p); err != nil {
		panic("aiwriter: embedded prompts.yaml is invalid: " + err.Error())
	}
	return p
}

// LoadPrompts reads a prompt file over the embedded defaults. An empty path
// returns the defaults.
func LoadPrompts(path string) (*Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read prompts file")
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, errors.Wrapf(err, "parse prompts file %s", path)
	}
	return p, nil
}

// AudienceLabel returns the display label for a, e.g. "학부모용".
func (p *Prompts) AudienceLabel(a Audience) string {
	if ap, ok := p.Analysis.Audiences[a]; ok && ap.Label != "" {
		return ap.Label
	}
	return string(a)
}

func fill(tmpl, student, category string) string {
	return strings.NewReplacer("{{student}}", student, "{{category}}", category).Replace(tmpl)
}

func (p *Prompts) rephrasePrompt(note, category, student string) string {
	var b strings.Builder
	b.WriteString(fill(p.Rephrase.Instruction, displayName(student), category))
	b.WriteString("\n\n[작성 규칙]\n")
	writeList(&b, p.Rephrase.Rules)
	b.WriteString("\n[원본 메모]\n")
	b.WriteString(strings.TrimSpace(note))
	b.WriteString("\n")
	return b.String()
}

func (p *Prompts) analysisPrompt(student, wrong, document, category string, audience Audience) string {
	ap := p.Analysis.Audiences[audience]

	var b strings.Builder
	b.WriteString(fill(p.Analysis.Instruction, displayName(student), category))
	b.WriteString("\n\n[대상]\n")
	b.WriteString(p.AudienceLabel(audience))
	if ap.Tone != "" {
		b.WriteString(" - ")
		b.WriteString(ap.Tone)
	}
	if len(ap.Structure) > 0 {
		b.WriteString("\n\n[구성]\n")
		writeList(&b, ap.Structure)
	}
	if len(p.Analysis.Rules) > 0 {
		b.WriteString("\n[작성 규칙]\n")
		writeList(&b, p.Analysis.Rules)
	}
	b.WriteString("\n[틀린 문항]\n")
	b.WriteString(strings.TrimSpace(wrong))
	b.WriteString("\n\n[시험지 본문]\n")
	b.WriteString(strings.TrimSpace(document))
	b.WriteString("\n")
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	for i, item := range items {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func displayName(student string) string {
	if s := strings.TrimSpace(student); s != "" {
		return s
	}
	return "해당"
}
