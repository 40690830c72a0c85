package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const maxPostingChars = 20000

// ErrLLMDisabled is returned when no API key was configured.
var ErrLLMDisabled = errors.New("llm extraction is not configured")

// ApplicationDraft is the prefill suggested for the create form.
type ApplicationDraft struct {
	CompanyName string `json:"company_name"`
	Role        string `json:"role"`
}

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini. An empty apiKey yields a disabled service.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return &LLMService{}, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.Client != nil
}

const applicationExtractionPrompt = `
You are a job posting reader. From the raw HTML/text below, identify the hiring company and the job title.

### INSTRUCTIONS:
1. Ignore navigation menus, footers, "similar jobs" lists and advertisements.
2. Answer with valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{"company_name": "Name of the company", "role": "Job title"}

If a value is missing, use an empty string. Do not guess.

### RAW CONTENT:
%s
`

// ExtractApplication asks the model for the company and role of a job posting.
func (s *LLMService) ExtractApplication(ctx context.Context, rawHTML string) (*ApplicationDraft, error) {
	if !s.Enabled() {
		return nil, ErrLLMDisabled
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(applicationExtractionPrompt, truncateUTF8(rawHTML, maxPostingChars)))
	if err != nil {
		return nil, err
	}
	return ParseApplicationDraft(resp)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ParseApplicationDraft decodes a model reply, tolerating a surrounding code fence.
func ParseApplicationDraft(resp string) (*ApplicationDraft, error) {
	body := strings.TrimSpace(resp)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")

	var draft ApplicationDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &draft); err != nil {
		return nil, fmt.Errorf("decode llm reply: %w", err)
	}
	draft.CompanyName = strings.TrimSpace(draft.CompanyName)
	draft.Role = strings.TrimSpace(draft.Role)
	return &draft, nil
}
