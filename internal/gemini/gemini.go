// Package gemini writes short digests of article text with Google Gemini.
// It is optional: without an API key the pipeline never constructs it.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

const maxPromptRunes = 6000

// sanitizeContent collapses whitespace and cuts over-long text, preferring
// a sentence boundary.
func sanitizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= maxPromptRunes {
		return content
	}

	trimmed := string([]rune(content)[:maxPromptRunes])
	if idx := lastSentenceEnd(trimmed); idx > 1200 {
		trimmed = trimmed[:idx]
	}
	return trimmed + "\n[TRUNCATED]"
}

func lastSentenceEnd(s string) int {
	best := -1
	for _, mark := range []string{". ", "。", "！", "？"} {
		if idx := strings.LastIndex(s, mark); idx >= 0 && idx+len(mark) > best {
			best = idx + len(mark)
		}
	}
	return best
}

func buildPrompt(title, content string) string {
	return fmt.Sprintf(`Summarize this news article for a daily digest.

ARTICLE:
Title: %s
Content: %s

REQUIREMENTS:
Write the summary in the same language as the article.
Keep it under 300 characters, factual, without introductory phrases.
Do not translate brand or organization names.

Answer strictly in this format:

SUMMARY: <summary>
`, title, content)
}

var summaryLabel = regexp.MustCompile(`(?i)^(SUMMARY|摘要)\s*[:：]\s*`)

// parseSummary extracts the SUMMARY block. Unlabelled answers are used as
// they are.
func parseSummary(response string) string {
	var b strings.Builder
	inSummary := false

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if summaryLabel.MatchString(line) {
			inSummary = true
			line = strings.TrimSpace(summaryLabel.ReplaceAllString(line, ""))
		} else if !inSummary {
			continue
		}
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(line)
	}

	if b.Len() == 0 {
		return strings.Join(strings.Fields(response), " ")
	}
	return b.String()
}
