package news

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const maxArticlesForSummary = 5

// OpenAISummarizer writes summaries through the OpenAI chat completions API.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer creates a summarizer with the given API key.
func NewOpenAISummarizer(apiKey string) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// Summarize asks the model for a 2-3 sentence summary of the current air
// quality situation and the retrieved headlines.
func (s *OpenAISummarizer) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	var headlines []string
	for i, a := range req.Articles {
		if i >= maxArticlesForSummary {
			break
		}
		headlines = append(headlines, fmt.Sprintf("- %s (%s)", a.Title, a.Source))
	}

	prompt := fmt.Sprintf(
		"Current air quality in %s: AQI %d, rated %q.\n\nRecent headlines:\n%s\n\nWrite a concise summary (2-3 sentences maximum) of the air quality situation for dashboard users. Mention health guidance appropriate to the rating.",
		req.Location, req.AQI, req.Level, strings.Join(headlines, "\n"))

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that summarizes air quality conditions and related news concisely for a monitoring dashboard.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   150,
			N:           1,
			Temperature: 0.5,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty response or choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
