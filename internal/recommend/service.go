// Package recommend produces urban planning recommendations for improving
// air quality, backed by an LLM with a deterministic fallback.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint used by default.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// DefaultModel is the chat model requested through OpenRouter.
const DefaultModel = "openai/gpt-4o-mini"

// Request describes the area the recommendations are for.
type Request struct {
	Location string `json:"location"`
	AQI      int    `json:"aqi"`
	Level    string `json:"level"`
	// Concerns are optional focus areas (traffic, industry, green space).
	Concerns []string `json:"concerns,omitempty"`
}

// Recommendation is one actionable urban planning suggestion.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// Response is the recommendation set returned to the dashboard.
type Response struct {
	Location        string           `json:"location"`
	AQI             int              `json:"aqi"`
	Recommendations []Recommendation `json:"recommendations"`
	// Source is "ai" when the model produced the set, "fallback" otherwise.
	Source string `json:"source"`
}

// ChatClient is the subset of the OpenAI client the service uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ServiceConfig holds configuration for the recommendation service.
type ServiceConfig struct {
	// Client is the chat completion client (optional). If nil, every
	// request is served from the fallback set.
	Client ChatClient

	// Model overrides DefaultModel (optional).
	Model string

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service generates recommendations. Model failures degrade to a fixed
// recommendation set instead of surfacing an error.
type Service struct {
	client ChatClient
	model  string
	logger zerolog.Logger
}

// NewService creates a recommendation service.
func NewService(cfg ServiceConfig) *Service {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Service{
		client: cfg.Client,
		model:  model,
		logger: cfg.Logger,
	}
}

// NewOpenRouterClient creates a chat client against the OpenRouter endpoint.
func NewOpenRouterClient(apiKey string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = OpenRouterBaseURL
	return openai.NewClientWithConfig(clientCfg)
}

// GetRecommendations returns urban planning recommendations for the request.
func (s *Service) GetRecommendations(ctx context.Context, req Request) (*Response, error) {
	if req.Location == "" {
		req.Location = "the monitored area"
	}

	if s.client == nil {
		return s.fallback(req), nil
	}

	recs, err := s.generate(ctx, req)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("location", req.Location).
			Msg("recommendation model failed, using fallback set")
		return s.fallback(req), nil
	}

	return &Response{
		Location:        req.Location,
		AQI:             req.AQI,
		Recommendations: recs,
		Source:          "ai",
	}, nil
}

func (s *Service) generate(ctx context.Context, req Request) ([]Recommendation, error) {
	prompt := buildPrompt(req)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an urban planning advisor focused on air quality interventions. Respond with a JSON array of objects with fields title, description, category, priority. No prose outside the JSON.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   600,
			Temperature: 0.4,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("model returned empty response")
	}

	recs, err := parseRecommendations(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("model returned no recommendations")
	}
	return recs, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s. Current AQI: %d (%s).", req.Location, req.AQI, req.Level)
	if len(req.Concerns) > 0 {
		fmt.Fprintf(&b, " Focus areas: %s.", strings.Join(req.Concerns, ", "))
	}
	b.WriteString(" Suggest 3 to 5 urban planning interventions that would improve air quality here.")
	return b.String()
}

// parseRecommendations extracts the JSON array from the model output,
// tolerating surrounding markdown fences.
func parseRecommendations(content string) ([]Recommendation, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(content[start:end+1]), &recs); err != nil {
		return nil, fmt.Errorf("decoding model output: %w", err)
	}
	return recs, nil
}

// fallback returns the deterministic recommendation set for the AQI tier.
func (s *Service) fallback(req Request) *Response {
	recs := []Recommendation{
		{
			Title:       "Expand urban green corridors",
			Description: "Plant street trees and connect parks along major roads to filter particulates and cool the corridor.",
			Category:    "green-space",
			Priority:    "high",
		},
		{
			Title:       "Prioritize low-emission transit",
			Description: "Shift bus fleets to electric and add protected cycle lanes on commuter routes to cut traffic emissions.",
			Category:    "transport",
			Priority:    "high",
		},
		{
			Title:       "Monitor industrial hotspots",
			Description: "Add continuous monitoring near industrial zones and enforce emission permits where readings spike.",
			Category:    "industry",
			Priority:    "medium",
		},
	}

	if req.AQI > 150 {
		recs = append(recs, Recommendation{
			Title:       "Activate clean air shelters",
			Description: "Designate filtered public buildings as clean air spaces during unhealthy episodes and publicize their locations.",
			Category:    "public-health",
			Priority:    "high",
		})
	}

	return &Response{
		Location:        req.Location,
		AQI:             req.AQI,
		Recommendations: recs,
		Source:          "fallback",
	}
}
