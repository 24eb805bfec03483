package recommend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/recommend"
)

type fakeChatClient struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestGetRecommendations_ParsesModelOutput(t *testing.T) {
	client := &fakeChatClient{content: `Here you go:
[
  {"title": "Car-free zone", "description": "Close the old town to cars.", "category": "transport", "priority": "high"}
]`}

	svc := recommend.NewService(recommend.ServiceConfig{
		Client: client,
		Logger: zerolog.Nop(),
	})

	resp, err := svc.GetRecommendations(context.Background(), recommend.Request{
		Location: "Oakland",
		AQI:      112,
		Level:    "Unhealthy for Sensitive Groups",
	})

	require.NoError(t, err)
	assert.Equal(t, "ai", resp.Source)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Car-free zone", resp.Recommendations[0].Title)
	assert.Equal(t, "Oakland", resp.Location)
	assert.Equal(t, 112, resp.AQI)
}

func TestGetRecommendations_PromptIncludesConcerns(t *testing.T) {
	client := &fakeChatClient{content: `[{"title": "t", "description": "d", "category": "c", "priority": "p"}]`}

	svc := recommend.NewService(recommend.ServiceConfig{
		Client: client,
		Logger: zerolog.Nop(),
	})

	_, err := svc.GetRecommendations(context.Background(), recommend.Request{
		Location: "Oakland",
		AQI:      80,
		Level:    "Moderate",
		Concerns: []string{"traffic", "green space"},
	})

	require.NoError(t, err)
	require.Len(t, client.lastReq.Messages, 2)
	assert.Contains(t, client.lastReq.Messages[1].Content, "traffic")
	assert.Contains(t, client.lastReq.Messages[1].Content, "green space")
}

func TestGetRecommendations_ModelErrorFallsBack(t *testing.T) {
	client := &fakeChatClient{err: errors.New("upstream 502")}

	svc := recommend.NewService(recommend.ServiceConfig{
		Client: client,
		Logger: zerolog.Nop(),
	})

	resp, err := svc.GetRecommendations(context.Background(), recommend.Request{
		Location: "Oakland",
		AQI:      60,
		Level:    "Moderate",
	})

	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Source)
	assert.NotEmpty(t, resp.Recommendations)
}

func TestGetRecommendations_MalformedOutputFallsBack(t *testing.T) {
	client := &fakeChatClient{content: "I cannot answer in JSON right now."}

	svc := recommend.NewService(recommend.ServiceConfig{
		Client: client,
		Logger: zerolog.Nop(),
	})

	resp, err := svc.GetRecommendations(context.Background(), recommend.Request{AQI: 42, Level: "Good"})

	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Source)
}

func TestGetRecommendations_NilClientUsesFallback(t *testing.T) {
	svc := recommend.NewService(recommend.ServiceConfig{Logger: zerolog.Nop()})

	resp, err := svc.GetRecommendations(context.Background(), recommend.Request{
		Location: "Oakland",
		AQI:      42,
		Level:    "Good",
	})

	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Source)
	require.NotEmpty(t, resp.Recommendations)
}

func TestGetRecommendations_HighAQIFallbackAddsShelters(t *testing.T) {
	svc := recommend.NewService(recommend.ServiceConfig{Logger: zerolog.Nop()})

	low, err := svc.GetRecommendations(context.Background(), recommend.Request{AQI: 100, Level: "Moderate"})
	require.NoError(t, err)

	high, err := svc.GetRecommendations(context.Background(), recommend.Request{AQI: 180, Level: "Unhealthy"})
	require.NoError(t, err)

	assert.Greater(t, len(high.Recommendations), len(low.Recommendations))
}
