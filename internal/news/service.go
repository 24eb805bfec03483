// Package news aggregates air quality articles with an AI-written summary.
package news

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/news/newsapi"
	"github.com/airsight/airsight/internal/observation"
)

// DefaultLocation is used when no location is supplied and no observation
// has been recorded yet.
const DefaultLocation = "San Francisco"

// Searcher finds recent articles for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]newsapi.Article, error)
}

// Summarizer produces a short human summary of the air quality situation.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// CacheTelemetry counts reads served from the observation store. Optional.
type CacheTelemetry interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// SummaryRequest carries the context the summarizer writes about.
type SummaryRequest struct {
	Location string
	AQI      int
	Level    string
	Articles []newsapi.Article
}

// Summary is the aggregated news response.
type Summary struct {
	Articles  []newsapi.Article `json:"articles"`
	AISummary string            `json:"aiSummary"`
}

// ServiceConfig holds configuration for the news service.
type ServiceConfig struct {
	// Searcher finds articles (required).
	Searcher Searcher

	// Summarizer writes the AI summary (optional). If nil, the canned
	// fallback summary is always used.
	Summarizer Summarizer

	// Store supplies the latest observation when the caller omits
	// location/aqi/level (optional).
	Store observation.Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics counts observation store hits and misses. Optional.
	Metrics CacheTelemetry
}

// Service aggregates search results and an AI summary. Upstream failures
// degrade the response rather than failing it: a search error yields an
// empty article list, a summarizer error yields the canned summary.
type Service struct {
	searcher   Searcher
	summarizer Summarizer
	store      observation.Repository
	logger     zerolog.Logger
	metrics    CacheTelemetry
}

// NewService creates a news service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		searcher:   cfg.Searcher,
		summarizer: cfg.Summarizer,
		store:      cfg.Store,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// GetAirQualityNews returns recent articles plus a summary for a location.
// Zero-value location/aqi/level fall back to the latest stored observation.
func (s *Service) GetAirQualityNews(ctx context.Context, location string, aqi int, level string) (*Summary, error) {
	if location == "" || aqi == 0 || level == "" {
		location, aqi, level = s.fillFromLatest(ctx, location, aqi, level)
	}

	query := fmt.Sprintf("air quality pollution %s", location)

	articles, err := s.searcher.Search(ctx, query)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("location", location).
			Msg("article search failed, returning empty list")
		articles = []newsapi.Article{}
	}

	summary := s.summarize(ctx, SummaryRequest{
		Location: location,
		AQI:      aqi,
		Level:    level,
		Articles: articles,
	})

	return &Summary{Articles: articles, AISummary: summary}, nil
}

// fillFromLatest replaces missing inputs with the most recent observation.
func (s *Service) fillFromLatest(ctx context.Context, location string, aqi int, level string) (string, int, string) {
	if s.store != nil {
		rec, err := s.store.Latest(ctx)
		if err == nil {
			s.recordCacheRead(true)
			if location == "" && rec.LocationName != "" {
				location = rec.LocationName
			}
			if aqi == 0 {
				aqi = rec.Result.AQI
			}
			if level == "" {
				level = string(rec.Result.Level)
			}
		} else {
			s.recordCacheRead(false)
		}
	}
	if location == "" {
		location = DefaultLocation
	}
	return location, aqi, level
}

func (s *Service) recordCacheRead(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit("observation-store", "latest")
	} else {
		s.metrics.RecordCacheMiss("observation-store", "latest")
	}
}

func (s *Service) summarize(ctx context.Context, req SummaryRequest) string {
	if s.summarizer == nil {
		return fallbackSummary(req)
	}

	summary, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("location", req.Location).
			Msg("summarizer failed, using fallback summary")
		return fallbackSummary(req)
	}
	return summary
}

// fallbackSummary is the canned degraded-mode summary.
func fallbackSummary(req SummaryRequest) string {
	if req.AQI > 0 && req.Level != "" {
		return fmt.Sprintf(
			"Air quality in %s is currently rated %s (AQI %d). Check back later for an updated news summary.",
			req.Location, req.Level, req.AQI)
	}
	return fmt.Sprintf(
		"Recent air quality news for %s. Check back later for an updated summary.",
		req.Location)
}
