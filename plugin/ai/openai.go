package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/martin635579763/chordsync/plugin/catalog"
	"github.com/martin635579763/chordsync/store"
)

// Config holds the generation backend configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		APIKey:     "",
		ChatModel:  "gpt-4o-mini",
		MaxRetries: 3,
		Timeout:    60 * time.Second,
	}
}

// OpenAIGenerator implements Generator on top of an OpenAI-compatible chat API.
type OpenAIGenerator struct {
	client  *openai.Client
	config  *Config
	catalog catalog.Service
}

// NewOpenAIGenerator creates a generator. The catalog service resolves song
// and artist display names for catalog-backed subjects.
func NewOpenAIGenerator(cfg *Config, catalogService catalog.Service) (*OpenAIGenerator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		catalog: catalogService,
	}, nil
}

// GenerateChart produces the chord/lyrics/timing sheet for one song.
func (g *OpenAIGenerator) GenerateChart(ctx context.Context, req ChartRequest) (*store.ChartSheet, error) {
	songName, artistName, err := g.resolveNames(ctx, req.SongURI)
	if err != nil {
		return nil, err
	}

	style := req.ArrangementStyle
	if style == "" {
		style = "Pop Arrangement"
	}

	var sheet store.ChartSheet
	prompt := fmt.Sprintf(chartUserPromptTemplate, songName, artistName, style)
	if err := g.completeJSON(ctx, chartSystemPrompt, prompt, &sheet); err != nil {
		return nil, fmt.Errorf("failed to generate chart: %w", err)
	}
	return &sheet, nil
}

// GenerateFretboard produces the fingering for one chord.
func (g *OpenAIGenerator) GenerateFretboard(ctx context.Context, chord string) (*store.FretboardShape, error) {
	var shape store.FretboardShape
	prompt := fmt.Sprintf(fretboardUserPromptTemplate, chord)
	if err := g.completeJSON(ctx, fretboardSystemPrompt, prompt, &shape); err != nil {
		return nil, fmt.Errorf("failed to generate fretboard for %s: %w", chord, err)
	}
	if err := validateFretboardShape(&shape); err != nil {
		return nil, fmt.Errorf("unusable fretboard for %s: %w", chord, err)
	}
	return &shape, nil
}

// GenerateAccompaniment produces playing-style text for one chord progression.
func (g *OpenAIGenerator) GenerateAccompaniment(ctx context.Context, req AccompanimentRequest) (*store.Accompaniment, error) {
	style := req.ArrangementStyle
	if style == "" {
		style = "Standard"
	}

	var suggestion store.Accompaniment
	prompt := fmt.Sprintf(accompanimentUserPromptTemplate, req.SongName, req.ArtistName, formatProgression(req.Sheet), style)
	if err := g.completeJSON(ctx, accompanimentSystemPrompt, prompt, &suggestion); err != nil {
		return nil, fmt.Errorf("failed to generate accompaniment: %w", err)
	}
	return &suggestion, nil
}

// resolveNames derives the display names the prompts interpolate.
func (g *OpenAIGenerator) resolveNames(ctx context.Context, songURI string) (string, string, error) {
	switch {
	case catalog.IsCatalogURI(songURI):
		track, err := g.catalog.GetTrack(ctx, songURI)
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve track details: %w", err)
		}
		if track == nil {
			return "", "", fmt.Errorf("could not retrieve track details for %s", songURI)
		}
		return track.Name, strings.Join(track.Artists, ", "), nil
	case catalog.IsLocalUpload(songURI):
		return catalog.LocalUploadName(songURI), "Local File", nil
	default:
		return "Unknown Song", "Unknown Artist", nil
	}
}

// completeJSON runs a chat completion asking for a JSON object and decodes it
// into out, with exponential-backoff retry.
func (g *OpenAIGenerator) completeJSON(ctx context.Context, system, user string, out any) error {
	return g.doWithRetry(ctx, func() error {
		ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()

		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: g.config.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}

		content := resp.Choices[0].Message.Content
		if err := json.Unmarshal([]byte(content), out); err != nil {
			return fmt.Errorf("model returned malformed JSON: %w", err)
		}
		return nil
	})
}

// doWithRetry executes a function with exponential backoff retry.
func (g *OpenAIGenerator) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < g.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < g.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("generation request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

// validateFretboardShape rejects payloads that do not cover all six strings.
func validateFretboardShape(shape *store.FretboardShape) error {
	if len(shape.Frets) != 6 || len(shape.Fingers) != 6 {
		return fmt.Errorf("expected 6 frets and 6 fingers, got %d and %d", len(shape.Frets), len(shape.Fingers))
	}
	for _, fret := range shape.Frets {
		if fret < -1 {
			return fmt.Errorf("invalid fret value %d", fret)
		}
	}
	for _, finger := range shape.Fingers {
		if finger < 0 || finger > 4 {
			return fmt.Errorf("invalid finger value %d", finger)
		}
	}
	return nil
}

// formatProgression flattens a sheet into the measure-per-cell text the
// accompaniment prompt expects.
func formatProgression(sheet *store.ChartSheet) string {
	if sheet == nil {
		return ""
	}
	lines := make([]string, 0, len(sheet.Lines))
	for _, line := range sheet.Lines {
		cells := make([]string, 0, len(line.Measures))
		for _, measure := range line.Measures {
			cells = append(cells, measure.Chords)
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return strings.Join(lines, "\n")
}
