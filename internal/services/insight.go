package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
)

const insightSystemPrompt = "You are an AI analyst for a PlinkoGame on PulseChain. " +
	"Provide insights on game statistics, jackpot trends, and player behavior."

// TextGenerator is the external language model.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a chat-completions client with retries
// disabled; a failed call is reported once.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type InsightService struct {
	state     *GameStateService
	history   HistoryStore
	generator TextGenerator
	logger    *zap.Logger
}

// NewInsightService wires the adapter. A nil generator disables insights.
func NewInsightService(state *GameStateService, history HistoryStore, generator TextGenerator, logger *zap.Logger) *InsightService {
	return &InsightService{
		state:     state,
		history:   history,
		generator: generator,
		logger:    logger,
	}
}

func (s *InsightService) Enabled() bool {
	return s != nil && s.generator != nil
}

// Insight forwards query plus the current game context to the model and
// returns its answer unmodified.
func (s *InsightService) Insight(ctx context.Context, query string) (string, error) {
	if !s.Enabled() {
		return "", ErrInsightUnavailable
	}

	plays, err := s.history.ListRecent(ctx, insightHistoryLimit)
	if err != nil {
		s.logger.Error("failed to load plays for insight",
			zap.String("op", "insight.history"), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrStore, err)
	}

	state, _, err := s.state.GetGameState(ctx)
	if err != nil {
		return "", err
	}

	answer, err := s.generator.Generate(ctx, insightSystemPrompt, BuildInsightContext(state, len(plays), query))
	if err != nil {
		s.logger.Error("insight provider call failed",
			zap.String("op", "insight.generate"), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return answer, nil
}

func BuildInsightContext(state *models.GameState, recentPlays int, query string) string {
	var b strings.Builder
	b.WriteString("Current Game State:\n")
	fmt.Fprintf(&b, "- Main Jackpot: %s PLS369\n", models.FormatTokens(state.MainJackpot))
	fmt.Fprintf(&b, "- Mini Jackpot: %s PLS369\n", models.FormatTokens(state.MiniJackpot))
	fmt.Fprintf(&b, "- Total Plays: %d\n", state.PlayCount)
	fmt.Fprintf(&b, "- DAO Accrued: %s PLS369\n", models.FormatTokens(state.DAOAccrued))
	fmt.Fprintf(&b, "- Dev Accrued: %s PLS369\n", models.FormatTokens(state.DevAccrued))
	fmt.Fprintf(&b, "- Entry Price: %s PLS369\n", models.FormatTokens(state.EntryPrice))
	if state.Finalized {
		b.WriteString("- The game has been finalized.\n")
	}
	fmt.Fprintf(&b, "- Recent Plays: %d\n", recentPlays)
	b.WriteString("\nUser Query: ")
	b.WriteString(query)
	return b.String()
}
