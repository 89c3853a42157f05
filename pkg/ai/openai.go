package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mathmood",
		Subsystem: "ai",
		Name:      "completion_duration_seconds",
		Help:      "Duration of AI completion requests",
	}, []string{"model", "kind"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mathmood",
		Subsystem: "ai",
		Name:      "completion_failures_total",
		Help:      "Number of AI completion failures",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI suggester.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAISuggester implements Suggester against the OpenAI chat completion API.
type OpenAISuggester struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAISuggester builds a new suggester using the provided configuration.
func NewOpenAISuggester(cfg OpenAIConfig) (*OpenAISuggester, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 300
	}

	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	tracer := otel.Tracer("github.com/mathmood/diary-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAISuggester{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// SuggestFeedback drafts teacher feedback for one diary entry. It is a single
// blocking call with no retry; callers surface a generic failure and leave
// any existing draft untouched.
func (s *OpenAISuggester) SuggestFeedback(parent context.Context, input SuggestionInput) (string, error) {
	ctx, span := s.tracer.Start(parent, "openai.suggest_feedback", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: personaSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: buildSuggestionPrompt(input)},
		},
	}

	content, err := s.complete(ctx, request, "suggest")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return content, nil
}

// Chat answers one student turn given the running transcript.
func (s *OpenAISuggester) Chat(parent context.Context, transcript []ChatTurn, message string) (string, error) {
	ctx, span := s.tracer.Start(parent, "openai.chat", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
		attribute.Int("transcript_turns", len(transcript)),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(transcript)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: personaSystemPrompt(),
	})
	for _, turn := range transcript {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	request := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages:    messages,
	}

	content, err := s.complete(ctx, request, "chat")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return content, nil
}

func (s *OpenAISuggester) complete(ctx context.Context, request openai.ChatCompletionRequest, kind string) (string, error) {
	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(s.cfg.Model, kind).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(s.cfg.Model, kind).Inc()
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(s.cfg.Model, kind).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func personaSystemPrompt() string {
	return "You are a warm, friendly high-school math teacher. You read a student's " +
		"math emotion diary and reply with encouraging, informal feedback in the " +
		"student's language. Acknowledge the effort, empathize with the feeling, " +
		"give one concrete and constructive suggestion, and keep the reply under " +
		"200 characters with a couple of fitting emoji."
}

func buildSuggestionPrompt(input SuggestionInput) string {
	builder := strings.Builder{}
	builder.WriteString("Student mood: ")
	builder.WriteString(input.Mood)
	builder.WriteString("\nDiary entry:\n")
	builder.WriteString(input.Reflection)
	if input.ProblemExplanation != "" {
		builder.WriteString("\nProblem explanation:\n")
		builder.WriteString(input.ProblemExplanation)
	}
	builder.WriteString("\nWrite the feedback now.")
	return builder.String()
}
