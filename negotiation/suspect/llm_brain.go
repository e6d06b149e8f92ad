package suspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"negotiator-lite/negotiation"
)

const (
	DefaultLLMBaseURL = "https://api.x.ai/v1"
	DefaultLLMModel   = "grok-2"
)

// LLMConfig configures an OpenAI-compatible chat completion backend.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	MaxTokens         int
	AnalysisMaxTokens int
	Temperature       float32
}

func (c LLMConfig) withDefaults() LLMConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultLLMBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultLLMModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 300
	}
	if c.AnalysisMaxTokens == 0 {
		c.AnalysisMaxTokens = 500
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	return c
}

// LLMBrain asks a chat completion model to play the suspect.
type LLMBrain struct {
	client *openai.Client
	cfg    LLMConfig
}

// NewLLMBrain returns ErrNoAPIKey when cfg has no key.
func NewLLMBrain(cfg LLMConfig) (*LLMBrain, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	cfg = cfg.withDefaults()

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &LLMBrain{client: openai.NewClientWithConfig(oc), cfg: cfg}, nil
}

func (b *LLMBrain) Name() string { return "llm:" + b.cfg.Model }

// Generate implements Generator.
func (b *LLMBrain) Generate(ctx context.Context, p Prompt) (negotiation.Reply, error) {
	content, err := b.complete(ctx, systemMessage(p), userMessage(p), b.cfg.MaxTokens)
	if err != nil {
		return negotiation.Reply{}, err
	}
	reply, err := parseReply(content)
	if err != nil {
		return negotiation.Reply{}, err
	}
	if reply.Hint == "" {
		reply.Hint = ContextualHint(p)
	}
	return reply, nil
}

// Analyze implements Analyzer.
func (b *LLMBrain) Analyze(ctx context.Context, d DebriefInput) (string, error) {
	content, err := b.complete(ctx, analysisSystemMessage, analysisMessage(d), b.cfg.AnalysisMaxTokens)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", malformed(errors.New("empty analysis"))
	}
	return content, nil
}

func (b *LLMBrain) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: b.cfg.Temperature,
	})
	if err != nil {
		return "", unavailable(err)
	}
	if len(resp.Choices) == 0 {
		return "", malformed(errors.New("no choices in completion"))
	}
	return resp.Choices[0].Message.Content, nil
}

type wireReply struct {
	TensionLevel    *int   `json:"tension_level"`
	TrustLevel      *int   `json:"trust_level"`
	SuspectResponse string `json:"suspect_response"`
	DailyHint       string `json:"daily_hint"`
}

// parseReply accepts the requested JSON object. A reply with no JSON at all
// is taken as plain dialogue with no level suggestions.
func parseReply(content string) (negotiation.Reply, error) {
	raw := extractJSON(content)
	if raw == "" {
		text := strings.TrimSpace(content)
		if text == "" {
			return negotiation.Reply{}, malformed(errors.New("empty completion"))
		}
		return negotiation.Reply{Text: text}, nil
	}

	var w wireReply
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return negotiation.Reply{}, malformed(fmt.Errorf("decode reply: %w", err))
	}
	if strings.TrimSpace(w.SuspectResponse) == "" {
		return negotiation.Reply{}, malformed(errors.New("reply missing suspect_response"))
	}
	return negotiation.Reply{
		Tension: w.TensionLevel,
		Trust:   w.TrustLevel,
		Text:    strings.TrimSpace(w.SuspectResponse),
		Hint:    w.DailyHint,
	}, nil
}
