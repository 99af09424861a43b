package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

const (
	DefaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
)

const systemPrompt = `You clean recruiting profiles captured from LinkedIn.
Reply with one JSON object and nothing else:
{"cleaned": {"name": "", "headline": "", "location": "", "email": "", "phone": ""},
 "extras": {"seniority": "", "skills": [], "languages": [], "summary": ""}}
Use "" or [] when a value is unknown. Never invent contact details.`

// AnthropicConfig configures the Anthropic enricher
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	// BaseURL overrides the API endpoint
	BaseURL string
}

// Anthropic enriches profiles with a Claude model
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *logging.Logger
}

var _ ProfileEnricher = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic enricher
func NewAnthropic(cfg AnthropicConfig, log *logging.Logger) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("enrich: anthropic api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if log == nil {
		log = logging.NewNop()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		log:       log.With("component", "enricher"),
	}, nil
}

func (a *Anthropic) Enrich(ctx context.Context, profile domain.Attrs) (Result, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return Result{}, fmt.Errorf("encode profile: %w", err)
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(raw))),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	res, err := parseReply(text.String())
	if err != nil {
		a.log.Debug("unparseable enrichment reply", "reply", text.String())
		return Result{}, err
	}
	return res, nil
}

var errNoJSON = errors.New("enrichment reply has no JSON object")

type reply struct {
	Cleaned map[string]any `json:"cleaned"`
	Extras  map[string]any `json:"extras"`
}

// parseReply reads the JSON object in a model reply, tolerating surrounding prose
// and code fences
func parseReply(text string) (Result, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return Result{}, errNoJSON
	}

	var r reply
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return Result{}, fmt.Errorf("decode enrichment reply: %w", err)
	}

	cleaned := domain.Attrs{}
	for _, key := range CleanedFields {
		if s, ok := r.Cleaned[key].(string); ok && strings.TrimSpace(s) != "" {
			cleaned[key] = strings.TrimSpace(s)
		}
	}

	extras := domain.Attrs{}
	for k, v := range r.Extras {
		if !domain.IsEmptyValue(v) {
			extras[k] = v
		}
	}
	return Result{Cleaned: cleaned, Extras: extras}, nil
}
