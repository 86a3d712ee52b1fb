// Package translation turns keyword sets into other languages using the
// Anthropic API.  Failures never lose data: the source set comes back
// unchanged together with the error so callers can fall back to the
// built-in defaults.
package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/turtacn/aether-intel/internal/config"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

const systemPrompt = "You are a technical translator for patent search terminology. " +
	"Translate search keywords preserving their technical meaning, not word by word. " +
	"Respond with strict JSON only."

// Translator converts a keyword set into a target language.
type Translator interface {
	TranslateKeywords(ctx context.Context, set patent.KeywordSet, targetLang string) (patent.KeywordSet, error)
}

// messager is the slice of the Anthropic client we call; narrowed for
// testability.
type messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicTranslator implements Translator on the Anthropic Messages
// API.
type AnthropicTranslator struct {
	messages messager
	model    anthropic.Model
	log      logging.Logger
}

// NewAnthropicTranslator builds a translator from configuration.  A nil
// logger is replaced by a no-op logger.
func NewAnthropicTranslator(cfg config.TranslationConfig, log logging.Logger) (*AnthropicTranslator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "translation.api_key is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &AnthropicTranslator{
		messages: &client.Messages,
		model:    anthropic.Model(cfg.Model),
		log:      log.Named("translation"),
	}, nil
}

type translatedSet struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// TranslateKeywords translates one set.  On any failure the source set
// is returned unchanged alongside the error.
func (t *AnthropicTranslator) TranslateKeywords(ctx context.Context, set patent.KeywordSet, targetLang string) (patent.KeywordSet, error) {
	if set.IsEmpty() {
		return set, errors.New(errors.ErrCodeKeywordSetEmpty, "nothing to translate")
	}
	if targetLang == "" || strings.EqualFold(targetLang, set.Language) {
		return set, nil
	}

	prompt := buildPrompt(set, targetLang)

	resp, err := t.messages.New(ctx, anthropic.MessageNewParams{
		Model:       t.model,
		MaxTokens:   2048,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return set, errors.Wrap(err, errors.ErrCodeTranslationFailed, "translation request failed")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	parsed, err := parseReply(sb.String())
	if err != nil {
		t.log.Warn("translation reply unusable, keeping source set",
			logging.String("target_lang", targetLang), logging.Err(err))
		return set, err
	}

	out := patent.KeywordSet{
		Language: strings.ToLower(targetLang),
		Include:  parsed.Include,
		Exclude:  parsed.Exclude,
	}
	if out.IsEmpty() {
		return set, errors.New(errors.ErrCodeTranslationBadReply,
			"translation produced no include terms")
	}
	return out, nil
}

func buildPrompt(set patent.KeywordSet, targetLang string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate these patent search keywords from %q to %q.\n",
		set.Language, targetLang)
	sb.WriteString("Return a JSON object of the exact form {\"include\": [...], \"exclude\": [...]}.\n")
	sb.WriteString("Keep acronyms such as LENR untranslated when they are used as-is in the target language.\n\n")

	raw, _ := json.Marshal(map[string][]string{
		"include": set.Include,
		"exclude": set.Exclude,
	})
	sb.Write(raw)
	return sb.String()
}

// parseReply extracts the JSON object from a model reply, tolerating
// markdown code fences and surrounding prose.
func parseReply(reply string) (*translatedSet, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, errors.New(errors.ErrCodeTranslationBadReply, "empty translation reply")
	}

	candidate := stripFences(reply)
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			candidate = candidate[start : end+1]
		}
	}

	var parsed translatedSet
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTranslationBadReply,
			"translation reply is not valid JSON")
	}
	return &parsed, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// NopTranslator returns the source set untouched; used when translation
// is disabled in configuration.
type NopTranslator struct{}

func (NopTranslator) TranslateKeywords(_ context.Context, set patent.KeywordSet, _ string) (patent.KeywordSet, error) {
	return set, nil
}
