package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
)

// Retry defaults
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// ErrEmptyReply is returned when the model answers with blank text
var ErrEmptyReply = errors.New("model returned an empty reply")

// Generator is the part of llms.Model used for translation
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LLMOptions configures an LLM translator
type LLMOptions struct {
	SourceLang  string        // ISO 639-1 code or "auto"
	Temperature *float64      // nil keeps the model default
	MaxRetries  uint64        // Retries after the first attempt
	RetryDelay  time.Duration // First backoff interval
	Logger      *logrus.Entry // nil discards retry logs
}

// LLM translates with a chat model
type LLM struct {
	gen    Generator
	opts   LLMOptions
	logger *logrus.Entry
}

// NewLLM wraps a chat model. A single LLM is meant to serve a whole run.
func NewLLM(gen Generator, opts LLMOptions) (*LLM, error) {
	if gen == nil {
		return nil, fmt.Errorf("no language model configured")
	}
	if opts.SourceLang == "" {
		opts.SourceLang = AutoLanguage
	}
	if !strings.EqualFold(opts.SourceLang, AutoLanguage) {
		if _, err := ParseLanguage(opts.SourceLang); err != nil {
			return nil, fmt.Errorf("invalid source language: %w", err)
		}
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &LLM{gen: gen, opts: opts, logger: logger}, nil
}

// Translate implements Translator
func (t *LLM) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if _, err := ParseLanguage(targetLang); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return t.generate(ctx, translationPrompt(t.opts.SourceLang, targetLang), text)
}

// DetectLanguage implements Detector
func (t *LLM) DetectLanguage(ctx context.Context, text string) (string, error) {
	reply, err := t.generate(ctx, detectionPrompt, text)
	if err != nil {
		return "", err
	}
	code := strings.ToLower(strings.Trim(strings.TrimSpace(reply), ".\"'`"))
	tag, err := ParseLanguage(code)
	if err != nil {
		return "", fmt.Errorf("model returned an unusable language code: %w", err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// generate sends one system and one user message and returns the trimmed reply
func (t *LLM) generate(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	var callOpts []llms.CallOption
	if t.opts.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*t.opts.Temperature))
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = t.opts.RetryDelay

	attempt := 0
	reply, err := backoff.RetryNotifyWithData(func() (string, error) {
		attempt++
		resp, err := t.gen.GenerateContent(ctx, messages, callOpts...)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyReply
		}
		out := strings.TrimSpace(resp.Choices[0].Content)
		if out == "" {
			return "", ErrEmptyReply
		}
		return out, nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, t.opts.MaxRetries), ctx),
		func(err error, wait time.Duration) {
			t.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"wait":    wait.String(),
			}).WithError(err).Warn("Translation request failed, retrying")
		})
	if err != nil {
		return "", fmt.Errorf("translation request failed after %d attempts: %w", attempt, err)
	}
	return reply, nil
}

const detectionPrompt = "Identify the language of the text sent by the user. " +
	"Reply with its two letter ISO 639-1 code only, for example: en"

func translationPrompt(source, target string) string {
	from := ""
	if !strings.EqualFold(source, AutoLanguage) {
		from = " from " + LanguageName(source)
	}
	return fmt.Sprintf("You translate the speech bubbles and captions of comic books. "+
		"Translate the text sent by the user%s into %s. "+
		"Keep the tone, interjections and punctuation of the original. "+
		"Reply with the translation only, without quotes or notes.",
		from, LanguageName(target))
}
