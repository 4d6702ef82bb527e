// Package vision wraps a vision-capable LLM behind a small oracle interface:
// given a page image and a prompt, return strict JSON describing what the
// model sees. The validation pipeline uses it to re-verify fields that OCR
// alone reads unreliably, such as handwritten signature dates.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are an expert document analyzer for utility Letter of Authorization forms. " +
	"Extract exactly what the image shows. Respond with strict JSON only."

// Caller asks the vision model to analyze one page image. imagePNG may be nil
// for text-only prompts.
type Caller interface {
	ExtractJSON(ctx context.Context, prompt string, imagePNG []byte) (string, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
}

// AnthropicMessager is the subset of the Anthropic client the caller uses;
// tests inject a fake.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicCaller{messages: newAnthropicClient(apiKey)}, nil
}

func (a *AnthropicCaller) ExtractJSON(ctx context.Context, prompt string, imagePNG []byte) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{}
	if len(imagePNG) > 0 {
		encoded := base64.StdEncoding.EncodeToString(imagePNG)
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", encoded))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}
