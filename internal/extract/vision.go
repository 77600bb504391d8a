package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"ocr-ai-service/internal/domain/ocr"
)

// VisionConfig holds the vision-model endpoint settings.
type VisionConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// VisionExtractor sends the image with a mode-specific instruction prompt to
// an OpenAI-compatible vision model. One attempt per request, no retry and no
// local timeout; the transport's defaults apply.
type VisionExtractor struct {
	client    *openai.Client
	model     string
	maxTokens int
	log       zerolog.Logger
}

func NewVisionExtractor(cfg VisionConfig, log zerolog.Logger) *VisionExtractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &VisionExtractor{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
		log:       log,
	}
}

func (e *VisionExtractor) Extract(ctx context.Context, in Input) (*ocr.ExtractionResult, error) {
	encoded := base64.StdEncoding.EncodeToString(in.Original)
	prompt := promptForMode(in.Mode)

	e.log.Debug().
		Str("model", e.model).
		Str("mode", in.Mode).
		Int("image_bytes", len(in.Original)).
		Msg("calling vision model")

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + encoded,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty model response", ocr.ErrRemoteExtraction)
	}

	content := resp.Choices[0].Message.Content
	e.log.Debug().
		Str("model", e.model).
		Int("response_len", len(content)).
		Msg("vision model responded")

	return &ocr.ExtractionResult{
		Engine:      e.model,
		RawResponse: content,
	}, nil
}

// Ping issues a minimal completion to verify endpoint connectivity and
// credentials.
func (e *VisionExtractor) Ping(ctx context.Context) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: 10,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "hello"},
		},
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty model response", ocr.ErrRemoteExtraction)
	}
	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable message from the API response and
// wraps it with ocr.ErrRemoteExtraction.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: API error %d: %s", ocr.ErrRemoteExtraction, reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: API error %d: %s", ocr.ErrRemoteExtraction, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", ocr.ErrRemoteExtraction, err)
}
