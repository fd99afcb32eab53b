package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/KirkDiggler/gm-api/internal/errors"
)

// OpenAIConfig holds OpenAI client settings
type OpenAIConfig struct {
	APIKey string
	// Model defaults to gpt-4o
	Model string
	// MaxTokens per completion; defaults to 4000
	MaxTokens int64
}

// Validate ensures the config is usable
func (c *OpenAIConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.APIKey == "" {
		return errors.InvalidArgument("API key is required")
	}
	return nil
}

// OpenAIClient implements Judge and Narrator against the OpenAI chat API
type OpenAIClient struct {
	api       openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIClient creates a client for both judging and narration
func NewOpenAIClient(cfg *OpenAIConfig) (*OpenAIClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}

	return &OpenAIClient{
		api:       openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// JudgeActions implements Judge
func (c *OpenAIClient) JudgeActions(ctx context.Context, input *JudgeInput) (*JudgeOutput, error) {
	if input == nil || len(input.Actions) == 0 {
		return nil, errors.InvalidArgument("at least one action is required")
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(judgeSystemPrompt),
			openai.UserMessage(buildJudgeUserPrompt(input)),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(1.0),
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "judge call failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Unavailable("judge returned no choices")
	}

	verdicts, err := parseVerdicts(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &JudgeOutput{Verdicts: verdicts}, nil
}

// Narrate implements Narrator's full-text form
func (c *OpenAIClient) Narrate(ctx context.Context, input *NarrateInput) (string, error) {
	if input == nil || len(input.Results) == 0 {
		return "", errors.InvalidArgument("at least one resolved action is required")
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(narratorSystemPrompt),
			openai.UserMessage(buildNarratorUserPrompt(input)),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(1.0),
	})
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeUnavailable, "narrator call failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Unavailable("narrator returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// StreamNarrative implements Narrator
func (c *OpenAIClient) StreamNarrative(ctx context.Context, input *NarrateInput, sink TokenSink) error {
	if input == nil || len(input.Results) == 0 {
		return errors.InvalidArgument("at least one resolved action is required")
	}
	if sink == nil {
		return errors.InvalidArgument("sink is required")
	}

	stream := c.api.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(narratorSystemPrompt),
			openai.UserMessage(buildNarratorUserPrompt(input)),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(1.0),
	})
	defer func() { _ = stream.Close() }()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		token := chunk.Choices[0].Delta.Content
		if token == "" {
			continue
		}
		if err := sink(token); err != nil {
			// consumer gave up; stop producing
			return err
		}
	}

	if err := stream.Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "narration stream failed")
	}
	return nil
}

var (
	_ Judge    = (*OpenAIClient)(nil)
	_ Narrator = (*OpenAIClient)(nil)
)
