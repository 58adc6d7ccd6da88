package main

import (
	"context"

	"agrisense/guide"

	openai "github.com/sashabaranov/go-openai"
)

// advisorClient wraps the OpenAI-compatible AI gateway behind the
// chat, crop-prices and insurance-advice endpoints.
type advisorClient struct {
	client *openai.Client
	model  string
	apiKey string
}

func newAdvisorClient(baseURL, apiKey, model string) *advisorClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &advisorClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		apiKey: apiKey,
	}
}

// complete runs one system+user exchange and returns the model text.
func (c *advisorClient) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", &guide.ConfigError{Missing: "AI_GATEWAY_KEY"}
	}

	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", &guide.UpstreamError{Service: "ai-gateway", Msg: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", &guide.UpstreamError{Service: "ai-gateway", Msg: "empty response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// languageName maps the dashboard's language codes to names the models
// are instructed with. Unknown codes fall back to English.
func languageName(code string) string {
	switch code {
	case "hi":
		return "Hindi"
	case "mr":
		return "Marathi"
	case "ta":
		return "Tamil"
	case "te":
		return "Telugu"
	default:
		return "English"
	}
}
