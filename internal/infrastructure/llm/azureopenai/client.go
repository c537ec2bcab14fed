package azureopenai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gaiachat/horizon-rag/internal/infrastructure/resilience"
)

// Config mirrors the Azure OpenAI environment contract. Leaving Endpoint
// empty falls back to the public OpenAI API, which is convenient for local
// development.
type Config struct {
	APIKey         string
	Endpoint       string
	APIVersion     string
	Model          string
	RequestTimeout time.Duration
}

// Client implements the stateless complete(system, user) contract used by
// the reword and generation stages.
type Client struct {
	api      *openai.Client
	model    string
	executor *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	var clientCfg openai.ClientConfig
	if strings.TrimSpace(cfg.Endpoint) != "" {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:      openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		executor: executor,
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	var content string
	call := func(callCtx context.Context) error {
		response, err := c.api.CreateChatCompletion(callCtx, request)
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(response.Choices) == 0 {
			return fmt.Errorf("chat completion returned no choices")
		}
		content = strings.TrimSpace(response.Choices[0].Message.Content)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openai.complete", call, classifyOpenAIError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}
