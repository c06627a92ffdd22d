package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Completer sends one user prompt to a chat model and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a single-message chat completion.
type CompletionRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int64
	Temperature float64

	// SchemaName and Schema request a strict JSON response format when both are set.
	SchemaName string
	Schema     map[string]interface{}
}

// OpenAI is a Completer backed by the chat completions endpoint.
type OpenAI struct {
	client *openai.Client
}

// Options configures NewOpenAI.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAI builds a client once for the process. SDK retries are disabled; a failed call is
// reported to the caller as-is.
func NewOpenAI(opts Options) *OpenAI {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	client := openai.NewClient(reqOpts...)
	return &OpenAI{client: &client}
}

func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if o == nil || o.client == nil {
		return "", errors.New("openai: client is nil")
	}
	if req.Model == "" {
		return "", errors.New("openai: model is empty")
	}

	resp, err := o.client.Chat.Completions.New(ctx, buildParams(req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned for model %s", req.Model)
	}
	return resp.Choices[0].Message.Content, nil
}

func buildParams(req CompletionRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}

	// o-series models reject max_tokens and temperature.
	if IsReasoningModel(req.Model) {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
		params.ReasoningEffort = openai.ReasoningEffortLow
	} else {
		params.MaxTokens = openai.Int(req.MaxTokens)
		params.Temperature = openai.Float(req.Temperature)
	}

	if req.SchemaName != "" && req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}
	return params
}

// IsReasoningModel reports whether model names an o-series reasoning model (o1, o3-mini, o4-mini-2025-04-16, ...).
func IsReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return len(m) >= 2 && m[0] == 'o' && m[1] >= '0' && m[1] <= '9'
}
