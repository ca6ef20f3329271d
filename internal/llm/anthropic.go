package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ppiankov/veritas/internal/fetch"
)

// resultTool is the tool the model is forced to call with the result object
const resultTool = "record_result"

// AnthropicProvider implements the Provider interface for Anthropic Claude models
type AnthropicProvider struct {
	client sdk.Client
	config Config
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic %w", ErrMissingCredential)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{
			Timeout:   config.timeout(),
			Transport: &http.Transport{Proxy: fetch.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy)},
		}),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicProvider{
		client: sdk.NewClient(opts...),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Generate uses the Messages API with a forced tool call whose input schema is req.Schema
func (p *AnthropicProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}

	var blocks []sdk.ContentBlockParamUnion
	if req.Attachment != nil {
		block, err := anthropicAttachment(req.Attachment.MIMEType, req.Attachment.Data)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	blocks = append(blocks, sdk.NewTextBlock(req.Prompt))

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(p.config.maxTokens(req.MaxTokens)),
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(blocks...)},
		Tools: []sdk.ToolUnionParam{{
			OfTool: &sdk.ToolParam{
				Name:        resultTool,
				Description: sdk.String(req.Schema.Description),
				InputSchema: sdk.ToolInputSchemaParam{
					Properties: req.Schema.Properties(),
					Required:   req.Schema.Required(),
				},
			},
		}},
		ToolChoice: sdk.ToolChoiceParamOfTool(resultTool),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "tool_use" && block.Name == resultTool {
			return &GenerateResponse{
				Text:       strings.TrimSpace(string(block.Input)),
				Model:      string(msg.Model),
				TokensUsed: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
			}, nil
		}
	}

	return nil, fmt.Errorf("no %s tool call in Anthropic response", resultTool)
}

func anthropicAttachment(mimeType string, data []byte) (sdk.ContentBlockParamUnion, error) {
	encoded := base64.StdEncoding.EncodeToString(data)
	switch {
	case mimeType == "application/pdf":
		return sdk.NewDocumentBlock(sdk.Base64PDFSourceParam{Data: encoded}), nil
	case strings.HasPrefix(mimeType, "image/"):
		return sdk.NewImageBlockBase64(mimeType, encoded), nil
	default:
		return sdk.ContentBlockParamUnion{}, fmt.Errorf("Anthropic provider does not accept %s attachments", mimeType)
	}
}
