package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DrJonoG/job-search/internal/config"
)

// Provider is the sum type of LLM backends this pipeline can call. Each
// variant owns its own envelope construction and response extraction;
// routing is a single prefix match, never scattered ad-hoc string checks.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderOpenWebUI Provider = "openwebui"
)

// ErrLLMUnreachable covers connection failures and non-2xx provider
// responses (including a parsed error.message when the body carries one).
var ErrLLMUnreachable = errors.New("llm provider unreachable")

// ChatMessage is one turn in the composed conversation.
type ChatMessage struct {
	Role    string // "system" or "user"
	Content string
}

// RouteModel resolves a model string (as stored on an AI Prompt) to the
// provider that should serve it, and the bare model ID the provider's
// API expects (the owui: sentinel stripped, everything else unchanged).
func RouteModel(model string) (Provider, string) {
	if rest, ok := strings.CutPrefix(model, "owui:"); ok {
		return ProviderOpenWebUI, rest
	}
	lower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(lower, "claude-"):
		return ProviderAnthropic, model
	case strings.HasPrefix(lower, "gemini-"):
		return ProviderGoogle, model
	case strings.HasPrefix(lower, "gpt-"), strings.HasPrefix(lower, "o1"),
		strings.HasPrefix(lower, "o3"), strings.HasPrefix(lower, "chatgpt-"):
		return ProviderOpenAI, model
	default:
		return ProviderOllama, model
	}
}

// Client calls a routed provider with a composed chat and returns the
// raw text response, unparsed.
type Client struct {
	cfg  config.LLMConfig
	http *http.Client
}

func NewClient(cfg config.LLMConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}}
}

// Call dispatches messages to the provider resolved from model and
// returns the model's raw text reply.
func (c *Client) Call(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	provider, bareModel := RouteModel(model)
	switch provider {
	case ProviderOpenAI:
		return c.callOpenAICompatible(ctx, c.cfg.OpenAI.BaseURL, c.cfg.OpenAI.APIKey, bareModel, messages, true)
	case ProviderAnthropic:
		return c.callAnthropic(ctx, bareModel, messages)
	case ProviderGoogle:
		return c.callGoogle(ctx, bareModel, messages)
	case ProviderOpenWebUI:
		return c.callOpenAICompatible(ctx, c.cfg.OpenWebUI.BaseURL, c.cfg.OpenWebUI.APIKey, bareModel, mergeSystemIntoFirstUser(messages), true)
	default:
		return c.callOllama(ctx, bareModel, messages)
	}
}

// mergeSystemIntoFirstUser folds the system turn into the first user
// turn (shallow copy; the source slice is left untouched) since some
// gateway-hosted models reject a bare "system" role.
func mergeSystemIntoFirstUser(messages []ChatMessage) []ChatMessage {
	if len(messages) < 2 || messages[0].Role != "system" {
		return messages
	}
	out := make([]ChatMessage, len(messages)-1)
	copy(out, messages[1:])
	out[0] = ChatMessage{Role: "user", Content: messages[0].Content + "\n\n" + out[0].Content}
	return out
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) callOpenAICompatible(ctx context.Context, baseURL, apiKey, model string, messages []ChatMessage, requireKey bool) (string, error) {
	if requireKey && apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrLLMUnreachable)
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	body := openAIChatRequest{Model: model, Temperature: 0.1}
	for _, m := range messages {
		body.Messages = append(body.Messages, openAIChatMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUnreachable, err)
	}
	defer resp.Body.Close()

	var parsed openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: unexpected response envelope: %v", ErrLLMUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("%w: %s", ErrLLMUnreachable, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrLLMUnreachable, resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrLLMUnreachable)
	}
	return parsed.Choices[0].Message.Content, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string                 `json:"role"`
	Content []anthropicTextContent `json:"content"`
}

type anthropicTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicTextContent `json:"content"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) callAnthropic(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	if c.cfg.Anthropic.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrLLMUnreachable)
	}

	req := anthropicRequest{Model: model, MaxTokens: 4096}
	for _, m := range messages {
		if m.Role == "system" {
			req.System = m.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{
			Role:    m.Role,
			Content: []anthropicTextContent{{Type: "text", Text: m.Content}},
		})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.Anthropic.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUnreachable, err)
	}
	defer resp.Body.Close()

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: unexpected response envelope: %v", ErrLLMUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("%w: %s", ErrLLMUnreachable, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrLLMUnreachable, resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("%w: no content in response", ErrLLMUnreachable)
	}
	var sb strings.Builder
	for _, part := range parsed.Content {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

type googleRequest struct {
	SystemInstruction *googleContent  `json:"systemInstruction,omitempty"`
	Contents          []googleContent `json:"contents"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) callGoogle(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	if c.cfg.Google.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrLLMUnreachable)
	}

	var req googleRequest
	for _, m := range messages {
		if m.Role == "system" {
			req.SystemInstruction = &googleContent{Parts: []googlePart{{Text: m.Content}}}
			continue
		}
		req.Contents = append(req.Contents, googleContent{Role: "user", Parts: []googlePart{{Text: m.Content}}})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		model, url.QueryEscape(c.cfg.Google.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUnreachable, err)
	}
	defer resp.Body.Close()

	var parsed googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: unexpected response envelope: %v", ErrLLMUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("%w: %s", ErrLLMUnreachable, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrLLMUnreachable, resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrLLMUnreachable)
	}
	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []openAIChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaOptions       `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message openAIChatMessage `json:"message"`
	Error   string            `json:"error"`
}

func (c *Client) callOllama(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	baseURL := c.cfg.Ollama.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	body := ollamaChatRequest{Model: model, Stream: false, Options: ollamaOptions{Temperature: 0.1}}
	for _, m := range messages {
		body.Messages = append(body.Messages, openAIChatMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUnreachable, err)
	}
	defer resp.Body.Close()

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: unexpected response envelope: %v", ErrLLMUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrLLMUnreachable, parsed.Error)
		}
		return "", fmt.Errorf("%w: status %d", ErrLLMUnreachable, resp.StatusCode)
	}
	if parsed.Message.Content == "" {
		return "", fmt.Errorf("%w: empty response message", ErrLLMUnreachable)
	}
	return parsed.Message.Content, nil
}
