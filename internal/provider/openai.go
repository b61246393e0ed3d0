// Package provider holds the outbound API clients: the OpenAI Responses
// API for text and vision completions and the Whisper endpoint for
// transcription. All clients are plain net/http with bounded timeouts; no
// retries, failures surface as wrapped errors for the caller to recover.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"sinax/internal/domain"
)

const defaultTemperature = 0.2

// OpenAI implements domain.Completer and domain.VisionCompleter against
// the Responses API.
type OpenAI struct {
	apiKey      string
	apiBase     string
	model       string
	visionModel string
	client      *http.Client
	logger      *slog.Logger
}

type OpenAIConfig struct {
	APIKey      string
	APIBase     string
	Model       string
	VisionModel string
	Client      *http.Client
	Logger      *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	if cfg.Client == nil {
		cfg.Client = SharedHTTPClient(defaultHTTPTimeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OpenAI{
		apiKey:      cfg.APIKey,
		apiBase:     cfg.APIBase,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		client:      cfg.Client,
		logger:      cfg.Logger,
	}
}

type responsesRequest struct {
	Model           string   `json:"model"`
	Instructions    string   `json:"instructions,omitempty"`
	Input           any      `json:"input"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
}

// The Responses API answers in one of two shapes: a flattened output_text
// string, or a list of output items whose message content blocks carry the
// text. Both are decoded explicitly; anything else is an empty result.
type responsesResponse struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
	Error      *apiError    `json:"error"`
}

type outputItem struct {
	Type    string         `json:"type"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends instructions plus user input and returns the extracted
// text. Empty output maps to domain.ErrEmptyCompletion; transport and
// decode failures are wrapped errors.
func (o *OpenAI) Complete(ctx context.Context, instructions, input string, maxOutputTokens int) (string, error) {
	body := responsesRequest{
		Model:           o.model,
		Instructions:    instructions,
		Input:           input,
		MaxOutputTokens: maxOutputTokens,
	}
	temp := defaultTemperature
	body.Temperature = &temp

	resp, err := o.doResponses(ctx, body)
	if err != nil {
		return "", err
	}

	text, ok := extractText(resp)
	if !ok {
		return "", domain.ErrEmptyCompletion
	}
	return text, nil
}

// visionInput is the content-block form of a Responses API input: one user
// message carrying a text prompt and an image URL.
type visionMessage struct {
	Role    string        `json:"role"`
	Content []visionBlock `json:"content"`
}

type visionBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// CompleteWithImage runs a vision completion over an image URL.
func (o *OpenAI) CompleteWithImage(ctx context.Context, instructions, prompt, imageURL string) (string, error) {
	body := responsesRequest{
		Model:        o.visionModel,
		Instructions: instructions,
		Input: []visionMessage{{
			Role: "user",
			Content: []visionBlock{
				{Type: "input_text", Text: prompt},
				{Type: "input_image", ImageURL: imageURL},
			},
		}},
	}

	resp, err := o.doResponses(ctx, body)
	if err != nil {
		return "", err
	}

	text, ok := extractText(resp)
	if !ok {
		return "", domain.ErrEmptyCompletion
	}
	return text, nil
}

// Healthy probes the API with a lightweight models listing.
func (o *OpenAI) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.apiBase+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("openai: invalid API key")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai returned %d", resp.StatusCode)
	}
	return nil
}

func (o *OpenAI) doResponses(ctx context.Context, body responsesRequest) (*responsesResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiBase+"/responses", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai %d: %s", resp.StatusCode, string(respBody))
	}

	var out responsesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("openai error: %s", out.Error.Message)
	}
	return &out, nil
}

// extractText decodes the two supported response shapes: the flattened
// output_text field wins; otherwise the first non-empty output_text content
// block inside a message output item.
func extractText(resp *responsesResponse) (string, bool) {
	if t := strings.TrimSpace(resp.OutputText); t != "" {
		return t, true
	}
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, block := range item.Content {
			if block.Type != "output_text" {
				continue
			}
			if t := strings.TrimSpace(block.Text); t != "" {
				return t, true
			}
		}
	}
	return "", false
}
