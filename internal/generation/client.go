// Package generation talks to the remote vision-model gateway that turns
// screenshots and chat instructions into frontend code. Every public entry
// point degrades to a deterministic fallback artifact instead of failing,
// so downstream rendering always has something to work with.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/resilience"
)

// Client produces model replies for generation requests.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one gateway call. ImageBase64 is optional; when set it must
// be raw base64 (no data URL prefix) with ImageMIME describing it.
type Request struct {
	System      string
	Prompt      string
	ImageBase64 string
	ImageMIME   string
}

// Gateway is the resty-backed client for the Gemini-style generateContent
// endpoint. Calls run through a circuit breaker so a struggling upstream
// trips straight to the fallback path instead of queueing long timeouts.
type Gateway struct {
	resty   *resty.Client
	cfg     config.GenerationConfig
	breaker *resilience.Breaker
}

// NewGateway creates a gateway client from configuration.
func NewGateway(cfg config.GenerationConfig) *Gateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetHeader("Content-Type", "application/json")

	breaker := resilience.New("generation-gateway", resilience.Settings{
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Gateway{resty: client, cfg: cfg, breaker: breaker}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate performs one generateContent call and returns the model text.
func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	text, err := g.breaker.Execute(func() (interface{}, error) {
		return g.call(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return text.(string), nil
}

func (g *Gateway) call(ctx context.Context, req Request) (string, error) {
	parts := []generatePart{{Text: req.Prompt}}
	if req.ImageBase64 != "" {
		parts = append(parts, generatePart{InlineData: &inlineData{
			MIMEType: req.ImageMIME,
			Data:     req.ImageBase64,
		}})
	}

	body := generateRequest{
		Contents: []generateContent{{Role: "user", Parts: parts}},
	}
	if req.System != "" {
		body.SystemInstruction = &generateContent{
			Parts: []generatePart{{Text: req.System}},
		}
	}

	var out generateResponse
	resp, err := g.resty.R().
		SetContext(ctx).
		SetQueryParam("key", g.cfg.APIKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", g.cfg.Model))
	if err != nil {
		return "", fmt.Errorf("generation call: %w", err)
	}

	if resp.IsError() {
		if out.Error != nil {
			return "", fmt.Errorf("generation gateway: %s (status %d)", out.Error.Message, resp.StatusCode())
		}
		return "", fmt.Errorf("generation gateway: status %d", resp.StatusCode())
	}

	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("generation gateway: empty response")
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("generation gateway: candidate carried no text")
	}

	return text, nil
}
