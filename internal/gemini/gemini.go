// Package gemini is the generative-model boundary: a thin client over the
// Google GenAI API with optional search grounding.
package gemini

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
)

// Request is a single text-generation invocation.
type Request struct {
	Prompt            string
	SystemInstruction string
	// SearchGrounding enables the built-in Google Search tool so the model
	// can cite live sources.
	SearchGrounding bool
}

// Response carries the raw model text plus any search citations.
type Response struct {
	Text      string
	Citations []models.Source
}

// Generator abstracts the model provider so services can run against a
// test double.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Config holds provider settings.
type Config struct {
	APIKey string
	Model  string
	// RequestsPerMinute throttles outbound calls; zero disables throttling.
	RequestsPerMinute int
}

// Client implements Generator on the GenAI SDK.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

var _ Generator = (*Client)(nil)

// NewClient creates a Gemini-backed Generator.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cl, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	return &Client{client: cl, model: model, limiter: limiter}, nil
}

// Generate runs one model call. Provider failures propagate unchanged;
// there is no retry at this layer.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("gemini: rate limit wait: %w", err)
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.SearchGrounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response")
	}

	return &Response{Text: text, Citations: citations(resp)}, nil
}

// citations collects the grounding chunks the model used to support its
// answer. Entries without a web URI are skipped.
func citations(resp *genai.GenerateContentResponse) []models.Source {
	var out []models.Source
	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			out = append(out, models.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return out
}
