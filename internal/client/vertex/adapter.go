// Package vertexclient wraps the Vertex AI generative client used for
// Golden insights.
package vertexclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

type Adapter struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, projectID, region, model string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client, model: model, log: log}, nil
}

func (a *Adapter) Close() error {
	err := a.client.Close()
	if err != nil && a.log != nil {
		a.log.Error("vertex adapter close failed", "error", err)
	}
	return err
}

// Model reports the configured model name.
func (a *Adapter) Model() string { return a.model }

// Generate produces a single text completion for the given system and user
// prompts.
func (a *Adapter) Generate(ctx context.Context, system, prompt string) (string, error) {
	if a.model == "" {
		return "", fmt.Errorf("vertex model is required")
	}

	model := a.client.GenerativeModel(a.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("vertex returned no text candidates")
	}
	return sb.String(), nil
}
