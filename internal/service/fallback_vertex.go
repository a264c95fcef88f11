package service

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

const vertexSystemPrompt = `Bạn là trợ lý hỗ trợ khách hàng của OpenLive.
Trả lời ngắn gọn bằng tiếng Việt, lịch sự và chính xác.
Nếu không chắc chắn, hãy đề nghị người dùng liên hệ bộ phận hỗ trợ.`

// VertexConfig configures the Vertex AI fallback.
type VertexConfig struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsFile string
	// Topics are FAQ questions given to the model as context.
	Topics []string
}

// VertexFallback answers unmatched questions with a Gemini model on Vertex AI.
type VertexFallback struct {
	client *genai.Client
	model  *genai.GenerativeModel
	topics []string
}

// NewVertexFallback creates a Vertex AI client for cfg.
func NewVertexFallback(ctx context.Context, cfg VertexConfig) (*VertexFallback, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.3)
	model.SetTopP(0.8)
	model.SetTopK(40)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(vertexSystemPrompt)},
	}

	return &VertexFallback{
		client: client,
		model:  model,
		topics: cfg.Topics,
	}, nil
}

// Generate asks the model to answer query.
func (v *VertexFallback) Generate(ctx context.Context, query string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(buildFallbackPrompt(query, v.topics)))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response type")
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close closes the Vertex AI client.
func (v *VertexFallback) Close() error {
	return v.client.Close()
}

func buildFallbackPrompt(query string, topics []string) string {
	var sb strings.Builder
	if len(topics) > 0 {
		sb.WriteString("Các chủ đề FAQ hiện có:\n")
		for _, t := range topics {
			sb.WriteString("- ")
			sb.WriteString(t)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Câu hỏi của khách hàng: ")
	sb.WriteString(query)
	return sb.String()
}
