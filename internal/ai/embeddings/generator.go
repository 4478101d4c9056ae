package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Dimensions of text-embedding-3-small, the width of the vector column
const Dimensions = 1536

// maxInputChars keeps requests well under the model's token limit
const maxInputChars = 24000

// EmbeddingsGenerator creates resume vectors for similarity search
type EmbeddingsGenerator struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewEmbeddingsGenerator(apiKey string, opts ...option.RequestOption) *EmbeddingsGenerator {
	client := openai.NewClient(
		append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...,
	)

	return &EmbeddingsGenerator{
		client: &client,
		model:  openai.EmbeddingModelTextEmbedding3Small,
	}
}

// GenerateEmbedding creates an embedding vector for text
func (g *EmbeddingsGenerator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: g.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	embedding64 := resp.Data[0].Embedding
	embedding32 := make([]float32, len(embedding64))
	for i, v := range embedding64 {
		embedding32[i] = float32(v)
	}
	return embedding32, nil
}
