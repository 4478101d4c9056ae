package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"Jane Doe Go"}, req.Input)
		assert.Equal(t, "text-embedding-3-small", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float64{0.5, -0.25}}},
			"usage":  map[string]any{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
	defer srv.Close()

	g := NewEmbeddingsGenerator("key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	got, err := g.GenerateEmbedding(context.Background(), "  Jane Doe Go ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25}, got)
}

func TestGenerateEmbeddingRejectsBlankText(t *testing.T) {
	g := NewEmbeddingsGenerator("key")
	_, err := g.GenerateEmbedding(context.Background(), "   ")
	assert.Error(t, err)
}
