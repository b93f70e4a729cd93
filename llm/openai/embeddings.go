package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/KamdynS/petclinic-genai/llm"
)

// DefaultEmbeddingModel is used when no embedding model is configured
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// Embed generates an embedding vector for the given input text using the specified model.
// If model is empty, DefaultEmbeddingModel is used.
func (c *Client) Embed(ctx context.Context, input string, model string) ([]float32, error) {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return llm.Execute(c.retrier, ctx, func(ctx context.Context, attempt int) ([]float32, error) {
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{input},
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, convertError(err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, fmt.Errorf("no embedding returned")
		}
		return resp.Data[0].Embedding, nil
	})
}
