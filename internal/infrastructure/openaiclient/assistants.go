package openaiclient

import (
	"context"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"framelink-support/internal/domain/assistant"
)

// CreateAssistant creates an assistant with file_search enabled.
func (c *Client) CreateAssistant(ctx context.Context, def assistant.Definition) (string, error) {
	name := def.Name
	instructions := def.Instructions
	created, err := c.api.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        def.Model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        []openai.AssistantTool{{Type: openai.AssistantToolTypeFileSearch}},
	})
	if err != nil {
		return "", mapError(ctx, err, "failed to create assistant")
	}
	return created.ID, nil
}

// AssistantExists reports whether id is known upstream.
func (c *Client) AssistantExists(ctx context.Context, id string) (bool, error) {
	_, err := c.api.RetrieveAssistant(ctx, id)
	if err == nil {
		return true, nil
	}
	if statusOf(err) == http.StatusNotFound {
		return false, nil
	}
	return false, mapError(ctx, err, "failed to retrieve assistant")
}
