// Package llm holds the shared plumbing for the Gemini-backed
// collaborators: client construction and the defensive JSON handling every
// model response goes through.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// NewClient creates a Gemini client from ambient credentials
// (GEMINI_API_KEY or application default credentials). Components receive
// the client at construction; nothing holds it as package state.
func NewClient(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	return client, nil
}

// GenerateText runs one text prompt against the model and returns the raw
// response text.
func GenerateText(ctx context.Context, client *genai.Client, model, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}
	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("llm: empty response from model")
	}
	return text, nil
}
