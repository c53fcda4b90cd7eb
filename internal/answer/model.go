package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopchat/shopchat/internal/llm"
	"github.com/shopchat/shopchat/internal/store"
)

const noProductsMessage = "I couldn't find any products matching your question. Could you try asking in a different way?"

// CompletionClient is the slice of the model client the formatter needs.
type CompletionClient interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

type ModelFormatter struct {
	client CompletionClient
	model  string
}

func NewModelFormatter(client CompletionClient, model string) *ModelFormatter {
	return &ModelFormatter{client: client, model: model}
}

const formatSystemPrompt = `You are an expert assistant who speaks in exciting laymen's terms.
Format database query results into a user-friendly message. Examples:

- Input: [{"count": "50"}]
- Output: There are 50 products available.

- Input: [{"id": 1, "title": "Steel Shelf", "description": "A sturdy shelf for the garage"}]
- Output: The first product is the Steel Shelf, a sturdy shelf for the garage.

Don't mention anything about formatting, databases, or SQL. Just provide a natural,
conversational response as if you already knew this information.

Keep your response concise - ideally 1-3 sentences unless the results require more detail.
Don't ask the user any questions in your response.

If there are multiple products, limit to mentioning 3-5 of them unless specifically asked for more.
For pricing, always include the $ symbol.`

// Format asks the model to phrase the result rows conversationally. Empty
// results short-circuit to a fixed message without a model call. Errors
// are returned so the caller can fall back to FormatRules.
func (f *ModelFormatter) Format(ctx context.Context, rows []store.Row, question string) (string, error) {
	if len(rows) == 0 {
		return noProductsMessage, nil
	}

	serialized, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize results: %w", err)
	}

	user := fmt.Sprintf("User query: %q\n\nRaw database results: %s\n\n"+
		"Format this into a user-friendly response. Do not ask the user any further questions.",
		question, serialized)

	reply, err := f.client.Complete(ctx, llm.Request{
		Model:  f.model,
		System: formatSystemPrompt,
		User:   user,
	})
	if err != nil {
		return "", fmt.Errorf("format answer: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
