package nlsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopchat/shopchat/internal/llm"
)

// CompletionClient is the slice of the model client the generator needs.
type CompletionClient interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

type Generator struct {
	client   CompletionClient
	model    string
	rowLimit int
}

func NewGenerator(client CompletionClient, model string, rowLimit int) *Generator {
	if rowLimit <= 0 {
		rowLimit = 5
	}
	return &Generator{client: client, model: model, rowLimit: rowLimit}
}

const generateSystemPrompt = `Given an input question, create a syntactically correct PostgreSQL query to run.

IMPORTANT INSTRUCTIONS:
- Return ONLY the SQL query, nothing else
- Do NOT include explanations, comments, or markdown formatting
- Do NOT wrap the query in code blocks or backticks
- Start directly with SELECT
- Never query for all columns - only select the columns needed to answer the question
- Pay attention to the column names and table names provided`

// Generate asks the model for a single SQL statement grounded on the
// schema. Output is untrusted and must go through Sanitize before use.
func (g *Generator) Generate(ctx context.Context, question string, schema Schema) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is required")
	}

	user := "Unless the question specifies a specific number of examples, query for at most " +
		strconv.Itoa(g.rowLimit) + " results using LIMIT.\n\n" +
		"Only use the following tables:\n" + schema.Render() +
		"\nQuestion: " + question + "\nSQL Query:"

	raw, err := g.client.Complete(ctx, llm.Request{
		Model:  g.model,
		System: generateSystemPrompt,
		User:   user,
	})
	if err != nil {
		return "", fmt.Errorf("generate sql query: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("generate sql query: model returned empty output")
	}
	return raw, nil
}
