package nlsql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopchat/shopchat/internal/llm"
	"github.com/shopchat/shopchat/internal/store"
)

type fakeCompletionClient struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeCompletionClient) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestGenerateGroundsPromptOnSchema(t *testing.T) {
	client := &fakeCompletionClient{reply: "SELECT COUNT(*) FROM products"}
	generator := NewGenerator(client, "gpt-4o", 5)
	schema := Schema{Tables: []Table{{
		Name:    "products",
		Columns: []store.ColumnInfo{{Name: "id", Type: "bigint"}, {Name: "price", Type: "numeric"}},
	}}}

	raw, err := generator.Generate(context.Background(), "How many products are there?", schema)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if raw != "SELECT COUNT(*) FROM products" {
		t.Fatalf("Generate() = %q", raw)
	}
	if len(client.requests) != 1 {
		t.Fatalf("requests = %d", len(client.requests))
	}

	req := client.requests[0]
	if req.Model != "gpt-4o" {
		t.Fatalf("Model = %q", req.Model)
	}
	if !strings.Contains(req.System, "ONLY the SQL query") {
		t.Fatalf("System = %q, missing raw-SQL instruction", req.System)
	}
	if !strings.Contains(req.System, "Never query for all columns") {
		t.Fatalf("System = %q, missing column discipline", req.System)
	}
	if !strings.Contains(req.User, "at most 5 results using LIMIT") {
		t.Fatalf("User = %q, missing row limit", req.User)
	}
	if !strings.Contains(req.User, "Table: products") {
		t.Fatalf("User = %q, missing schema context", req.User)
	}
	if !strings.Contains(req.User, "How many products are there?") {
		t.Fatalf("User = %q, missing question", req.User)
	}
}

func TestGenerateRejectsBlankQuestion(t *testing.T) {
	generator := NewGenerator(&fakeCompletionClient{}, "gpt-4o", 5)
	if _, err := generator.Generate(context.Background(), "   ", Schema{}); err == nil {
		t.Fatal("expected error for blank question")
	}
}

func TestGenerateWrapsModelErrors(t *testing.T) {
	cause := errors.New("request chat completion: timeout")
	generator := NewGenerator(&fakeCompletionClient{err: cause}, "gpt-4o", 5)

	_, err := generator.Generate(context.Background(), "list products", Schema{})
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}

func TestGenerateRejectsEmptyModelOutput(t *testing.T) {
	generator := NewGenerator(&fakeCompletionClient{reply: "  \n"}, "gpt-4o", 5)
	if _, err := generator.Generate(context.Background(), "list products", Schema{}); err == nil {
		t.Fatal("expected error for empty model output")
	}
}
