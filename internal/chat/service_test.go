package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopchat/shopchat/internal/nlsql"
	"github.com/shopchat/shopchat/internal/store"
)

type fakeIntrospector struct {
	calls int
	err   error
}

func (f *fakeIntrospector) ListTableNames(context.Context) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []string{"products"}, nil
}

func (f *fakeIntrospector) ListColumns(context.Context, string) ([]store.ColumnInfo, error) {
	return []store.ColumnInfo{{Name: "id", Type: "bigint"}, {Name: "title", Type: "text"}}, nil
}

func (f *fakeIntrospector) SampleRows(context.Context, string, int) ([]store.Row, error) {
	return []store.Row{{"id": int64(1), "title": "Steel Shelf"}}, nil
}

type fakeQuerier struct {
	calls []string
	rows  []store.Row
	err   error
}

func (f *fakeQuerier) QueryRows(_ context.Context, sqlText string) ([]store.Row, error) {
	f.calls = append(f.calls, sqlText)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeGenerator struct {
	raw string
	err error
}

func (f *fakeGenerator) Generate(context.Context, string, nlsql.Schema) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.raw, nil
}

type fakeFormatter struct {
	reply string
	err   error
	calls int
}

func (f *fakeFormatter) Format(context.Context, []store.Row, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func userTurn(content string) []Turn {
	return []Turn{{Role: "user", Content: content}}
}

func TestAnswerHappyPath(t *testing.T) {
	querier := &fakeQuerier{rows: []store.Row{{"count": int64(42)}}}
	svc := NewService(
		&fakeIntrospector{},
		querier,
		&fakeGenerator{raw: "```sql\nSELECT COUNT(*) AS count FROM products;\n```"},
		&fakeFormatter{reply: "There are 42 products available."},
		testLogger(),
		Config{},
	)

	reply, err := svc.Answer(context.Background(), userTurn("How many products are there?"))
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != "There are 42 products available." {
		t.Fatalf("Answer() = %q", reply)
	}
	if len(querier.calls) != 1 || querier.calls[0] != "SELECT COUNT(*) AS count FROM products" {
		t.Fatalf("executed sql = %#v", querier.calls)
	}
}

func TestAnswerEmptyConversation(t *testing.T) {
	intro := &fakeIntrospector{}
	svc := NewService(intro, &fakeQuerier{}, &fakeGenerator{}, &fakeFormatter{}, testLogger(), Config{})

	reply, err := svc.Answer(context.Background(), nil)
	if !errors.Is(err, ErrEmptyConversation) {
		t.Fatalf("err = %v, want ErrEmptyConversation", err)
	}
	if reply != MsgEmptyConversation {
		t.Fatalf("Answer() = %q", reply)
	}
	if intro.calls != 0 {
		t.Fatal("introspector should not run for an empty conversation")
	}
}

func TestAnswerBlankQuestionAsksForClarification(t *testing.T) {
	svc := NewService(&fakeIntrospector{}, &fakeQuerier{}, &fakeGenerator{}, &fakeFormatter{}, testLogger(), Config{})

	reply, err := svc.Answer(context.Background(), userTurn(""))
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != MsgAskAboutProducts {
		t.Fatalf("Answer() = %q", reply)
	}
}

func TestAnswerWithoutModelReportsUnavailable(t *testing.T) {
	intro := &fakeIntrospector{}
	querier := &fakeQuerier{}
	svc := NewService(intro, querier, nil, nil, testLogger(), Config{})

	reply, err := svc.Answer(context.Background(), userTurn("how many products?"))
	if !errors.Is(err, ErrModelNotConfigured) {
		t.Fatalf("err = %v, want ErrModelNotConfigured", err)
	}
	if reply != MsgModelUnavailable {
		t.Fatalf("Answer() = %q", reply)
	}
	if intro.calls != 0 || len(querier.calls) != 0 {
		t.Fatal("no downstream stage should run without model credentials")
	}
}

func TestAnswerUnsafeQueryNeverReachesExecutor(t *testing.T) {
	querier := &fakeQuerier{}
	svc := NewService(
		&fakeIntrospector{},
		querier,
		&fakeGenerator{raw: "DROP TABLE products;"},
		&fakeFormatter{},
		testLogger(),
		Config{},
	)

	reply, err := svc.Answer(context.Background(), userTurn("drop everything"))
	if err != nil {
		t.Fatalf("Answer() error = %v, sanitizer rejection must be recovered", err)
	}
	if reply != MsgUnsafeQuery {
		t.Fatalf("Answer() = %q", reply)
	}
	if len(querier.calls) != 0 {
		t.Fatalf("executor was invoked %d times with unverified text", len(querier.calls))
	}
}

func TestAnswerSchemaFailure(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewService(
		&fakeIntrospector{err: cause},
		&fakeQuerier{},
		&fakeGenerator{raw: "SELECT 1"},
		&fakeFormatter{},
		testLogger(),
		Config{},
	)

	reply, err := svc.Answer(context.Background(), userTurn("hello"))
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
	if reply != MsgCatalogUnavailable {
		t.Fatalf("Answer() = %q", reply)
	}
}

func TestAnswerGenerationFailure(t *testing.T) {
	cause := errors.New("request chat completion: timeout")
	svc := NewService(
		&fakeIntrospector{},
		&fakeQuerier{},
		&fakeGenerator{err: cause},
		&fakeFormatter{},
		testLogger(),
		Config{},
	)

	reply, err := svc.Answer(context.Background(), userTurn("hello"))
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
	if reply != MsgGenerationFailed {
		t.Fatalf("Answer() = %q", reply)
	}
}

func TestAnswerExecutionFailure(t *testing.T) {
	cause := errors.New(`relation "nothing" does not exist`)
	svc := NewService(
		&fakeIntrospector{},
		&fakeQuerier{err: cause},
		&fakeGenerator{raw: "SELECT * FROM nothing"},
		&fakeFormatter{},
		testLogger(),
		Config{},
	)

	reply, err := svc.Answer(context.Background(), userTurn("hello"))
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
	if reply != MsgExecutionFailed {
		t.Fatalf("Answer() = %q", reply)
	}
}

func TestAnswerFormatterFailureFallsBackToRules(t *testing.T) {
	svc := NewService(
		&fakeIntrospector{},
		&fakeQuerier{rows: []store.Row{{"count": int64(42)}}},
		&fakeGenerator{raw: "SELECT COUNT(*) AS count FROM products"},
		&fakeFormatter{err: errors.New("request chat completion: rate limit")},
		testLogger(),
		Config{},
	)

	reply, err := svc.Answer(context.Background(), userTurn("How many products are there?"))
	if err != nil {
		t.Fatalf("Answer() error = %v, formatter failure must be recovered", err)
	}
	if reply != "There are 42 products available." {
		t.Fatalf("Answer() = %q", reply)
	}
}
