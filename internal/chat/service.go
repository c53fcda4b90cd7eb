// Package chat wires the question-to-answer pipeline: schema grounding,
// SQL generation, sanitization, execution, and answer formatting.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopchat/shopchat/internal/answer"
	"github.com/shopchat/shopchat/internal/nlsql"
	"github.com/shopchat/shopchat/internal/observability"
	"github.com/shopchat/shopchat/internal/store"
)

// Turn is one message of the conversation. Only the latest user turn
// drives generation; earlier turns are not fed back into the pipeline.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var (
	ErrEmptyConversation  = errors.New("chat: conversation is empty")
	ErrModelNotConfigured = errors.New("chat: model credentials are not configured")
)

// Fixed user-facing strings. Underlying causes are logged for operators
// and never echoed to the end user.
const (
	MsgEmptyConversation  = "Please provide a valid message."
	MsgAskAboutProducts   = "Please ask a question about our products."
	MsgModelUnavailable   = "AI service is currently unavailable. Please try again later."
	MsgCatalogUnavailable = "I'm having trouble reaching the product catalog right now. Please try again later."
	MsgGenerationFailed   = "I encountered an error processing your request. Please try rephrasing your question."
	MsgUnsafeQuery        = "I can only answer questions about our products. Could you rephrase that?"
	MsgExecutionFailed    = "I ran into a problem looking that up. Please try rephrasing your question."
)

type QueryGenerator interface {
	Generate(ctx context.Context, question string, schema nlsql.Schema) (string, error)
}

type AnswerFormatter interface {
	Format(ctx context.Context, rows []store.Row, question string) (string, error)
}

type Config struct {
	SchemaSampleRows int
	AllowWriteSQL    bool
	RequestTimeout   time.Duration
}

type Service struct {
	introspector store.Introspector
	querier      store.Querier
	generator    QueryGenerator
	formatter    AnswerFormatter
	logger       *slog.Logger
	cfg          Config
}

// NewService builds the orchestrator. generator and formatter may be nil
// when no model credential is configured; Answer then reports the service
// unavailable without touching the store.
func NewService(
	introspector store.Introspector,
	querier store.Querier,
	generator QueryGenerator,
	formatter AnswerFormatter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SchemaSampleRows <= 0 {
		cfg.SchemaSampleRows = 3
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Service{
		introspector: introspector,
		querier:      querier,
		generator:    generator,
		formatter:    formatter,
		logger:       logger,
		cfg:          cfg,
	}
}

// Answer runs the full pipeline for one conversation. The returned string
// is always safe to show the user. A non-nil error marks a downstream
// failure the transport layer may map to an error status; recovered
// conditions (sanitizer refusal, formatter fallback) return a nil error.
func (s *Service) Answer(ctx context.Context, turns []Turn) (string, error) {
	observability.ObserveChatRequest()

	if len(turns) == 0 {
		return MsgEmptyConversation, ErrEmptyConversation
	}
	question := turns[len(turns)-1].Content
	if question == "" {
		return MsgAskAboutProducts, nil
	}

	if s.generator == nil || s.formatter == nil {
		return MsgModelUnavailable, ErrModelNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	schema, err := nlsql.Describe(ctx, s.introspector, s.cfg.SchemaSampleRows)
	if err != nil {
		observability.ObserveChatStageFailure("schema")
		s.logger.ErrorContext(ctx, "schema introspection failed", slog.Any("error", err))
		return MsgCatalogUnavailable, err
	}

	generateStart := time.Now()
	raw, err := s.generator.Generate(ctx, question, schema)
	observability.ObserveModelRequest("sql", time.Since(generateStart))
	if err != nil {
		observability.ObserveChatStageFailure("generate")
		s.logger.ErrorContext(ctx, "sql generation failed", slog.Any("error", err))
		return MsgGenerationFailed, err
	}

	sqlText, err := nlsql.Sanitize(raw, s.cfg.AllowWriteSQL)
	if err != nil {
		// Recovered locally: unverified text never reaches the executor.
		observability.ObserveChatStageFailure("sanitize")
		observability.ObserveUnsafeQuery()
		s.logger.WarnContext(ctx, "model output rejected by sanitizer", slog.Any("error", err))
		return MsgUnsafeQuery, nil
	}

	rows, err := s.querier.QueryRows(ctx, sqlText)
	if err != nil {
		observability.ObserveChatStageFailure("execute")
		s.logger.ErrorContext(ctx, "query execution failed",
			slog.String("sql", sqlText),
			slog.Any("error", err),
		)
		return MsgExecutionFailed, err
	}

	formatStart := time.Now()
	reply, err := s.formatter.Format(ctx, rows, question)
	observability.ObserveModelRequest("answer", time.Since(formatStart))
	if err != nil {
		// Always recoverable: the rule-based formatter never fails.
		observability.ObserveChatStageFailure("format")
		observability.ObserveFormatterFallback()
		s.logger.WarnContext(ctx, "model formatting failed, using rule formatter", slog.Any("error", err))
		reply = answer.FormatRules(rows, question)
	}

	s.logger.DebugContext(ctx, "chat answered",
		slog.String("sql", sqlText),
		slog.Int("rows", len(rows)),
	)
	return reply, nil
}
