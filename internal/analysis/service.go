package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/chart"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/llm"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/metrics"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/models"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/router"
)

// ErrEmptyQuery is returned for a missing or blank query. Callers reject it
// before anything is classified.
var ErrEmptyQuery = errors.New("query is required")

// HistoryStore is the persistence collaborator.
type HistoryStore interface {
	Append(ctx context.Context, query string, kind models.EntryKind, result any) (*models.HistoryEntry, error)
	ListRecent(ctx context.Context, page, perPage int) ([]models.HistoryEntry, error)
	Count(ctx context.Context) (int, error)
}

// Asker answers advanced queries. Errors are carried in the returned text.
type Asker interface {
	Ask(ctx context.Context, query string) string
}

// Service runs both analysis paths and records them in history.
type Service struct {
	router  *router.Router
	model   Asker
	history HistoryStore
	logger  *zap.Logger
}

// New wires a service. history may be nil, in which case nothing is recorded.
func New(r *router.Router, model Asker, history HistoryStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{router: r, model: model, history: history, logger: logger}
}

// Router returns the query router the service classifies with.
func (s *Service) Router() *router.Router {
	return s.router
}

// Analyze classifies query, projects the dataset, builds the chart and
// records the result.
func (s *Service) Analyze(ctx context.Context, query string) (*models.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	start := time.Now()
	defer metrics.ObserveQuery("standard", start)

	intent, data, err := s.router.Route(query)
	if err != nil {
		return nil, fmt.Errorf("process query: %w", err)
	}
	result := &models.QueryResult{
		Intent: intent,
		Data:   data,
		Chart:  chart.Build(intent, s.router.Table().Records()),
	}
	metrics.IncQuery(string(intent))
	s.logger.Info("query analysed",
		zap.String("query", query),
		zap.String("intent", string(intent)),
		zap.Duration("took", time.Since(start)))

	s.record(ctx, query, models.EntryStandard, result)
	return result, nil
}

// Advanced forwards query to the model and records the answer. Model
// failures are part of the returned text, not the error.
func (s *Service) Advanced(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	start := time.Now()
	defer metrics.ObserveQuery("advanced", start)

	answer := s.model.Ask(ctx, query)
	switch {
	case answer == llm.NotConfiguredMessage:
		metrics.IncAdvanced("disabled")
	case llm.IsErrorMessage(answer):
		metrics.IncAdvanced("error")
	default:
		metrics.IncAdvanced("ok")
	}
	s.logger.Info("advanced query answered",
		zap.String("query", query),
		zap.Int("answer_len", len(answer)),
		zap.Duration("took", time.Since(start)))

	s.record(ctx, query, models.EntryAdvanced, map[string]string{"result": answer})
	return answer, nil
}

// History returns one page of recorded queries, newest first.
func (s *Service) History(ctx context.Context, page, perPage int) ([]models.HistoryEntry, error) {
	if s.history == nil {
		return []models.HistoryEntry{}, nil
	}
	entries, err := s.history.ListRecent(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// HistoryTotal returns how many queries have been recorded.
func (s *Service) HistoryTotal(ctx context.Context) (int, error) {
	if s.history == nil {
		return 0, nil
	}
	n, err := s.history.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// record appends to history. A failed write is logged and dropped; the
// caller still gets its answer.
func (s *Service) record(ctx context.Context, query string, kind models.EntryKind, result any) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Append(ctx, query, kind, result); err != nil {
		metrics.IncHistoryFailure()
		s.logger.Error("failed to save query",
			zap.String("query", query),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}
