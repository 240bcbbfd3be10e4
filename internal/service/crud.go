package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/tracing"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// Config is shared by every service
type Config struct {
	// Latency is waited before every call; the wait ends early if ctx is done
	Latency time.Duration
	Now     func() time.Time
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// hooks customise the generic CRUD behaviour per entity
type hooks[T any] struct {
	// defaults fills fields on create before validation
	defaults func(item *T)
	// validate runs on create (prev == nil) and update
	validate func(ctx context.Context, next, prev *T) error
	// remove applies the delete policy; nil means the entity cannot be deleted
	remove func(item *T, now time.Time) error
	// visible hides records from lists and GetByID
	visible func(item *T) bool
	// enrich derives read-only fields before records leave the service
	enrich func(ctx context.Context, items []T) error
}

// immutable keys are never taken from an update patch
var immutable = []string{"id", "createdAt", "deletedAt"}

// crud is the mock CRUD service shared by every entity. Writes hold mu so a
// read-check-write sequence cannot interleave with another write.
type crud[T any, P interface {
	*T
	domain.Entity
}] struct {
	entity string
	coll   domain.Collection[T]
	hooks  hooks[T]
	cfg    Config
	mu     sync.Mutex
	logger *slog.Logger
}

func newCrud[T any, P interface {
	*T
	domain.Entity
}](entity string, coll domain.Collection[T], h hooks[T], cfg Config, logger *slog.Logger) *crud[T, P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &crud[T, P]{entity: entity, coll: coll, hooks: h, cfg: cfg, logger: logger}
}

// wait applies the artificial latency
func (s *crud[T, P]) wait(ctx context.Context) error {
	if s.cfg.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.cfg.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// begin opens a span, applies latency and returns the finisher
func (s *crud[T, P]) begin(ctx context.Context, op string) (context.Context, func(*error), error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, s.entity+"."+op, attribute.String("entity", s.entity))
	finish := func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		result := "success"
		if err != nil {
			result = string(domain.CodeOf(err))
			if result == "" {
				result = "error"
			}
		}
		metrics.ObserveOperation(s.entity, op, result, time.Since(start))
		tracing.End(span, err)
	}
	if err := s.wait(ctx); err != nil {
		finish(&err)
		return ctx, nil, err
	}
	return ctx, finish, nil
}

func (s *crud[T, P]) isVisible(item *T) bool {
	return s.hooks.visible == nil || s.hooks.visible(item)
}

// list returns visible records without latency or enrichment
func (s *crud[T, P]) list(ctx context.Context) ([]T, error) {
	all, err := s.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.entity, err)
	}
	out := all[:0]
	for i := range all {
		if s.isVisible(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// filter returns visible records matching keep
func (s *crud[T, P]) filter(ctx context.Context, keep func(*T) bool) ([]T, error) {
	items, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// find returns a visible record or a not_found domain error
func (s *crud[T, P]) find(ctx context.Context, id string) (*T, error) {
	item, err := s.coll.Get(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NotFound(s.entity)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", s.entity, id, err)
	}
	if !s.isVisible(&item) {
		return nil, domain.NotFound(s.entity)
	}
	return &item, nil
}

func (s *crud[T, P]) store(ctx context.Context, item *T) error {
	id := P(item).Meta().ID
	if err := s.coll.Put(ctx, id, *item); err != nil {
		return fmt.Errorf("failed to store %s %s: %w", s.entity, id, err)
	}
	return nil
}

func (s *crud[T, P]) enrich(ctx context.Context, items []T) error {
	if s.hooks.enrich == nil || len(items) == 0 {
		return nil
	}
	return s.hooks.enrich(ctx, items)
}

func (s *crud[T, P]) enrichOne(ctx context.Context, item *T) error {
	if s.hooks.enrich == nil {
		return nil
	}
	items := []T{*item}
	if err := s.hooks.enrich(ctx, items); err != nil {
		return err
	}
	*item = items[0]
	return nil
}

// page enriches and paginates an already filtered slice
func (s *crud[T, P]) page(ctx context.Context, items []T, p pagination.Params) (pagination.Page[T], error) {
	pg := pagination.Paginate(items, p)
	if err := s.enrich(ctx, pg.Data); err != nil {
		return pagination.Page[T]{}, err
	}
	return pg, nil
}

// GetAll returns visible records in insertion order, paginated
func (s *crud[T, P]) GetAll(ctx context.Context, p pagination.Params) (page pagination.Page[T], err error) {
	ctx, finish, err := s.begin(ctx, "get_all")
	if err != nil {
		return page, err
	}
	defer finish(&err)

	items, err := s.list(ctx)
	if err != nil {
		return page, err
	}
	return s.page(ctx, items, p)
}

// GetByID returns a visible record
func (s *crud[T, P]) GetByID(ctx context.Context, id string) (item *T, err error) {
	ctx, finish, err := s.begin(ctx, "get")
	if err != nil {
		return nil, err
	}
	defer finish(&err)

	item, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enrichOne(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Create stamps id and timestamps, applies defaults and validates
func (s *crud[T, P]) Create(ctx context.Context, input T) (created *T, err error) {
	ctx, finish, err := s.begin(ctx, "create")
	if err != nil {
		return nil, err
	}
	defer finish(&err)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, input)
}

// create requires s.mu
func (s *crud[T, P]) create(ctx context.Context, input T) (*T, error) {
	item := &input
	now := s.cfg.now()
	meta := P(item).Meta()
	meta.ID = domain.NewID(now)
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if s.hooks.defaults != nil {
		s.hooks.defaults(item)
	}
	if s.hooks.validate != nil {
		if err := s.hooks.validate(ctx, item, nil); err != nil {
			return nil, err
		}
	}
	if err := s.store(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("record created", slog.String("entity", s.entity), slog.String("id", meta.ID))
	return item, nil
}

// Update shallow-merges patch over the stored record and re-validates
func (s *crud[T, P]) Update(ctx context.Context, id string, patch map[string]any) (updated *T, err error) {
	ctx, finish, err := s.begin(ctx, "update")
	if err != nil {
		return nil, err
	}
	defer finish(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := merge[T](prev, patch)
	if err != nil {
		return nil, err
	}
	meta, prevMeta := P(next).Meta(), P(prev).Meta()
	meta.ID = prevMeta.ID
	meta.CreatedAt = prevMeta.CreatedAt
	meta.UpdatedAt = s.cfg.now()

	if s.hooks.validate != nil {
		if err := s.hooks.validate(ctx, next, prev); err != nil {
			return nil, err
		}
	}
	if err := s.store(ctx, next); err != nil {
		return nil, err
	}
	if err := s.enrichOne(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// mutate applies fn to a stored record under the write lock. fn may return
// a domain error to abort without writing.
func (s *crud[T, P]) mutate(ctx context.Context, id string, fn func(item *T) error) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	P(item).Meta().UpdatedAt = s.cfg.now()
	if err := s.store(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete applies the entity's delete policy
func (s *crud[T, P]) Delete(ctx context.Context, id string) (err error) {
	ctx, finish, err := s.begin(ctx, "delete")
	if err != nil {
		return err
	}
	defer finish(&err)

	if s.hooks.remove == nil {
		return domain.Forbidden(s.entity + " cannot be deleted")
	}
	now := s.cfg.now()
	_, err = s.mutate(ctx, id, func(item *T) error {
		return s.hooks.remove(item, now)
	})
	if err == nil {
		s.logger.Info("record deleted", slog.String("entity", s.entity), slog.String("id", id))
	}
	return err
}

// merge overlays patch on the JSON form of base. Immutable keys are ignored.
func merge[T any](base *T, patch map[string]any) (*T, error) {
	raw, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	original := map[string]any{}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &original); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	for k, v := range original {
		fields[k] = v
	}
	for k, v := range patch {
		fields[k] = v
	}
	for _, k := range immutable {
		if v, ok := original[k]; ok {
			fields[k] = v
		} else {
			delete(fields, k)
		}
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, domain.Invalidf("invalid patch: %v", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, domain.Invalidf("invalid patch: %v", err)
	}
	return &out, nil
}

// errSkip aborts a mutate without writing and without reporting a failure
var errSkip = errors.New("skip")

// query waits, filters visible records with keep and paginates them
func (s *crud[T, P]) query(ctx context.Context, keep func(*T) bool, p pagination.Params) (pagination.Page[T], error) {
	if err := s.wait(ctx); err != nil {
		return pagination.Page[T]{}, err
	}
	items, err := s.filter(ctx, keep)
	if err != nil {
		return pagination.Page[T]{}, err
	}
	return s.page(ctx, items, p)
}
