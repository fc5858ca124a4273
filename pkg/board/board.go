// Package board runs one load: fetch the raw table (through the cache),
// reconcile its columns and normalize every row into a snapshot.
package board

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/tasksheet/pkg/cache"
	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/harrisonrobin/tasksheet/pkg/logger"
	"github.com/harrisonrobin/tasksheet/pkg/model"
	"github.com/harrisonrobin/tasksheet/pkg/normalize"
	"github.com/harrisonrobin/tasksheet/pkg/source"
)

// Result is the outcome of a load. On failure Snapshot holds no tasks
// and Err explains why.
type Result struct {
	Snapshot model.Snapshot    `json:"snapshot"`
	Err      *model.Diagnostic `json:"error,omitempty"`
}

// OK reports whether the load succeeded.
func (r Result) OK() bool { return r.Err == nil }

type Board struct {
	Normalizer *normalize.Normalizer
	// Cache is optional; nil fetches on every load.
	Cache *cache.Cache
	// Now is the clock; nil means time.Now.
	Now func() time.Time
	// Reference overrides the evaluation time used for DaysPending.
	Reference time.Time
}

func New(n *normalize.Normalizer, c *cache.Cache) *Board {
	return &Board{Normalizer: n, Cache: c}
}

// Load fetches src and normalizes it. It never returns partial data: a
// source that cannot be read yields an empty snapshot and a
// SourceUnreadable diagnostic.
func (b *Board) Load(ctx context.Context, src source.Source) Result {
	now := b.now()
	ref := b.Reference
	if ref.IsZero() {
		ref = now
	}

	snap := model.Snapshot{
		ID:        uuid.NewString(),
		Source:    src.ID(),
		LoadedAt:  now,
		Reference: ref,
		Columns:   []string{},
		Mapping:   map[string]string{},
		Tasks:     []model.Task{},
	}

	table, fetchedAt, err := b.fetch(ctx, src, now)
	if err != nil {
		logger.Logger.Warnw("load failed", "source", snap.Source, "error", err)
		return Result{Snapshot: snap, Err: unreadable(err)}
	}

	n := b.Normalizer
	if n == nil {
		n = normalize.New(nil, normalize.DateParser{})
	}
	res := n.Normalize(table.Headers, table.Rows, ref)
	snap.LoadedAt = fetchedAt
	snap.Columns = res.Columns
	snap.Mapping = res.Mapping
	snap.Tasks = res.Tasks
	snap.Advisories = res.Advisories

	logger.Logger.Infow("loaded sheet",
		"source", snap.Source,
		"tasks", len(snap.Tasks),
		"advisories", len(snap.Advisories),
		"cached", !fetchedAt.Equal(now))
	for _, adv := range snap.Advisories {
		logger.Logger.Debugw("advisory", "kind", adv.Kind, "message", adv.Message)
	}
	return Result{Snapshot: snap}
}

func (b *Board) fetch(ctx context.Context, src source.Source, now time.Time) (*source.Table, time.Time, error) {
	id := src.ID()
	if b.Cache != nil {
		b.Cache.Sweep(now)
		if t, fetchedAt, ok := b.Cache.Get(id, now); ok {
			return t, fetchedAt, nil
		}
	}

	t, err := src.Load(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	if t == nil {
		return nil, time.Time{}, errors.Mark(errors.Newf("%s returned no table", id), errors.ErrSourceUnreadable)
	}

	if b.Cache != nil {
		b.Cache.Put(id, t, now)
		if err := b.Cache.Save(); err != nil {
			logger.Logger.Warnw("cache not saved", "error", err)
		}
	}
	return t, now, nil
}

// Invalidate drops any cached table for src so the next load refetches.
func (b *Board) Invalidate(src source.Source) {
	if b.Cache == nil {
		return
	}
	b.Cache.Remove(src.ID())
	if err := b.Cache.Save(); err != nil {
		logger.Logger.Warnw("cache not saved", "error", err)
	}
}

func (b *Board) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func unreadable(err error) *model.Diagnostic {
	msg := err.Error()
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		msg += " (" + strings.Join(hints, "; ") + ")"
	}
	return &model.Diagnostic{
		Kind:    model.SourceUnreadable,
		Message: msg,
	}
}
