// Package service hosts the single-household session: it owns the state
// aggregate, applies every mutation synchronously and persists the whole
// blob after each one. Validation failures are silent no-ops and shortages
// are result values, matching the "never throw on user input" contract.
package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mhofstetter/homestorage/internal/allocation"
	"github.com/mhofstetter/homestorage/internal/cache"
	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
	"github.com/mhofstetter/homestorage/internal/inventory"
	"github.com/mhofstetter/homestorage/internal/repository"
)

// unknownArticleLabel substitutes for dangling article references at render
// time. Cascading deletes should make this unreachable, but a stale blob
// must not crash.
const unknownArticleLabel = "Unbekannter Artikel"

// Session owns the in-memory state of one household. All access is
// serialized by one mutex; the model is single-user, the lock only keeps
// concurrent HTTP requests from tearing the slices.
type Session struct {
	mu    sync.Mutex
	st    *domain.State
	repo  repository.StateRepository
	cache cache.AllocationCache
	rev   int64

	// now is swappable for deterministic tests.
	now func() int64
}

// NewSession loads the state from the repository and returns a ready
// session. A missing or malformed blob degrades to an empty state.
func NewSession(ctx context.Context, repo repository.StateRepository, cacheImpl cache.AllocationCache) (*Session, error) {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAllocationCache()
	}

	st, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = domain.NewState()
	}
	st.Normalize()

	return &Session{
		st:    st,
		repo:  repo,
		cache: cacheImpl,
		now:   domain.NowMillis,
	}, nil
}

// SetClock replaces the session clock. Test hook.
func (s *Session) SetClock(now func() int64) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// persist writes the state through fire-and-forget: a failed save is logged
// and swallowed, the in-memory aggregate stays authoritative. Every call
// bumps the revision so cached derived views fall out of date.
func (s *Session) persist(ctx context.Context) {
	s.rev++
	if err := s.repo.Save(ctx, s.st); err != nil {
		log.Error().Err(err).Msg("state save failed, in-memory state diverges from store")
	}
}

// autoConsume runs the pull-based aging sweep and persists once when any
// lot changed. Must precede every stock-dependent read.
func (s *Session) autoConsume(ctx context.Context) []inventory.Event {
	events, changed := inventory.ApplyAutoConsumption(s.st, s.now())
	if changed {
		s.persist(ctx)
	}
	return events
}

// --- Articles ---

// ArticleInput carries the editable attributes of an article. ID zero
// means create.
type ArticleInput struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Unit         string `json:"unit"`
	UseDays      int    `json:"useDays"`
	UseDaysScope string `json:"useDaysScope"`
}

// UpsertArticle creates or updates an article. Empty names and
// case-insensitive duplicates are silent no-ops (ok false).
func (s *Session) UpsertArticle(ctx context.Context, in ArticleInput) (*domain.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false
	}
	if s.st.ArticleByName(name, in.ID) != nil {
		return nil, false
	}

	category := catalog.NormalizeCategory(in.Category)
	unit := strings.TrimSpace(in.Unit)
	if unit != "" {
		unit = catalog.NormalizeUnit(unit)
	}
	useDays := max(0, in.UseDays)
	scope := catalog.NormalizeUseDaysScope(in.UseDaysScope)

	var article *domain.Article
	if in.ID != 0 {
		article = s.st.ArticleByID(in.ID)
		if article == nil {
			return nil, false
		}
		article.Name = name
		article.Category = category
		article.Unit = unit
		article.UseDays = useDays
		article.UseDaysScope = scope
	} else {
		article = &domain.Article{
			ID:           s.st.NextID(),
			Name:         name,
			Category:     category,
			Unit:         unit,
			UseDays:      useDays,
			UseDaysScope: scope,
			CreatedAt:    s.now(),
		}
		s.st.Articles = append([]*domain.Article{article}, s.st.Articles...)
	}

	s.persist(ctx)
	return article, true
}

// DeleteArticle removes an article and cascades: recipe items, shopping
// lines, inventory lots and history items for it disappear; history entries
// left without items are dropped.
func (s *Session) DeleteArticle(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.ArticleByID(id) == nil {
		return false
	}

	articles := s.st.Articles[:0]
	for _, a := range s.st.Articles {
		if a.ID != id {
			articles = append(articles, a)
		}
	}
	s.st.Articles = articles

	for _, r := range s.st.Recipes {
		items := r.Items[:0]
		for _, it := range r.Items {
			if it.ArticleID != id {
				items = append(items, it)
			}
		}
		r.Items = items
	}

	lines := s.st.Shopping[:0]
	for _, l := range s.st.Shopping {
		if l.ArticleID != id {
			lines = append(lines, l)
		}
	}
	s.st.Shopping = lines

	lots := s.st.Inventory[:0]
	for _, l := range s.st.Inventory {
		if l.ArticleID != id {
			lots = append(lots, l)
		}
	}
	s.st.Inventory = lots

	entries := s.st.History[:0]
	for _, h := range s.st.History {
		items := h.Items[:0]
		for _, it := range h.Items {
			if it.ArticleID != id {
				items = append(items, it)
			}
		}
		h.Items = items
		if len(h.Items) > 0 {
			entries = append(entries, h)
		}
	}
	s.st.History = entries

	s.persist(ctx)
	return true
}

// --- Allocation ---

// Allocation recomputes the full coverage result after the aging sweep.
func (s *Session) Allocation(ctx context.Context) allocation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoConsume(ctx)
	return allocation.Compute(s.st)
}

// Dashboard returns the per-recipe allocation overview, served from cache
// when the revision matches. Cache errors degrade to recompute.
func (s *Session) Dashboard(ctx context.Context) *allocation.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoConsume(ctx)

	if d, ok, err := s.cache.GetDashboard(ctx, s.rev); err == nil && ok {
		return d
	} else if err != nil {
		log.Warn().Err(err).Msg("allocation dashboard cache get failed")
	}

	d := allocation.BuildDashboard(s.st, allocation.Compute(s.st))
	if err := s.cache.SetDashboard(ctx, s.rev, d); err != nil {
		log.Warn().Err(err).Msg("allocation dashboard cache set failed")
	}
	return d
}

// --- State blob passthrough ---

// ExportState marshals the current aggregate, for the legacy state
// endpoint and for backups.
func (s *Session) ExportState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.st)
}

// ReplaceState swaps in a whole new aggregate (legacy PUT /state and
// restore). The blob is normalized before it becomes authoritative.
func (s *Session) ReplaceState(ctx context.Context, raw []byte) error {
	st := &domain.State{}
	if err := json.Unmarshal(raw, st); err != nil {
		return err
	}
	st.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = st
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("allocation dashboard cache invalidate failed")
	}
	s.persist(ctx)
	return nil
}
