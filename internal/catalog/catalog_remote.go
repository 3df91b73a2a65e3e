package catalog

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"go-course-client/internal/gateway"
)

// CoursePage is one server page of the catalog plus its pagination
// metadata.
type CoursePage struct {
	Courses []Course
	Meta    gateway.ListMeta
}

type coursesResponse struct {
	gateway.ListMeta
	Data []Course `json:"data"`
}

type categoriesResponse struct {
	Data []Category `json:"data"`
}

// Remote fetches catalog data through the gateway and caches it: course
// pages per page number, the category tree once. The catalog is a
// read-only snapshot, so the cache only ever goes stale, never wrong;
// Invalidate drops it on explicit refresh.
type Remote struct {
	gw       *gateway.Client
	logger   *zap.Logger
	pageSize int

	mu         sync.Mutex
	pages      map[int]CoursePage
	categories []Category
	haveCats   bool
}

func NewRemote(gw *gateway.Client, pageSize int, logger *zap.Logger) *Remote {
	if pageSize < 1 {
		pageSize = 12
	}
	return &Remote{
		gw:       gw,
		logger:   logger,
		pageSize: pageSize,
		pages:    make(map[int]CoursePage),
	}
}

// Page returns the requested 1-based catalog page, from cache when
// available.
func (r *Remote) Page(ctx context.Context, page int) (CoursePage, error) {
	if page < 1 {
		page = 1
	}

	r.mu.Lock()
	if cached, ok := r.pages[page]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(r.pageSize))

	var out coursesResponse
	if err := r.gw.Get(ctx, "/courses", query, &out); err != nil {
		return CoursePage{}, ErrCatalogFetchFailed.WithCause(err)
	}

	loaded := CoursePage{Courses: out.Data, Meta: out.ListMeta}

	r.mu.Lock()
	r.pages[page] = loaded
	r.mu.Unlock()

	r.logger.Debug("catalog page loaded",
		zap.Int("page", page),
		zap.Int("count", len(loaded.Courses)),
		zap.Int("total", loaded.Meta.Total),
	)
	return loaded, nil
}

// Categories returns the category tree, fetched once per Remote.
func (r *Remote) Categories(ctx context.Context) ([]Category, error) {
	r.mu.Lock()
	if r.haveCats {
		cats := r.categories
		r.mu.Unlock()
		return cats, nil
	}
	r.mu.Unlock()

	var out categoriesResponse
	if err := r.gw.Get(ctx, "/categories", nil, &out); err != nil {
		return nil, ErrCatalogFetchFailed.WithCause(err)
	}

	r.mu.Lock()
	r.categories = out.Data
	r.haveCats = true
	r.mu.Unlock()
	return out.Data, nil
}

// Index builds a CategoryIndex from the (cached) category tree.
func (r *Remote) Index(ctx context.Context) (CategoryIndex, error) {
	cats, err := r.Categories(ctx)
	if err != nil {
		return CategoryIndex{}, err
	}
	return NewCategoryIndex(cats), nil
}

// Invalidate drops one cached page.
func (r *Remote) Invalidate(page int) {
	r.mu.Lock()
	delete(r.pages, page)
	r.mu.Unlock()
}

// InvalidateAll drops every cached page and the category tree.
func (r *Remote) InvalidateAll() {
	r.mu.Lock()
	r.pages = make(map[int]CoursePage)
	r.categories = nil
	r.haveCats = false
	r.mu.Unlock()
}
