package app

import (
	"context"

	"go.uber.org/zap"

	"go-course-client/internal/cart"
	"go-course-client/internal/catalog"
	"go-course-client/internal/config"
	"go-course-client/internal/gateway"
	"go-course-client/internal/intent"
	"go-course-client/internal/session"
	"go-course-client/internal/wishlist"
)

// App owns one explicitly constructed instance of every store and
// gateway. Nothing here is a package-level singleton: whoever needs the
// cart gets this App (or the store) passed by reference, and only the
// stores' own methods mutate their state.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Tokens   *session.BearerSource
	Gateway  *gateway.Client
	Catalog  *catalog.Remote
	Cart     *intent.Store
	Wishlist *intent.Store
}

func Build(cfg config.Config, logger *zap.Logger) (*App, error) {
	tokens := session.NewBearerSource(cfg.AuthToken)

	gw, err := gateway.New(gateway.Config{
		BaseURL:  cfg.APIBaseURL,
		CSRFPath: cfg.CSRFPath,
		Timeout:  cfg.HTTPTimeout,
	}, tokens, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Tokens:   tokens,
		Gateway:  gw,
		Catalog:  catalog.NewRemote(gw, cfg.PageSize, logger),
		Cart:     cart.NewStore(gw, tokens, logger),
		Wishlist: wishlist.NewStore(gw, tokens, logger),
	}, nil
}

// Browse loads one catalog page, validates the criteria against the
// category tree, and runs the query engine over the loaded courses.
// The engine output order is what a UI would render.
func (a *App) Browse(ctx context.Context, params catalog.CriteriaParams, page int) ([]catalog.Course, gateway.ListMeta, error) {
	criteria, err := catalog.BuildCriteria(params)
	if err != nil {
		return nil, gateway.ListMeta{}, err
	}

	if criteria.CategoryID != "" || criteria.SubcategoryID != "" {
		ix, err := a.Catalog.Index(ctx)
		if err != nil {
			return nil, gateway.ListMeta{}, err
		}
		if err := criteria.Validate(ix); err != nil {
			return nil, gateway.ListMeta{}, err
		}
	}

	loaded, err := a.Catalog.Page(ctx, page)
	if err != nil {
		return nil, gateway.ListMeta{}, err
	}

	return catalog.Filter(loaded.Courses, criteria), loaded.Meta, nil
}
