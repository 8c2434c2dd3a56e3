package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekeep/storekeep/internal/catalog/categories"
	"github.com/storekeep/storekeep/internal/catalog/pricelevels"
	"github.com/storekeep/storekeep/internal/catalog/products"
	"github.com/storekeep/storekeep/internal/catalog/tags"
	"github.com/storekeep/storekeep/internal/importer"
	"github.com/storekeep/storekeep/internal/orders"
	"github.com/storekeep/storekeep/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Pool               *pgxpool.Pool
	CategoriesHandler  *categories.Handler
	ProductsHandler    *products.Handler
	PriceLevelsHandler *pricelevels.Handler
	TagsHandler        *tags.Handler
	OrdersHandler      *orders.Handler
	ImportHandler      *importer.Handler
	UsersHandler       *users.Handler
}

// NewRouter constructs the chi.Router with the standard middleware chain
// and mounts every domain handler under /api.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Mount("/categories", params.CategoriesHandler.Routes())
		api.Mount("/products", params.ProductsHandler.Routes())
		api.Mount("/price-levels", params.PriceLevelsHandler.Routes())
		api.Mount("/tags", params.TagsHandler.Routes())
		api.Mount("/orders", params.OrdersHandler.Routes())
		api.Mount("/imports", params.ImportHandler.Routes())
		api.Mount("/users", params.UsersHandler.Routes())
	})

	return r
}
