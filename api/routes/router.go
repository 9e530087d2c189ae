package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storecashier/cashier-backend/api/controllers"
	"github.com/storecashier/cashier-backend/api/middleware"
	"github.com/storecashier/cashier-backend/internal/backup"
	"github.com/storecashier/cashier-backend/internal/cart"
	"github.com/storecashier/cashier-backend/internal/products"
	"github.com/storecashier/cashier-backend/internal/settings"
	"github.com/storecashier/cashier-backend/internal/settlement"
	"github.com/storecashier/cashier-backend/pkg/db"
	"github.com/storecashier/cashier-backend/pkg/logger"
)

func NewRouter(
	logg *logger.Logger,
	dbClient *db.Client,
	productService products.Service,
	cartService cart.Service,
	settlementService settlement.Service,
	settingsService settings.Service,
	backupService backup.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(dbClient, logg))

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/export", controllers.ProductExport(productService, logg))
			r.Post("/import", controllers.ProductImport(productService, logg))
			r.Delete("/id/{id}", controllers.ProductDeleteByID(productService, logg))
			r.Get("/{barcode}", controllers.ProductFetch(productService, logg))
			r.Put("/{barcode}", controllers.ProductUpdate(productService, logg))
			r.Patch("/{barcode}/stock", controllers.ProductUpdateStock(productService, logg))
			r.Delete("/{barcode}", controllers.ProductDelete(productService, logg))
		})

		r.Route("/carts/{session}", func(r chi.Router) {
			r.Post("/scan", controllers.CartScan(cartService, logg))
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/lines/{index}", controllers.CartRemoveLine(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/confirm", controllers.CartConfirm(settlementService, logg))
		})

		r.Route("/backups", func(r chi.Router) {
			r.Post("/", controllers.BackupRun(backupService, logg))
			r.Get("/", controllers.BackupList(backupService, logg))
			r.Post("/test", controllers.BackupTestConnection(backupService, logg))
			r.Post("/{file}/restore", controllers.BackupRestore(backupService, logg))
		})

		r.Route("/settings/webdav", func(r chi.Router) {
			r.Get("/", controllers.SettingsFetchWebDAV(settingsService, logg))
			r.Put("/", controllers.SettingsSaveWebDAV(settingsService, logg))
		})
	})

	return r
}
