package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"restaurant-admin-service/internal/config"
	"restaurant-admin-service/internal/http/handlers"
	"restaurant-admin-service/internal/middleware"
	"restaurant-admin-service/internal/queue"
	"restaurant-admin-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewRouter(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config, queueClient *queue.Client, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{DB: db, Logger: logger, Config: cfg, Queue: queueClient}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(db, cfg.JWTSecret))

		r.Get("/branches", h.AdminListBranches)
		r.Post("/branches", h.AdminCreateBranch)
		r.Put("/branches/{branchId}", h.AdminUpdateBranch)
		r.Patch("/branches/{branchId}/toggle-active", h.AdminToggleBranch)

		r.Get("/delivery-areas", h.AdminListDeliveryAreas)
		r.Post("/delivery-areas", h.AdminCreateDeliveryArea)
		r.Put("/delivery-areas/{areaId}", h.AdminUpdateDeliveryArea)
		r.Patch("/delivery-areas/{areaId}/toggle-active", h.AdminToggleDeliveryArea)

		r.Get("/branches/{branchId}/shifts", h.AdminListShifts)
		r.Get("/branches/{branchId}/shifts/current", h.AdminCurrentShift)
		r.Post("/branches/{branchId}/shifts", h.AdminStartShift)
		r.Post("/shifts/{shiftId}/end", h.AdminEndShift)

		r.Get("/users", h.AdminListUsers)
		r.Post("/users", h.AdminCreateUser)
		r.Patch("/users/{userId}/toggle-active", h.AdminToggleUser)

		r.Get("/orders", h.AdminListOrders)
		r.Get("/orders/{orderId}", h.AdminGetOrder)

		r.Get("/reports/sales", h.AdminSalesReport)
		r.Get("/reports/sales/print", h.AdminSalesReportPrint)
		r.Get("/reports/sales/export", h.AdminSalesReportPDF)
	})

	if wsServer != nil {
		r.Get("/ws/admin/shifts", wsServer.AdminShiftsWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
