package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"

	"github.com/kirillkom/termlens/internal/config"
	"github.com/kirillkom/termlens/internal/core/ports"
	"github.com/kirillkom/termlens/internal/observability/metrics"
)

const service = "api"

// Services are the inbound ports the router serves. Handoff and Renderer may be
// nil; the related query options then degrade to warnings or 400s.
type Services struct {
	Analyzer ports.DocumentAnalyzer
	Handoff  ports.ReportHandoff
	Chat     ports.ChatService
	Catalog  ports.ProductCatalog
	Renderer ports.ReportRenderer
	Metrics  *metrics.HTTPServerMetrics
}

type Router struct {
	cfg       config.Config
	svc       Services
	validator routers.Router
}

func NewRouter(cfg config.Config, svc Services) (*Router, error) {
	rt := &Router{cfg: cfg, svc: svc}
	if cfg.OpenAPIValidation {
		validator, err := loadOpenAPIRouter()
		if err != nil {
			return nil, err
		}
		rt.validator = validator
	}
	return rt, nil
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware, accessLogMiddleware)
	if rt.svc.Metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return rt.svc.Metrics.Middleware(service, next)
		})
		r.Method(http.MethodGet, "/metrics", rt.svc.Metrics.Handler())
	}

	r.Get("/healthz", rt.healthz)
	r.Get("/openapi.yaml", rt.openAPI)

	r.Group(func(api chi.Router) {
		api.Use(func(next http.Handler) http.Handler {
			return rateLimitMiddleware(next, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst, rt.recordRejection)
		})
		api.Use(func(next http.Handler) http.Handler {
			return backpressureMiddleware(next, rt.cfg.BackpressureMax, rt.backpressureWait(), rt.recordRejection)
		})
		if rt.validator != nil {
			api.Use(openAPIValidationMiddleware(rt.validator))
		}

		api.Post("/v1/documents/analyze", rt.analyzeDocument)
		api.Post("/v1/analysis", rt.analyzeText)
		api.Post("/v1/chat", rt.chat)
		api.Get("/v1/products", rt.listProducts)
		api.Get("/v1/products/{slug}", rt.getProduct)
	})

	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

func (rt *Router) recordRejection(reason string) {
	if rt.svc.Metrics != nil {
		rt.svc.Metrics.RecordRejection(service, reason)
	}
}

func (rt *Router) backpressureWait() time.Duration {
	if rt.cfg.BackpressureWait <= 0 {
		return 250 * time.Millisecond
	}
	return rt.cfg.BackpressureWait
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps a domain error to a status. Internal errors are not echoed.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeError(w, status, message)
}
