package api

import (
	"net/http"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/handler"
	"github.com/AlexZinkM/evm-wallet/internal/metrics"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/AlexZinkM/evm-wallet/docs"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// SetupRouter sets up router with handlers
func SetupRouter(h *handler.EthereumHandler, m *metrics.Metrics, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()

	route := func(pattern string, fn http.HandlerFunc) {
		var next http.Handler = fn
		if m != nil {
			next = m.Middleware(pattern, next)
		}
		mux.Handle(pattern, next)
	}

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Ethereum endpoints
	route("POST /ethereum/generate", h.Generate)
	route("GET /ethereum/balance", h.GetBalance)
	route("POST /ethereum/pay", h.Pay)

	// Contract endpoints
	route("GET /ethereum/contracts", h.ListContracts)
	route("GET /ethereum/contracts/functions", h.ListFunctions)
	route("POST /ethereum/contracts/call", h.Call)
	route("POST /ethereum/contracts/invoke", h.Invoke)

	return withRequestLog(mux, log.Named("http"))
}

// withRequestLog tags every request with an id and logs its outcome
func withRequestLog(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info("request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
