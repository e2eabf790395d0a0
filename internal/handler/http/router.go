package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/chronopoint/attendance-backend-go/internal/handler/http/middleware"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(JWTService jwt.Service, punchHandler PunchHandler, supplementaryHandler SupplementaryHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "chronopoint-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Terminals push punches here. Authenticated per request with
		// device headers, not a JWT.
		r.Post("/webhook/punch", punchHandler.Webhook)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/punches", func(r chi.Router) {
				r.Get("/", punchHandler.List)
				r.Post("/", punchHandler.Record)
				r.Get("/{id}", punchHandler.Get)
				r.Post("/{id}/correct", punchHandler.Correct)
			})

			r.Route("/supplementary-days", func(r chi.Router) {
				r.Get("/", supplementaryHandler.List)
				r.Get("/{id}", supplementaryHandler.Get)
				r.Post("/{id}/approve", supplementaryHandler.Approve)
				r.Post("/{id}/reject", supplementaryHandler.Reject)
			})
		})
	})
	return r
}
