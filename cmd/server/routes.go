package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/quizdeck/backend/internal/auth"
	"github.com/quizdeck/backend/internal/generator"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/middleware"
	"github.com/quizdeck/backend/internal/notebook"
	"github.com/quizdeck/backend/internal/practice"
	"github.com/quizdeck/backend/internal/questions"
	"github.com/quizdeck/backend/internal/review"
	"github.com/quizdeck/backend/internal/store"
	"github.com/quizdeck/backend/internal/taxonomy"
	"github.com/rs/cors"
)

type deps struct {
	store       store.Store
	tokens      *auth.Tokens
	drafter     *generator.Generator
	adminEmails []string
	corsOrigins []string
	log         *logger.Logger
}

// newRouter wires every service and mounts the API under /api/v1.
func newRouter(d deps) http.Handler {
	resolver := taxonomy.NewResolver(d.store, d.log)
	questionSvc := questions.NewService(d.store, resolver, d.log)

	authHandler := auth.NewHandler(d.store, d.tokens, d.adminEmails, d.log)
	questionHandler := questions.NewHandler(questionSvc, resolver, d.drafter, d.log)
	practiceHandler := practice.NewHandler(practice.NewService(d.store, d.log), d.log)
	reviewHandler := review.NewHandler(review.NewService(d.store, d.log), d.log)
	notebookHandler := notebook.NewHandler(notebook.NewService(d.store, d.log), d.log)

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(d.log))
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Auth(d.tokens), middleware.RequireAdmin)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(d.tokens))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	questionHandler.RegisterRoutes(protected, admin)
	practiceHandler.RegisterRoutes(protected)
	reviewHandler.RegisterRoutes(protected)
	notebookHandler.RegisterRoutes(protected)

	c := cors.New(cors.Options{
		AllowedOrigins:   d.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
