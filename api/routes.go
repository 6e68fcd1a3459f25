package api

import (
	"github.com/gorilla/mux"

	"github.com/rumCAJs/atomicapp/internal/config"
	"github.com/rumCAJs/atomicapp/internal/core"
	"github.com/rumCAJs/atomicapp/internal/db"
	"github.com/rumCAJs/atomicapp/internal/repository/sqlite"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, conn *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and services
	repo := sqlite.New(conn, logger)
	profiles := core.NewProfileService(repo, logger)
	projects := core.NewProjectService(repo, repo, repo, profiles, logger)
	tasks := core.NewTaskService(repo, projects, logger)
	stores := core.NewStoreService(repo, projects, logger)
	friends := core.NewFriendService(repo, profiles, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, profiles, cfg.JWTSecret, cfg.TokenDuration)
	profileHandler := NewProfileHandler(profiles)
	projectsHandler := NewProjectsHandler(projects)
	tasksHandler := NewTasksHandler(tasks)
	storeHandler := NewStoreHandler(stores)
	friendsHandler := NewFriendsHandler(friends)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Profile endpoints
	apiV1.HandleFunc("/profile", profileHandler.Me).Methods("GET")
	apiV1.HandleFunc("/profile", profileHandler.Update).Methods("PUT")

	// Project endpoints
	apiV1.HandleFunc("/projects", projectsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/projects", projectsHandler.List).Methods("GET")
	apiV1.HandleFunc("/projects/{id}", projectsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/projects/{id}", projectsHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/projects/{id}/history", projectsHandler.History).Methods("GET")

	// Task endpoints
	apiV1.HandleFunc("/tasks", tasksHandler.Add).Methods("POST")
	apiV1.HandleFunc("/tasks/{id:[0-9]+}", tasksHandler.Get).Methods("GET")
	apiV1.HandleFunc("/tasks/{id:[0-9]+}", tasksHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/tasks/{id:[0-9]+}/complete", tasksHandler.Complete).Methods("POST")
	apiV1.HandleFunc("/tasks/{id:[0-9]+}/completions", tasksHandler.Completions).Methods("GET")
	apiV1.HandleFunc("/tasks/{id:[0-9]+}/history", tasksHandler.History).Methods("GET")

	// Store endpoints
	apiV1.HandleFunc("/store/items", storeHandler.AddItem).Methods("POST")
	apiV1.HandleFunc("/store/{id:[0-9]+}/items", storeHandler.Items).Methods("GET")
	apiV1.HandleFunc("/store/items/{id:[0-9]+}/buy", storeHandler.Buy).Methods("POST")

	// Friend endpoints
	apiV1.HandleFunc("/friends", friendsHandler.List).Methods("GET")
	apiV1.HandleFunc("/friends/request", friendsHandler.Request).Methods("POST")
	apiV1.HandleFunc("/friends/process", friendsHandler.Process).Methods("POST")

	return r
}
