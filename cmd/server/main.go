package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buildlink-backend/config"
	"buildlink-backend/handlers"
	"buildlink-backend/repository"
	"buildlink-backend/services"
	"buildlink-backend/ws"
)

// loggingMiddleware adds request logging
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s %s in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func withCORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := allowedOrigin
			if origin == "*" {
				if reqOrigin := r.Header.Get("Origin"); reqOrigin != "" {
					origin = reqOrigin
				}
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Sec-WebSocket-Protocol, Sec-WebSocket-Extensions, Sec-WebSocket-Key, Sec-WebSocket-Version, Upgrade, Connection")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// repos bundles one implementation of each repository.
type repos struct {
	users     repository.UserRepository
	messages  repository.MessageRepository
	projects  repository.ProjectRepository
	contracts repository.ContractRepository
	reviews   repository.ReviewRepository
	close     func() error
}

func buildRepos(cfg *config.Config) (*repos, error) {
	if cfg.Storage == "memory" {
		log.Println("Using in-memory storage (state is lost on restart)")
		return &repos{
			users:     repository.NewInMemoryUserRepo(),
			messages:  repository.NewInMemoryMessageRepo(),
			projects:  repository.NewInMemoryProjectRepo(),
			contracts: repository.NewInMemoryContractRepo(),
			reviews:   repository.NewInMemoryReviewRepo(),
			close:     func() error { return nil },
		}, nil
	}

	store, err := repository.OpenStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	log.Printf("Using sqlite storage at %s", cfg.DatabasePath)
	return &repos{
		users:     store.Users(),
		messages:  store.Messages(),
		projects:  store.Projects(),
		contracts: store.Contracts(),
		reviews:   store.Reviews(),
		close:     store.Close,
	}, nil
}

func main() {
	// --- config/env ---
	cfg := config.Load()

	log.Printf("Starting buildlink server on port %s", cfg.Port)

	// --- storage ---
	db, err := buildRepos(&cfg)
	if err != nil {
		log.Fatalf("Storage init failed: %v", err)
	}
	defer db.close()

	// --- presence + gateway ---
	presence := ws.NewPresence()
	gateway := ws.NewGateway(presence)
	go gateway.Run()

	// --- services ---
	authSvc := services.NewAuthService(db.users, &cfg)
	msgSvc := services.NewMessageService(db.messages, db.users, gateway, &cfg)
	projectSvc := services.NewProjectService(db.projects, db.users)
	contractSvc := services.NewContractService(db.contracts, db.projects, db.users)
	reviewSvc := services.NewReviewService(db.reviews, db.users)
	adminSvc := services.NewAdminService(db.users, db.reviews)

	// typing signals read off the wire are routed by the coordinator
	gateway.SetTypingForwarder(msgSvc)

	// --- handlers ---
	authH := handlers.NewAuthHandler(authSvc)
	msgH := handlers.NewMessageHandler(msgSvc, authSvc, gateway)
	projectH := handlers.NewProjectHandler(projectSvc)
	contractH := handlers.NewContractHandler(contractSvc)
	reviewH := handlers.NewReviewHandler(reviewSvc)
	adminH := handlers.NewAdminHandler(adminSvc)

	// --- mux and routes ---
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
	})

	// Auth & users
	mux.HandleFunc("/api/register", authH.Register)
	mux.HandleFunc("/api/login", authH.Login)
	mux.HandleFunc("/api/me", authH.WithAuth(authH.Me))
	mux.HandleFunc("/api/change-password", authH.WithAuth(authH.ChangePassword))
	mux.HandleFunc("/api/users", authH.WithAuth(authH.Users))

	// Messaging
	mux.HandleFunc("/api/messages", authH.WithAuth(msgH.Messages))
	mux.HandleFunc("/api/messages/conversations", authH.WithAuth(msgH.Conversations))
	mux.HandleFunc("/ws", msgH.WS) // WS ?token=<token>

	// Projects
	mux.HandleFunc("/api/projects", authH.WithAuth(projectH.List))
	mux.HandleFunc("/api/projects/create", authH.WithRole("client", projectH.Create))
	mux.HandleFunc("/api/projects/search", authH.WithAuth(projectH.Search))
	mux.HandleFunc("/api/projects/detail", authH.WithAuth(projectH.Detail))

	// Contracts
	mux.HandleFunc("/api/contracts", authH.WithAuth(contractH.Contracts))
	mux.HandleFunc("/api/contracts/detail", authH.WithAuth(contractH.Detail))

	// Reviews (listing is public, writes are authenticated)
	mux.HandleFunc("/api/reviews", reviewH.List)
	mux.HandleFunc("/api/reviews/user", reviewH.ForEngineer)
	mux.HandleFunc("/api/reviews/create", authH.WithAuth(reviewH.Create))
	mux.HandleFunc("/api/reviews/detail", authH.WithAuth(reviewH.Detail))

	// Admin moderation
	mux.HandleFunc("/api/admin/users/status", authH.WithRole("admin", adminH.UserStatus))
	mux.HandleFunc("/api/admin/reviews", authH.WithRole("admin", adminH.Reviews))

	// Apply middleware
	handler := withCORS(cfg.AllowedOrigin)(loggingMiddleware(mux))

	// --- server setup ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- graceful shutdown ---
	go func() {
		log.Printf("Buildlink server running on http://localhost:%s", cfg.Port)
		log.Printf("WS endpoint: ws://localhost:%s/ws?token=<token>", cfg.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
