package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"shuuro-server/internal/auth"
	"shuuro-server/internal/config"
	"shuuro-server/internal/db"
	"shuuro-server/internal/handlers"
	"shuuro-server/internal/middleware"
	"shuuro-server/internal/shuuro"
	"shuuro-server/internal/ws"
)

func main() {
	// Load configuration
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting shuuro server in %s mode", cfg.Environment)

	// Connect to MongoDB
	mongodb, err := db.NewMongoDB(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongodb.Close(ctx)
	}()

	log.Printf("Connected to MongoDB database: %s", cfg.MongoDB.Database)

	// Connect to Redis
	sessions, err := db.NewSessionStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	games := mongodb.GameQueries()
	players := mongodb.PlayerQueries()

	// Precompute the attack tables before the first match spawns
	shuuro.InitAttacks()

	// Spawn the actor fabric and revive unfinished games
	state := ws.NewState(games, cfg.Moderator, cfg.Ai.Pockets)
	recoverCtx, cancelRecover := context.WithTimeout(context.Background(), 60*time.Second)
	if err := state.Recover(recoverCtx); err != nil {
		log.Printf("Warning: [Recovery] could not revive games: %v", err)
	}
	cancelRecover()

	// Auth services
	oauthService := auth.NewOAuthService(
		cfg.OAuth.ClientID,
		cfg.OAuth.AuthURL,
		cfg.OAuth.TokenURL,
		cfg.OAuth.AccountURL,
		cfg.OAuth.RedirectURL,
	)
	stateService := auth.NewStateService(cfg.OAuth.StateSecret)

	// Create middleware
	sessionMiddleware := middleware.NewSessionMiddleware(
		sessions, players,
		cfg.Session.SameSite, cfg.Session.Secure, cfg.Session.HttpOnly,
	)

	// Create handlers
	wsHandler := handlers.NewWebSocketHandler(state)
	gameHandler := handlers.NewGameHandler(state, games, players)
	authHandler := handlers.NewAuthHandler(oauthService, stateService, sessions, players, sessionMiddleware, cfg.Frontend.URL)

	// Set up router; every route runs behind the session cookie
	router := mux.NewRouter()
	router.Use(middleware.SecurityHeaders())
	router.Use(sessionMiddleware.WithSession)

	router.HandleFunc("/ws", wsHandler.Serve)
	router.HandleFunc("/login", authHandler.Login).Methods("GET")
	router.HandleFunc("/callback", authHandler.Callback).Methods("GET")
	router.HandleFunc("/logout", authHandler.Logout).Methods("GET")
	router.HandleFunc("/vue_user", authHandler.VueUser).Methods("GET")
	router.HandleFunc("/vue/game/{id}", gameHandler.VueGame).Methods("GET")
	router.HandleFunc("/vue/@/{username}/{page}", gameHandler.Profile).Methods("GET")
	router.HandleFunc("/shutdown", gameHandler.Shutdown).Methods("GET")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.Origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
