package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campuslink/backend/internal/config"
	"github.com/campuslink/backend/internal/handlers"
	"github.com/campuslink/backend/internal/logging"
	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/realtime"
	"github.com/campuslink/backend/internal/services"
	"github.com/campuslink/backend/internal/storage"
)

type stores struct {
	users     services.UserStore
	items     services.ItemStore
	listings  services.ListingStore
	resources services.ResourceStore
	chats     services.ChatStore
}

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Store initialization failed: %v", err)
	}
	defer cleanup()

	firebaseClient, err := middleware.NewFirebaseAuthClient(ctx, middleware.FirebaseAuthConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsJSON: cfg.FirebaseCredentialsJSON,
	})
	if err != nil {
		log.Fatalf("Firebase initialization failed: %v", err)
	}
	if firebaseClient != nil {
		logger.Info("firebase token verification enabled", "project", cfg.FirebaseProjectID)
	}

	hub := realtime.NewHub()
	var bus realtime.Publisher = hub
	if cfg.NATSUrl != "" {
		bridge, err := realtime.NewNATSBridge(cfg.NATSUrl, hub, logger)
		if err != nil {
			log.Fatalf("NATS initialization failed: %v", err)
		}
		defer bridge.Close()
		bus = bridge
		logger.Info("event fanout via NATS", "url", cfg.NATSUrl)
	}

	var objectStorage *services.ObjectStorage
	if cfg.S3Endpoint != "" {
		objectStorage, err = services.NewObjectStorage(
			cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicBaseURL, logger)
		if err != nil {
			log.Fatalf("Object storage initialization failed: %v", err)
		}
	} else {
		logger.Warn("no S3 endpoint configured, uploads disabled")
	}

	chatService := services.NewChatService(st.chats, st.users, bus, logger)
	geocoder := services.NewGeocoder(cfg.GeocodingEndpoint, cfg.GeocodingAPIKey)

	authHandler := handlers.NewAuthHandler(st.users, cfg.JWTSecret, cfg.JWTExpiration)
	userHandler := handlers.NewUserHandler(st.users, firebaseClient)
	itemHandler := handlers.NewItemHandler(st.items, objectStorage, bus)
	listingHandler := handlers.NewListingHandler(st.listings, objectStorage, bus)
	resourceHandler := handlers.NewResourceHandler(st.resources, st.users, bus)
	chatHandler := handlers.NewChatHandler(chatService)
	uploadHandler := handlers.NewUploadHandler(objectStorage, cfg.MaxUploadSizeMB)
	geocodeHandler := handlers.NewGeocodeHandler(geocoder)
	eventsHandler := handlers.NewEventsHandler(hub, chatService)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, firebaseClient))

			r.Get("/auth/me", authHandler.Me)
			r.Get("/users/{uid}", userHandler.GetProfile)

			r.Post("/items", itemHandler.Create)
			r.Get("/items", itemHandler.List)
			r.Get("/items/{id}", itemHandler.Get)
			r.Delete("/items/{id}", itemHandler.Delete)

			r.Post("/listings", listingHandler.Create)
			r.Get("/listings", listingHandler.List)
			r.Get("/listings/{id}", listingHandler.Get)
			r.Delete("/listings/{id}", listingHandler.Delete)

			r.Post("/resources", resourceHandler.Create)
			r.Get("/resources", resourceHandler.List)
			r.Delete("/resources/{id}", resourceHandler.Delete)

			r.Get("/chats", chatHandler.ListConversations)
			r.Get("/chats/open", chatHandler.Open)
			r.Post("/chats/messages", chatHandler.Send)
			r.Get("/chats/events", eventsHandler.Inbox)
			r.Get("/chats/{chatID}/messages", chatHandler.ListMessages)
			r.Get("/chats/{chatID}/events", eventsHandler.Chat)

			r.Post("/uploads", uploadHandler.Upload)
			r.Delete("/uploads/{fileID}", uploadHandler.Delete)

			r.Get("/geocode", geocodeHandler.Search)
			r.Get("/geocode/suggest", geocodeHandler.Autocomplete)

			r.Get("/feed/{collection}/events", eventsHandler.Feed)
		})
	})

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.ServerAddress, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

// buildStores selects the persistence backend. A configured MongoDB URI wins;
// otherwise the in-memory stores back onto JSON files under the data dir so
// local development survives restarts without any external service.
func buildStores(ctx context.Context, cfg *config.Config) (*stores, func(), error) {
	if cfg.MongoURI != "" {
		client, db, err := services.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			client.Disconnect(disconnectCtx)
		}
		return &stores{
			users:     services.NewMongoUserService(ctx, db),
			items:     services.NewMongoItemService(ctx, db),
			listings:  services.NewMongoListingService(ctx, db),
			resources: services.NewMongoResourceService(ctx, db),
			chats:     services.NewMongoChatService(ctx, db),
		}, cleanup, nil
	}

	log.Printf("No MongoDB URI configured, using JSON file stores in %s", cfg.DataDir)

	open := func(name string) *storage.JSONStore {
		store, err := storage.NewJSONStore(cfg.DataDir, name)
		if err != nil {
			log.Printf("JSON store %s unavailable, running without persistence: %v", name, err)
			return nil
		}
		return store
	}

	return &stores{
		users:     services.NewMemoryUserService(open("users.json")),
		items:     services.NewMemoryItemService(open("items.json")),
		listings:  services.NewMemoryListingService(open("listings.json")),
		resources: services.NewMemoryResourceService(open("resources.json")),
		chats:     services.NewMemoryChatService(open("chats.json")),
	}, func() {}, nil
}
