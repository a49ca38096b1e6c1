package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lithammer/shortuuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sonastea/HeroClicker/pkg/config"
	"github.com/sonastea/HeroClicker/pkg/handler"
	"github.com/sonastea/HeroClicker/pkg/logger"
)

type Server struct {
	cfg        *config.Config
	server     *http.Server
	redis      *redis.Client
	serverName string
}

// Option is a functional option for configuring the Server
type Option func(*Server) error

// WithRedis adds the redis client to the server so shutdown can close it
func WithRedis(client *redis.Client) Option {
	return func(s *Server) error {
		s.redis = client
		return nil
	}
}

// WithAPIHandler configures the server with the game REST endpoints. The
// endpoint paths are the wire contract with the game client, so they sit at
// the root rather than under an /api prefix.
func WithAPIHandler(apiHandler *handler.APIHandler) Option {
	return func(s *Server) error {
		router := s.server.Handler.(*http.ServeMux)

		router.HandleFunc("/healthcheck", healthcheckHandler)

		router.HandleFunc("/update_item_level", apiHandler.UpdateItemLevel)
		router.HandleFunc("/update_user_money", apiHandler.UpdateUserMoney)
		router.HandleFunc("/hero_data", apiHandler.HeroData)
		router.HandleFunc("/hero_items", apiHandler.HeroItems)
		router.HandleFunc("/leaderboard", apiHandler.Leaderboard)

		s.server.Handler = enableCors(withRequestID(router), s.cfg.AllowedOrigins, s.cfg.Debug)
		return nil
	}
}

// NewServer creates a new server with functional options
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	router := http.NewServeMux()
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	s := &Server{
		cfg:        cfg,
		server:     srv,
		serverName: "HeroClicker api server",
	}

	// Apply all options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func enableCors(h http.Handler, origins []string, debug bool) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		Debug:            debug,
	})

	return c.Handler(h)
}

// withRequestID tags every request with a short uuid for log correlation.
func withRequestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := shortuuid.New()
		w.Header().Set("X-Request-Id", id)
		logger.Debug("[%s] %s %s", id, r.Method, r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

func healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK\n"))
}

// Start runs the server until SIGINT/SIGTERM, then drains connections and
// closes the redis client.
func (s *Server) Start() {
	cleanup := make(chan os.Signal, 1)
	signal.Notify(cleanup, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-cleanup
		logger.Info("Received quit signal . . .")

		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				logger.Error("Error closing Redis connection: %v", err)
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server shutdown: %v", err)
		}

		logger.Info("%s shutdown complete.", s.serverName)
	}()

	logger.Info("%s listening on %s", s.serverName, s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("HTTP server ListenAndServe: %v", err)
	}
}
