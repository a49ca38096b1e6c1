package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sonastea/HeroClicker/pkg/config"
	"github.com/sonastea/HeroClicker/pkg/handler"
	"github.com/sonastea/HeroClicker/pkg/logger"
	"github.com/sonastea/HeroClicker/pkg/repository"
	"github.com/sonastea/HeroClicker/pkg/server"
	"github.com/sonastea/HeroClicker/pkg/service"
)

func main() {
	ctx := context.Background()

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatalln("Unable to load config:", err)
	}

	if err := logger.SetLevelFromString(cfg.LogLevel); err != nil {
		log.Fatalln(err)
	}

	pool, err := pgxpool.New(ctx, cfg.DBConnURI)
	if err != nil {
		log.Fatalln("Unable to create connection pool:", err)
	}

	redisOpts, err := config.NewRedisOpts(cfg.RedisURL)
	if err != nil {
		log.Fatalln("Unable to parse redis url:", err)
	}
	redisClient := redis.NewClient(redisOpts)

	playerRepo := repository.NewPlayerRepository(pool)
	boardRepo := repository.NewLeaderboardRepository(redisClient)

	gameService := service.NewGameService(playerRepo, boardRepo)

	apiHandler := handler.NewAPIHandler(gameService)

	srv, err := server.NewServer(
		cfg,
		server.WithRedis(redisClient),
		server.WithAPIHandler(apiHandler),
	)
	if err != nil {
		log.Fatalln("Unable to create server:", err)
	}

	srv.Start()
}
