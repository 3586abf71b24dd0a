package main

import (
	"context"
	"log"
	"strings"

	"petchat/internal/ai"
	"petchat/internal/chat"
	"petchat/internal/config"
	"petchat/internal/db"
	"petchat/internal/httpapi"
	"petchat/internal/httpapi/handlers"
	"petchat/internal/pet"
	"petchat/internal/store/rabbitmq"
	"petchat/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	reg := ai.NewRegistry()
	reg.Register("gemini", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.GeminiModel
		}
		return ai.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, m), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})

	petRepo := pet.NewRepo(gdb)
	petSvc := pet.NewService(petRepo)

	chatRepo := chat.NewRepo(gdb)
	chatSvc := chat.NewService(chatRepo, petRepo, reg, chat.Options{
		Provider:     cfg.AIProvider,
		Window:       cfg.ChatContextWindowSize,
		Keep:         cfg.ChatHistoryKeep,
		HistoryLimit: cfg.ChatHistoryLimit,
	})

	var limiter *redisstore.Limiter
	if cfg.RedisAddr != "" {
		limiter = redisstore.NewLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ChatRatePerMinute)
		defer limiter.Close()
	} else {
		log.Printf("REDIS_ADDR not set, chat rate limiting disabled")
	}

	var rabbit *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("rabbit unavailable, async chat disabled: %v", err)
		} else {
			rabbit = p
			defer rabbit.Close()
		}
	}

	h := handlers.NewHandler(gdb, cfg, petSvc, chatSvc, limiter, rabbit)
	r := httpapi.NewRouter(cfg, h)

	log.Printf("petchat server listening on %s (provider=%s)", cfg.Addr, cfg.AIProvider)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
