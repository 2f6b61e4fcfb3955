package main

import (
	"log"
	"os"

	"launchcontrol/internal/engine"
	"launchcontrol/internal/handlers"
	"launchcontrol/internal/routes"
	"launchcontrol/pkg/config"
	solanaUtils "launchcontrol/pkg/solana"
)

func main() {
	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ (optional, will log warning if not configured)
	var opts []engine.Option
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()

		publisher, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Create publisher failed:", err)
		}
		defer publisher.Close()
		opts = append(opts, engine.WithEventPublisher(publisher))
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Wire the engines
	svc := engine.NewService(config.DB,
		solanaUtils.NewPoolClient(),
		solanaUtils.NewEd25519Verifier(),
		opts...,
	)
	handlers.InitEngine(svc)

	// Set up router
	r := routes.SetupRouter()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
