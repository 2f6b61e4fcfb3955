package main

import (
	"encoding/json"
	"errors"

	"launchcontrol/internal/engine"
	"launchcontrol/pkg/config"
	solanaUtils "launchcontrol/pkg/solana"

	logrus "github.com/sirupsen/logrus"
)

// MigrateJob is the message queued when a curve completes without
// auto-migrate enabled.
type MigrateJob struct {
	LaunchID uint `json:"launch_id"`
}

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	svc := engine.NewService(config.DB,
		solanaUtils.NewPoolClient(),
		solanaUtils.NewEd25519Verifier(),
	)

	// Create consumer for the migration job queue
	msgConsumer, err := config.NewConsumer(engine.MigrateJobQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Liquidity migration worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var job MigrateJob
		if err := json.Unmarshal(msg, &job); err != nil {
			logrus.Errorf("Failed to unmarshal message: %v", err)
			return err
		}

		logrus.WithFields(logrus.Fields{
			"launch_id": job.LaunchID,
		}).Info("Received migration job")

		if err := svc.Migrate(job.LaunchID); err != nil {
			// Already migrated or not yet complete: ack and move on, the
			// message is stale rather than failed.
			if errors.Is(err, engine.ErrState) || errors.Is(err, engine.ErrNotFound) {
				logrus.Warnf("Skipping migration for launch %d: %v", job.LaunchID, err)
				return nil
			}
			logrus.Errorf("Migration failed for launch %d: %v", job.LaunchID, err)
			return err
		}

		logrus.WithFields(logrus.Fields{
			"launch_id": job.LaunchID,
		}).Info("Liquidity migrated")
		return nil
	})
	if err != nil {
		logrus.Fatal("Consumer stopped: ", err)
	}
}
