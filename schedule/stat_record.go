package main

import (
	"os"

	dbconfig "launchcontrol/pkg/config"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/stat_record.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.Warn("cannot open log file, logging to stdout")
	}

	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)
	logger.Info("> starting stat recorder...")

	dbconfig.InitDB()
	logger.Info("> database connection initialized")

	c := cron.New(cron.WithSeconds())

	// Launch curve snapshots every minute while trading is live.
	_, err = c.AddFunc("0 * * * * *", func() {
		if err := RecordLaunchStats(); err != nil {
			logger.Errorf("> launch stat snapshot failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> failed to register launch stat job: %v", err)
	}

	// Staking pool snapshots every 15 minutes.
	_, err = c.AddFunc("0 */15 * * * *", func() {
		if err := RecordStakingStats(); err != nil {
			logger.Errorf("> staking stat snapshot failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> failed to register staking stat job: %v", err)
	}

	c.Start()
	logger.Info("> stat jobs scheduled")

	select {}
}
