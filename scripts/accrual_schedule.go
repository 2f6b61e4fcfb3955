package main

import (
	"os"

	"launchcontrol/internal/engine"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	solanaUtils "launchcontrol/pkg/solana"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

// AccrueAllPools advances every staking pool's APY accumulator so stored
// state stays close to real time between user operations.
func AccrueAllPools(svc *engine.Service) {
	var infos []models.StakeTokenInfo
	if err := dbconfig.DB.Find(&infos).Error; err != nil {
		logger.Errorf("> failed to query staking pools: %v", err)
		return
	}

	for _, info := range infos {
		if err := svc.AccrueStakeAsset(info.Mint); err != nil {
			logger.Errorf("> accrual failed for %s: %v", info.Mint, err)
			continue
		}
	}
	logger.Infof("> accrued %d staking pools", len(infos))
}

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/accrual_schedule.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	}

	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)

	dbconfig.InitDB()

	svc := engine.NewService(dbconfig.DB,
		solanaUtils.NewPoolClient(),
		solanaUtils.NewEd25519Verifier(),
	)

	c := cron.New(cron.WithSeconds())

	// Hourly is plenty; user operations accrue on their own.
	_, err = c.AddFunc("0 0 * * * *", func() {
		AccrueAllPools(svc)
	})
	if err != nil {
		logger.Fatalf("> failed to register accrual job: %v", err)
	}

	c.Start()
	logger.Info("> accrual job scheduled")

	select {}
}
