package main

import (
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"

	logger "github.com/sirupsen/logrus"
)

// RecordStakingStats snapshots every staking pool's balances and accumulator.
func RecordStakingStats() error {
	var infos []models.StakeTokenInfo
	if err := dbconfig.DB.Find(&infos).Error; err != nil {
		logger.Errorf("> failed to query staking pools: %v", err)
		return err
	}

	logger.Infof("> snapshotting %d staking pools", len(infos))

	for _, info := range infos {
		record := models.StakingStat{
			Mint:                info.Mint,
			TotalStaked:         info.TotalStaked,
			RewardPool:          info.RewardPool,
			RewardPerUnitStored: info.RewardPerUnitStored,
		}
		if err := dbconfig.DB.Create(&record).Error; err != nil {
			logger.Errorf("> failed to create staking stat for %s: %v", info.Mint, err)
			continue
		}
	}

	logger.Info("> staking stat snapshot complete")
	return nil
}
