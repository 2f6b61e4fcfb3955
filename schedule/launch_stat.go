package main

import (
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/utils"

	logger "github.com/sirupsen/logrus"
)

// RecordLaunchStats snapshots curve progress for every launch that has
// started trading and not yet migrated.
func RecordLaunchStats() error {
	var curves []models.LaunchCurve
	if err := dbconfig.DB.Where("trading_started = ? AND liquidity_migrated = ?", true, false).
		Find(&curves).Error; err != nil {
		logger.Errorf("> failed to query launch curves: %v", err)
		return err
	}

	logger.Infof("> snapshotting %d launch curves", len(curves))

	for _, curve := range curves {
		rT := curve.VirtualTokenReserve + (curve.SaleSupply - curve.TokensSold)
		rB := curve.VirtualBaseReserve + curve.BaseRaised

		price, err := utils.MulDiv(rB, utils.AccumulatorScale, rT)
		if err != nil {
			logger.Errorf("> price overflow for launch %d: %v", curve.ID, err)
			continue
		}

		progress := 0.0
		if curve.FinalBaseTarget > 0 {
			progress = float64(curve.BaseRaised) / float64(curve.FinalBaseTarget) * 100
		}

		record := models.LaunchStat{
			LaunchCurveID: curve.ID,
			TokensSold:    curve.TokensSold,
			BaseRaised:    curve.BaseRaised,
			Price:         price,
			ProgressPct:   progress,
			Complete:      curve.Complete,
		}
		if err := dbconfig.DB.Create(&record).Error; err != nil {
			logger.Errorf("> failed to create launch stat for %d: %v", curve.ID, err)
			continue
		}
	}

	logger.Info("> launch stat snapshot complete")
	return nil
}
