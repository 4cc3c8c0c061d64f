package main

import (
	"github.com/rentreward/rentreward/config"
	"github.com/rentreward/rentreward/models"
	"github.com/rentreward/rentreward/routes"
	"github.com/rentreward/rentreward/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Owner{},
		&models.Property{},
		&models.Tenant{},
		&models.RentRecord{},
		&models.Referral{},
		&models.OwnerReferral{},
		&models.Notification{},
		&models.Reward{},
		&models.Redemption{},
	)

	if err := models.SeedRewards(db); err != nil {
		utils.Sugar.Fatalf("reward catalog seeding failed: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
