// @title EduQuiz Backend API
// @version 1.0
// @description Quiz platform backend with tiered assistance remediation.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"eduquiz_backend/internal/app"
	"eduquiz_backend/internal/config"
	"eduquiz_backend/pkg/configwatcher"
	"eduquiz_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run the database migration and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("database migration completed, exiting")
		return
	}

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(updated interface{}) {
		if c, ok := updated.(*config.Config); ok {
			for _, cb := range application.ConfigCallbacks() {
				cb(c)
			}
		}
	})

	application.Run()
}
