// Recomputes the derived routing flags on every student progress record.
//
// The accessibility flags and NextStep are normally kept in sync on every
// write; run this after restoring a database backup or editing progress rows
// by hand.
//
// Usage: go run scripts/resync_progress.go
package main

import (
	"log"
	"os"

	"eduquiz_backend/internal/config"
	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/service"
	"eduquiz_backend/pkg/database"
	"eduquiz_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("cannot read config file: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("cannot parse config file: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	var records []model.StudentQuizProgress
	if err := db.Find(&records).Error; err != nil {
		log.Fatalf("loading progress records failed: %v", err)
	}

	updated := 0
	for i := range records {
		p := &records[i]
		before := *p
		service.SyncDerivedFlags(p)
		if before.NextStep == p.NextStep &&
			before.CanTakeMainQuiz == p.CanTakeMainQuiz &&
			before.Level1Accessible == p.Level1Accessible &&
			before.Level2Accessible == p.Level2Accessible &&
			before.Level3Accessible == p.Level3Accessible {
			continue
		}
		if err := db.Save(p).Error; err != nil {
			log.Fatalf("saving progress %d failed: %v", p.ID, err)
		}
		updated++
	}

	log.Printf("resync complete: %d records checked, %d updated", len(records), updated)
}
