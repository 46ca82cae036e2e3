package database

import (
	"eduquiz_backend/internal/config"
	"eduquiz_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate runs the schema migration for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Class{},
		&model.ClassEnrollment{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizSubmission{},
		&model.SubmissionAnswer{},
		&model.StudentQuizProgress{},
		&model.AssistanceLevel1{},
		&model.Level1Question{},
		&model.Level1Submission{},
		&model.Level1Answer{},
		&model.AssistanceLevel2{},
		&model.Level2Submission{},
		&model.AssistanceLevel3{},
		&model.Level3Completion{},
	)
}
