package db

import (
	"flashinfos/internal/models"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres and migrates the schema. The returned handle is
// shared by every service for the life of the process.
func Open(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connection established")

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Config is the gorm configuration shared by production and tests.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// Migrate creates or updates every table the site reads or writes.
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.Category{},
		&models.Article{},
		&models.ArticleCategory{},
		&models.Comment{},
		&models.ContactMessage{},
		&models.NewsletterSubscriber{},
		&models.PageView{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database migration completed")
	return nil
}

// SeedCategories creates the default navigation when the categories table is empty.
func SeedCategories(gdb *gorm.DB) error {
	var count int64
	if err := gdb.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		slog.Info("categories already seeded, skipping")
		return nil
	}

	categories := []models.Category{
		{Name: "Politique", Slug: "politique", Description: "La vie politique nationale et internationale", Order: 1, Active: true},
		{Name: "Économie", Slug: "economie", Description: "Marchés, entreprises et finances", Order: 2, Active: true},
		{Name: "Société", Slug: "societe", Description: "Faits de société et vie quotidienne", Order: 3, Active: true},
		{Name: "Sport", Slug: "sport", Description: "Football, athlétisme et tous les sports", Order: 4, Active: true},
		{Name: "Culture", Slug: "culture", Description: "Musique, cinéma, livres et arts", Order: 5, Active: true},
	}
	for i := range categories {
		if err := gdb.Create(&categories[i]).Error; err != nil {
			slog.Error("failed to create category", "slug", categories[i].Slug, "error", err)
		}
	}
	slog.Info("initial categories created")
	return nil
}
