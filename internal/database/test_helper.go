package database

import (
	"fmt"
	"testing"

	"meatmarket-api/internal/config"
	"meatmarket-api/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

func CreateTestCut(t *testing.T, db *DB, name, category, cutType string) *models.NormalizedCut {
	t.Helper()

	cut := &models.NormalizedCut{
		Name:     name,
		Category: category,
		CutType:  cutType,
	}

	if err := db.Create(cut).Error; err != nil {
		t.Fatalf("failed to create test cut: %v", err)
	}

	return cut
}

func CreateTestVariation(t *testing.T, db *DB, cut *models.NormalizedCut, originalName string, confidence float64, verified bool) *models.CutVariation {
	t.Helper()

	variation := &models.CutVariation{
		OriginalName:    originalName,
		NormalizedCutID: cut.ID,
		ConfidenceScore: confidence,
		Source:          models.SourceManual,
		Verified:        verified,
	}

	if err := db.Create(variation).Error; err != nil {
		t.Fatalf("failed to create test variation: %v", err)
	}

	return variation
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"cut_variations",
		"normalized_cuts",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
