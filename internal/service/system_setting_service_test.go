package service

import (
	"testing"

	"github.com/pillarlog/internal/db"
)

func TestGetSettingsDefaults(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSystemSettingService(db.DB)
	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings returned error: %v", err)
	}

	if settings.ActiveSetSize != 3 {
		t.Fatalf("expected default active set size 3, got %d", settings.ActiveSetSize)
	}
	if settings.DefaultQualityThreshold != 1.0 {
		t.Fatalf("expected default quality threshold 1.0, got %f", settings.DefaultQualityThreshold)
	}
}

func TestUpdateSettingsRoundTrip(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSystemSettingService(db.DB)

	updated, err := svc.UpdateSettings(EngineSettingsInput{ActiveSetSize: 5, DefaultQualityThreshold: 0.75})
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if updated.ActiveSetSize != 5 || updated.DefaultQualityThreshold != 0.75 {
		t.Fatalf("unexpected settings after update: %+v", updated)
	}

	// 再次更新走 upsert 而不是插入重复键
	updated, err = svc.UpdateSettings(EngineSettingsInput{ActiveSetSize: 4, DefaultQualityThreshold: 1.0})
	if err != nil {
		t.Fatalf("second UpdateSettings returned error: %v", err)
	}
	if updated.ActiveSetSize != 4 {
		t.Fatalf("expected size 4 after second update, got %d", updated.ActiveSetSize)
	}

	var count int64
	db.DB.Model(&db.SystemSetting{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 setting rows, got %d", count)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSystemSettingService(db.DB)

	if _, err := svc.UpdateSettings(EngineSettingsInput{ActiveSetSize: 0, DefaultQualityThreshold: 1.0}); err == nil {
		t.Fatal("expected error for non-positive active set size")
	}
	if _, err := svc.UpdateSettings(EngineSettingsInput{ActiveSetSize: 3, DefaultQualityThreshold: 1.5}); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}
