package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pillarlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultActiveSetSize    = 3
	defaultQualityThreshold = 1.0
)

// EngineSettings 描述可在后台调整的引擎参数。
type EngineSettings struct {
	ActiveSetSize           int
	DefaultQualityThreshold float64
}

// EngineSettingsInput 用于更新引擎参数。
type EngineSettingsInput struct {
	ActiveSetSize           int
	DefaultQualityThreshold float64
}

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db *gorm.DB
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeyActiveSetSize,
	db.SettingKeyDefaultQualityThreshold,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (EngineSettings, error) {
	result := EngineSettings{
		ActiveSetSize:           defaultActiveSetSize,
		DefaultQualityThreshold: defaultQualityThreshold,
	}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		switch record.Key {
		case db.SettingKeyActiveSetSize:
			if size, err := strconv.Atoi(value); err == nil && size > 0 {
				result.ActiveSetSize = size
			}
		case db.SettingKeyDefaultQualityThreshold:
			if threshold, err := strconv.ParseFloat(value, 64); err == nil && threshold > 0 && threshold <= 1 {
				result.DefaultQualityThreshold = threshold
			}
		}
	}

	return result, nil
}

// ActiveSetSize 返回活跃集容量。
func (s *SystemSettingService) ActiveSetSize() (int, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return 0, err
	}
	return settings.ActiveSetSize, nil
}

// UpdateSettings 以 upsert 方式写入引擎参数。
func (s *SystemSettingService) UpdateSettings(input EngineSettingsInput) (EngineSettings, error) {
	if input.ActiveSetSize <= 0 {
		return EngineSettings{}, fmt.Errorf("active set size must be positive")
	}
	if input.DefaultQualityThreshold <= 0 || input.DefaultQualityThreshold > 1 {
		return EngineSettings{}, fmt.Errorf("quality threshold must be in (0,1]")
	}

	records := []db.SystemSetting{
		{Key: db.SettingKeyActiveSetSize, Value: strconv.Itoa(input.ActiveSetSize)},
		{Key: db.SettingKeyDefaultQualityThreshold, Value: strconv.FormatFloat(input.DefaultQualityThreshold, 'f', -1, 64)},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&record).Error; err != nil {
				return fmt.Errorf("save setting %s: %w", record.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return EngineSettings{}, err
	}

	return s.GetSettings()
}
