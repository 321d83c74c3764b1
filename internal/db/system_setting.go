package db

import "gorm.io/gorm"

// SystemSetting 存储后台可配置的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyActiveSetSize 表示活跃集的固定容量。
	SettingKeyActiveSetSize = "active_set_size"
	// SettingKeyDefaultQualityThreshold 表示 occurrence_with_value 模式的默认达标占比。
	SettingKeyDefaultQualityThreshold = "default_quality_threshold"
)
