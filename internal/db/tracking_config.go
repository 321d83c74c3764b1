package db

import "gorm.io/gorm"

// 跟踪模式
const (
	ModeDailyStreak         = "daily_streak"
	ModeOccurrence          = "occurrence"
	ModeOccurrenceWithValue = "occurrence_with_value"
	ModeAggregate           = "aggregate"
)

// 统计周期
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// TrackingConfig 描述实体的跟踪目标配置，与 Trackable 一对一
// 不同模式只使用各自相关的字段，其余保持零值：
//   - daily_streak: 仅 PeriodType
//   - occurrence: TargetCount
//   - occurrence_with_value: TargetCount + SessionTargetValue + Unit + QualityThreshold
//   - aggregate: AggregateTarget + Unit
type TrackingConfig struct {
	gorm.Model
	TrackableID        uint   `gorm:"uniqueIndex;not null"`
	Mode               string `gorm:"size:30;not null"`
	PeriodType         string `gorm:"size:10;not null"`
	TargetCount        int
	SessionTargetValue float64
	AggregateTarget    float64
	Unit               string `gorm:"size:30"`
	// QualityThreshold 为达标会话占比要求，范围 (0,1]，默认 1.0
	QualityThreshold float64 `gorm:"default:1.0"`
}

// TableName 自定义表名以保持命名一致
func (TrackingConfig) TableName() string {
	return "tracking_configs"
}
