package db

import (
	"time"

	"gorm.io/gorm"
)

// ProgressFact 记录一次打卡/进度事实
// Trackable + EntryDate + SessionNo 采用唯一索引保证幂等 upsert；
// 日常模式每天至多一条（SessionNo 固定为 1），occurrence 模式允许同一周期多条
// *_Snapshot 字段在创建时从实体当前状态冻结，之后永不回填或更新，
// 即使实体被改名/换分类/软删除，历史统计仍以快照为准
type ProgressFact struct {
	gorm.Model
	TrackableID uint      `gorm:"index;index:idx_progress_fact_unique,unique;not null"`
	EntryDate   time.Time `gorm:"index:idx_progress_fact_unique,unique;not null"`
	SessionNo   int       `gorm:"index:idx_progress_fact_unique,unique;default:1"`
	IsCompleted *bool
	Value       *float64
	Source      string `gorm:"size:30"`
	Note        string
	ClientToken string `gorm:"size:36"`

	EntityNameSnapshot   string `gorm:"size:200"`
	PillarIDSnapshot     *uint
	PillarNameSnapshot   string `gorm:"size:100"`
	CategoryIDSnapshot   *uint
	CategoryNameSnapshot string `gorm:"size:100"`
}

// TableName 自定义表名以保持命名一致
func (ProgressFact) TableName() string {
	return "progress_facts"
}
