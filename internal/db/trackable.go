package db

import (
	"time"

	"gorm.io/gorm"
)

// 支持的可跟踪实体类型
const (
	KindTask      = "task"
	KindHabit     = "habit"
	KindChallenge = "challenge"
)

// Pillar 表示生活支柱（健康/事业/家庭等），作为维度表使用
type Pillar struct {
	gorm.Model
	Name  string `gorm:"size:100;uniqueIndex;not null"`
	Color string `gorm:"size:20"`
}

// Category 表示自定义分类，与 Pillar 一样仅作维度引用
type Category struct {
	gorm.Model
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

// Trackable 定义可跟踪实体（任务/习惯/挑战）
// IsActive + ArchivedAt 实现软删除：实体保留在库中，仅标记失效，
// 历史 ProgressFact 不受影响；物理删除走 Unscoped 并级联清理
// DueDate/PriorityTier/ResolvedAt 仅 task 类型使用，支撑活跃集晋升逻辑
type Trackable struct {
	gorm.Model
	Kind        string `gorm:"size:20;index;not null"`
	Name        string `gorm:"size:200;not null"`
	Description string
	PillarID    *uint
	Pillar      *Pillar
	CategoryID  *uint
	Category    *Category
	IsActive    bool `gorm:"default:true;index"`
	ArchivedAt  *time.Time

	// task 专用字段
	DueDate      *time.Time
	PriorityTier int `gorm:"default:0"`
	ResolvedAt   *time.Time
}

// TableName 自定义表名以保持命名一致
func (Trackable) TableName() string {
	return "trackables"
}
