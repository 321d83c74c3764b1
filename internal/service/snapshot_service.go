package service

import (
	"errors"
	"fmt"

	"github.com/pillarlog/internal/db"
	"gorm.io/gorm"
)

// Snapshot 是实体维度属性在打卡时刻的冻结副本
// Pillar/Category 未设置时对应字段保持空值，不视为错误
type Snapshot struct {
	EntityName   string
	PillarID     *uint
	PillarName   string
	CategoryID   *uint
	CategoryName string
}

// SnapshotService 在记录进度事实前捕获实体当前属性
// 必须在写入事实的同一事务内调用：快照读取失败则整次打卡失败，
// 不允许出现缺少快照的事实行

type SnapshotService struct {
	db *gorm.DB
}

// NewSnapshotService 构造 SnapshotService
func NewSnapshotService(gdb *gorm.DB) *SnapshotService {
	return &SnapshotService{db: gdb}
}

// Capture 读取实体及其支柱/分类关联，生成快照
// tx 为调用方事务；传 nil 时退回服务自身连接
// 已归档实体同样可以捕获（补录历史打卡是合法操作）
func (s *SnapshotService) Capture(tx *gorm.DB, trackableID uint) (Snapshot, error) {
	conn := tx
	if conn == nil {
		conn = s.db
	}

	var item db.Trackable
	if err := conn.Preload("Pillar").Preload("Category").First(&item, trackableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, ErrTrackableNotFound
		}
		return Snapshot{}, fmt.Errorf("capture snapshot: %w", err)
	}

	snapshot := Snapshot{EntityName: item.Name}
	if item.Pillar != nil {
		snapshot.PillarID = item.PillarID
		snapshot.PillarName = item.Pillar.Name
	}
	if item.Category != nil {
		snapshot.CategoryID = item.CategoryID
		snapshot.CategoryName = item.Category.Name
	}

	return snapshot, nil
}
