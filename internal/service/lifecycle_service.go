package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pillarlog/internal/db"
	"gorm.io/gorm"
)

// ErrNotArchived 在恢复一个从未归档的实体时返回
var ErrNotArchived = errors.New("trackable is not archived")

// LifecycleService 实现软删除语义：实体只标记失效，不做物理删除，
// 已存在的 ProgressFact 全部保留，历史统计通过快照字段继续可查
// HardDelete 是唯一的物理删除入口，级联清理事实与配置，不可逆

type LifecycleService struct {
	db *gorm.DB
}

// NewLifecycleService 构造 LifecycleService
func NewLifecycleService(gdb *gorm.DB) *LifecycleService {
	return &LifecycleService{db: gdb}
}

// Archive 将实体标记为已归档；重复归档是无害的幂等操作
func (s *LifecycleService) Archive(id uint) (*db.Trackable, error) {
	var item db.Trackable
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackableNotFound
		}
		return nil, fmt.Errorf("find trackable: %w", err)
	}

	if item.ArchivedAt != nil {
		return &item, nil
	}

	now := time.Now()
	item.IsActive = false
	item.ArchivedAt = &now

	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("archive trackable: %w", err)
	}
	return &item, nil
}

// Restore 恢复已归档实体；从未归档的实体返回 ErrNotArchived
func (s *LifecycleService) Restore(id uint) (*db.Trackable, error) {
	var item db.Trackable
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackableNotFound
		}
		return nil, fmt.Errorf("find trackable: %w", err)
	}

	if item.ArchivedAt == nil {
		return nil, ErrNotArchived
	}

	item.IsActive = true
	item.ArchivedAt = nil

	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("restore trackable: %w", err)
	}
	return &item, nil
}

// HardDelete 物理删除实体并级联清理事实与配置，不可恢复
// 调用方必须自行完成二次确认
func (s *LifecycleService) HardDelete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item db.Trackable
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTrackableNotFound
			}
			return fmt.Errorf("find trackable: %w", err)
		}

		if err := tx.Where("trackable_id = ?", id).Unscoped().Delete(&db.ProgressFact{}).Error; err != nil {
			return fmt.Errorf("delete progress facts: %w", err)
		}
		if err := tx.Where("trackable_id = ?", id).Unscoped().Delete(&db.TrackingConfig{}).Error; err != nil {
			return fmt.Errorf("delete tracking config: %w", err)
		}
		if err := tx.Unscoped().Delete(&db.Trackable{}, id).Error; err != nil {
			return fmt.Errorf("delete trackable: %w", err)
		}
		return nil
	})
}
