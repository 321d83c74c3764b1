package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pillarlog/internal/db"
	"gorm.io/gorm"
)

// ErrAlreadyResolved 在重复完成同一个活跃集成员时返回
var ErrAlreadyResolved = errors.New("task already resolved")

// 活跃集成员固定为最高优先级档位
const activeTier = 3

// ActiveSetService 维护固定容量的任务活跃集
// 活跃集 = 未完成、未归档、tier=3、到期日不晚于今天的任务，容量由
// 系统设置 active_set_size 控制（默认 3）
// 成员完成后从低档位候选中晋升一个替补：最早到期优先，同日取最小 ID，
// 晋升只改被选中任务的档位，不影响其他候选

type ActiveSetService struct {
	db       *gorm.DB
	settings *SystemSettingService
}

// ResolveResult 描述一次完成操作的结果
type ResolveResult struct {
	Resolved  *db.Trackable  `json:"resolved"`
	Promoted  *db.Trackable  `json:"promoted,omitempty"`
	ActiveSet []db.Trackable `json:"active_set"`
}

// NewActiveSetService 构造 ActiveSetService
func NewActiveSetService(gdb *gorm.DB) *ActiveSetService {
	return &ActiveSetService{db: gdb, settings: NewSystemSettingService(gdb)}
}

// ActiveSet 返回当前活跃集，按到期日与 ID 升序，容量封顶
func (s *ActiveSetService) ActiveSet(today time.Time) ([]db.Trackable, error) {
	size, err := s.settings.ActiveSetSize()
	if err != nil {
		return nil, err
	}
	return s.activeSet(s.db, today, size)
}

func (s *ActiveSetService) activeSet(tx *gorm.DB, today time.Time, size int) ([]db.Trackable, error) {
	var items []db.Trackable
	if err := eligibleTasks(tx, today).
		Where("priority_tier = ?", activeTier).
		Limit(size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load active set: %w", err)
	}
	return items, nil
}

// Resolve 将活跃集成员标记为完成，并在集合缩水时晋升一个替补
// 没有合格候选时集合允许收缩，不视为错误
func (s *ActiveSetService) Resolve(id uint, today time.Time) (*ResolveResult, error) {
	size, err := s.settings.ActiveSetSize()
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var task db.Trackable
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTrackableNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}
		if task.Kind != db.KindTask {
			return ErrTrackableNotFound
		}
		if task.ResolvedAt != nil {
			return ErrAlreadyResolved
		}

		now := time.Now()
		task.ResolvedAt = &now
		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("resolve task: %w", err)
		}
		result.Resolved = &task

		current, err := s.activeSet(tx, today, size)
		if err != nil {
			return err
		}
		if len(current) < size {
			promoted, err := s.promoteReplacement(tx, today)
			if err != nil {
				return err
			}
			result.Promoted = promoted
		}

		set, err := s.activeSet(tx, today, size)
		if err != nil {
			return err
		}
		result.ActiveSet = set
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// promoteReplacement 从低档位候选中选出替补并提档
// 选择规则是确定性的：到期日最早优先，同日取最小 ID
func (s *ActiveSetService) promoteReplacement(tx *gorm.DB, today time.Time) (*db.Trackable, error) {
	var candidate db.Trackable
	err := eligibleTasks(tx, today).
		Where("priority_tier > 0 AND priority_tier < ?", activeTier).
		First(&candidate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find promotion candidate: %w", err)
	}

	candidate.PriorityTier = activeTier
	if err := tx.Save(&candidate).Error; err != nil {
		return nil, fmt.Errorf("promote candidate: %w", err)
	}
	return &candidate, nil
}

// eligibleTasks 构造活跃集/候选共用的基础查询：
// 未完成、未归档、到期日不晚于今天，排序保证 tie-break 稳定
func eligibleTasks(tx *gorm.DB, today time.Time) *gorm.DB {
	endOfDay := normalizeToDate(today).AddDate(0, 0, 1)
	return tx.Model(&db.Trackable{}).
		Where("kind = ?", db.KindTask).
		Where("resolved_at IS NULL").
		Where("is_active = ?", true).
		Where("due_date IS NOT NULL AND due_date < ?", endOfDay).
		Order("due_date ASC, id ASC")
}
