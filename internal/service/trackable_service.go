package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/period"
	"gorm.io/gorm"
)

var (
	// ErrTrackableNotFound 在指定实体不存在时返回
	ErrTrackableNotFound = errors.New("trackable not found")
	// ErrInvalidTrackingConfig 当跟踪配置字段组合不合法时返回
	ErrInvalidTrackingConfig = errors.New("invalid tracking config")
)

// TrackableService 负责可跟踪实体（任务/习惯/挑战）及其跟踪配置的增删改查
// 跟踪配置与实体一对一，随实体一起创建；软删除由 LifecycleService 负责

type TrackableService struct {
	db *gorm.DB
}

// TrackableFilter 描述列表过滤条件
type TrackableFilter struct {
	Kind            string
	Search          string
	IncludeArchived bool
}

// TrackingConfigInput 定义创建/更新实体时的跟踪配置
type TrackingConfigInput struct {
	Mode               string
	PeriodType         string
	TargetCount        int
	SessionTargetValue float64
	AggregateTarget    float64
	Unit               string
	QualityThreshold   float64
}

// TrackableInput 定义创建/更新实体时可配置字段
type TrackableInput struct {
	Kind         string
	Name         string
	Description  string
	PillarID     *uint
	CategoryID   *uint
	DueDate      *time.Time
	PriorityTier int
	Config       *TrackingConfigInput
}

// NewTrackableService 构造 TrackableService
func NewTrackableService(gdb *gorm.DB) *TrackableService {
	return &TrackableService{db: gdb}
}

// List 返回实体集合，默认排除已归档实体
func (s *TrackableService) List(filter TrackableFilter) ([]db.Trackable, error) {
	var items []db.Trackable

	query := s.db.Model(&db.Trackable{}).Preload("Pillar").Preload("Category")

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if !filter.IncludeArchived {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list trackables: %w", err)
	}

	return items, nil
}

// Get 根据 ID 获取实体，归档实体同样可见（历史引用仍有效）
func (s *TrackableService) Get(id uint) (*db.Trackable, error) {
	var item db.Trackable
	if err := s.db.Preload("Pillar").Preload("Category").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackableNotFound
		}
		return nil, fmt.Errorf("get trackable: %w", err)
	}
	return &item, nil
}

// GetConfig 返回实体的跟踪配置
func (s *TrackableService) GetConfig(trackableID uint) (*db.TrackingConfig, error) {
	var cfg db.TrackingConfig
	if err := s.db.Where("trackable_id = ?", trackableID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: trackable %d has no tracking config", ErrInvalidTrackingConfig, trackableID)
		}
		return nil, fmt.Errorf("get tracking config: %w", err)
	}
	return &cfg, nil
}

// Create 新建实体，配置校验失败则整体失败
func (s *TrackableService) Create(input TrackableInput) (*db.Trackable, error) {
	if err := validateTrackableInput(input); err != nil {
		return nil, err
	}

	item := db.Trackable{
		Kind:         strings.TrimSpace(strings.ToLower(input.Kind)),
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		PillarID:     input.PillarID,
		CategoryID:   input.CategoryID,
		IsActive:     true,
		DueDate:      input.DueDate,
		PriorityTier: input.PriorityTier,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create trackable: %w", err)
		}
		if input.Config != nil {
			cfg := buildTrackingConfig(item.ID, *input.Config)
			if err := tx.Create(&cfg).Error; err != nil {
				return fmt.Errorf("create tracking config: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(item.ID)
}

// Update 更新实体基础字段与配置，快照字段不受影响（事实只保留创建时的快照）
func (s *TrackableService) Update(id uint, input TrackableInput) (*db.Trackable, error) {
	if err := validateTrackableInput(input); err != nil {
		return nil, err
	}

	var existing db.Trackable
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackableNotFound
		}
		return nil, fmt.Errorf("find trackable: %w", err)
	}

	existing.Kind = strings.TrimSpace(strings.ToLower(input.Kind))
	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = strings.TrimSpace(input.Description)
	existing.PillarID = input.PillarID
	existing.CategoryID = input.CategoryID
	existing.DueDate = input.DueDate
	existing.PriorityTier = input.PriorityTier

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("update trackable: %w", err)
		}
		if input.Config != nil {
			cfg := buildTrackingConfig(existing.ID, *input.Config)
			var current db.TrackingConfig
			switch err := tx.Where("trackable_id = ?", existing.ID).First(&current).Error; {
			case err == nil:
				cfg.ID = current.ID
				cfg.CreatedAt = current.CreatedAt
				if err := tx.Save(&cfg).Error; err != nil {
					return fmt.Errorf("update tracking config: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&cfg).Error; err != nil {
					return fmt.Errorf("create tracking config: %w", err)
				}
			default:
				return fmt.Errorf("find tracking config: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(existing.ID)
}

func buildTrackingConfig(trackableID uint, input TrackingConfigInput) db.TrackingConfig {
	threshold := input.QualityThreshold
	if threshold == 0 {
		threshold = 1.0
	}
	return db.TrackingConfig{
		TrackableID:        trackableID,
		Mode:               strings.TrimSpace(strings.ToLower(input.Mode)),
		PeriodType:         strings.TrimSpace(strings.ToLower(input.PeriodType)),
		TargetCount:        input.TargetCount,
		SessionTargetValue: input.SessionTargetValue,
		AggregateTarget:    input.AggregateTarget,
		Unit:               strings.TrimSpace(input.Unit),
		QualityThreshold:   threshold,
	}
}

func validateTrackableInput(input TrackableInput) error {
	kind := strings.TrimSpace(strings.ToLower(input.Kind))
	if kind != db.KindTask && kind != db.KindHabit && kind != db.KindChallenge {
		return fmt.Errorf("%w: unsupported kind %s", ErrInvalidTrackingConfig, input.Kind)
	}

	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTrackingConfig)
	}

	if input.PriorityTier < 0 || input.PriorityTier > 3 {
		return fmt.Errorf("%w: priority tier must be 0..3", ErrInvalidTrackingConfig)
	}

	if input.Config != nil {
		return validateTrackingConfigInput(*input.Config)
	}
	return nil
}

// validateTrackingConfigInput 保证每种模式只填自己相关的字段，其余保持零值
func validateTrackingConfigInput(input TrackingConfigInput) error {
	periodType := strings.TrimSpace(strings.ToLower(input.PeriodType))
	switch periodType {
	case period.Daily, period.Weekly, period.Monthly, period.Yearly:
	default:
		return fmt.Errorf("%w: unsupported period type %s", ErrInvalidTrackingConfig, input.PeriodType)
	}

	if input.QualityThreshold < 0 || input.QualityThreshold > 1 {
		return fmt.Errorf("%w: quality threshold must be in (0,1]", ErrInvalidTrackingConfig)
	}

	mode := strings.TrimSpace(strings.ToLower(input.Mode))
	switch mode {
	case db.ModeDailyStreak:
		if input.TargetCount != 0 || input.SessionTargetValue != 0 || input.AggregateTarget != 0 {
			return fmt.Errorf("%w: daily_streak mode takes no target fields", ErrInvalidTrackingConfig)
		}
	case db.ModeOccurrence:
		if input.TargetCount <= 0 {
			return fmt.Errorf("%w: occurrence mode requires positive target count", ErrInvalidTrackingConfig)
		}
		if input.SessionTargetValue != 0 || input.AggregateTarget != 0 {
			return fmt.Errorf("%w: occurrence mode takes no value targets", ErrInvalidTrackingConfig)
		}
	case db.ModeOccurrenceWithValue:
		if input.TargetCount <= 0 {
			return fmt.Errorf("%w: occurrence_with_value mode requires positive target count", ErrInvalidTrackingConfig)
		}
		if input.SessionTargetValue <= 0 {
			return fmt.Errorf("%w: occurrence_with_value mode requires positive session target value", ErrInvalidTrackingConfig)
		}
		if input.AggregateTarget != 0 {
			return fmt.Errorf("%w: occurrence_with_value mode takes no aggregate target", ErrInvalidTrackingConfig)
		}
	case db.ModeAggregate:
		if input.AggregateTarget <= 0 {
			return fmt.Errorf("%w: aggregate mode requires positive aggregate target", ErrInvalidTrackingConfig)
		}
		if input.TargetCount != 0 || input.SessionTargetValue != 0 {
			return fmt.Errorf("%w: aggregate mode takes no count targets", ErrInvalidTrackingConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported mode %s", ErrInvalidTrackingConfig, input.Mode)
	}

	return nil
}
