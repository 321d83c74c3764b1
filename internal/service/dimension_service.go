package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pillarlog/internal/db"
	"gorm.io/gorm"
)

// ErrDimensionNameTaken 在支柱/分类名称重复时返回
var ErrDimensionNameTaken = errors.New("dimension name already exists")

// DimensionService 管理支柱与分类两张维度表
// 维度行只被实体引用，事实行保存的是创建时刻的快照，
// 因此这里的改名不会影响任何历史统计

type DimensionService struct {
	db *gorm.DB
}

// NewDimensionService 构造 DimensionService
func NewDimensionService(gdb *gorm.DB) *DimensionService {
	return &DimensionService{db: gdb}
}

// ListPillars 返回全部支柱，按名称升序
func (s *DimensionService) ListPillars() ([]db.Pillar, error) {
	var pillars []db.Pillar
	if err := s.db.Order("name ASC").Find(&pillars).Error; err != nil {
		return nil, fmt.Errorf("list pillars: %w", err)
	}
	return pillars, nil
}

// CreatePillar 新建支柱
func (s *DimensionService) CreatePillar(name, color string) (*db.Pillar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("pillar name is required")
	}

	var count int64
	if err := s.db.Model(&db.Pillar{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check pillar name: %w", err)
	}
	if count > 0 {
		return nil, ErrDimensionNameTaken
	}

	pillar := db.Pillar{Name: name, Color: strings.TrimSpace(color)}
	if err := s.db.Create(&pillar).Error; err != nil {
		return nil, fmt.Errorf("create pillar: %w", err)
	}
	return &pillar, nil
}

// ListCategories 返回全部分类，按名称升序
func (s *DimensionService) ListCategories() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory 新建分类
func (s *DimensionService) CreateCategory(name string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	var count int64
	if err := s.db.Model(&db.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if count > 0 {
		return nil, ErrDimensionNameTaken
	}

	category := db.Category{Name: name}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}
