package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/period"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrFactNotFound 在指定进度事实不存在时返回
var ErrFactNotFound = errors.New("progress fact not found")

// 进度节奏状态
const (
	PaceOnTrack    = "on_track"
	PaceBehind     = "behind"
	PaceNoProgress = "no_progress"
)

// ProgressService 负责进度事实的写入与周期汇总
// 写入走幂等 upsert：同一 (实体, 日期, 会话) 只保留一行，后写覆盖
// is_completed/value，快照字段只在首次插入时冻结
// 汇总纯粹按需重算，不持久化，不存在缓存失效问题

type ProgressService struct {
	db        *gorm.DB
	snapshots *SnapshotService
	configs   *TrackableService
}

// LogInput 定义一次打卡的输入对象
type LogInput struct {
	TrackableID uint
	EntryDate   time.Time
	SessionNo   int
	IsCompleted *bool
	Value       *float64
	Source      string
	Note        string
	ClientToken string
}

// ProgressFilter 指定事实查询区间
type ProgressFilter struct {
	TrackableID uint
	Start       time.Time
	End         time.Time
}

// PeriodSummary 汇总一个周期内的进度统计，按需派生，非事实来源
type PeriodSummary struct {
	TrackableID       uint      `json:"trackable_id"`
	Mode              string    `json:"mode"`
	PeriodType        string    `json:"period_type"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	CompletedCount    int       `json:"completed_count"`
	TargetCount       int       `json:"target_count"`
	SuccessPercentage float64   `json:"success_percentage"`
	QualityPercentage *float64  `json:"quality_percentage,omitempty"`
	AggregateAchieved *float64  `json:"aggregate_achieved,omitempty"`
	AggregateTarget   *float64  `json:"aggregate_target,omitempty"`
	PaceRequired      *float64  `json:"pace_required,omitempty"`
	ExpectedByToday   float64   `json:"expected_by_today"`
	Pace              string    `json:"pace"`
	Success           bool      `json:"success"`
}

// NewProgressService 构造 ProgressService
func NewProgressService(gdb *gorm.DB) *ProgressService {
	return &ProgressService{
		db:        gdb,
		snapshots: NewSnapshotService(gdb),
		configs:   NewTrackableService(gdb),
	}
}

// Log 处理幂等打卡逻辑：快照捕获与事实写入在同一事务内完成，
// 快照读取失败则整次打卡失败；重复打卡只更新完成状态/数值/备注，
// 快照列被排除在更新列之外，创建后永不回写
func (s *ProgressService) Log(input LogInput) (*db.ProgressFact, error) {
	if input.TrackableID == 0 {
		return nil, fmt.Errorf("trackable id is required")
	}

	entryDate := normalizeToDate(input.EntryDate)
	sessionNo := input.SessionNo
	if sessionNo <= 0 {
		sessionNo = 1
	}
	clientToken := strings.TrimSpace(input.ClientToken)
	if clientToken == "" {
		clientToken = uuid.NewString()
	}

	var record db.ProgressFact
	err := s.db.Transaction(func(tx *gorm.DB) error {
		snapshot, err := s.snapshots.Capture(tx, input.TrackableID)
		if err != nil {
			return err
		}

		record = db.ProgressFact{
			TrackableID:          input.TrackableID,
			EntryDate:            entryDate,
			SessionNo:            sessionNo,
			IsCompleted:          input.IsCompleted,
			Value:                input.Value,
			Source:               strings.TrimSpace(input.Source),
			Note:                 strings.TrimSpace(input.Note),
			ClientToken:          clientToken,
			EntityNameSnapshot:   snapshot.EntityName,
			PillarIDSnapshot:     snapshot.PillarID,
			PillarNameSnapshot:   snapshot.PillarName,
			CategoryIDSnapshot:   snapshot.CategoryID,
			CategoryNameSnapshot: snapshot.CategoryName,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trackable_id"}, {Name: "entry_date"}, {Name: "session_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_completed", "value", "note", "source", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("upsert progress fact: %w", err)
		}

		if err := tx.Where("trackable_id = ? AND entry_date = ? AND session_no = ?",
			input.TrackableID, entryDate, sessionNo).First(&record).Error; err != nil {
			return fmt.Errorf("reload progress fact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// DeleteEntry 删除单条进度事实（与实体生命周期无关的显式操作）
func (s *ProgressService) DeleteEntry(id uint) error {
	result := s.db.Unscoped().Delete(&db.ProgressFact{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete progress fact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFactNotFound
	}
	return nil
}

// ListBetween 返回指定区间内的进度事实，按日期与会话升序
func (s *ProgressService) ListBetween(filter ProgressFilter) ([]db.ProgressFact, error) {
	if filter.TrackableID == 0 {
		return nil, fmt.Errorf("trackable id is required")
	}

	var facts []db.ProgressFact
	start := normalizeToDate(filter.Start)
	end := normalizeToDate(filter.End)

	if err := s.db.Where("trackable_id = ?", filter.TrackableID).
		Where("entry_date BETWEEN ? AND ?", start, end).
		Order("entry_date ASC, session_no ASC").
		Find(&facts).Error; err != nil {
		return nil, fmt.Errorf("list progress facts: %w", err)
	}

	return facts, nil
}

// Summary 计算实体在参考日期所在周期内的统计
// periodType 为空时使用配置的周期；归档实体照常可查（历史分析场景）
// 没有任何事实是合法常态，返回零值汇总而非错误
func (s *ProgressService) Summary(trackableID uint, periodType string, reference, today time.Time) (*PeriodSummary, error) {
	cfg, err := s.configs.GetConfig(trackableID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(periodType) == "" {
		periodType = cfg.PeriodType
	}

	start, end, err := period.Bounds(periodType, reference)
	if err != nil {
		return nil, err
	}

	facts, err := s.ListBetween(ProgressFilter{TrackableID: trackableID, Start: start, End: end})
	if err != nil {
		return nil, err
	}

	window := buildWindow(periodType, start, end, today)

	summary := &PeriodSummary{
		TrackableID: trackableID,
		Mode:        cfg.Mode,
		PeriodType:  periodType,
		PeriodStart: start,
		PeriodEnd:   end,
	}

	switch cfg.Mode {
	case db.ModeDailyStreak:
		aggregateDailyStreak(summary, facts, window)
	case db.ModeOccurrence:
		aggregateOccurrence(summary, *cfg, facts, window)
	case db.ModeOccurrenceWithValue:
		aggregateOccurrenceWithValue(summary, *cfg, facts, window)
	case db.ModeAggregate:
		aggregateTotal(summary, *cfg, facts, window)
	default:
		return nil, fmt.Errorf("%w: unsupported mode %s", ErrInvalidTrackingConfig, cfg.Mode)
	}

	return summary, nil
}

// Streaks 加载完整打卡历史并计算连胜
func (s *ProgressService) Streaks(trackableID uint, today time.Time) (StreakStats, error) {
	var facts []db.ProgressFact
	if err := s.db.Where("trackable_id = ?", trackableID).
		Order("entry_date ASC, session_no ASC").
		Find(&facts).Error; err != nil {
		return StreakStats{}, fmt.Errorf("load progress facts: %w", err)
	}

	return ComputeStreaks(facts, today), nil
}

// summaryWindow 把周期边界和 today 折算成聚合需要的几个标量
// today 在周期之后按“周期已结束”处理，之前按“尚未开始”处理
type summaryWindow struct {
	TotalDays       int
	DaysElapsed     int
	DaysRemaining   int
	ElapsedFraction float64
}

func buildWindow(periodType string, start, end, today time.Time) summaryWindow {
	day := normalizeToDate(today)
	total := daysInclusive(start, end)

	w := summaryWindow{TotalDays: total}
	switch {
	case day.Before(start):
		w.DaysElapsed = 0
		w.DaysRemaining = total
	case day.After(end):
		w.DaysElapsed = total
		w.DaysRemaining = 0
	default:
		w.DaysElapsed = daysInclusive(start, day)
		w.DaysRemaining = total - w.DaysElapsed
	}

	if total > 0 {
		w.ElapsedFraction = float64(w.DaysElapsed) / float64(total)
	}
	return w
}

func aggregateDailyStreak(summary *PeriodSummary, facts []db.ProgressFact, w summaryWindow) {
	summary.CompletedCount = countCompleted(facts)
	summary.TargetCount = w.DaysElapsed
	summary.ExpectedByToday = float64(w.DaysElapsed)
	summary.SuccessPercentage = ratioPercent(summary.CompletedCount, w.TotalDays)
	summary.Pace = paceOf(float64(summary.CompletedCount), summary.ExpectedByToday)
	// 逐日比例制：截至今天一天不落即算达标
	summary.Success = summary.CompletedCount >= w.DaysElapsed && w.DaysElapsed > 0
}

func aggregateOccurrence(summary *PeriodSummary, cfg db.TrackingConfig, facts []db.ProgressFact, w summaryWindow) {
	summary.CompletedCount = countCompleted(facts)
	summary.TargetCount = cfg.TargetCount
	summary.ExpectedByToday = float64(cfg.TargetCount) * w.ElapsedFraction
	summary.SuccessPercentage = ratioPercent(summary.CompletedCount, cfg.TargetCount)
	summary.Pace = paceOf(float64(summary.CompletedCount), summary.ExpectedByToday)
	summary.Success = summary.CompletedCount >= cfg.TargetCount
}

func aggregateOccurrenceWithValue(summary *PeriodSummary, cfg db.TrackingConfig, facts []db.ProgressFact, w summaryWindow) {
	aggregateOccurrence(summary, cfg, facts, w)

	qualifying := 0
	for _, fact := range facts {
		if fact.IsCompleted != nil && *fact.IsCompleted && fact.Value != nil && *fact.Value >= cfg.SessionTargetValue {
			qualifying++
		}
	}

	quality := 0.0
	if summary.CompletedCount > 0 {
		quality = float64(qualifying) / float64(summary.CompletedCount)
	}
	summary.QualityPercentage = &quality

	threshold := cfg.QualityThreshold
	if threshold <= 0 {
		threshold = 1.0
	}
	summary.Success = summary.CompletedCount >= cfg.TargetCount && quality >= threshold
}

func aggregateTotal(summary *PeriodSummary, cfg db.TrackingConfig, facts []db.ProgressFact, w summaryWindow) {
	achieved := 0.0
	for _, fact := range facts {
		if fact.Value != nil {
			achieved += *fact.Value
		}
	}
	target := cfg.AggregateTarget

	summary.CompletedCount = len(facts)
	summary.AggregateAchieved = &achieved
	summary.AggregateTarget = &target
	summary.ExpectedByToday = target * w.ElapsedFraction
	summary.Pace = paceOf(achieved, summary.ExpectedByToday)
	summary.Success = target <= 0 || achieved >= target

	if target <= 0 {
		summary.SuccessPercentage = 100
	} else {
		summary.SuccessPercentage = achieved / target * 100
	}

	// 剩余 0 天或目标已达成时不再计算配速，避免除零
	if w.DaysRemaining > 0 && achieved < target {
		pace := (target - achieved) / float64(w.DaysRemaining)
		summary.PaceRequired = &pace
	}
}

func countCompleted(facts []db.ProgressFact) int {
	count := 0
	for _, fact := range facts {
		if fact.IsCompleted != nil && *fact.IsCompleted {
			count++
		}
	}
	return count
}

// ratioPercent 带除零保护：目标为 0 视为恒达标，返回 100
func ratioPercent(actual, target int) float64 {
	if target <= 0 {
		return 100
	}
	return float64(actual) / float64(target) * 100
}

// paceOf 实现前置完成规则：周期内任何时候只要实际量不低于
// 按比例折算的期望量，整个剩余周期都保持 on_track
func paceOf(actual, expected float64) string {
	switch {
	case actual <= 0:
		return PaceNoProgress
	case actual >= expected:
		return PaceOnTrack
	default:
		return PaceBehind
	}
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24+0.5) + 1
}
