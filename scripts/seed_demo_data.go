package main

import (
	"fmt"
	"log"
	"time"

	"github.com/pillarlog/internal/config"
	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/service"
)

// 演示数据生成器
func main() {
	// 初始化数据库
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	pillars := createPillars()
	categories := createCategories()
	createTrackables(pillars, categories)

	fmt.Println("演示数据生成完成！")
	fmt.Println("实体: 4 个习惯/挑战 + 5 个任务")
	fmt.Println("记录: 最近三周的打卡事实")
}

// 创建支柱
func createPillars() map[string]uint {
	dims := service.NewDimensionService(db.DB)
	result := make(map[string]uint)

	for _, p := range []struct{ name, color string }{
		{"健康", "#22c55e"},
		{"事业", "#3b82f6"},
		{"家庭", "#f59e0b"},
	} {
		pillar, err := dims.CreatePillar(p.name, p.color)
		if err != nil {
			fmt.Printf("支柱 %s 已存在，跳过创建\n", p.name)
			continue
		}
		result[p.name] = pillar.ID
	}
	return result
}

// 创建分类
func createCategories() map[string]uint {
	dims := service.NewDimensionService(db.DB)
	result := make(map[string]uint)

	for _, name := range []string{"运动", "学习", "杂务"} {
		category, err := dims.CreateCategory(name)
		if err != nil {
			fmt.Printf("分类 %s 已存在，跳过创建\n", name)
			continue
		}
		result[name] = category.ID
	}
	return result
}

// 创建各模式的实体并补录最近三周的打卡
func createTrackables(pillars, categories map[string]uint) {
	trackables := service.NewTrackableService(db.DB)
	progress := service.NewProgressService(db.DB)

	var count int64
	db.DB.Model(&db.Trackable{}).Count(&count)
	if count > 0 {
		fmt.Println("实体已存在，跳过创建")
		return
	}

	healthID := pillars["健康"]
	sportID := categories["运动"]
	completed := true

	// daily_streak：每日冥想
	meditation, err := trackables.Create(service.TrackableInput{
		Kind:     db.KindHabit,
		Name:     "冥想",
		PillarID: optionalID(healthID),
		Config:   &service.TrackingConfigInput{Mode: db.ModeDailyStreak, PeriodType: "weekly"},
	})
	if err != nil {
		log.Fatal("创建冥想失败:", err)
	}

	// occurrence：每周 4 次力量训练
	strength, err := trackables.Create(service.TrackableInput{
		Kind:       db.KindHabit,
		Name:       "力量训练",
		PillarID:   optionalID(healthID),
		CategoryID: optionalID(sportID),
		Config: &service.TrackingConfigInput{
			Mode:        db.ModeOccurrence,
			PeriodType:  "weekly",
			TargetCount: 4,
		},
	})
	if err != nil {
		log.Fatal("创建力量训练失败:", err)
	}

	// occurrence_with_value：每周 4 次 45 分钟健身
	gym, err := trackables.Create(service.TrackableInput{
		Kind:       db.KindHabit,
		Name:       "Gym",
		PillarID:   optionalID(healthID),
		CategoryID: optionalID(sportID),
		Config: &service.TrackingConfigInput{
			Mode:               db.ModeOccurrenceWithValue,
			PeriodType:         "weekly",
			TargetCount:        4,
			SessionTargetValue: 45,
			Unit:               "minutes",
		},
	})
	if err != nil {
		log.Fatal("创建 Gym 失败:", err)
	}

	// aggregate：月跑量 100 公里
	running, err := trackables.Create(service.TrackableInput{
		Kind:     db.KindChallenge,
		Name:     "月跑量 100 公里",
		PillarID: optionalID(healthID),
		Config: &service.TrackingConfigInput{
			Mode:            db.ModeAggregate,
			PeriodType:      "monthly",
			AggregateTarget: 100,
			Unit:            "km",
		},
	})
	if err != nil {
		log.Fatal("创建跑量挑战失败:", err)
	}

	today := time.Now()
	for offset := 20; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)

		// 冥想三不五时缺一天，便于演示连胜缺口
		if offset%7 != 3 {
			mustLog(progress, service.LogInput{TrackableID: meditation.ID, EntryDate: day, IsCompleted: &completed, Source: "seed"})
		}
		if offset%2 == 0 {
			mustLog(progress, service.LogInput{TrackableID: strength.ID, EntryDate: day, IsCompleted: &completed, Source: "seed"})
			minutes := float64(30 + offset%3*15)
			mustLog(progress, service.LogInput{TrackableID: gym.ID, EntryDate: day, IsCompleted: &completed, Value: &minutes, Source: "seed"})
		}
		if offset%3 == 0 {
			km := 5.0
			mustLog(progress, service.LogInput{TrackableID: running.ID, EntryDate: day, Value: &km, Source: "seed"})
		}
	}

	// 活跃集任务：3 个 tier-3 加 2 个候选
	for i, name := range []string{"报税", "修门", "交稿"} {
		due := today.AddDate(0, 0, -i)
		if _, err := trackables.Create(service.TrackableInput{
			Kind:         db.KindTask,
			Name:         name,
			DueDate:      &due,
			PriorityTier: 3,
		}); err != nil {
			log.Fatal("创建任务失败:", err)
		}
	}
	for i, name := range []string{"整理书房", "备份照片"} {
		due := today.AddDate(0, 0, -7-i)
		if _, err := trackables.Create(service.TrackableInput{
			Kind:         db.KindTask,
			Name:         name,
			DueDate:      &due,
			PriorityTier: 2,
		}); err != nil {
			log.Fatal("创建候选任务失败:", err)
		}
	}
}

func mustLog(progress *service.ProgressService, input service.LogInput) {
	if _, err := progress.Log(input); err != nil {
		log.Fatal("写入打卡记录失败:", err)
	}
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
