package service

import (
	"testing"
	"time"

	"github.com/pillarlog/internal/db"
)

func boolPtr(v bool) *bool { return &v }

func factOn(day time.Time, completed bool) db.ProgressFact {
	return db.ProgressFact{TrackableID: 1, EntryDate: day, SessionNo: 1, IsCompleted: boolPtr(completed)}
}

func TestComputeStreaksGapSemantics(t *testing.T) {
	base := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	// 第 1/2/3 天完成，第 4 天缺口，第 5 天完成
	facts := []db.ProgressFact{
		factOn(base, true),
		factOn(base.AddDate(0, 0, 1), true),
		factOn(base.AddDate(0, 0, 2), true),
		factOn(base.AddDate(0, 0, 4), true),
	}

	stats := ComputeStreaks(facts, base.AddDate(0, 0, 4))
	if stats.Current != 1 {
		t.Fatalf("expected current streak 1, got %d", stats.Current)
	}
	if stats.Longest != 3 {
		t.Fatalf("expected longest streak 3, got %d", stats.Longest)
	}
	if stats.SecondLongest != 1 {
		t.Fatalf("expected second longest 1, got %d", stats.SecondLongest)
	}
}

func TestComputeStreaksFalseCompletionBreaks(t *testing.T) {
	base := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	// 第 4 天有记录但未完成，效果等同缺口
	facts := []db.ProgressFact{
		factOn(base, true),
		factOn(base.AddDate(0, 0, 1), true),
		factOn(base.AddDate(0, 0, 2), true),
		factOn(base.AddDate(0, 0, 3), false),
		factOn(base.AddDate(0, 0, 4), true),
	}

	stats := ComputeStreaks(facts, base.AddDate(0, 0, 4))
	if stats.Current != 1 || stats.Longest != 3 {
		t.Fatalf("expected current 1 / longest 3, got %+v", stats)
	}
}

func TestComputeStreaksMissingTodayDoesNotBreak(t *testing.T) {
	base := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	facts := []db.ProgressFact{
		factOn(base, true),
		factOn(base.AddDate(0, 0, 1), true),
		factOn(base.AddDate(0, 0, 2), true),
	}

	// 今天（第 4 天）还没打卡：锚点退回最近一条事实，连胜不中断
	stats := ComputeStreaks(facts, base.AddDate(0, 0, 3))
	if stats.Current != 3 {
		t.Fatalf("expected current streak 3, got %d", stats.Current)
	}

	// 今天有未完成记录则连胜归零
	facts = append(facts, factOn(base.AddDate(0, 0, 3), false))
	stats = ComputeStreaks(facts, base.AddDate(0, 0, 3))
	if stats.Current != 0 {
		t.Fatalf("expected current streak 0 after incomplete today, got %d", stats.Current)
	}
}

func TestComputeStreaksTopTwoRuns(t *testing.T) {
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	var facts []db.ProgressFact
	// 5 连 + 缺口 + 2 连 + 缺口 + 4 连
	for i := 0; i < 5; i++ {
		facts = append(facts, factOn(base.AddDate(0, 0, i), true))
	}
	for i := 7; i < 9; i++ {
		facts = append(facts, factOn(base.AddDate(0, 0, i), true))
	}
	for i := 11; i < 15; i++ {
		facts = append(facts, factOn(base.AddDate(0, 0, i), true))
	}

	stats := ComputeStreaks(facts, base.AddDate(0, 0, 14))
	if stats.Longest != 5 {
		t.Fatalf("expected longest 5, got %d", stats.Longest)
	}
	if stats.SecondLongest != 4 {
		t.Fatalf("expected second longest 4, got %d", stats.SecondLongest)
	}
	if stats.Current != 4 {
		t.Fatalf("expected current 4, got %d", stats.Current)
	}
}

func TestComputeStreaksBackfillOrderIndependent(t *testing.T) {
	base := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	// 乱序补录不影响结果：全量重算的意义所在
	facts := []db.ProgressFact{
		factOn(base.AddDate(0, 0, 2), true),
		factOn(base, true),
		factOn(base.AddDate(0, 0, 1), true),
	}

	stats := ComputeStreaks(facts, base.AddDate(0, 0, 2))
	if stats.Current != 3 || stats.Longest != 3 {
		t.Fatalf("expected 3/3 regardless of insertion order, got %+v", stats)
	}
}

func TestComputeStreaksEmptyHistory(t *testing.T) {
	stats := ComputeStreaks(nil, time.Now())
	if stats.Current != 0 || stats.Longest != 0 || stats.SecondLongest != 0 {
		t.Fatalf("expected zero stats for empty history, got %+v", stats)
	}
}
