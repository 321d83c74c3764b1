package service

import (
	"errors"
	"testing"
	"time"

	"github.com/pillarlog/internal/db"
)

func createTask(t *testing.T, svc *TrackableService, name string, tier int, due time.Time) *db.Trackable {
	t.Helper()
	return mustCreateTrackable(t, svc, TrackableInput{
		Kind:         db.KindTask,
		Name:         name,
		DueDate:      &due,
		PriorityTier: tier,
	})
}

func TestResolvePromotesEarliestDueDate(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	trackables := NewTrackableService(db.DB)
	today := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

	// 三个 tier-3 任务占满活跃集
	var active []*db.Trackable
	for i, name := range []string{"报税", "修门", "交稿"} {
		active = append(active, createTask(t, trackables, name, 3, today.AddDate(0, 0, -i)))
	}

	// 两个候选：到期日 01-01 与 01-05，同为 tier-2
	early := createTask(t, trackables, "早候选", 2, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	createTask(t, trackables, "晚候选", 2, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC))

	sets := NewActiveSetService(db.DB)

	result, err := sets.Resolve(active[0].ID, today)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if result.Resolved == nil || result.Resolved.ResolvedAt == nil {
		t.Fatal("expected resolved task to carry a resolution timestamp")
	}
	if result.Promoted == nil {
		t.Fatal("expected a replacement to be promoted")
	}
	if result.Promoted.ID != early.ID {
		t.Fatalf("expected earliest due candidate %d, got %d", early.ID, result.Promoted.ID)
	}
	if result.Promoted.PriorityTier != 3 {
		t.Fatalf("promoted task should move to tier 3, got %d", result.Promoted.PriorityTier)
	}
	if len(result.ActiveSet) != 3 {
		t.Fatalf("expected active set to stay at 3, got %d", len(result.ActiveSet))
	}

	// 未被选中的候选档位不变
	var other db.Trackable
	if err := db.DB.Where("name = ?", "晚候选").First(&other).Error; err != nil {
		t.Fatalf("failed to reload candidate: %v", err)
	}
	if other.PriorityTier != 2 {
		t.Fatalf("promotion must not touch other candidates, got tier %d", other.PriorityTier)
	}
}

func TestResolveTieBreaksBySmallestID(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	trackables := NewTrackableService(db.DB)
	today := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

	member := createTask(t, trackables, "活跃任务", 3, today)
	due := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	first := createTask(t, trackables, "候选A", 1, due)
	createTask(t, trackables, "候选B", 1, due)

	sets := NewActiveSetService(db.DB)
	result, err := sets.Resolve(member.ID, today)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if result.Promoted == nil || result.Promoted.ID != first.ID {
		t.Fatalf("equal due dates must promote the smaller id %d, got %+v", first.ID, result.Promoted)
	}
}

func TestResolveWithoutCandidatesShrinksSet(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	trackables := NewTrackableService(db.DB)
	today := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

	member := createTask(t, trackables, "唯一任务", 3, today)
	// 到期日在未来的候选不合格
	createTask(t, trackables, "未来候选", 2, today.AddDate(0, 0, 5))

	sets := NewActiveSetService(db.DB)
	result, err := sets.Resolve(member.ID, today)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if result.Promoted != nil {
		t.Fatalf("expected no promotion, got %+v", result.Promoted)
	}
	if len(result.ActiveSet) != 0 {
		t.Fatalf("expected active set to shrink to 0, got %d", len(result.ActiveSet))
	}
}

func TestResolveGuards(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	trackables := NewTrackableService(db.DB)
	today := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

	member := createTask(t, trackables, "重复完成", 3, today)
	habit := mustCreateTrackable(t, trackables, TrackableInput{Kind: db.KindHabit, Name: "不是任务"})

	sets := NewActiveSetService(db.DB)

	if _, err := sets.Resolve(member.ID, today); err != nil {
		t.Fatalf("first Resolve returned error: %v", err)
	}
	if _, err := sets.Resolve(member.ID, today); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if _, err := sets.Resolve(habit.ID, today); !errors.Is(err, ErrTrackableNotFound) {
		t.Fatalf("expected ErrTrackableNotFound for non-task, got %v", err)
	}
	if _, err := sets.Resolve(999, today); !errors.Is(err, ErrTrackableNotFound) {
		t.Fatalf("expected ErrTrackableNotFound for missing id, got %v", err)
	}
}

func TestActiveSetHonorsConfiguredSize(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	trackables := NewTrackableService(db.DB)
	today := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		createTask(t, trackables, "任务", 3, today.AddDate(0, 0, -i))
	}

	settings := NewSystemSettingService(db.DB)
	if _, err := settings.UpdateSettings(EngineSettingsInput{ActiveSetSize: 2, DefaultQualityThreshold: 1.0}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	sets := NewActiveSetService(db.DB)
	items, err := sets.ActiveSet(today)
	if err != nil {
		t.Fatalf("ActiveSet returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected capped set of 2, got %d", len(items))
	}
}
