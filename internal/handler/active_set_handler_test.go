package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/service"
)

func seedTask(t *testing.T, name string, tier int, due time.Time) *db.Trackable {
	t.Helper()
	item, err := service.NewTrackableService(db.DB).Create(service.TrackableInput{
		Kind:         db.KindTask,
		Name:         name,
		DueDate:      &due,
		PriorityTier: tier,
	})
	if err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return item
}

func TestResolveActiveSetMemberPromotes(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	today := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)
	member := seedTask(t, "活跃任务", 3, today)
	candidate := seedTask(t, "候选任务", 2, today.AddDate(0, 0, -10))

	idParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(member.ID))}}
	w := postJSON(t, api, api.ResolveActiveSetMember, "/api/active-set/resolve/x?today=2024-07-10", idParam, map[string]any{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Resolved  trackableView   `json:"resolved"`
		Promoted  *trackableView  `json:"promoted"`
		ActiveSet []trackableView `json:"active_set"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Resolved.ResolvedAt == nil {
		t.Fatal("expected resolved timestamp in response")
	}
	if resp.Promoted == nil || resp.Promoted.ID != candidate.ID {
		t.Fatalf("expected candidate %d to be promoted, got %+v", candidate.ID, resp.Promoted)
	}

	// 重复完成返回 409
	w = postJSON(t, api, api.ResolveActiveSetMember, "/api/active-set/resolve/x?today=2024-07-10", idParam, map[string]any{})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on double resolve, got %d", w.Code)
	}
}
