package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/period"
	"github.com/pillarlog/internal/service"
)

type progressLogPayload struct {
	Date        string   `json:"date"`
	SessionNo   int      `json:"session_no"`
	IsCompleted *bool    `json:"is_completed"`
	Value       *float64 `json:"value"`
	Source      string   `json:"source"`
	Note        string   `json:"note"`
	ClientToken string   `json:"client_token"`
}

type progressFactPayload struct {
	ID           uint     `json:"id"`
	TrackableID  uint     `json:"trackable_id"`
	EntryDate    string   `json:"entry_date"`
	SessionNo    int      `json:"session_no"`
	IsCompleted  *bool    `json:"is_completed"`
	Value        *float64 `json:"value"`
	Source       string   `json:"source"`
	Note         string   `json:"note"`
	EntityName   string   `json:"entity_name"`
	PillarID     *uint    `json:"pillar_id"`
	PillarName   string   `json:"pillar_name"`
	CategoryID   *uint    `json:"category_id"`
	CategoryName string   `json:"category_name"`
}

func factToPayload(fact db.ProgressFact) progressFactPayload {
	return progressFactPayload{
		ID:           fact.ID,
		TrackableID:  fact.TrackableID,
		EntryDate:    fact.EntryDate.Format(dateFormat),
		SessionNo:    fact.SessionNo,
		IsCompleted:  fact.IsCompleted,
		Value:        fact.Value,
		Source:       fact.Source,
		Note:         fact.Note,
		EntityName:   fact.EntityNameSnapshot,
		PillarID:     fact.PillarIDSnapshot,
		PillarName:   fact.PillarNameSnapshot,
		CategoryID:   fact.CategoryIDSnapshot,
		CategoryName: fact.CategoryNameSnapshot,
	}
}

// LogProgress 处理打卡请求，同一 (实体, 日期, 会话) 幂等 upsert
func (a *API) LogProgress(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	var payload progressLogPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	entryDate := time.Now()
	if payload.Date != "" {
		parsed, err := time.ParseInLocation(dateFormat, payload.Date, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的日期格式")
			return
		}
		entryDate = parsed
	}

	fact, err := a.progress.Log(service.LogInput{
		TrackableID: id,
		EntryDate:   entryDate,
		SessionNo:   payload.SessionNo,
		IsCompleted: payload.IsCompleted,
		Value:       payload.Value,
		Source:      payload.Source,
		Note:        payload.Note,
		ClientToken: payload.ClientToken,
	})
	if err != nil {
		if errors.Is(err, service.ErrTrackableNotFound) {
			respondError(c, http.StatusNotFound, "实体不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "打卡失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"fact": factToPayload(*fact)})
}

// DeleteProgressEntry 删除单条进度记录
func (a *API) DeleteProgressEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的记录ID")
		return
	}

	if err := a.progress.DeleteEntry(id); err != nil {
		if errors.Is(err, service.ErrFactNotFound) {
			respondError(c, http.StatusNotFound, "记录不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "记录已删除"})
}

// ListProgress 返回指定区间内的进度记录
func (a *API) ListProgress(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	now := time.Now()
	start, err := parseDateQuery(c, "start", now.AddDate(0, 0, -30))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的开始日期")
		return
	}
	end, err := parseDateQuery(c, "end", now)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的结束日期")
		return
	}

	facts, err := a.progress.ListBetween(service.ProgressFilter{TrackableID: id, Start: start, End: end})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取记录失败")
		return
	}

	items := make([]progressFactPayload, 0, len(facts))
	for _, fact := range facts {
		items = append(items, factToPayload(fact))
	}

	c.JSON(http.StatusOK, gin.H{"facts": items})
}

// GetProgressSummary 返回参考日期所在周期的进度汇总
func (a *API) GetProgressSummary(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	now := time.Now()
	reference, err := parseDateQuery(c, "reference_date", now)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的参考日期")
		return
	}
	today, err := parseDateQuery(c, "today", now)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	summary, err := a.progress.Summary(id, c.Query("period_type"), reference, today)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrackableNotFound):
			respondError(c, http.StatusNotFound, "实体不存在")
		case errors.Is(err, service.ErrInvalidTrackingConfig):
			respondError(c, http.StatusBadRequest, "跟踪配置缺失或不合法")
		case errors.Is(err, period.ErrUnknownType):
			respondError(c, http.StatusBadRequest, "无效的周期类型")
		default:
			respondError(c, http.StatusInternalServerError, "获取汇总失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetStreaks 返回当前连胜与历史前两名
func (a *API) GetStreaks(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	today, err := parseDateQuery(c, "today", time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	stats, err := a.progress.Streaks(id, today)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取连胜失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"streaks": stats})
}
