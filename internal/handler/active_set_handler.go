package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/service"
)

func activeSetToViews(items []db.Trackable) []trackableView {
	views := make([]trackableView, 0, len(items))
	for _, item := range items {
		views = append(views, trackableToView(item))
	}
	return views
}

// GetActiveSet 返回当前活跃集
func (a *API) GetActiveSet(c *gin.Context) {
	today, err := parseDateQuery(c, "today", time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	items, err := a.activeSet.ActiveSet(today)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取活跃集失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"active_set": activeSetToViews(items)})
}

// ResolveActiveSetMember 完成一个活跃集成员并触发替补晋升
func (a *API) ResolveActiveSetMember(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	today, err := parseDateQuery(c, "today", time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	result, err := a.activeSet.Resolve(id, today)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrackableNotFound):
			respondError(c, http.StatusNotFound, "任务不存在")
		case errors.Is(err, service.ErrAlreadyResolved):
			respondError(c, http.StatusConflict, "任务已完成")
		default:
			respondError(c, http.StatusInternalServerError, "完成任务失败")
		}
		return
	}

	payload := gin.H{
		"resolved":   trackableToView(*result.Resolved),
		"active_set": activeSetToViews(result.ActiveSet),
	}
	if result.Promoted != nil {
		payload["promoted"] = trackableToView(*result.Promoted)
	}

	c.JSON(http.StatusOK, payload)
}
