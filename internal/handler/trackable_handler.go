package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/service"
)

type trackingConfigPayload struct {
	Mode               string  `json:"mode"`
	PeriodType         string  `json:"period_type"`
	TargetCount        int     `json:"target_count"`
	SessionTargetValue float64 `json:"session_target_value"`
	AggregateTarget    float64 `json:"aggregate_target"`
	Unit               string  `json:"unit"`
	QualityThreshold   float64 `json:"quality_threshold"`
}

type trackablePayload struct {
	Kind         string                 `json:"kind"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	PillarID     *uint                  `json:"pillar_id"`
	CategoryID   *uint                  `json:"category_id"`
	DueDate      string                 `json:"due_date"`
	PriorityTier int                    `json:"priority_tier"`
	Config       *trackingConfigPayload `json:"config"`
}

type trackableView struct {
	ID           uint       `json:"id"`
	Kind         string     `json:"kind"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	PillarID     *uint      `json:"pillar_id"`
	PillarName   string     `json:"pillar_name"`
	CategoryID   *uint      `json:"category_id"`
	CategoryName string     `json:"category_name"`
	IsActive     bool       `json:"is_active"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	DueDate      string     `json:"due_date,omitempty"`
	PriorityTier int        `json:"priority_tier"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func trackableToView(item db.Trackable) trackableView {
	view := trackableView{
		ID:           item.ID,
		Kind:         item.Kind,
		Name:         item.Name,
		Description:  item.Description,
		PillarID:     item.PillarID,
		CategoryID:   item.CategoryID,
		IsActive:     item.IsActive,
		ArchivedAt:   item.ArchivedAt,
		PriorityTier: item.PriorityTier,
		ResolvedAt:   item.ResolvedAt,
	}
	if item.Pillar != nil {
		view.PillarName = item.Pillar.Name
	}
	if item.Category != nil {
		view.CategoryName = item.Category.Name
	}
	if item.DueDate != nil {
		view.DueDate = item.DueDate.Format(dateFormat)
	}
	return view
}

func (p trackablePayload) toInput() (service.TrackableInput, error) {
	input := service.TrackableInput{
		Kind:         p.Kind,
		Name:         p.Name,
		Description:  p.Description,
		PillarID:     p.PillarID,
		CategoryID:   p.CategoryID,
		PriorityTier: p.PriorityTier,
	}

	if p.DueDate != "" {
		due, err := time.ParseInLocation(dateFormat, p.DueDate, time.Local)
		if err != nil {
			return input, err
		}
		input.DueDate = &due
	}

	if p.Config != nil {
		input.Config = &service.TrackingConfigInput{
			Mode:               p.Config.Mode,
			PeriodType:         p.Config.PeriodType,
			TargetCount:        p.Config.TargetCount,
			SessionTargetValue: p.Config.SessionTargetValue,
			AggregateTarget:    p.Config.AggregateTarget,
			Unit:               p.Config.Unit,
			QualityThreshold:   p.Config.QualityThreshold,
		}
	}

	return input, nil
}

// CreateTrackable 创建实体及其跟踪配置
func (a *API) CreateTrackable(c *gin.Context) {
	var payload trackablePayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期格式")
		return
	}

	item, err := a.trackables.Create(input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTrackingConfig) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "创建实体失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trackable": trackableToView(*item)})
}

// UpdateTrackable 更新实体基础信息与配置
func (a *API) UpdateTrackable(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	var payload trackablePayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期格式")
		return
	}

	item, err := a.trackables.Update(id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrackableNotFound):
			respondError(c, http.StatusNotFound, "实体不存在")
		case errors.Is(err, service.ErrInvalidTrackingConfig):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "更新实体失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"trackable": trackableToView(*item)})
}

// GetTrackable 返回单个实体详情（含归档实体）
func (a *API) GetTrackable(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	item, err := a.trackables.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrTrackableNotFound) {
			respondError(c, http.StatusNotFound, "实体不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取实体失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"trackable": trackableToView(*item)})
}

// ListTrackables 返回实体列表
func (a *API) ListTrackables(c *gin.Context) {
	filter := service.TrackableFilter{
		Kind:            c.Query("kind"),
		Search:          c.Query("search"),
		IncludeArchived: c.Query("include_archived") == "true",
	}

	items, err := a.trackables.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取实体列表失败")
		return
	}

	views := make([]trackableView, 0, len(items))
	for _, item := range items {
		views = append(views, trackableToView(item))
	}

	c.JSON(http.StatusOK, gin.H{"trackables": views})
}

// ArchiveTrackable 软删除实体，历史记录保留
func (a *API) ArchiveTrackable(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	item, err := a.lifecycle.Archive(id)
	if err != nil {
		if errors.Is(err, service.ErrTrackableNotFound) {
			respondError(c, http.StatusNotFound, "实体不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "归档失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"trackable": trackableToView(*item)})
}

// RestoreTrackable 恢复已归档实体
func (a *API) RestoreTrackable(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	item, err := a.lifecycle.Restore(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrackableNotFound):
			respondError(c, http.StatusNotFound, "实体不存在")
		case errors.Is(err, service.ErrNotArchived):
			respondError(c, http.StatusConflict, "实体未归档")
		default:
			respondError(c, http.StatusInternalServerError, "恢复失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"trackable": trackableToView(*item)})
}

// HardDeleteTrackable 物理删除实体并级联清理历史记录，不可恢复
func (a *API) HardDeleteTrackable(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的实体ID")
		return
	}

	if err := a.lifecycle.HardDelete(id); err != nil {
		if errors.Is(err, service.ErrTrackableNotFound) {
			respondError(c, http.StatusNotFound, "实体不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "实体及历史记录已删除"})
}
