package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pillarlog/internal/service"
)

type settingsPayload struct {
	ActiveSetSize           int     `json:"active_set_size"`
	DefaultQualityThreshold float64 `json:"default_quality_threshold"`
}

// GetSettings 返回引擎参数（含默认值回退）
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取系统设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settingsPayload{
		ActiveSetSize:           settings.ActiveSetSize,
		DefaultQualityThreshold: settings.DefaultQualityThreshold,
	}})
}

// UpdateSettings 更新引擎参数
func (a *API) UpdateSettings(c *gin.Context) {
	var payload settingsPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	settings, err := a.system.UpdateSettings(service.EngineSettingsInput{
		ActiveSetSize:           payload.ActiveSetSize,
		DefaultQualityThreshold: payload.DefaultQualityThreshold,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的系统设置")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settingsPayload{
		ActiveSetSize:           settings.ActiveSetSize,
		DefaultQualityThreshold: settings.DefaultQualityThreshold,
	}})
}
