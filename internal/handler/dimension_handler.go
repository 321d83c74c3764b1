package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pillarlog/internal/service"
)

type pillarPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type categoryPayload struct {
	Name string `json:"name"`
}

// ListPillars 返回全部支柱
func (a *API) ListPillars(c *gin.Context) {
	pillars, err := a.dimensions.ListPillars()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取支柱列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pillars": pillars})
}

// CreatePillar 新建支柱
func (a *API) CreatePillar(c *gin.Context) {
	var payload pillarPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	pillar, err := a.dimensions.CreatePillar(payload.Name, payload.Color)
	if err != nil {
		if errors.Is(err, service.ErrDimensionNameTaken) {
			respondError(c, http.StatusBadRequest, "支柱名称已存在")
			return
		}
		respondError(c, http.StatusBadRequest, "创建支柱失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pillar": pillar})
}

// ListCategories 返回全部分类
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.dimensions.ListCategories()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory 新建分类
func (a *API) CreateCategory(c *gin.Context) {
	var payload categoryPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	category, err := a.dimensions.CreateCategory(payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrDimensionNameTaken) {
			respondError(c, http.StatusBadRequest, "分类名称已存在")
			return
		}
		respondError(c, http.StatusBadRequest, "创建分类失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}
