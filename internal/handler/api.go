package handler

import (
	"github.com/pillarlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	trackables *service.TrackableService
	lifecycle  *service.LifecycleService
	progress   *service.ProgressService
	activeSet  *service.ActiveSetService
	dimensions *service.DimensionService
	system     *service.SystemSettingService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB) *API {
	return &API{
		db:         db,
		trackables: service.NewTrackableService(db),
		lifecycle:  service.NewLifecycleService(db),
		progress:   service.NewProgressService(db),
		activeSet:  service.NewActiveSetService(db),
		dimensions: service.NewDimensionService(db),
		system:     service.NewSystemSettingService(db),
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
