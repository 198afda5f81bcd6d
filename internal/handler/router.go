package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Rooms   *RoomHandler
	Events  *EventHandler
	Metrics *MetricsHandler
}

// Register mounts the booking routes at the root and, when prefix is non-empty, again under
// prefix. Health and metrics always stay at the root.
func Register(r *gin.Engine, prefix string, h Handlers, metricsEnabled bool) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		if metricsEnabled {
			r.GET("/metrics", h.Metrics.Prometheus)
		}
	}

	mountResources(&r.RouterGroup, h)
	if prefix != "" && prefix != "/" {
		mountResources(r.Group(prefix), h)
	}
}

func mountResources(api *gin.RouterGroup, h Handlers) {
	if h.Rooms != nil {
		rooms := api.Group("/rooms")
		rooms.POST("", h.Rooms.Create)
		rooms.GET("", h.Rooms.List)
		rooms.GET("/:id", h.Rooms.Get)
		rooms.DELETE("/:id", h.Rooms.Delete)
	}

	if h.Events != nil {
		events := api.Group("/events")
		events.POST("", h.Events.Create)
		events.GET("", h.Events.List)
		events.DELETE("", h.Events.CancelByName)
		events.GET("/active", h.Events.Active)
		events.GET("/upcoming", h.Events.Upcoming)
		events.GET("/export", h.Events.Export)
		events.GET("/room/:roomId", h.Events.ByRoom)
		events.GET("/availability/:roomId", h.Events.Availability)
		events.GET("/:id", h.Events.Get)
		events.PATCH("/:id", h.Events.Update)
		events.DELETE("/:id", h.Events.Delete)
	}
}
