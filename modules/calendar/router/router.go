package router

import (
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo) {
	e.GET("/", r.controller.Health)

	calendarRoutes := e.Group("/api/calendars")

	// OAuth
	calendarRoutes.GET("/connect/google", r.controller.ConnectGoogle)
	calendarRoutes.GET("/callback", r.controller.Callback)

	// Lifecycle
	calendarRoutes.POST("/sync", r.controller.Sync)
	calendarRoutes.POST("/disconnect", r.controller.Disconnect)

	// Read views
	calendarRoutes.GET("/connection", r.controller.GetConnection)
	calendarRoutes.GET("/events", r.controller.ListEvents)
}
