package calendar

import (
	"github.com/assistflowpro-cyber/assistflow-backend/core/cache"
	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/database"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/controller"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/provider"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/repository"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/router"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Deps are the process-wide resources the module is built from. Enqueuer is
// nil when no background worker is available.
type Deps struct {
	DB       database.IDatabase
	Cipher   service.TokenCipher
	Locker   cache.Locker
	Enqueuer service.SyncEnqueuer
	Provider provider.Provider
}

// NewService builds the calendar service without any HTTP wiring; the worker
// uses it directly.
func NewService(cfg *config.Config, deps Deps) service.CalendarService {
	p := deps.Provider
	if p == nil {
		p = provider.NewGoogle(cfg.GoogleAPI)
	}

	// Initialize layers
	connections := repository.NewConnectionRepository(deps.DB)
	events := repository.NewEventRepository(deps.DB)
	oauth := service.NewOAuthFlow(p, deps.Cipher, connections)
	engine := service.NewSyncEngine(connections, events, p, deps.Cipher, cfg.Calendar.RefreshBeforeSync)

	return service.NewCalendarService(oauth, engine, connections, events, deps.Locker, deps.Enqueuer)
}

func Init(e *echo.Echo, cfg *config.Config, deps Deps) service.CalendarService {
	calendarService := NewService(cfg, deps)
	calendarController := controller.NewCalendarController(calendarService, cfg.App.FrontendURL)

	// Setup routes
	router.NewCalendarRouter(calendarController).Setup(e)
	return calendarService
}
