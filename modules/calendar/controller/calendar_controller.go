package controller

import (
	"net/http"

	"github.com/assistflowpro-cyber/assistflow-backend/core/controller"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/dto"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/mapper"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	controller.BaseController
	service     service.CalendarService
	frontendURL string
}

func NewCalendarController(service service.CalendarService, frontendURL string) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		service:        service,
		frontendURL:    frontendURL,
	}
}

// Health
// GET /
func (c *CalendarController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "Backend OK"})
}

// ConnectGoogle returns the consent URL for the user passed as state
// GET /api/calendars/connect/google?state=...
func (c *CalendarController) ConnectGoogle(ctx echo.Context) error {
	authURL, err := c.service.Connect(ctx.QueryParam("state"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.ConnectResponse{AuthURL: authURL})
}

// Callback always redirects to the frontend settings page.
// GET /api/calendars/callback?code=...&state=...
func (c *CalendarController) Callback(ctx echo.Context) error {
	result := c.service.Callback(ctx.Request().Context(), ctx.QueryParam("code"), ctx.QueryParam("state"))
	return ctx.Redirect(http.StatusFound, result.RedirectURL(c.frontendURL))
}

// Sync
// POST /api/calendars/sync
func (c *CalendarController) Sync(ctx echo.Context) error {
	var req dto.SyncRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	if req.Async {
		if err := c.service.EnqueueSync(ctx.Request().Context(), req.UserID); err != nil {
			return c.ErrorResponse(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, dto.SyncQueuedResponse{Success: true, Queued: true})
	}

	result, err := c.service.Sync(ctx.Request().Context(), req.UserID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.SyncResponse{Success: true, Count: result.Count})
}

// Disconnect
// POST /api/calendars/disconnect
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	var req dto.DisconnectRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	if err := c.service.Disconnect(ctx.Request().Context(), req.UserID); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// GetConnection
// GET /api/calendars/connection?userId=...
func (c *CalendarController) GetConnection(ctx echo.Context) error {
	status, err := c.service.GetConnection(ctx.Request().Context(), ctx.QueryParam("userId"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, status)
}

// ListEvents
// GET /api/calendars/events?userId=...
func (c *CalendarController) ListEvents(ctx echo.Context) error {
	events, err := c.service.ListEvents(ctx.Request().Context(), ctx.QueryParam("userId"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, mapper.ToEventListResponse(events))
}
