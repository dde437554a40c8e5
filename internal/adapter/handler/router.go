package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/config"
	pkgmw "github.com/johnquangdev/advisor-calendar-sync/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	auth              echo.MiddlewareFunc
	calendarHandler   *Calendar
	connectionHandler *Connection
	meetingHandler    *Meeting
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	tokens middleware.TokenValidator,
	calendarHandler *Calendar,
	connectionHandler *Connection,
	meetingHandler *Meeting,
) *Router {
	return &Router{
		cfg:               cfg,
		auth:              middleware.EchoAuth(tokens),
		calendarHandler:   calendarHandler,
		connectionHandler: connectionHandler,
		meetingHandler:    meetingHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	rt.setupCalendarRoutes(v1)
	rt.setupMeetingRoutes(v1)
}

// setupCalendarRoutes configures sync, import and connection routes
func (rt *Router) setupCalendarRoutes(g *echo.Group) {
	calendarGroup := g.Group("/calendar")

	// Google redirects here without a bearer token; the OAuth state identifies the user
	calendarGroup.GET("/google/callback", rt.connectionHandler.GoogleCallback)

	authed := calendarGroup.Group("", rt.auth)
	authed.POST("/sync", rt.calendarHandler.Sync)
	authed.GET("/state", rt.calendarHandler.State)
	authed.POST("/reconcile", rt.calendarHandler.Reconcile)
	authed.GET("/sync-status", rt.calendarHandler.SyncStatus)
	authed.GET("/sync-stats", rt.calendarHandler.SyncStats)
	authed.GET("/meetings/deleted", rt.calendarHandler.DeletedMeetings)
	authed.POST("/ics-import", rt.calendarHandler.ImportICS)

	authed.GET("/google/connect", rt.connectionHandler.GoogleConnect)
	authed.DELETE("/google", rt.connectionHandler.Disconnect)
}

// setupMeetingRoutes configures deletion and restoration routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings", rt.auth)

	meetingGroup.POST("/bulk-delete", rt.meetingHandler.BulkDelete)

	byID := meetingGroup.Group("/:id", pkgmw.RequireUUIDParam("id", MeetingIDKey))
	byID.DELETE("", rt.meetingHandler.DeleteMeeting)
	byID.GET("/deletion-preview", rt.meetingHandler.DeletionPreview)
	byID.POST("/restore", rt.meetingHandler.RestoreMeeting)
	byID.GET("/restore-preview", rt.meetingHandler.RestorePreview)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	environment := ""
	if rt.cfg != nil {
		environment = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": environment,
	})
}
