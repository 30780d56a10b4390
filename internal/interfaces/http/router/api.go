package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shipkia/connector/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers of the connector API
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Connection *handler.ConnectionHandler
	Settings   *handler.SettingsHandler
	Tracking   *handler.TrackingHandler
}

// Guards protect the three audiences of the API. A nil guard lets requests through.
type Guards struct {
	// Admin authenticates store administrators
	Admin gin.HandlerFunc
	// Push verifies requests signed by the Shipkia platform
	Push gin.HandlerFunc
	// Public throttles unauthenticated customer endpoints
	Public gin.HandlerFunc
}

// NewAPI registers the connector routes on r
func NewAPI(r *Router, h Handlers, g Guards) *Router {
	admin := guard(g.Admin)
	push := guard(g.Push)
	public := guard(g.Public)

	system := NewDomainGroup("system", "/system")
	system.Handle(http.MethodGet, "/ping", "liveness", h.System.Ping)
	system.Handle(http.MethodGet, "/info", "build and uptime", h.System.GetSystemInfo)

	auth := NewDomainGroup("auth", "/auth").Use(admin)
	auth.Handle(http.MethodGet, "/me", "current admin session", h.Auth.Me)
	auth.Handle(http.MethodPost, "/logout", "revoke the admin token", h.Auth.Logout)

	conn := NewDomainGroup("connection", "/connection").Use(admin)
	conn.Handle(http.MethodGet, "/status", "connection status", h.Connection.Status)
	conn.Handle(http.MethodPost, "/connect", "manual connect", h.Connection.Connect)
	conn.Handle(http.MethodPost, "/disconnect", "disconnect", h.Connection.Disconnect)
	conn.Handle(http.MethodPost, "/sync", "manual auto sync", h.Connection.Sync)
	conn.Handle(http.MethodPost, "/check", "auto-connect check", h.Connection.Check)
	conn.Handle(http.MethodPost, "/activate", "activation handshake", h.Connection.Activate)

	settings := NewDomainGroup("settings", "/settings").Use(admin)
	settings.Handle(http.MethodGet, "", "read tracking settings", h.Settings.Get)
	settings.Handle(http.MethodPut, "", "update tracking settings", h.Settings.Update)

	// Order routes mix audiences, so guards are set per route.
	orders := NewDomainGroup("orders", "/orders")
	orders.Handle(http.MethodGet, "/tracking", "tracking report", admin, h.Tracking.Report)
	orders.Handle(http.MethodGet, "/:id/tracking", "order tracking detail", admin, h.Tracking.Detail)
	orders.Handle(http.MethodGet, "/:id/tracking/column", "order list column", admin, h.Tracking.Column)
	orders.Handle(http.MethodGet, "/:id/tracking/customer", "customer tracking view", public, h.Tracking.Customer)
	orders.Handle(http.MethodPut, "/:id/tracking", "platform tracking push", push, h.Tracking.Push)

	return r.Register(system).Register(auth).Register(conn).Register(settings).Register(orders)
}

func guard(h gin.HandlerFunc) gin.HandlerFunc {
	if h == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return h
}
