package api

import (
	"net/http"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/api/handlers"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/planner"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(roster ports.RosterRepository, manager *planner.Manager) http.Handler {
	mux := http.NewServeMux()

	rosterHandler := &handlers.RosterHandler{Repo: roster}
	routeHandler := &handlers.RouteHandler{Manager: manager}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/roster", rosterHandler.List)
	mux.HandleFunc("/route", routeHandler.Get)
	mux.HandleFunc("/route/gesture", routeHandler.Gesture)
	mux.HandleFunc("/route/send", routeHandler.Send)
	mux.HandleFunc("/route/reopen", routeHandler.Reopen)
	mux.HandleFunc("/route/status", routeHandler.Status)
	mux.HandleFunc("/route/save", routeHandler.Save)
	mux.HandleFunc("/route/path", routeHandler.Path)

	return loggingMiddleware(mux)
}
