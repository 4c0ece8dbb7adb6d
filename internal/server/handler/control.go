package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// Controller exposes the manual triggers the pipeline makes available to
// operators. Each call runs synchronously and returns the first error.
type Controller interface {
	Refresh(ctx context.Context) error
	Recalculate(ctx context.Context) error
	Save(ctx context.Context) error
	ReadInventory(ctx context.Context) error
}

// ControlHandler serves the manual trigger endpoints. They replace the
// original operator workflow of typing commands into the bot's terminal.
type ControlHandler struct {
	ctrl   Controller
	logger *slog.Logger
}

// NewControlHandler creates a ControlHandler backed by the given Controller.
func NewControlHandler(ctrl Controller, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{ctrl: ctrl, logger: logHandler(logger, "control")}
}

// TriggerRefresh refreshes the catalog and rebuilds the buy-listing set.
// POST /api/control/refresh
func (h *ControlHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "refresh", h.ctrl.Refresh)
}

// TriggerRecalculate reprices every listing.
// POST /api/control/recalculate
func (h *ControlHandler) TriggerRecalculate(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "recalculate", h.ctrl.Recalculate)
}

// TriggerSave persists the bot state to disk.
// POST /api/control/save
func (h *ControlHandler) TriggerSave(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "save", h.ctrl.Save)
}

// TriggerReadInventory rebuilds the sell side from the live inventory.
// POST /api/control/read-inventory
func (h *ControlHandler) TriggerReadInventory(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "read_inventory", h.ctrl.ReadInventory)
}

func (h *ControlHandler) run(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context) error) {
	if err := fn(r.Context()); err != nil {
		h.logger.Error("manual trigger failed",
			slog.String("trigger", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "trigger": name})
}
