// Package server exposes the HTTP API handlers.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/widget"
)

// Store is the persistence the HTTP API reads and, for admin routes,
// writes.
type Store interface {
	sokuji.SessionStore
	sokuji.GuildDirectory
	PutGuildProfile(ctx context.Context, guildID string, p sokuji.GuildProfile) error
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	// db may be nil; database checks are then skipped.
	db      *sql.DB
	store   Store
	hub     *widget.Hub
	ctx     context.Context
	started time.Time
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(ctx context.Context, db *sql.DB, store Store, hub *widget.Hub) *Handlers {
	return &Handlers{
		db:      db,
		store:   store,
		hub:     hub,
		ctx:     ctx,
		started: time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
