package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onnwee/sokuji-bot/sokuji"
)

// HandleAdminSession dumps a stored session record by id.
func (h *Handlers) HandleAdminSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.store.GetSession(r.Context(), id)
	if errors.Is(err, sokuji.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleAdminChannel returns the channel's current session id and stored
// preferences.
func (h *Handlers) HandleAdminChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channelID := chi.URLParam(r, "channelID")
	out := map[string]any{"channel_id": channelID}

	id, err := h.store.CurrentSessionID(ctx, channelID)
	switch {
	case errors.Is(err, sokuji.ErrNotFound):
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	default:
		out["session_id"] = id
	}
	cfg, err := sokuji.LoadConfig(ctx, h.store, channelID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cfg != nil {
		out["config"] = cfg
	}
	writeJSON(w, http.StatusOK, out)
}

type guildProfileBody struct {
	Tag   string `json:"tag"`
	Color int    `json:"color"`
	IsJa  bool   `json:"is_ja"`
}

// HandleAdminGuild reads (GET) or replaces (PUT) the profile a guild's new
// sessions start from: its own team tag, colour and language.
func (h *Handlers) HandleAdminGuild(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	switch r.Method {
	case http.MethodGet:
		p, err := h.store.GuildProfile(r.Context(), guildID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if p == nil {
			writeError(w, http.StatusNotFound, "guild not found")
			return
		}
		writeJSON(w, http.StatusOK, guildProfileBody{Tag: p.Tag, Color: p.Color, IsJa: p.IsJa})
	case http.MethodPut:
		var body guildProfileBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if body.Color < 0 || body.Color > 0xffffff {
			writeError(w, http.StatusBadRequest, "color out of range")
			return
		}
		p := sokuji.GuildProfile{Tag: sokuji.TruncateTag(body.Tag), Color: body.Color, IsJa: body.IsJa}
		if err := h.store.PutGuildProfile(r.Context(), guildID, p); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
