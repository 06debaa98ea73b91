package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/onnwee/sokuji-bot/telemetry"
	"github.com/onnwee/sokuji-bot/widget"
)

const (
	wsWriteTimeout = 3 * time.Second
	wsPingInterval = 30 * time.Second
)

// resolveChannel reads channel_id, or user_id through the widget table.
func (h *Handlers) resolveChannel(r *http.Request) (string, int, error) {
	q := r.URL.Query()
	if ch := q.Get("channel_id"); ch != "" {
		return ch, 0, nil
	}
	userID := q.Get("user_id")
	if userID == "" {
		return "", http.StatusBadRequest, errors.New("missing channel_id or user_id")
	}
	ch, err := widget.ChannelFor(r.Context(), h.store, userID)
	if errors.Is(err, widget.ErrNoSession) {
		return "", http.StatusNotFound, errors.New("no widget registered for user")
	}
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	return ch, 0, nil
}

// HandleWidget returns the channel's current snapshot as JSON.
func (h *Handlers) HandleWidget(w http.ResponseWriter, r *http.Request) {
	ch, status, err := h.resolveChannel(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	snap, err := widget.Current(r.Context(), h.store, ch)
	if errors.Is(err, widget.ErrNoSession) {
		writeError(w, http.StatusNotFound, "no session in channel")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, snap)
}

// HandleWidgetWS streams snapshots over a websocket: the current one right
// away, then one per save of the channel's session.
func (h *Handlers) HandleWidgetWS(w http.ResponseWriter, r *http.Request) {
	ch, status, err := h.resolveChannel(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	// Subscribe before loading so no save between the two is missed.
	sub := h.hub.Subscribe(ch)
	defer sub.Close()

	initial, err := widget.Current(r.Context(), h.store, ch)
	if err != nil && !errors.Is(err, widget.ErrNoSession) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	hasInitial := err == nil

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Overlays are loaded by streaming software from arbitrary origins.
		InsecureSkipVerify: true,
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	log := telemetry.LoggerWithCorr(r.Context())
	// Overlays never send; CloseRead handles pings and closes for us.
	ctx := conn.CloseRead(r.Context())

	if hasInitial {
		if err := writeSnapshot(ctx, conn, initial); err != nil {
			return
		}
	}
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				log.Debug("widget write failed", slog.String("channel_id", ch), slog.Any("err", err))
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, snap widget.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

// HandleStatus returns a lightweight status summary.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"tracing":        telemetry.IsTracingEnabled(),
	})
}
