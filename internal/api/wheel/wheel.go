package wheel

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"prize_wheel/internal/api"
	"prize_wheel/internal/converter"
	"prize_wheel/internal/middleware"
	"prize_wheel/internal/model"
	"prize_wheel/internal/service"
	"prize_wheel/pkg/resp"
)

const defaultHistoryLimit = 20

var errUnknownAction = errors.New("unknown action")

type HandlerDeps struct {
	Serv    service.GameService
	Stats   service.StatsService
	History service.HistoryService // nil when spin history is disabled
	Logger  *zap.Logger
}

type Handler struct {
	serv     service.GameService
	stats    service.StatsService
	history  service.HistoryService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		serv:    deps.Serv,
		stats:   deps.Stats,
		history: deps.History,
		log:     logger.Named("api.wheel"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	snap, err := h.serv.State(r.Context(), sessionID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(snap))
}

// Play inserts a coin, or collects the award while it is shown
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.serv.Play)
}

func (h *Handler) Spin(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.serv.Spin)
}

func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.serv.Collect)
}

// Demo plays a round that lands on the slice from the path
func (h *Handler) Demo(w http.ResponseWriter, r *http.Request) {
	slice, err := strconv.Atoi(chi.URLParam(r, "slice"))
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "slice must be an integer")
		return
	}
	h.command(w, r, func(ctx context.Context, sessionID string) error {
		return h.serv.Demo(ctx, sessionID, slice)
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	response := converter.ToStatsResponse(h.stats.Stats(r.Context()))

	if h.history != nil {
		hits, err := h.history.SliceHits(r.Context())
		if err != nil {
			h.log.Warn("load persisted slice hits", zap.Error(err))
		} else {
			response.PersistedHits = hits
		}
	}

	resp.WriteJSONResponse(w, http.StatusOK, response)
}

// History - latest landed spins of the session, ?limit=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if h.history == nil {
		resp.WriteError(w, http.StatusServiceUnavailable, "spin history is disabled")
		return
	}

	limit := uint64(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); len(raw) > 0 {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			resp.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	spins, err := h.history.Spins(r.Context(), sessionID, limit)
	if err != nil {
		h.log.Error("load spin history", zap.String("session_id", sessionID), zap.Error(err))
		api.WriteError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToHistoryResponse(spins))
}

func (h *Handler) command(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sessionID string) error) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := fn(r.Context(), sessionID); err != nil {
		api.WriteError(w, err)
		return
	}

	snap, err := h.serv.State(r.Context(), sessionID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(snap))
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		api.WriteError(w, model.ErrSessionNotFound)
	}
	return sessionID, ok
}
