package session

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"prize_wheel/internal/api"
	dto "prize_wheel/internal/api/dto/wheel"
	"prize_wheel/internal/middleware"
	"prize_wheel/internal/service"
	"prize_wheel/pkg/resp"
	"prize_wheel/pkg/token"
)

type HandlerDeps struct {
	Serv      service.GameService
	SecretKey []byte
	TokenTTL  time.Duration
	Logger    *zap.Logger
}

type Handler struct {
	serv      service.GameService
	secretKey []byte
	tokenTTL  time.Duration
	log       *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		serv:      deps.Serv,
		secretKey: deps.SecretKey,
		tokenTTL:  deps.TokenTTL,
		log:       logger.Named("api.session"),
	}
}

// Create starts a game session and returns its access token
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.serv.CreateSession(r.Context())
	if err != nil {
		h.log.Warn("create session failed", zap.Error(err))
		api.WriteError(w, err)
		return
	}

	accessToken, err := token.GenerateAccessToken(s.ID, h.secretKey, h.tokenTTL)
	if err != nil {
		h.log.Error("sign access token", zap.String("session_id", s.ID), zap.Error(err))
		_ = h.serv.CloseSession(r.Context(), s.ID)
		api.WriteError(w, err)
		return
	}

	setSessionIDCookie(w, s.ID, h.tokenTTL)

	resp.WriteJSONResponse(w, http.StatusCreated, dto.CreateSessionResponse{
		SessionID:   s.ID,
		AccessToken: accessToken,
		ExpiresAt:   s.CreatedAt.Add(h.tokenTTL),
	})
}

// Close ends the session of the access token
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "no session")
		return
	}

	if err := h.serv.CloseSession(r.Context(), sessionID); err != nil {
		api.WriteError(w, err)
		return
	}

	deleteSessionIDCookie(w)

	w.WriteHeader(http.StatusNoContent)
}

func setSessionIDCookie(w http.ResponseWriter, sessionID string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func deleteSessionIDCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	})
}
