package relay

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/huddle/internal/domain"
	"github.com/hilthontt/huddle/internal/infrastructure/json"
	"github.com/hilthontt/huddle/internal/infrastructure/logging"
	"github.com/hilthontt/huddle/internal/infrastructure/metrics"
	"github.com/hilthontt/huddle/internal/infrastructure/validate"
	"github.com/hilthontt/huddle/internal/infrastructure/ws"
	"go.uber.org/zap"
)

type Handler struct {
	registry *ws.Registry
	audit    domain.RoomAuditRepository // nil unless auditing is configured
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewHandler(registry *ws.Registry, audit domain.RoomAuditRepository, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		registry: registry,
		audit:    audit,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeWS upgrades the request and runs the connection's pumps. The read pump
// owns teardown: when it returns the connection has already left its room.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed",
			logging.Args(logging.Realtime, logging.ExternalService, map[logging.ExtraKey]any{
				logging.ClientIp:     r.RemoteAddr,
				logging.ErrorMessage: err.Error(),
			})...)
		return
	}

	client := ws.NewClient(conn, h.registry, h.logger)

	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()

	h.logger.Debugw("client connected",
		logging.Args(logging.Realtime, logging.ExternalService, map[logging.ExtraKey]any{
			logging.ClientID: client.ID,
			logging.ClientIp: r.RemoteAddr,
		})...)

	go client.WritePump()
	client.ReadPump()

	h.logger.Debugw("client disconnected",
		logging.Args(logging.Realtime, logging.ExternalService, map[logging.ExtraKey]any{
			logging.ClientID: client.ID,
		})...)
}

func roomCodeParam(r *http.Request) (string, error) {
	code := domain.NormalizeCode(chi.URLParam(r, "code"))

	validator := validate.Compose(
		validate.Required(),
		validate.Length(domain.CodeLength),
		validate.Alphanumeric(),
		validate.Uppercase(),
	)
	return code, validate.Field("code", validator)(code)
}

// GetRoomHandler returns a snapshot of a single room by code.
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	code, err := roomCodeParam(r)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	room, err := h.registry.Room(code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, roomResponse{
		Code:           room.Code,
		MemberCount:    room.MemberCount,
		CreatedAt:      room.CreatedAt,
		LastActivityAt: room.LastActivityAt,
	})
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// GetRoomAuditHandler returns a room's persisted lifecycle history, newest
// first. Responds 404 when no audit store is configured.
func (h *Handler) GetRoomAuditHandler(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		json.WriteError(w, http.StatusNotFound, errors.New("audit log disabled"), "Audit log is not enabled")
		return
	}

	code, err := roomCodeParam(r)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			json.WriteBadRequestError(w, "limit must be a positive integer")
			return
		}
		if n > maxAuditLimit {
			n = maxAuditLimit
		}
		limit = n
	}

	logs, err := h.audit.GetByRoomCode(r.Context(), code, limit)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, auditResponse{
		RoomCode: code,
		Events:   logs,
	})
}
