package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/resumeiq/skilltest-backend/internal/middleware"
	"github.com/resumeiq/skilltest-backend/internal/service"
	ws "github.com/resumeiq/skilltest-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the test session over WebSocket: countdown ticks and
// the graded event go out, answer and navigation actions come in.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TestStream godoc
// WS /ws/v1/tests/:resume_id/stream
// Upgrades to WebSocket for real-time countdown and in-test actions.
func (h *WSHandler) TestStream(c *gin.Context) {
	resumeID := middleware.GetResumeID(c)
	if resumeID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	events, cancelWatch, err := h.sessionService.Watch(resumeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active test session"})
		return
	}
	defer cancelWatch()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("resume_id", resumeID.String()).Logger()
	wsLog.Info().Msg("Candidate connected")

	h.writeState(conn, resumeID)

	// The reader goroutine owns conn reads; this goroutine owns writes.
	actions := make(chan ws.AnswerRequest, 8)
	readerDone := make(chan struct{})
	go h.readActions(conn, wsLog, actions, readerDone)

	for {
		select {
		case <-readerDone:
			wsLog.Debug().Msg("Connection closed")
			return

		case msg := <-actions:
			h.handleAction(conn, wsLog, resumeID, &msg)

		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case service.EventTick:
				ws.WriteTyped(conn, ws.TickResponse{
					Event:            ws.EventTick,
					RemainingSeconds: ev.RemainingSeconds,
				})
			case service.EventGraded:
				ws.WriteTyped(conn, ws.GradedResponse{
					Event:  ws.EventGraded,
					Result: ev.Result,
				})
			}
		}
	}
}

// readActions pumps client messages into the actions channel until the
// connection dies.
func (h *WSHandler) readActions(conn *websocket.Conn, wsLog zerolog.Logger, actions chan<- ws.AnswerRequest, done chan<- struct{}) {
	defer close(done)

	for {
		var msg ws.AnswerRequest
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		actions <- msg
	}
}

func (h *WSHandler) handleAction(conn *websocket.Conn, wsLog zerolog.Logger, resumeID uuid.UUID, msg *ws.AnswerRequest) {
	switch msg.Action {
	case ws.ActionPing:
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})

	case ws.ActionAnswer:
		if msg.Option == "" {
			ws.WriteError(conn, "option is required")
			return
		}
		if err := h.sessionService.SelectAnswer(resumeID, msg.Option); err != nil {
			ws.WriteError(conn, err.Error())
			return
		}
		h.writeState(conn, resumeID)

	case ws.ActionNext:
		if _, err := h.sessionService.Next(resumeID); err != nil {
			ws.WriteError(conn, err.Error())
			return
		}
		h.writeState(conn, resumeID)

	case ws.ActionPrevious:
		if _, err := h.sessionService.Previous(resumeID); err != nil {
			ws.WriteError(conn, err.Error())
			return
		}
		h.writeState(conn, resumeID)

	case ws.ActionSubmit:
		result, err := h.sessionService.Submit(resumeID)
		if err != nil {
			ws.WriteError(conn, err.Error())
			return
		}
		// The watcher also receives the graded broadcast; answering the
		// submitter directly keeps the action request/response shaped.
		ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Result: result})

	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		ws.WriteError(conn, "unknown action: "+string(msg.Action))
	}
}

func (h *WSHandler) writeState(conn *websocket.Conn, resumeID uuid.UUID) {
	state, err := h.sessionService.State(resumeID)
	if err != nil {
		ws.WriteError(conn, err.Error())
		return
	}
	ws.WriteTyped(conn, ws.StateResponse{
		Event:            ws.EventState,
		Status:           string(state.Status),
		CurrentIndex:     state.CurrentIndex,
		Total:            state.Total,
		RemainingSeconds: state.RemainingSeconds,
		Answers:          state.Answers,
	})
}
