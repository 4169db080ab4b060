package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/careprep/careprep-backend/internal/middleware"
	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/service"
	ws "github.com/careprep/careprep-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// tickInterval is how often the countdown stream announces remaining time.
// The final tick at zero is scheduled exactly, independent of this cadence.
const tickInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// WSHandler streams the session countdown and force-submits at zero.
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

// SessionTimerStream godoc
// WS /ws/v1/learner/sessions/:session_id/timer
// Streams remaining-budget ticks for an in-progress session. When the budget
// hits zero the session is submitted server-side with whatever was captured,
// and the final score is pushed before the connection closes.
func (h *WSHandler) SessionTimerStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	state, err := h.sessionService.GetState(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if state.Status != model.SessionStatusInProgress {
		c.JSON(http.StatusConflict, gin.H{"error": "session already completed"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("learner_id", claims.UserID).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Info().Msg("Countdown stream connected")

	// Reader: pings and client-initiated submits. Closes done when the
	// client goes away.
	done := make(chan struct{})
	submitReq := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestPayload
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			switch msg.Action {
			case ws.ActionPing:
				_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionSubmit:
				select {
				case submitReq <- struct{}{}:
				default:
				}
			default:
				_ = ws.WriteError(conn, "unknown action: "+string(msg.Action))
			}
		}
	}()

	h.runCountdown(c.Request.Context(), conn, wsLog, claims.UserID, sessionID, done, submitReq)
}

func (h *WSHandler) runCountdown(
	ctx context.Context,
	conn *websocket.Conn,
	wsLog zerolog.Logger,
	learnerID int,
	sessionID uuid.UUID,
	done <-chan struct{},
	submitReq <-chan struct{},
) {
	session, err := h.sessionService.Session(ctx, learnerID, sessionID)
	if err != nil {
		_ = ws.WriteError(conn, "session not found")
		return
	}

	remaining := h.sessionService.Remaining(ctx, session)
	_ = ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTick, RemainingSeconds: remaining.Seconds()})

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(remaining)
	defer deadline.Stop()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Countdown stream closed by client")
			return

		case <-ticker.C:
			remaining = h.sessionService.Remaining(ctx, session)
			if err := ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTick, RemainingSeconds: remaining.Seconds()}); err != nil {
				return
			}

		case <-submitReq:
			result, err := h.sessionService.Submit(ctx, learnerID, sessionID)
			h.finish(conn, wsLog, result, err, false)
			return

		case <-deadline.C:
			result, err := h.sessionService.ForceSubmit(context.Background(), sessionID)
			h.finish(conn, wsLog, result, err, true)
			return
		}
	}
}

func (h *WSHandler) finish(conn *websocket.Conn, wsLog zerolog.Logger, result *model.ExamResult, err error, forced bool) {
	if err != nil {
		// Another path already submitted; the countdown's job is done.
		if errors.Is(err, service.ErrSessionCompleted) {
			wsLog.Debug().Msg("Session was already submitted")
			return
		}
		wsLog.Error().Err(err).Bool("forced", forced).Msg("Countdown submit failed")
		_ = ws.WriteError(conn, "submit failed")
		return
	}

	_ = ws.WriteTyped(conn, ws.CompletedResponse{
		Event:        ws.EventCompleted,
		ScorePercent: result.ScorePercent,
		Passed:       result.Passed,
		Forced:       forced,
	})
}
