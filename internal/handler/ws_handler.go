package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prepkit/ielts-backend/internal/middleware"
	"github.com/prepkit/ielts-backend/internal/service"
	"github.com/prepkit/ielts-backend/internal/session"
	ws "github.com/prepkit/ielts-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
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

// WSHandler streams a live attempt over WebSocket. The connection owns the
// attempt's countdown: ticks happen here, once per second, only while the
// student is connected. Disconnecting freezes the clock at the last persisted
// value.
type WSHandler struct {
	attemptService *service.AttemptService
	store          session.Store
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, store session.Store, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		store:          store,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TestStream godoc
// WS /ws/v1/portal/tests/:test_id/stream?token=...
// Upgrades to WebSocket and drives the attempt: countdown ticks, answer
// recording, navigation, review, and submission.
func (h *WSHandler) TestStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(rawConn)
	defer conn.Close()

	userID := claims.UserID
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	state, err := h.attemptService.GetState(ctx, userID, testID)
	if err != nil {
		conn.WriteError("no attempt in progress for this test")
		return
	}

	plan, err := h.attemptService.Plan(ctx, testID)
	if err != nil {
		conn.WriteError("test payload unavailable")
		return
	}

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("test_id", testID.String()).
		Logger()

	// Expiry auto-submits the whole attempt, then tells the client.
	onExpire := func(ctx context.Context, final *session.State) {
		result, err := h.attemptService.Submit(ctx, userID, testID, false, true)
		if err != nil {
			wsLog.Error().Err(err).Msg("Auto-submit failed")
			conn.WriteError("time expired, submission failed")
			return
		}
		wsLog.Info().Msg("Attempt auto-submitted on expiry")
		conn.WriteTyped(ws.ResultResponse{Event: ws.EventExpired, Result: result})
	}

	runner := session.NewRunner(h.store, plan, state, onExpire)
	defer runner.Stop()

	go h.tickLoop(ctx, runner, plan, conn)

	wsLog.Info().Msg("Student connected to stream")
	conn.WriteTyped(ws.StateResponse{Event: ws.EventState, State: runner.Snapshot(), Phase: runner.Phase()})

	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(ctx, runner, conn, userID, testID, &msg)
		case ws.ActionAdvance:
			h.handleAdvance(ctx, runner, plan, conn)
		case ws.ActionRetreat:
			if err := runner.Retreat(ctx); err != nil {
				conn.WriteError(actionErrMsg(err))
				continue
			}
			s := runner.Snapshot()
			conn.WriteTyped(ws.NavResponse{Event: ws.EventNav, Section: s.CurrentSection, Question: s.CurrentQuestion})
		case ws.ActionReview:
			runner.Pause()
			conn.WriteTyped(ws.ReviewResponse{
				Event:    ws.EventReview,
				Sections: session.BuildReviewSummary(runner.Snapshot(), plan),
			})
		case ws.ActionResume:
			runner.Resume()
			conn.WriteTyped(ws.StateResponse{Event: ws.EventState, State: runner.Snapshot(), Phase: runner.Phase()})
		case ws.ActionSubmit:
			h.handleSubmit(ctx, runner, conn, wsLog, userID, testID, msg.Confirmed)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// tickLoop decrements the active section once per second and reports the
// countdown. It stops when the attempt expires or the connection goes away.
func (h *WSHandler) tickLoop(ctx context.Context, runner *session.Runner, plan *session.Plan, conn *ws.Conn) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := runner.HandleTick(ctx); err != nil {
				h.log.Error().Err(err).Msg("Tick persist failed")
				continue
			}
			if runner.Phase() == session.PhaseExpired {
				return
			}
			if runner.Phase() != session.PhaseRunning {
				continue
			}
			s := runner.Snapshot()
			conn.WriteTyped(ws.TickResponse{
				Event:     ws.EventTick,
				SectionID: s.ActiveSectionID(plan.Test),
				Remaining: s.RemainingActive(plan.Test),
			})
		}
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, runner *session.Runner, conn *ws.Conn, userID int, testID uuid.UUID, msg *ws.Request) {
	if msg.QID == "" || msg.Answer == nil {
		conn.WriteError("q_id and answer are required")
		return
	}

	questionID, err := uuid.Parse(msg.QID)
	if err != nil {
		conn.WriteError("invalid q_id format")
		return
	}

	if err := runner.Answer(ctx, questionID, *msg.Answer); err != nil {
		conn.WriteError(actionErrMsg(err))
		return
	}

	h.attemptService.BufferAnswer(ctx, userID, testID, questionID, *msg.Answer)
	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

func (h *WSHandler) handleAdvance(ctx context.Context, runner *session.Runner, plan *session.Plan, conn *ws.Conn) {
	completed, err := runner.Advance(ctx)
	if err != nil {
		conn.WriteError(actionErrMsg(err))
		return
	}

	s := runner.Snapshot()
	conn.WriteTyped(ws.NavResponse{
		Event:     ws.EventNav,
		Section:   s.CurrentSection,
		Question:  s.CurrentQuestion,
		Completed: completed,
	})

	// The end of the last section rolls straight into review.
	if completed {
		runner.Pause()
		conn.WriteTyped(ws.ReviewResponse{
			Event:    ws.EventReview,
			Sections: session.BuildReviewSummary(s, plan),
		})
	}
}

func (h *WSHandler) handleSubmit(ctx context.Context, runner *session.Runner, conn *ws.Conn, wsLog zerolog.Logger, userID int, testID uuid.UUID, confirmed bool) {
	result, err := h.attemptService.Submit(ctx, userID, testID, confirmed, false)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmitNotConfirmed):
			conn.WriteError("submission requires confirmation")
		case errors.Is(err, service.ErrSubmitFailed):
			conn.WriteError("submission failed, please retry")
		default:
			wsLog.Error().Err(err).Msg("Submit error")
			conn.WriteError("submission failed")
		}
		return
	}

	// Trailing ticks become no-ops from here on.
	runner.Finish()

	wsLog.Info().Msg("Attempt submitted")
	conn.WriteTyped(ws.ResultResponse{Event: ws.EventSubmitted, Result: result})
}

func actionErrMsg(err error) string {
	if errors.Is(err, session.ErrAttemptOver) {
		return "attempt is already over"
	}
	return "action failed"
}
