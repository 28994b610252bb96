package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// WSHandler plays a game over a websocket: each inbound move is answered with a fresh
// snapshot of the game or an error.
type WSHandler struct {
	games    *app.GameService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(games *app.GameService, log *logger.Logger) *WSHandler {
	return &WSHandler{
		games: games,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Letter string `json:"letter"`
}

type helpPayload struct {
	HelpType string `json:"helpType"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type questionSnapshot struct {
	Level    int                `json:"level"`
	Text     string             `json:"text"`
	Variants map[string]string  `json:"variants"`
	Help     domain.HelpPayload `json:"help"`
}

type gameSnapshot struct {
	ID           string                `json:"id"`
	Status       domain.Status         `json:"status"`
	CurrentLevel int                   `json:"currentLevel"`
	Prize        int64                 `json:"prize"`
	HelpsUsed    domain.HelpSet        `json:"helpsUsed"`
	Deadline     time.Time             `json:"deadline"`
	Question     *questionSnapshot     `json:"question,omitempty"`
	Outcome      *domain.AnswerOutcome `json:"outcome,omitempty"`
}

func newGameSnapshot(game *domain.Game, outcome *domain.AnswerOutcome) gameSnapshot {
	snap := gameSnapshot{
		ID:           game.ID,
		Status:       game.Status(),
		CurrentLevel: game.CurrentLevel,
		Prize:        game.Prize,
		HelpsUsed:    game.HelpsUsed,
		Deadline:     game.CreatedAt.Add(domain.TimeLimit),
		Outcome:      outcome,
	}
	if gq := game.CurrentGameQuestion(); gq != nil && !game.Finished() {
		all := gq.Variants()
		visible := make(map[string]string, 4)
		for _, key := range gq.VisibleKeys() {
			visible[key] = all[key]
		}
		snap.Question = &questionSnapshot{Level: gq.Level(), Text: gq.Text(), Variants: visible, Help: gq.Help}
	}
	return snap
}

// ServeGame upgrades the owner's request for /ws/games/:id.
func (h *WSHandler) ServeGame(c *gin.Context) {
	user := currentUser(c)
	gameID := c.Param("id")
	game, err := h.games.Game(c.Request.Context(), user.ID, gameID)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, errorPayload{Message: err.Error()})
		return
	case errors.Is(err, domain.ErrGameNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorPayload{Message: err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorPayload{Message: "internal error"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithGame(gameID, user.ID).WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go h.writeLoop(ctx, conn, send, writerDone)

	send <- outboundMessage[any]{Type: "game", Payload: newGameSnapshot(game, nil)}

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		send <- h.handle(ctx, user.ID, gameID, inbound)
	}

	cancel()
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, userID, gameID string, inbound inboundMessage) outboundMessage[any] {
	var (
		game    *domain.Game
		outcome *domain.AnswerOutcome
		err     error
	)
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return wsError("invalid answer payload")
		}
		var result domain.AnswerOutcome
		game, result, err = h.games.Answer(ctx, userID, gameID, payload.Letter)
		outcome = &result
	case "help":
		var payload helpPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return wsError("invalid help payload")
		}
		game, err = h.games.UseHelp(ctx, userID, gameID, payload.HelpType)
	case "takeMoney":
		game, err = h.games.TakeMoney(ctx, userID, gameID)
	default:
		return wsError("unsupported message type")
	}
	if err != nil {
		return wsError(err.Error())
	}
	return outboundMessage[any]{Type: "game", Payload: newGameSnapshot(game, outcome)}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, send <-chan outboundMessage[any], done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Entry().WithError(err).Debug("ws write failed")
				// Keep draining so the reader never blocks on send.
				for range send {
				}
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				for range send {
				}
				return
			}
		case <-ctx.Done():
			for range send {
			}
			return
		}
	}
}

func wsError(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
