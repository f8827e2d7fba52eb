package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"jeopardy-board/internal/app"
	"jeopardy-board/internal/game"
)

type WSHandler struct {
	service  *app.BoardService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.BoardService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loadRoundPayload struct {
	RoundID string `json:"roundId"`
}

type cellPayload struct {
	Category int `json:"category"`
	Index    int `json:"index"`
}

type playerPayload struct {
	PlayerID int    `json:"playerId"`
	Name     string `json:"name"`
	Delta    int    `json:"delta"`
}

type hostPayload struct {
	Action game.HostAction `json:"action"`
}

type countPayload struct {
	Count int `json:"count"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type buzzResult struct {
	PlayerID int  `json:"playerId"`
	Accepted bool `json:"accepted"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the board use cases.
// Every connected screen or controller receives the full state after each change.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	log := h.log.With().Str("session", sessionID).Logger()

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				// Unblock the reader.
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// Session closed; unblock the reader.
					_ = conn.Close()
					return
				}
				for _, msg := range updateMessages(update) {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					case <-writerDone:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(r.Context(), sessionID, inbound)
		if err != nil {
			log.Debug().Err(err).Str("type", inbound.Type).Msg("message rejected")
			if !enqueue(send, writerDone, outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
				break
			}
			continue
		}
		if reply != nil && !enqueue(send, writerDone, *reply) {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer. It reports false once the writer has stopped.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func updateMessages(update game.Update) []outboundMessage[any] {
	msgs := make([]outboundMessage[any], 0, len(update.Events)+1)
	for _, e := range update.Events {
		msgs = append(msgs, outboundMessage[any]{Type: "event", Payload: e})
	}
	if update.State != nil {
		msgs = append(msgs, outboundMessage[any]{Type: "state", Payload: update.State})
	}
	return msgs
}

func (h *WSHandler) dispatch(ctx context.Context, sessionID string, in inboundMessage) (*outboundMessage[any], error) {
	switch in.Type {
	case "load_round":
		var p loadRoundPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return nil, h.service.LoadRound(ctx, sessionID, p.RoundID)
	case "open_question":
		var p cellPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return nil, h.service.OpenQuestion(ctx, sessionID, game.Cell{Category: p.Category, Index: p.Index})
	case "reset_question":
		var p cellPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return nil, h.service.ResetQuestion(ctx, sessionID, game.Cell{Category: p.Category, Index: p.Index})
	case "buzz":
		var p playerPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		accepted, err := h.service.Buzz(ctx, sessionID, p.PlayerID)
		if err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "buzzResult", Payload: buzzResult{PlayerID: p.PlayerID, Accepted: accepted}}, nil
	case "host":
		var p hostPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return nil, h.service.HostAction(ctx, sessionID, p.Action)
	case "set_player_count":
		var p countPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return nil, h.service.SetPlayerCount(ctx, sessionID, p.Count)
	case "rename":
		var p playerPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return nil, h.service.Rename(ctx, sessionID, p.PlayerID, p.Name)
	case "adjust_score":
		var p playerPayload
		if err := decode(in, &p); err != nil {
			return nil, err
		}
		return nil, h.service.AdjustScore(ctx, sessionID, p.PlayerID, p.Delta)
	default:
		return nil, errUnsupported
	}
}
