// Package wshub owns the WebSocket edge: one Client per connection, a
// registry keyed by player ID, and the event dispatch into the game
// coordinator. It implements the coordinator's Notifier so room broadcasts
// fan out here.
package wshub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"timingchallenge/internal/events"
	"timingchallenge/internal/game"
	"timingchallenge/internal/players"
	"timingchallenge/internal/rooms"
	"timingchallenge/internal/utility"
)

type Gateway struct {
	mu      sync.RWMutex
	clients map[string]*Client

	coord *game.Coordinator
}

func NewGateway() *Gateway {
	return &Gateway{clients: make(map[string]*Client)}
}

// Bind attaches the coordinator. The gateway is constructed first because
// the coordinator needs it as its Notifier.
func (g *Gateway) Bind(coord *game.Coordinator) {
	g.coord = coord
}

// Broadcast marshals once and fans out to every listed player.
// Non-blocking: a slow client's full buffer drops the message.
func (g *Gateway) Broadcast(playerIDs []string, out events.Outbound) {
	data, err := json.Marshal(out)
	if err != nil {
		log.Error().Err(err).Str("event", out.Type).Msg("marshal failed")
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range playerIDs {
		c, ok := g.clients[id]
		if !ok {
			continue
		}
		select {
		case c.send <- data:
		default:
			log.Warn().Str("player", id).Str("event", out.Type).Msg("send buffer full, dropping")
		}
	}
}

// Send delivers a private event to one player.
func (g *Gateway) Send(playerID string, out events.Outbound) {
	g.Broadcast([]string{playerID}, out)
}

// HandleWS upgrades the connection, creates the player identity, and runs
// the read loop until the connection dies.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	conn.SetReadLimit(32 << 10)

	id := uuid.New().String()
	p := players.New(id, "Player_"+id[:5], utility.RandomColorHex())
	client := newClient(p, conn)
	g.register(client)

	log.Info().Str("player", p.ID).Str("username", p.Username).Msg("connection opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)

	g.Send(p.ID, events.Outbound{
		Type: events.TypeConnected,
		Data: events.ConnectedPayload{PlayerID: p.ID, Username: p.Username, Color: p.Color},
	})

	defer func() {
		g.unregister(p.ID)
		g.coord.Disconnect(p)
		conn.Close(websocket.StatusNormalClosure, "")
		log.Info().Str("player", p.ID).Msg("connection closed")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var in events.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			// Malformed envelope: dropped, no state change.
			log.Debug().Str("player", p.ID).Err(err).Msg("malformed event dropped")
			continue
		}
		g.dispatch(client, in)
	}
}

func (g *Gateway) register(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c.Player.ID] = c
}

func (g *Gateway) unregister(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[playerID]; ok {
		close(c.send)
		delete(g.clients, playerID)
	}
}

func (g *Gateway) dispatch(c *Client, in events.Inbound) {
	p := c.Player
	switch in.Type {
	case events.TypeJoinQuickMatch:
		var payload events.JoinQuickMatchPayload
		if len(in.Data) > 0 && json.Unmarshal(in.Data, &payload) != nil {
			log.Debug().Str("player", p.ID).Msg("malformed quick match payload dropped")
			return
		}
		if err := g.coord.QuickMatch(p, payload.Username); err != nil {
			g.sendError(p.ID, err)
		}

	case events.TypeCreateRoom:
		if err := g.coord.CreateRoom(p); err != nil {
			g.sendError(p.ID, err)
		}

	case events.TypeJoinRoom:
		var payload events.JoinRoomPayload
		if json.Unmarshal(in.Data, &payload) != nil || payload.RoomID == "" {
			log.Debug().Str("player", p.ID).Msg("malformed join payload dropped")
			return
		}
		if err := g.coord.JoinRoom(p, payload.RoomID); err != nil {
			g.sendError(p.ID, err)
		}

	case events.TypeSetReady:
		g.coord.Ready(p)

	case events.TypeSubmit:
		var payload events.SubmitPayload
		if json.Unmarshal(in.Data, &payload) != nil || payload.ClientTimestampMs <= 0 {
			log.Debug().Str("player", p.ID).Msg("malformed submit payload dropped")
			return
		}
		g.coord.Submit(p, payload.ClientTimestampMs)

	default:
		log.Debug().Str("player", p.ID).Str("type", in.Type).Msg("unknown event type dropped")
	}
}

func (g *Gateway) sendError(playerID string, err error) {
	code := "internal"
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		code = "room_not_found"
	case errors.Is(err, rooms.ErrRoomFull):
		code = "room_full"
	case errors.Is(err, rooms.ErrGameInProgress):
		code = "game_in_progress"
	}
	g.Send(playerID, events.Outbound{
		Type: events.TypeError,
		Data: events.ErrorPayload{Code: code, Message: err.Error()},
	})
}
