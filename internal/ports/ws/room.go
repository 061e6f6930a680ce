package ws

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"chessarena/internal/app"
	"chessarena/internal/config"
	"chessarena/internal/domain"
	"chessarena/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ErrRoomClosed is returned when joining a room that has stopped running.
var ErrRoomClosed = errors.New("room closed")

// Conn is the room's view of a connected client.
type Conn interface {
	Send([]byte) error
	Close() error
}

type joinCmd struct {
	userID string
	conn   Conn
	reply  chan error
}

type intentCmd struct {
	userID string
	op     int64
	data   []byte
}

type leaveCmd struct {
	userID string
	conn   Conn
}

// Room serializes every intent for one arena through a single goroutine, interleaved
// with the fixed-rate clock.
type Room struct {
	inbox  chan any
	match  *app.Match
	codec  protocol.Codec
	logger runtime.Logger
	tick   time.Duration
	done   chan struct{}

	clients map[string]Conn
}

func NewRoom(cfg *config.GameConfig, codec protocol.Codec, logger runtime.Logger, rng *rand.Rand) *Room {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Room{
		inbox:   make(chan any, 256),
		match:   app.NewMatch(cfg, rng),
		codec:   codec,
		logger:  logger,
		tick:    time.Second / time.Duration(cfg.TickRate),
		done:    make(chan struct{}),
		clients: make(map[string]Conn),
	}
}

// Run processes commands and clock ticks until ctx is cancelled.
func (r *Room) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			for _, c := range r.clients {
				_ = c.Close()
			}
			return
		case cmd := <-r.inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.send(r.match.Tick(r.tick.Seconds()))
		}
	}
}

// Join attaches conn to userID and registers the player, or resends its state when it is
// already in the arena. A previous connection for the same user is closed.
func (r *Room) Join(ctx context.Context, userID string, conn Conn) error {
	reply := make(chan error, 1)
	select {
	case r.inbox <- joinCmd{userID: userID, conn: conn, reply: reply}:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues one encoded client intent. It is dropped once the room has stopped.
func (r *Room) Submit(userID string, op int64, data []byte) {
	r.enqueue(intentCmd{userID: userID, op: op, data: data})
}

// Leave detaches and closes conn. It is ignored when the user has since reconnected on
// another conn.
func (r *Room) Leave(userID string, conn Conn) {
	r.enqueue(leaveCmd{userID: userID, conn: conn})
}

func (r *Room) enqueue(cmd any) {
	select {
	case r.inbox <- cmd:
	case <-r.done:
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- r.join(c.userID, c.conn)
	case intentCmd:
		if _, ok := r.clients[c.userID]; !ok {
			return
		}
		events, err := protocol.Dispatch(r.match, r.codec, c.userID, c.op, c.data)
		if err != nil {
			r.logIntentError(c.userID, c.op, err)
		}
		r.send(events)
	case leaveCmd:
		if current, ok := r.clients[c.userID]; !ok || current != c.conn {
			return
		}
		delete(r.clients, c.userID)
		_ = c.conn.Close()
		events, err := r.match.Disconnect(c.userID)
		if err != nil {
			r.logger.Warn("Room: leave %s: %v", c.userID, err)
			return
		}
		r.logger.Info("Room: %s left (%d players)", c.userID, r.match.PlayerCount())
		r.send(events)
	}
}

func (r *Room) join(userID string, conn Conn) error {
	if old, ok := r.clients[userID]; ok && old != conn {
		_ = old.Close()
	}

	if view, live := r.match.Piece(userID); live {
		r.clients[userID] = conn
		r.send([]app.Event{{
			Kind:       app.EventSnapshot,
			Payload:    app.WelcomePayload{Self: view, Snapshot: r.match.Snapshot()},
			Recipients: []string{userID},
		}})
		return nil
	}

	_, events, err := r.match.Register(userID)
	if err != nil {
		delete(r.clients, userID)
		return err
	}
	r.clients[userID] = conn
	r.logger.Info("Room: %s joined (%d players)", userID, r.match.PlayerCount())
	r.send(events)
	return nil
}

func (r *Room) send(events []app.Event) {
	for _, ev := range events {
		out, ok := protocol.FromEvent(ev)
		if !ok {
			r.logger.Warn("Room: unknown event kind %v", ev.Kind)
			continue
		}
		data, err := r.codec.EncodeEnvelope(out.OpCode, out.Payload)
		if err != nil {
			r.logger.Error("Room: failed to encode %s: %v", protocol.OpName(out.OpCode), err)
			continue
		}

		if len(out.Recipients) == 0 {
			for id, c := range r.clients {
				r.deliver(id, c, data)
			}
			continue
		}
		for _, id := range out.Recipients {
			if c, ok := r.clients[id]; ok {
				r.deliver(id, c, data)
			}
		}
	}
}

func (r *Room) deliver(userID string, c Conn, data []byte) {
	if err := c.Send(data); err != nil {
		r.logger.Warn("Room: dropping %s: %v", userID, err)
		_ = c.Close()
	}
}

func (r *Room) logIntentError(userID string, op int64, err error) {
	var rej *domain.MoveRejection
	switch {
	case errors.As(err, &rej), errors.Is(err, app.ErrOnCooldown):
		r.logger.Debug("Room: %s rejected for %s: %v", protocol.OpName(op), userID, err)
	default:
		r.logger.Warn("Room: %s from %s failed: %v", protocol.OpName(op), userID, err)
	}
}
