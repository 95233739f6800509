package match

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/courtside/go/internal/game"
)

// ErrStopped is returned by queries made after the loop has exited.
var ErrStopped = errors.New("session loop stopped")

// Status is a point-in-time summary of the session.
type Status struct {
	Phase     Phase      `json:"phase"`
	Active    int        `json:"active_players"`
	Queued    int        `json:"queued_players"`
	Score     game.Score `json:"score"`
	Countdown int        `json:"countdown"`
}

// Service funnels every operation on the Manager through the Loop. It is safe
// for concurrent use.
type Service struct {
	loop    *Loop
	manager *Manager
}

func NewService(cfg Config, clock clockwork.Clock, out Broadcaster, opts ...Option) *Service {
	loop := NewLoop(clock, game.TickRate)
	opts = append([]Option{WithClock(clock)}, opts...)
	return &Service{
		loop:    loop,
		manager: NewManager(cfg, loop, out, opts...),
	}
}

// Run drives the session until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.loop.Run(ctx, s.manager.Tick)
}

func (s *Service) Connect(connID string) {
	s.loop.Submit(func() { s.manager.OnConnect(connID) })
}

func (s *Service) Join(connID, nickname string) {
	s.loop.Submit(func() { s.manager.OnJoin(connID, nickname) })
}

func (s *Service) ToggleReady(connID string) {
	s.loop.Submit(func() { s.manager.OnToggleReady(connID) })
}

func (s *Service) Move(connID string, y float64) {
	s.loop.Submit(func() { s.manager.OnMove(connID, y) })
}

func (s *Service) Disconnect(connID string) {
	s.loop.Submit(func() { s.manager.OnDisconnect(connID) })
}

// Status reads the session summary on the loop goroutine.
func (s *Service) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	ok := s.loop.Submit(func() {
		reply <- Status{
			Phase:     s.manager.Phase(),
			Active:    len(s.manager.active),
			Queued:    s.manager.queue.Len(),
			Score:     s.manager.Score(),
			Countdown: s.manager.Countdown(),
		}
	})
	if !ok {
		return Status{}, ErrStopped
	}
	select {
	case st := <-reply:
		return st, nil
	case <-s.loop.done:
		return Status{}, ErrStopped
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}
