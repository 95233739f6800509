package match

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/game"
	"github.com/mcdev12/courtside/go/internal/protocol"
)

const maxPlayers = len(game.Rotation)

// Config holds the fixed match rules.
type Config struct {
	CountdownSeconds int
	PostGameDelay    time.Duration
	TargetScore      int
}

func DefaultConfig() Config {
	return Config{
		CountdownSeconds: 30,
		PostGameDelay:    5 * time.Second,
		TargetScore:      game.TargetScore,
	}
}

// Player is a connection occupying a slot.
type Player struct {
	ConnID   string
	Nickname string
	Ready    bool
}

// Manager is the session state machine. It owns the phase, the simulation,
// the active roster, the queue and the connection index. It is not safe for
// concurrent use: every method must run on the loop goroutine.
type Manager struct {
	cfg   Config
	sched Scheduler
	out   Broadcaster
	feed  Feed
	clock clockwork.Clock
	rng   *rand.Rand

	phase  Phase
	sim    *game.State
	active map[game.Slot]*Player
	queue  *Queue
	index  *Index
	timer  *LobbyTimer

	resetTask Task
	matchID   string
}

type Option func(*Manager)

func WithFeed(f Feed) Option {
	return func(m *Manager) { m.feed = f }
}

func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

func NewManager(cfg Config, sched Scheduler, out Broadcaster, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		sched:  sched,
		out:    out,
		feed:   nopFeed{},
		clock:  clockwork.NewRealClock(),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		phase:  PhaseWaiting,
		sim:    game.NewState(),
		active: make(map[game.Slot]*Player, maxPlayers),
		queue:  NewQueue(),
		index:  NewIndex(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.timer = NewLobbyTimer(sched, out, cfg.CountdownSeconds, m.countdownExpired)
	return m
}

// OnConnect tells a new connection which phase the session is in and, if a
// countdown is running, how long is left.
func (m *Manager) OnConnect(connID string) {
	m.out.SendTo(connID, protocol.EventStateChange, protocol.StateChangePayload{State: string(m.phase)})
	if m.timer.Running() && m.timer.Countdown() > 0 {
		m.out.SendTo(connID, protocol.EventLobbyTimer, protocol.LobbyTimerPayload{Countdown: m.timer.Countdown()})
	}
}

// OnJoin queues a connection. Connections already queued or seated are ignored.
func (m *Manager) OnJoin(connID, nickname string) {
	if _, known := m.index.Lookup(connID); known || !m.phase.allows(intentJoin) {
		log.Debug().Str("conn_id", connID).Msg("dropping duplicate join")
		return
	}
	m.queue.Enqueue(Entry{ConnID: connID, Nickname: nickname})
	m.index.Queue(connID)

	log.Info().
		Str("conn_id", connID).
		Str("nickname", nickname).
		Int("queue_len", m.queue.Len()).
		Msg("player queued")

	m.sendQueuePositions()
	m.fillFromQueue(false)
}

// OnToggleReady flips the ready flag of a seated player.
func (m *Manager) OnToggleReady(connID string) {
	slot, ok := m.index.SlotOf(connID)
	if !ok || !m.phase.allows(intentToggleReady) {
		log.Debug().Str("conn_id", connID).Str("phase", string(m.phase)).Msg("dropping ready toggle")
		return
	}
	p := m.active[slot]
	p.Ready = !p.Ready

	m.broadcastLobby()
	m.checkAllReady()
}

// OnMove sets the paddle offset of a seated player while a match is running.
func (m *Manager) OnMove(connID string, y float64) {
	slot, ok := m.index.SlotOf(connID)
	if !ok || !m.phase.allows(intentMove) {
		return
	}
	m.sim.Paddles[slot].MoveTo(y)
}

// OnDisconnect forgets a connection. Losing a seated player outside WAITING
// interrupts the match and sends the remaining players to the front of the queue.
func (m *Manager) OnDisconnect(connID string) {
	loc, ok := m.index.Lookup(connID)
	if !ok {
		return
	}
	m.index.Remove(connID)

	if loc.Queued() {
		if m.queue.Remove(connID) {
			log.Info().Str("conn_id", connID).Int("queue_len", m.queue.Len()).Msg("queued player left")
			m.sendQueuePositions()
		}
		return
	}

	delete(m.active, loc.Slot)
	log.Info().Str("conn_id", connID).Str("slot", string(loc.Slot)).Str("phase", string(m.phase)).Msg("seated player left")

	if m.phase == PhaseWaiting {
		m.fillFromQueue(true)
		return
	}
	m.interrupt()
}

// Tick advances the simulation by one step. It does nothing outside PLAYING.
func (m *Manager) Tick() {
	if m.phase != PhasePlaying {
		return
	}
	occupied := m.occupiedSlots()
	res := game.Step(m.sim, occupied, m.rng)
	if res.Scored {
		m.out.Broadcast(protocol.EventScore, m.sim.Score)
		if winner, won := m.sim.Score.Winner(m.cfg.TargetScore); won {
			m.endMatch(winner)
		}
	}
	m.out.Broadcast(protocol.EventGameState, protocol.GameStatePayload{
		Ball:        m.sim.Ball,
		Paddles:     m.sim.PaddleValues(),
		Score:       m.sim.Score,
		ActiveSlots: occupied,
	})
}

// TimerTick advances the lobby countdown by one second.
func (m *Manager) TimerTick() {
	m.timer.Tick()
}

// fillFromQueue seats queued connections in free slots while the session is
// WAITING. rosterChanged reports a vacancy the caller already made.
func (m *Manager) fillFromQueue(rosterChanged bool) {
	if m.phase != PhaseWaiting {
		return
	}
	seated := 0
	for m.queue.Len() > 0 && len(m.active) < maxPlayers {
		slot, ok := m.freeSlot()
		if !ok {
			break
		}
		e, _ := m.queue.Pop()
		m.seat(e, slot)
		seated++
	}
	if seated > 0 {
		m.sendQueuePositions()
	}
	if seated > 0 || rosterChanged {
		m.broadcastLobby()
	}
	m.checkRoster()
}

func (m *Manager) seat(e Entry, slot game.Slot) {
	m.active[slot] = &Player{ConnID: e.ConnID, Nickname: e.Nickname}
	m.index.Seat(e.ConnID, slot)
	m.out.SendTo(e.ConnID, protocol.EventPlayerAssigned, protocol.PlayerAssignedPayload{
		Slot:   slot,
		Paddle: *m.sim.Paddles[slot],
	})
	log.Info().Str("conn_id", e.ConnID).Str("nickname", e.Nickname).Str("slot", string(slot)).Msg("player seated")
}

func (m *Manager) freeSlot() (game.Slot, bool) {
	for _, slot := range game.Rotation {
		if _, taken := m.active[slot]; !taken {
			return slot, true
		}
	}
	return "", false
}

// checkRoster runs after every occupancy change in WAITING.
func (m *Manager) checkRoster() {
	n := len(m.active)
	switch {
	case n >= maxPlayers:
		m.timer.Stop()
		m.enterLobby(triggerRosterFull)
	case n >= 2 && !m.timer.Running() && m.phase == PhaseWaiting:
		m.timer.Start()
	case n < 2 && m.timer.Running():
		m.timer.Stop()
	}
}

func (m *Manager) countdownExpired() {
	if len(m.active) < 2 {
		return
	}
	m.enterLobby(triggerCountdownExpired)
}

func (m *Manager) enterLobby(t trigger) {
	if !m.transition(t) {
		return
	}
	m.broadcastLobby()
	m.checkAllReady()
}

// checkAllReady starts the match once every seated player in the lobby is ready.
func (m *Manager) checkAllReady() {
	if m.phase != PhaseLobby || len(m.active) < 2 {
		return
	}
	for _, p := range m.active {
		if !p.Ready {
			return
		}
	}
	m.timer.Stop()
	m.startMatch()
}

func (m *Manager) startMatch() {
	if !m.transition(triggerAllReady) {
		return
	}
	m.resetRound()
	m.out.Broadcast(protocol.EventGameStart, protocol.GameStartPayload{})

	m.matchID = uuid.New().String()
	m.publish(MatchStarted, "")
	log.Info().Str("match_id", m.matchID).Int("players", len(m.active)).Msg("match started")
}

func (m *Manager) endMatch(winner game.Team) {
	if !m.transition(triggerTargetReached) {
		return
	}
	m.out.Broadcast(protocol.EventGameOver, protocol.GameOverPayload{Winner: winner, Score: m.sim.Score})
	m.publish(MatchCompleted, winner)

	log.Info().
		Str("match_id", m.matchID).
		Str("winner", string(winner)).
		Int("left", m.sim.Score.Left).
		Int("right", m.sim.Score.Right).
		Msg("match over")

	m.resetTask = m.sched.After(m.cfg.PostGameDelay, m.finishRound)
}

// finishRound sends every active player to the back of the queue and opens
// the next round.
func (m *Manager) finishRound() {
	m.resetTask = nil
	if m.phase != PhaseGameOver {
		return
	}
	for _, slot := range game.Rotation {
		p, ok := m.active[slot]
		if !ok {
			continue
		}
		m.queue.Enqueue(Entry{ConnID: p.ConnID, Nickname: p.Nickname})
		m.index.Queue(p.ConnID)
	}
	clear(m.active)

	m.transition(triggerResetElapsed)
	m.resetRound()
	m.sendQueuePositions()
	m.fillFromQueue(true)
}

// interrupt forces the session back to WAITING after a seated player left.
// Remaining players go to the front of the queue one at a time, so they end
// up ahead of everyone else in reverse slot order.
func (m *Manager) interrupt() {
	m.timer.Stop()
	if m.resetTask != nil {
		m.resetTask.Stop()
		m.resetTask = nil
	}
	if m.phase == PhasePlaying {
		m.publish(MatchAborted, "")
	}
	if !m.transition(triggerSlotVacated) {
		return
	}

	for _, slot := range game.Rotation {
		p, ok := m.active[slot]
		if !ok {
			continue
		}
		m.queue.PushFront(Entry{ConnID: p.ConnID, Nickname: p.Nickname})
		m.index.Queue(p.ConnID)
	}
	clear(m.active)

	m.resetRound()
	m.sendQueuePositions()
	m.fillFromQueue(true)
}

// resetRound zeroes the score and serves a fresh ball.
func (m *Manager) resetRound() {
	m.sim.Score = game.Score{}
	m.sim.Ball.Reset(game.TeamLeft, m.rng)
	m.out.Broadcast(protocol.EventScore, m.sim.Score)
}

func (m *Manager) transition(t trigger) bool {
	to, ok := transitions[edge{from: m.phase, on: t}]
	if !ok {
		log.Debug().Str("phase", string(m.phase)).Str("trigger", string(t)).Msg("ignoring illegal transition")
		return false
	}
	from := m.phase
	m.phase = to
	m.out.Broadcast(protocol.EventStateChange, protocol.StateChangePayload{State: string(to)})

	log.Info().
		Str("from", string(from)).
		Str("to", string(to)).
		Str("trigger", string(t)).
		Msg("phase transition")
	return true
}

func (m *Manager) sendQueuePositions() {
	for _, pos := range m.queue.Positions() {
		m.out.SendTo(pos.ConnID, protocol.EventQueueUpdate, protocol.QueueUpdatePayload{
			Position: pos.Position,
			Total:    pos.Total,
		})
	}
}

func (m *Manager) broadcastLobby() {
	roster := m.roster()
	ready := 0
	for _, p := range roster {
		if p.Ready {
			ready++
		}
	}
	m.out.Broadcast(protocol.EventLobbyUpdate, protocol.LobbyUpdatePayload{
		ReadyCount:   ready,
		TotalPlayers: len(roster),
		Players:      roster,
	})
}

// roster lists the seated players in slot-iteration order.
func (m *Manager) roster() []protocol.LobbyPlayer {
	out := make([]protocol.LobbyPlayer, 0, len(m.active))
	for _, slot := range game.Rotation {
		p, ok := m.active[slot]
		if !ok {
			continue
		}
		out = append(out, protocol.LobbyPlayer{
			Slot:     slot,
			Nickname: p.Nickname,
			Ready:    p.Ready,
			Team:     slot.Team(),
		})
	}
	return out
}

func (m *Manager) occupiedSlots() []game.Slot {
	out := make([]game.Slot, 0, len(m.active))
	for _, slot := range game.Rotation {
		if _, ok := m.active[slot]; ok {
			out = append(out, slot)
		}
	}
	return out
}

func (m *Manager) publish(kind LifecycleKind, winner game.Team) {
	m.feed.Publish(LifecycleEvent{
		Kind:    kind,
		MatchID: m.matchID,
		At:      m.clock.Now().UTC(),
		Roster:  m.roster(),
		Score:   m.sim.Score,
		Winner:  winner,
	})
}

// Phase returns the current match phase.
func (m *Manager) Phase() Phase {
	return m.phase
}

// ActivePlayers returns a copy of the seated roster keyed by slot.
func (m *Manager) ActivePlayers() map[game.Slot]Player {
	out := make(map[game.Slot]Player, len(m.active))
	for slot, p := range m.active {
		out[slot] = *p
	}
	return out
}

// Queued returns the waiting connections in order.
func (m *Manager) Queued() []Entry {
	return m.queue.Entries()
}

// Locate reports where a connection currently is.
func (m *Manager) Locate(connID string) (Location, bool) {
	return m.index.Lookup(connID)
}

func (m *Manager) Score() game.Score {
	return m.sim.Score
}

func (m *Manager) Ball() game.Ball {
	return m.sim.Ball
}

// Paddles returns a copy of all four paddles.
func (m *Manager) Paddles() map[game.Slot]game.Paddle {
	return m.sim.PaddleValues()
}

func (m *Manager) Countdown() int {
	return m.timer.Countdown()
}

func (m *Manager) TimerRunning() bool {
	return m.timer.Running()
}
