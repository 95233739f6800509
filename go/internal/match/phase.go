package match

// Phase is the match-phase state of the session.
type Phase string

const (
	PhaseWaiting  Phase = "WAITING"
	PhaseLobby    Phase = "LOBBY"
	PhasePlaying  Phase = "PLAYING"
	PhaseGameOver Phase = "GAME_OVER"
)

// trigger is an event that may move the session to another phase.
type trigger string

const (
	triggerRosterFull       trigger = "roster_full"
	triggerCountdownExpired trigger = "countdown_expired"
	triggerAllReady         trigger = "all_ready"
	triggerTargetReached    trigger = "target_reached"
	triggerResetElapsed     trigger = "reset_elapsed"
	triggerSlotVacated      trigger = "slot_vacated"
)

type edge struct {
	from Phase
	on   trigger
}

// transitions is the complete phase table. Pairs not listed are illegal and
// leave the phase untouched.
var transitions = map[edge]Phase{
	{PhaseWaiting, triggerRosterFull}:       PhaseLobby,
	{PhaseWaiting, triggerCountdownExpired}: PhaseLobby,
	{PhaseLobby, triggerAllReady}:           PhasePlaying,
	{PhasePlaying, triggerTargetReached}:    PhaseGameOver,
	{PhaseGameOver, triggerResetElapsed}:    PhaseWaiting,
	{PhaseLobby, triggerSlotVacated}:        PhaseWaiting,
	{PhasePlaying, triggerSlotVacated}:      PhaseWaiting,
	{PhaseGameOver, triggerSlotVacated}:     PhaseWaiting,
}

// intent is a client request that only applies in some phases.
type intent string

const (
	intentJoin        intent = "join"
	intentToggleReady intent = "toggle_ready"
	intentMove        intent = "move"
)

var allowedIntents = map[Phase]map[intent]bool{
	PhaseWaiting:  {intentJoin: true, intentToggleReady: true},
	PhaseLobby:    {intentJoin: true, intentToggleReady: true},
	PhasePlaying:  {intentJoin: true, intentMove: true},
	PhaseGameOver: {intentJoin: true},
}

func (p Phase) allows(i intent) bool {
	return allowedIntents[p][i]
}
