package arena

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"brawlpit/stats"
	"brawlpit/utils"
)

// Arena statuses. The only legal cycle is
// closed -> registration -> active -> ended, with close() as the
// escape hatch from anywhere.
const (
	StatusClosed       = "closed"
	StatusRegistration = "registration"
	StatusActive       = "active"
	StatusEnded        = "ended"
)

// Config tunes arena policy.
type Config struct {
	// MinRank gates registration; empty disables the gate.
	MinRank string
	// AttackerWinsFinalTie preserves the historical tie-break: when the
	// last two participants kill each other in one exchange, the
	// attacker takes 1st. With it off they share the rank instead.
	AttackerWinsFinalTie bool
}

// Arena is the process-wide elimination match. There is exactly one,
// never sharded. Every mutating command locks mu for its full
// read-decide-mutate span, so commands from concurrent players are
// strictly serialized; notifications fire after the lock is released
// and can never roll anything back.
type Arena struct {
	mu sync.Mutex

	status        string
	registrations map[int]*Participant
	participants  map[int]*Participant
	eliminations  []int
	startedAt     time.Time
	endedAt       time.Time
	winnerID      int
	rewardsPaid   bool

	cfg       Config
	directory Directory
	bank      Bank
	notifier  Notifier
	recorder  MatchRecorder
	rng       *rand.Rand
}

// ParticipantResult is one line of a finished match's record.
type ParticipantResult struct {
	AccountID int
	Username  string
	Placement int
	Kills     int
}

// MatchResult summarizes a finished match for the history log.
type MatchResult struct {
	WinnerID         int
	ParticipantCount int
	StartedAt        time.Time
	EndedAt          time.Time
	Results          []ParticipantResult
}

// MatchRecorder persists finished matches. Best-effort; a recorder
// error is logged, not surfaced.
type MatchRecorder interface {
	RecordMatch(result MatchResult) error
}

// New builds a closed arena. Directory and bank are required; notifier
// and recorder are optional and attached via the setters.
func New(directory Directory, bank Bank, cfg Config) *Arena {
	return &Arena{
		status:        StatusClosed,
		registrations: make(map[int]*Participant),
		participants:  make(map[int]*Participant),
		cfg:           cfg,
		directory:     directory,
		bank:          bank,
		rng:           utils.NewSeededRNG(time.Now().UnixNano()),
	}
}

// SetNotifier attaches the event fan-out.
func (a *Arena) SetNotifier(n Notifier) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notifier = n
}

// SetRecorder attaches the match-history sink.
func (a *Arena) SetRecorder(r MatchRecorder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorder = r
}

// queue defers a notification until after the critical section. A nil
// notifier drops the event.
func (a *Arena) queue(fire *[]func(), f func(n Notifier)) {
	n := a.notifier
	if n == nil {
		return
	}
	*fire = append(*fire, func() { f(n) })
}

func publish(fire []func()) {
	for _, f := range fire {
		f()
	}
}

// Open moves the arena into the registration phase, discarding all
// prior state. Only legal from closed or ended.
func (a *Arena) Open() error {
	fire, err := a.openLocked()
	publish(fire)
	return err
}

func (a *Arena) openLocked() ([]func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusClosed && a.status != StatusEnded {
		return nil, fmt.Errorf("%w: cannot open from %s", ErrState, a.status)
	}

	a.reset()
	a.status = StatusRegistration
	log.Printf("🏟️  Arena open for registration")

	var fire []func()
	a.queue(&fire, func(n Notifier) { n.RegistrationCount(0) })
	return fire, nil
}

// reset clears every piece of match state. Caller holds the lock.
func (a *Arena) reset() {
	a.registrations = make(map[int]*Participant)
	a.participants = make(map[int]*Participant)
	a.eliminations = nil
	a.startedAt = time.Time{}
	a.endedAt = time.Time{}
	a.winnerID = 0
	a.rewardsPaid = false
}

// Close forces the arena back to closed from any status. An unresolved
// match is discarded outright: no rewards, no refunds, no history row.
func (a *Arena) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.reset()
	a.status = StatusClosed
	log.Printf("Arena closed, state discarded")
}

// Register snapshots an account into the registration list. The stat
// block and max HP freeze here; later stat changes don't follow the
// player into the match.
func (a *Arena) Register(accountID int) error {
	fire, err := a.registerLocked(accountID)
	publish(fire)
	return err
}

func (a *Arena) registerLocked(accountID int) ([]func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusRegistration {
		return nil, fmt.Errorf("%w: registration is not open", ErrState)
	}
	if _, dup := a.registrations[accountID]; dup {
		return nil, fmt.Errorf("%w: account %d already registered", ErrPrecondition, accountID)
	}

	acct, err := a.directory.ArenaAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: account %d: %v", ErrNotFound, accountID, err)
	}
	if !stats.RankAtLeast(acct.Rank, a.cfg.MinRank) {
		return nil, fmt.Errorf("%w: rank %s is below the %s gate", ErrPrecondition, acct.Rank, a.cfg.MinRank)
	}

	maxHP := stats.MaxHP(acct.Stats, stats.RankIndex(acct.Rank), acct.Race)
	a.registrations[accountID] = &Participant{
		AccountID: acct.ID,
		Username:  acct.Username,
		Race:      acct.Race,
		Stats:     acct.Stats,
		HP:        maxHP,
		MaxHP:     maxHP,
	}

	count := len(a.registrations)
	log.Printf("%s registered for the arena (%d total)", acct.Username, count)

	var fire []func()
	a.queue(&fire, func(n Notifier) { n.RegistrationCount(count) })
	return fire, nil
}

// Unregister removes a registration during the registration phase.
func (a *Arena) Unregister(accountID int) error {
	fire, err := a.unregisterLocked(accountID)
	publish(fire)
	return err
}

func (a *Arena) unregisterLocked(accountID int) ([]func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusRegistration {
		return nil, fmt.Errorf("%w: registration is not open", ErrState)
	}
	if _, ok := a.registrations[accountID]; !ok {
		return nil, fmt.Errorf("%w: account %d is not registered", ErrNotFound, accountID)
	}

	delete(a.registrations, accountID)

	count := len(a.registrations)
	var fire []func()
	a.queue(&fire, func(n Notifier) { n.RegistrationCount(count) })
	return fire, nil
}

// Start freezes registrations into participants and begins the match.
// Requires at least two registrants.
func (a *Arena) Start() error {
	fire, err := a.startLocked()
	publish(fire)
	return err
}

func (a *Arena) startLocked() ([]func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusRegistration {
		return nil, fmt.Errorf("%w: cannot start from %s", ErrState, a.status)
	}
	if len(a.registrations) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 registrants, have %d", ErrPrecondition, len(a.registrations))
	}

	a.participants = make(map[int]*Participant, len(a.registrations))
	for id, p := range a.registrations {
		a.participants[id] = p.clone()
	}
	a.registrations = make(map[int]*Participant)
	a.status = StatusActive
	a.startedAt = time.Now()

	count := len(a.participants)
	log.Printf("🥊 Arena match started with %d participants", count)

	var fire []func()
	a.queue(&fire, func(n Notifier) { n.MatchStarted(count) })
	return fire, nil
}

// AttackResult is what the attacking player gets back from one attack.
type AttackResult struct {
	Damage             int  `json:"damage"`
	CounterDamage      int  `json:"counter_damage"`
	Crit               bool `json:"crit"`
	TargetEliminated   bool `json:"target_eliminated"`
	AttackerEliminated bool `json:"attacker_eliminated"`
	AliveCount         int  `json:"alive_count"`
}

// Attack resolves one exchange between two living participants. The
// whole command is atomic under the arena lock: alive-count read,
// combat roll, HP mutation, placement bookkeeping, match-end detection
// and reward payout all commit before the lock drops. Only then do
// notifications go out.
func (a *Arena) Attack(attackerID, targetID int) (AttackResult, error) {
	res, fire, err := a.attackLocked(attackerID, targetID)
	publish(fire)
	return res, err
}

func (a *Arena) attackLocked(attackerID, targetID int) (AttackResult, []func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var res AttackResult

	if attackerID == targetID {
		return res, nil, fmt.Errorf("%w: cannot attack yourself", ErrValidation)
	}
	if a.status != StatusActive {
		return res, nil, fmt.Errorf("%w: no active match", ErrState)
	}

	attacker, ok := a.participants[attackerID]
	if !ok {
		return res, nil, fmt.Errorf("%w: attacker %d is not in this match", ErrNotFound, attackerID)
	}
	target, ok := a.participants[targetID]
	if !ok {
		return res, nil, fmt.Errorf("%w: target %d is not in this match", ErrNotFound, targetID)
	}
	if attacker.Eliminated {
		return res, nil, fmt.Errorf("%w: attacker %s is already eliminated", ErrPrecondition, attacker.Username)
	}
	if target.Eliminated {
		return res, nil, fmt.Errorf("%w: target %s is already eliminated", ErrPrecondition, target.Username)
	}

	// The pre-attack alive count doubles as the dying participant's
	// placement, so it must be read under the same lock as the
	// mutation that follows.
	aliveBefore := a.aliveCount()
	now := time.Now()

	ex := ResolveExchange(attacker.Stats, target.Stats, a.rng)

	target.HP -= ex.Damage
	if target.HP < 0 {
		target.HP = 0
	}
	attacker.HP -= ex.CounterDamage
	if attacker.HP < 0 {
		attacker.HP = 0
	}

	targetDied := target.HP == 0
	attackerDied := attacker.HP == 0

	var fire []func()

	switch {
	case targetDied && attackerDied:
		// Mutual elimination: one exchange, both kills count.
		attacker.Kills++
		target.Kills++
		if aliveBefore == 2 && a.cfg.AttackerWinsFinalTie {
			// Historical tie-break, not fairness: the attacker takes
			// the match when the last two fall together.
			a.eliminate(target, 2, now, &fire, attacker.Username, aliveBefore-2)
			a.eliminate(attacker, 1, now, &fire, target.Username, aliveBefore-2)
		} else {
			shared := aliveBefore - 1
			a.eliminate(target, shared, now, &fire, attacker.Username, aliveBefore-2)
			a.eliminate(attacker, shared, now, &fire, target.Username, aliveBefore-2)
		}
	case targetDied:
		attacker.Kills++
		a.eliminate(target, aliveBefore, now, &fire, attacker.Username, aliveBefore-1)
	case attackerDied:
		// The counter killed the attacker; the target defended the
		// exchange and gets the kill.
		target.Kills++
		a.eliminate(attacker, aliveBefore, now, &fire, target.Username, aliveBefore-1)
	}

	alive := a.aliveCount()
	switch {
	case alive == 1:
		for _, p := range a.participants {
			if !p.Eliminated {
				a.finishMatch(p, now, &fire)
				break
			}
		}
	case alive == 0:
		// Double knockout of the final pair. Under the tie-break the
		// attacker already holds placement 1 and is credited the win.
		if aliveBefore == 2 && a.cfg.AttackerWinsFinalTie {
			a.finishMatch(attacker, now, &fire)
		} else {
			a.finishMatch(nil, now, &fire)
		}
	}

	res = AttackResult{
		Damage:             ex.Damage,
		CounterDamage:      ex.CounterDamage,
		Crit:               ex.Crit,
		TargetEliminated:   targetDied,
		AttackerEliminated: attackerDied,
		AliveCount:         alive,
	}
	return res, fire, nil
}

// eliminate marks a participant dead and queues the elimination event.
// Caller holds the lock and has already decided the placement.
func (a *Arena) eliminate(p *Participant, placement int, now time.Time, fire *[]func(), killedBy string, remaining int) {
	p.Eliminated = true
	p.EliminatedAt = now
	p.Placement = placement
	a.eliminations = append(a.eliminations, p.AccountID)

	log.Printf("💀 %s eliminated by %s, placement %d", p.Username, killedBy, placement)

	name := p.Username
	a.queue(fire, func(n Notifier) { n.Elimination(name, killedBy, remaining, placement) })
}

// finishMatch ends the match, paying rewards exactly once and writing
// the history row before the lock drops. winner may be nil when a
// shared-rank double knockout leaves nobody standing.
func (a *Arena) finishMatch(winner *Participant, now time.Time, fire *[]func()) {
	if winner != nil {
		if winner.Placement == 0 {
			winner.Placement = 1
		}
		a.winnerID = winner.AccountID
		log.Printf("🏆 %s wins the arena with %d kills", winner.Username, winner.Kills)

		name, kills := winner.Username, winner.Kills
		a.queue(fire, func(n Notifier) { n.Winner(name, kills) })
	} else {
		log.Printf("Arena match ended with no survivor")
	}

	a.status = StatusEnded
	a.endedAt = now

	*fire = append(*fire, a.distributeRewards()...)

	if a.recorder != nil {
		if err := a.recorder.RecordMatch(a.matchResult()); err != nil {
			log.Printf("Failed to record match history: %v", err)
		}
	}
}

// matchResult builds the history row. Caller holds the lock.
func (a *Arena) matchResult() MatchResult {
	results := make([]ParticipantResult, 0, len(a.participants))
	for _, p := range a.participants {
		results = append(results, ParticipantResult{
			AccountID: p.AccountID,
			Username:  p.Username,
			Placement: p.Placement,
			Kills:     p.Kills,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Placement < results[j].Placement })

	return MatchResult{
		WinnerID:         a.winnerID,
		ParticipantCount: len(a.participants),
		StartedAt:        a.startedAt,
		EndedAt:          a.endedAt,
		Results:          results,
	}
}

func (a *Arena) aliveCount() int {
	alive := 0
	for _, p := range a.participants {
		if !p.Eliminated {
			alive++
		}
	}
	return alive
}

// Snapshot is the full query surface of the arena.
type Snapshot struct {
	Status            string         `json:"status"`
	Registrations     []*Participant `json:"registrations"`
	Participants      []*Participant `json:"participants"`
	AliveCount        int            `json:"alive_count"`
	TotalParticipants int            `json:"total_participants"`
	EliminationsOrder []int          `json:"eliminations_order"`
	WinnerID          int            `json:"winner_id"`
	StartedAt         time.Time      `json:"started_at,omitempty"`
	EndedAt           time.Time      `json:"ended_at,omitempty"`
}

// Snapshot returns a deep copy of the arena's observable state.
func (a *Arena) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Status:            a.status,
		Registrations:     cloneSorted(a.registrations),
		Participants:      cloneSorted(a.participants),
		AliveCount:        a.aliveCount(),
		TotalParticipants: len(a.participants),
		EliminationsOrder: append([]int(nil), a.eliminations...),
		WinnerID:          a.winnerID,
		StartedAt:         a.startedAt,
		EndedAt:           a.endedAt,
	}
	return snap
}

// PlayerView is one participant's personal slice of the arena: their
// own snapshot plus, while they're alive in an active match, the
// targets they may attack.
type PlayerView struct {
	Participant *Participant   `json:"participant"`
	Targets     []*Participant `json:"targets,omitempty"`
}

// View returns a player's own participant state. Fails with ErrNotFound
// for accounts that are in neither the registration list nor the match.
func (a *Arena) View(accountID int) (PlayerView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p, ok := a.registrations[accountID]; ok {
		return PlayerView{Participant: p.clone()}, nil
	}

	p, ok := a.participants[accountID]
	if !ok {
		return PlayerView{}, fmt.Errorf("%w: account %d is not in the arena", ErrNotFound, accountID)
	}

	view := PlayerView{Participant: p.clone()}
	if a.status == StatusActive && !p.Eliminated {
		for _, other := range a.participants {
			if other.AccountID != accountID && !other.Eliminated {
				view.Targets = append(view.Targets, other.clone())
			}
		}
		sort.Slice(view.Targets, func(i, j int) bool {
			return view.Targets[i].AccountID < view.Targets[j].AccountID
		})
	}
	return view, nil
}

func cloneSorted(m map[int]*Participant) []*Participant {
	out := make([]*Participant, 0, len(m))
	for _, p := range m {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}
