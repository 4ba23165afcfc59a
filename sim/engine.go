// Package sim drives resolution for a population of actors: it checks every
// actor at the end of each cycle, hands insolvent ones to their policy and
// journals what happened.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/internal/id"
	"github.com/rustyeddy/solvency/journal"
	"github.com/rustyeddy/solvency/ledger"
	"github.com/rustyeddy/solvency/registry"
	"github.com/rustyeddy/solvency/resolution"
	"github.com/rustyeddy/solvency/risk"
)

var ErrDuplicateActor = errors.New("duplicate actor name")

type Engine struct {
	mu sync.Mutex

	runID   string
	actors  []actor.Actor
	byName  map[string]actor.Actor
	shares  *registry.Registry
	proxies *actor.Intermediaries
	calc    risk.Calculator
	journal journal.Journal
	logger  *log.Logger

	cycle  int
	start  time.Time
	step   time.Duration
	shocks []Shock

	rebuilt  []string
	listener resolution.ShareListener // optional, notified outside the lock
	summary  journal.RunSummary
}

// NewEngine returns an empty engine. A nil journal discards records and a
// nil logger discards log output.
func NewEngine(calc risk.Calculator, j journal.Journal, logger *log.Logger) *Engine {
	if j == nil {
		j = journal.Discard{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	e := &Engine{
		runID:   id.New(),
		byName:  make(map[string]actor.Actor),
		shares:  registry.New(),
		calc:    calc,
		journal: j,
		logger:  logger,
		start:   time.Unix(0, 0).UTC(),
		step:    24 * time.Hour,
	}
	e.proxies = actor.NewIntermediaries(func(im *actor.Intermediary) {
		// Proxies are created during resolution, with e.mu held. A name
		// clash would leave a shareholder outside the directory.
		if err := e.addLocked(im); err != nil {
			panic(&ledger.InvariantError{Msg: fmt.Sprintf("register proxy: %v", err)})
		}
	})
	e.shares.SetClock(e.nowLocked)
	e.summary = journal.RunSummary{RunID: e.runID, ByHandler: map[string]int{}}
	return e
}

// SetClock sets the time of cycle 0 and the length of a cycle.
func (e *Engine) SetClock(start time.Time, step time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.start, e.step = start, step
}

// SetShareListener sets an optional listener told about share rebuilds
// after each cycle, once the engine lock is released.
func (e *Engine) SetShareListener(l resolution.ShareListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

func (e *Engine) RunID() string                         { return e.runID }
func (e *Engine) Registry() *registry.Registry          { return e.shares }
func (e *Engine) Intermediaries() *actor.Intermediaries { return e.proxies }
func (e *Engine) Calculator() risk.Calculator           { return e.calc }

func (e *Engine) Cycle() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycle
}

// Add registers an actor. Names must be unique.
func (e *Engine) Add(a actor.Actor) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(a)
}

func (e *Engine) addLocked(a actor.Actor) error {
	if _, ok := e.byName[a.Name()]; ok {
		return fmt.Errorf("add %s: %w", a.Name(), ErrDuplicateActor)
	}
	e.byName[a.Name()] = a
	e.actors = append(e.actors, a)
	return nil
}

func (e *Engine) Actor(name string) (actor.Actor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.byName[name]
	return a, ok
}

// Actors returns every actor in registration order.
func (e *Engine) Actors() []actor.Actor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]actor.Actor(nil), e.actors...)
}

// Banks returns every bank, whatever its role or health.
func (e *Engine) Banks() []actor.Actor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.banksLocked()
}

func (e *Engine) banksLocked() []actor.Actor {
	var out []actor.Actor
	for _, a := range e.actors {
		if k := a.Kind(); k == actor.KindBank || k == actor.KindCommercialBank {
			out = append(out, a)
		}
	}
	return out
}

// directory gives handlers the bank list while the engine lock is held.
type directory struct{ e *Engine }

func (d directory) Banks() []actor.Actor { return d.e.banksLocked() }

// rebuildQueue collects share rebuilds during resolution.
type rebuildQueue struct{ e *Engine }

func (q rebuildQueue) OnSharesRebuilt(issuer string) {
	q.e.rebuilt = append(q.e.rebuilt, issuer)
}

// Deps returns resolution collaborators bound to this engine. The engine
// must only resolve actors through CheckAndResolve or EndOfCycle.
func (e *Engine) Deps(gov *actor.Government, rng resolution.RNG, epsilon float64) resolution.Deps {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return resolution.Deps{
		Calc:           e.calc,
		Shares:         e.shares,
		Intermediaries: e.proxies,
		Government:     gov,
		Banks:          directory{e},
		RNG:            rng,
		Listener:       rebuildQueue{e},
		Epsilon:        epsilon,
		Logger:         e.logger,
	}
}

// AddShock schedules a write-down.
func (e *Engine) AddShock(s Shock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shocks = append(e.shocks, s)
}

// SystemValue is the net worth of every actor except governments, equity
// holdings excluded. Bail-in leaves it unchanged; a bailout raises it by the
// injected cash.
func (e *Engine) SystemValue() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.systemValueLocked()
}

func (e *Engine) systemValueLocked() float64 {
	var v float64
	for _, a := range e.actors {
		if a.Kind() == actor.KindGovernment {
			continue
		}
		s := a.Sheet()
		v += s.TotalAssets() - s.TotalLiabilities()
		for _, c := range s.AssetsOf(ledger.Stock) {
			v -= c.Value()
		}
	}
	return v
}

func (e *Engine) nowLocked() time.Time {
	return e.start.Add(time.Duration(e.cycle) * e.step)
}

// CheckAndResolve hands a to its resolution policy if it is insolvent.
// Only fatal errors are returned.
func (e *Engine) CheckAndResolve(a actor.Actor) error {
	e.mu.Lock()
	err := e.checkAndResolveLocked(a)
	listener, rebuilt := e.drainLocked()
	e.mu.Unlock()

	notify(listener, rebuilt)
	return err
}

func (e *Engine) checkAndResolveLocked(a actor.Actor) error {
	sheet := a.Sheet()
	if sheet.IsLiquidated() || sheet.Equity() >= 0 {
		return nil
	}

	a.MarkPending()
	defer a.ClearPending()

	before := sheet.Equity()
	handler, err := actor.HandleBankruptcy(a)
	rec := journal.ResolutionRecord{
		ID:           id.New(),
		RunID:        e.runID,
		Cycle:        e.cycle,
		Time:         e.nowLocked(),
		Actor:        a.Name(),
		Kind:         a.Kind().String(),
		Handler:      handler,
		Outcome:      journal.OutcomeResolved,
		EquityBefore: before,
		EquityAfter:  sheet.Equity(),
	}
	if err != nil {
		rec.Outcome = journal.OutcomeFatal
		rec.Detail = err.Error()
		e.summary.Fatal = err.Error()
		e.logger.Printf("cycle %d: %s %s unresolved: %v", e.cycle, a.Kind(), a.Name(), err)
		if jerr := e.journal.RecordResolution(rec); jerr != nil {
			return errors.Join(err, jerr)
		}
		return err
	}

	e.summary.Resolutions++
	e.summary.ByHandler[handler]++
	if handler == resolution.IDLiquidate {
		e.summary.Liquidations++
	}
	e.logger.Printf("cycle %d: %s %s resolved by %s (equity %.2f -> %.2f)",
		e.cycle, a.Kind(), a.Name(), handler, before, rec.EquityAfter)
	return e.journal.RecordResolution(rec)
}

// EndOfCycle advances the cycle, applies its shocks, resolves every actor
// that became insolvent and snapshots every balance sheet. A fatal
// resolution error stops the cycle and is returned.
func (e *Engine) EndOfCycle() error {
	e.mu.Lock()
	err := e.endOfCycleLocked()
	listener, rebuilt := e.drainLocked()
	e.mu.Unlock()

	notify(listener, rebuilt)
	return err
}

func (e *Engine) endOfCycleLocked() error {
	e.cycle++
	e.summary.Cycles = e.cycle

	for _, s := range e.shocks {
		if s.Cycle == e.cycle {
			lost := s.apply()
			e.logger.Printf("cycle %d: shock %s wrote down %.2f", e.cycle, s, lost)
		}
	}

	// Only actors insolvent at the check are resolved this cycle; knock-on
	// failures wait for the next one.
	var pending []actor.Actor
	for _, a := range e.actors {
		if !a.Sheet().IsLiquidated() && a.Sheet().Equity() < 0 {
			pending = append(pending, a)
		}
	}
	for _, a := range pending {
		if err := e.checkAndResolveLocked(a); err != nil {
			return err
		}
	}

	now := e.nowLocked()
	for _, a := range append([]actor.Actor(nil), e.actors...) {
		s := a.Sheet()
		d := risk.Evaluate(e.calc, a)
		if actor.DepositTaking(a) && !s.IsLiquidated() && s.Equity() >= 0 && !d.Healthy {
			for _, v := range d.Violations {
				e.logger.Printf("cycle %d: %s %s: %s", e.cycle, a.Kind(), a.Name(), v.Msg)
			}
		}
		if err := e.journal.RecordEquity(journal.EquitySnapshot{
			RunID:       e.runID,
			Cycle:       e.cycle,
			Time:        now,
			Actor:       a.Name(),
			Kind:        a.Kind().String(),
			Assets:      s.TotalAssets(),
			Liabilities: s.TotalLiabilities(),
			Equity:      s.Equity(),
			CAR:         d.CAR,
			Bankrupt:    s.IsBankrupt(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) drainLocked() (resolution.ShareListener, []string) {
	rebuilt := e.rebuilt
	e.rebuilt = nil
	return e.listener, rebuilt
}

func notify(l resolution.ShareListener, issuers []string) {
	if l == nil {
		return
	}
	for _, issuer := range issuers {
		l.OnSharesRebuilt(issuer)
	}
}

// Run executes cycles end-of-cycle steps, stopping early on a fatal error or
// when ctx is cancelled. The returned summary covers the cycles completed.
func (e *Engine) Run(ctx context.Context, cycles int) (journal.RunSummary, error) {
	e.mu.Lock()
	e.summary.ValueStart = e.systemValueLocked()
	e.summary.Actors = len(e.actors)
	if e.summary.Created.IsZero() {
		e.summary.Created = time.Now()
	}
	e.mu.Unlock()

	var err error
	for i := 0; i < cycles; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = e.EndOfCycle(); err != nil {
			break
		}
	}

	return e.Summary(), err
}

// Summary returns the run summary so far.
func (e *Engine) Summary() journal.RunSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.summary
	s.ByHandler = make(map[string]int, len(e.summary.ByHandler))
	for k, v := range e.summary.ByHandler {
		s.ByHandler[k] = v
	}
	s.Actors = len(e.actors)
	s.ValueEnd = e.systemValueLocked()
	return s
}

// SetScenario names the run in its summary.
func (e *Engine) SetScenario(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.summary.Scenario = name
}
