package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric describes one call to the searcher's budget loop.
type SearchMetric struct {
	Goroutines  int
	Budget      int // Configured simulations
	Duration    time.Duration
	Simulations int // Simulations that completed
	Evaluations int
	Terminals   int // Simulations that ended on a won or drawn position
	IsTreeReset bool
	Canceled    bool
}

type MoveMetric struct {
	Step   int
	Player int
	Action int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int // 0 for a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(goroutines, budget int)
	SetTreeReset(value bool)
	SetCanceled()
	AddSimulation()
	AddEvaluation()
	AddTerminal()
	Complete() SearchMetric
}

type collector struct {
	goroutines  int
	budget      int
	startTime   time.Time
	simulations atomic.Int32
	evaluations atomic.Int32
	terminals   atomic.Int32
	isTreeReset atomic.Bool
	canceled    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) SetCanceled() {
	m.canceled.Store(true)
}

// Start resets the counters for a new search. The tree reset flag is kept
// since it is decided before the search begins.
func (m *collector) Start(goroutines, budget int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.budget = budget
	m.simulations.Store(0)
	m.evaluations.Store(0)
	m.terminals.Store(0)
	m.canceled.Store(false)
}

func (m *collector) AddSimulation() {
	m.simulations.Add(1)
}

func (m *collector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *collector) AddTerminal() {
	m.terminals.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:  m.goroutines,
		Budget:      m.budget,
		Duration:    time.Since(m.startTime),
		Simulations: int(m.simulations.Load()),
		Evaluations: int(m.evaluations.Load()),
		Terminals:   int(m.terminals.Load()),
		IsTreeReset: m.isTreeReset.Load(),
		Canceled:    m.canceled.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, budget int) {}
func (m *dummyCollector) SetTreeReset(value bool)      {}
func (m *dummyCollector) SetCanceled()                 {}
func (m *dummyCollector) AddSimulation()               {}
func (m *dummyCollector) AddEvaluation()               {}
func (m *dummyCollector) AddTerminal()                 {}
func (m *dummyCollector) Complete() SearchMetric       { return SearchMetric{} }
