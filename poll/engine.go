package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpoll/iclickerpoll/frame"
	"github.com/openpoll/iclickerpoll/pkg"
	"github.com/openpoll/iclickerpoll/protocol"
)

// Station is the base-station session surface the engine drives. It is
// satisfied by *base.Session.
type Station interface {
	Initialized() bool
	Initialize(freq1, freq2 byte) error
	StartPoll(quiz protocol.QuizType) error
	StopPoll() error
	Read(timeout time.Duration) (frame.Frame, error)
	SetDisplayLine(line int, text string) error
}

// State identifies the engine's position in the poll lifecycle.
type State int

// Poll lifecycle states.
const (
	StateIdle         State = iota // No poll running
	StateInitializing              // Base-station setup in progress
	StateActive                    // Ingesting responses
	StateStopping                  // Stop requested, winding down
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Defaults for Config zero values.
const (
	defaultRefreshInterval = time.Second
	defaultReadTimeout     = 50 * time.Millisecond
)

// Config holds optional engine settings. Zero values select defaults.
type Config struct {
	// RefreshInterval is the period of the display refresh timeline.
	RefreshInterval time.Duration

	// ReadTimeout bounds each ingestion receive.
	ReadTimeout time.Duration

	// Freq1 and Freq2 are the channel codes (0-3) used if the base
	// station still needs initializing when a poll starts.
	Freq1, Freq2 byte

	// OnResponse, if set, is invoked for every newly recorded response.
	OnResponse func(Response)
}

// Engine runs polling sessions against a base station.
type Engine struct {
	station Station

	refreshInterval time.Duration
	readTimeout     time.Duration
	freq1, freq2    byte
	onResponse      func(Response)

	mu        sync.Mutex
	state     State
	startTime time.Time
	sessionID uuid.UUID
	log       *Log
	stop      chan struct{}
}

// New creates an engine driving station.
func New(station Station, cfg Config) *Engine {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	return &Engine{
		station:         station,
		refreshInterval: cfg.RefreshInterval,
		readTimeout:     cfg.ReadTimeout,
		freq1:           cfg.Freq1,
		freq2:           cfg.Freq2,
		onResponse:      cfg.OnResponse,
		log:             NewLog(),
		stop:            make(chan struct{}),
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RequestStop asks a running poll to stop. It is safe to call
// concurrently and repeatedly; only the first call per run has effect,
// and the base-station stop sequence is issued exactly once by Run.
func (e *Engine) RequestStop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

// MostRecentResponses returns each clicker's latest response.
func (e *Engine) MostRecentResponses() []Response {
	return e.currentLog().MostRecent()
}

// ExportCSV renders the poll results as CSV, one clicker per line.
func (e *Engine) ExportCSV() string {
	return e.currentLog().ExportCSV()
}

func (e *Engine) currentLog() *Log {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log
}

// Run starts a poll and blocks until a stop is requested via RequestStop,
// cancellation of ctx, or a transport error during ingestion. The polling
// session is the blocking operation; callers wanting concurrency invoke
// Run from a dedicated goroutine.
//
// Starting a new run discards the previous run's response log.
func (e *Engine) Run(ctx context.Context, quiz protocol.QuizType) error {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return pkg.ErrAlreadyPolling
	}
	e.state = StateInitializing
	e.sessionID = uuid.New()
	e.log = NewLog()
	e.stop = make(chan struct{})
	stop := e.stop
	id := e.sessionID
	e.mu.Unlock()

	defer e.setState(StateIdle)

	if !e.station.Initialized() {
		if err := e.station.Initialize(e.freq1, e.freq2); err != nil {
			return fmt.Errorf("initialize base station: %w", err)
		}
	}

	if err := e.station.StartPoll(quiz); err != nil {
		return fmt.Errorf("start poll: %w", err)
	}

	e.mu.Lock()
	e.startTime = time.Now()
	e.state = StateActive
	e.mu.Unlock()

	pkg.LogInfo(pkg.ComponentPoll, "poll started",
		"session", id.String(),
		"type", quiz.String())

	// External cancellation feeds the same stop path as RequestStop.
	go func() {
		select {
		case <-ctx.Done():
			e.RequestStop()
		case <-stop:
		}
	}()

	var refreshDone sync.WaitGroup
	refreshDone.Add(1)
	go func() {
		defer refreshDone.Done()
		e.refreshLoop(stop)
	}()

	ingestErr := e.ingest(stop)

	e.setState(StateStopping)
	e.RequestStop() // ingestion may have exited on error before a request
	refreshDone.Wait()

	if err := e.station.StopPoll(); err != nil {
		if ingestErr == nil {
			ingestErr = fmt.Errorf("stop poll: %w", err)
		} else {
			pkg.LogWarn(pkg.ComponentPoll, "stop sequence failed", "error", err)
		}
	}

	pkg.LogInfo(pkg.ComponentPoll, "poll stopped",
		"session", id.String(),
		"clickers", e.currentLog().Len())
	return ingestErr
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// ingest repeatedly reads the transport until a stop is requested. A
// timeout is not an error and simply loops; any other receive error
// terminates the poll (implicit stop request) and is returned.
func (e *Engine) ingest(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		f, err := e.station.Read(e.readTimeout)
		if err != nil {
			if errors.Is(err, pkg.ErrTimeout) {
				continue
			}
			pkg.LogError(pkg.ComponentPoll, "ingestion failed, stopping poll", "error", err)
			return fmt.Errorf("read responses: %w", err)
		}

		log := e.currentLog()
		for _, ev := range protocol.DecodeResponses(f) {
			r := Response{ID: ev.ID, Answer: ev.Answer, Seq: ev.Seq, Time: time.Now()}
			if !log.Add(r) {
				continue
			}
			pkg.LogDebug(pkg.ComponentPoll, "response recorded",
				"clicker", string(r.ID),
				"answer", string(r.Answer),
				"seq", r.Seq)
			if e.onResponse != nil {
				e.onResponse(r)
			}
		}

		// Refresh opportunistically after every received frame, even one
		// carrying no events; the rate limiter collapses bursts.
		e.refreshDisplay()
	}
}

// refreshLoop is the periodic display timeline.
func (e *Engine) refreshLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(e.refreshInterval)
	defer ticker.Stop()

	e.refreshDisplay()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.refreshDisplay()
		}
	}
}

// refreshDisplay recomputes the tally and rewrites both display lines:
// elapsed time and total votes on line 0, the A-E percentage row on
// line 1.
func (e *Engine) refreshDisplay() {
	tally := TallyOf(e.currentLog().MostRecent())

	if err := e.station.SetDisplayLine(1, tally.Row()); err != nil {
		pkg.LogWarn(pkg.ComponentPoll, "display write failed", "line", 1, "error", err)
	}

	e.mu.Lock()
	start := e.startTime
	e.mu.Unlock()

	elapsed := int(time.Since(start).Seconds())
	clock := fmt.Sprintf("%d:%02d", elapsed/60, elapsed%60)
	line := fmt.Sprintf("%s%*d", clock, protocol.DisplayWidth-len(clock), tally.Total())
	if err := e.station.SetDisplayLine(0, line); err != nil {
		pkg.LogWarn(pkg.ComponentPoll, "display write failed", "line", 0, "error", err)
	}
}
