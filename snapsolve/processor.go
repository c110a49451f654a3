package snapsolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Processor sequences the extract/solve, MCQ and debug workflows. One
// primary and one secondary (debug) operation may be in flight at a time,
// each independently cancelable; heuristic parsing is synchronous, so the
// provider calls are the only suspension points.
type Processor struct {
	screenshots ScreenshotSource
	store       *ConfigStore
	registry    *Registry
	sink        EventSink
	log         *logrus.Entry

	mu            sync.Mutex
	view          View
	problemInfo   *ProblemInfo
	hasDebugged   bool
	keyErrorShown bool

	primaryCancel   context.CancelFunc
	primaryGen      uint64
	secondaryCancel context.CancelFunc
	secondaryGen    uint64
}

// NewProcessor wires the workflow to its collaborators and subscribes to
// configuration changes so the provider client is rebuilt when the user
// switches providers, keys or models.
func NewProcessor(screenshots ScreenshotSource, store *ConfigStore, sink EventSink, log *logrus.Logger) *Processor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Processor{
		screenshots: screenshots,
		store:       store,
		registry:    NewRegistry(log),
		sink:        sink,
		log:         log.WithField("component", "processor"),
		view:        ViewQueue,
	}
	p.registry.Reinitialize(store.Load())
	store.Subscribe(func(cfg Config) {
		if p.registry.Reinitialize(cfg) {
			p.mu.Lock()
			p.keyErrorShown = false
			p.mu.Unlock()
		}
	})
	return p
}

// View returns what the UI is currently showing.
func (p *Processor) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// SetView records the UI's current view, which selects whether the next
// Process call runs the primary or the debug workflow.
func (p *Processor) SetView(v View) {
	p.mu.Lock()
	p.view = v
	p.mu.Unlock()
}

// ProblemInfo returns the committed extraction result for the current
// session, or nil before any extraction has succeeded.
func (p *Processor) ProblemInfo() *ProblemInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.problemInfo == nil {
		return nil
	}
	info := *p.problemInfo
	return &info
}

func (p *Processor) setProblemInfo(info *ProblemInfo) {
	p.mu.Lock()
	p.problemInfo = info
	p.mu.Unlock()
}

// HasDebugged reports whether a debug pass has completed this session.
func (p *Processor) HasDebugged() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasDebugged
}

func (p *Processor) setHasDebugged(v bool) {
	p.mu.Lock()
	p.hasDebugged = v
	p.mu.Unlock()
}

// Process runs one cycle: the primary workflow (extract then solve, or MCQ)
// when the UI shows the queue, the debug workflow when it shows solutions.
// The entry guard attempts one lazy client re-initialization; with still no
// client it raises the api-key-invalid signal once, without consuming a
// screenshot.
func (p *Processor) Process(ctx context.Context) {
	cfg := p.store.Load()
	cycle := uuid.New()
	log := p.log.WithFields(logrus.Fields{
		"cycle":    cycle,
		"provider": cfg.Provider,
		"mode":     cfg.SolvingMode,
	})

	client, ok := p.ensureClient(cfg)
	if !ok {
		p.mu.Lock()
		shown := p.keyErrorShown
		p.keyErrorShown = true
		p.mu.Unlock()
		if !shown {
			log.Error("provider client not initialized")
			p.send(cycle, EventAPIKeyInvalid, nil)
		}
		return
	}

	if p.View() == ViewQueue {
		p.runPrimary(ctx, cfg, client, cycle, log)
	} else {
		p.runDebug(ctx, cfg, client, cycle, log)
	}
}

func (p *Processor) ensureClient(cfg Config) (providerClient, bool) {
	if prov, client := p.registry.active(); client != nil && prov == cfg.Provider {
		return client, true
	}
	if p.registry.Reinitialize(cfg) {
		p.mu.Lock()
		p.keyErrorShown = false
		p.mu.Unlock()
		_, client := p.registry.active()
		return client, client != nil
	}
	return nil, false
}

func (p *Processor) runPrimary(ctx context.Context, cfg Config, client providerClient, cycle uuid.UUID, log *logrus.Entry) {
	p.send(cycle, EventInitialStart, nil)

	shots := loadScreenshots(log, p.screenshots.ScreenshotQueue())
	if len(shots) == 0 {
		log.Info("no screenshots queued")
		p.send(cycle, EventNoScreenshots, nil)
		return
	}

	cctx, done := p.beginPrimary(ctx)
	defer done()

	var (
		result any
		err    error
	)
	if cfg.SolvingMode == ModeMCQ {
		result, err = p.runMCQ(cctx, cfg, client, shots, cycle)
	} else {
		result, err = p.runCoding(cctx, cfg, client, shots, cycle)
	}
	if err != nil {
		log.WithError(err).Error("processing failed")
		p.SetView(ViewQueue)
		if isAuthError(err) {
			p.send(cycle, EventAPIKeyInvalid, nil)
			return
		}
		p.send(cycle, EventSolutionError, userMessage(cfg.Provider, err))
		return
	}

	p.send(cycle, EventSolutionSuccess, result)
	p.SetView(ViewSolutions)
}

// runCoding executes the two-stage coding path. The solution stage does not
// begin until the extraction payload is committed to session state, and a
// canceled cycle never commits.
func (p *Processor) runCoding(ctx context.Context, cfg Config, client providerClient, shots []screenshot, cycle uuid.UUID) (SolutionResult, error) {
	p.progress(cycle, "Analyzing problem from screenshots...", 20)

	text, err := client.Generate(ctx, extractionPlan(cfg, p.language(cfg), imageData(shots)))
	if err != nil {
		return SolutionResult{}, err
	}
	info, err := parseProblemInfo(text)
	if err != nil {
		return SolutionResult{}, err
	}
	if ctx.Err() != nil {
		return SolutionResult{}, ctx.Err()
	}
	p.setProblemInfo(&info)
	p.progress(cycle, "Problem analyzed successfully. Preparing to generate solution...", 40)
	p.send(cycle, EventProblemExtracted, info)

	p.progress(cycle, "Creating optimal solution with detailed explanations...", 60)
	solText, err := client.Generate(ctx, solutionPlan(cfg, info, p.language(cfg)))
	if err != nil {
		return SolutionResult{}, err
	}
	sol := parseSolution(solText)

	p.screenshots.ClearExtraScreenshotQueue()
	p.progress(cycle, "Solution generated successfully", 100)
	return sol, nil
}

func (p *Processor) runMCQ(ctx context.Context, cfg Config, client providerClient, shots []screenshot, cycle uuid.UUID) (MCQResult, error) {
	p.progress(cycle, "Analyzing MCQ question from screenshots...", 30)
	p.progress(cycle, fmt.Sprintf("Processing MCQ with %s...", providerLabel(cfg.Provider)), 60)

	text, err := client.Generate(ctx, mcqPlan(cfg, imageData(shots)))
	if err != nil {
		return MCQResult{}, err
	}
	res, err := parseMCQ(text)
	if err != nil {
		return MCQResult{}, err
	}
	p.progress(cycle, "MCQ analysis complete", 100)
	return res, nil
}

// runDebug executes the secondary workflow over the combined main and extra
// screenshot queues. It requires problem info from a prior extraction and
// fails immediately without it.
func (p *Processor) runDebug(ctx context.Context, cfg Config, client providerClient, cycle uuid.UUID, log *logrus.Entry) {
	extras := p.screenshots.ExtraScreenshotQueue()
	if len(extras) == 0 {
		log.Info("no extra screenshots queued")
		p.send(cycle, EventNoScreenshots, nil)
		return
	}
	p.send(cycle, EventDebugStart, nil)

	main := p.screenshots.ScreenshotQueue()
	all := make([]string, 0, len(main)+len(extras))
	all = append(all, main...)
	all = append(all, extras...)
	shots := loadScreenshots(log, all)
	if len(shots) == 0 {
		p.send(cycle, EventDebugError, "Failed to load screenshot data for debugging")
		return
	}

	info := p.ProblemInfo()
	if info == nil {
		log.Warn("debug requested with no problem info")
		p.send(cycle, EventDebugError, userMessage(cfg.Provider, ErrNoProblemInfo))
		return
	}

	cctx, done := p.beginSecondary(ctx)
	defer done()

	p.progress(cycle, "Processing debug screenshots...", 30)
	p.progress(cycle, "Analyzing code and generating debug feedback...", 60)

	text, err := client.Generate(cctx, debugPlan(cfg, *info, p.language(cfg), imageData(shots)))
	if err != nil {
		log.WithError(err).Error("debug processing failed")
		if isAuthError(err) {
			p.send(cycle, EventAPIKeyInvalid, nil)
			return
		}
		p.send(cycle, EventDebugError, userMessage(cfg.Provider, err))
		return
	}

	result := parseDebug(text)
	p.setHasDebugged(true)
	p.progress(cycle, "Debug analysis complete", 100)
	p.send(cycle, EventDebugSuccess, result)
}

// beginPrimary issues a fresh cancellation token for the primary family,
// aborting any previous in-flight primary. The returned done func cancels
// and releases the slot unless a newer cycle already claimed it.
func (p *Processor) beginPrimary(ctx context.Context) (context.Context, func()) {
	cctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.primaryCancel != nil {
		p.primaryCancel()
	}
	p.primaryCancel = cancel
	p.primaryGen++
	gen := p.primaryGen
	p.mu.Unlock()
	return cctx, func() {
		cancel()
		p.mu.Lock()
		if p.primaryGen == gen {
			p.primaryCancel = nil
		}
		p.mu.Unlock()
	}
}

func (p *Processor) beginSecondary(ctx context.Context) (context.Context, func()) {
	cctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.secondaryCancel != nil {
		p.secondaryCancel()
	}
	p.secondaryCancel = cancel
	p.secondaryGen++
	gen := p.secondaryGen
	p.mu.Unlock()
	return cctx, func() {
		cancel()
		p.mu.Lock()
		if p.secondaryGen == gen {
			p.secondaryCancel = nil
		}
		p.mu.Unlock()
	}
}

// CancelCycle aborts in-flight primary and secondary work without touching
// committed session state. Idempotent with nothing in flight.
func (p *Processor) CancelCycle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.primaryCancel != nil {
		p.primaryCancel()
		p.primaryCancel = nil
	}
	if p.secondaryCancel != nil {
		p.secondaryCancel()
		p.secondaryCancel = nil
	}
}

// CancelAll aborts everything in flight, clears the session's problem info
// and debug flag, and tells the UI that nothing is queued. Idempotent.
func (p *Processor) CancelAll() {
	p.mu.Lock()
	canceled := p.primaryCancel != nil || p.secondaryCancel != nil
	if p.primaryCancel != nil {
		p.primaryCancel()
		p.primaryCancel = nil
	}
	if p.secondaryCancel != nil {
		p.secondaryCancel()
		p.secondaryCancel = nil
	}
	p.problemInfo = nil
	p.hasDebugged = false
	p.mu.Unlock()

	if canceled {
		p.send(uuid.Nil, EventNoScreenshots, nil)
	}
}

func (p *Processor) language(cfg Config) string {
	if cfg.Language != "" {
		return cfg.Language
	}
	return defaultLanguage
}

func (p *Processor) send(cycle uuid.UUID, kind EventKind, data any) {
	if p.sink == nil {
		return
	}
	p.sink.Send(Event{Cycle: cycle, Kind: kind, Data: data})
}

func (p *Processor) progress(cycle uuid.UUID, message string, pct int) {
	p.send(cycle, EventProgress, Progress{Message: message, Progress: pct})
}
