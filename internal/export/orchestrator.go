// Package export runs the export state machine: it picks a strategy for the
// request, falls back to the print surface when file rendering fails, and
// guards each document against concurrent exports.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/adapters/pdf"
	"salesdoc/internal/calculator"
	"salesdoc/internal/models"
)

// Strategies is the set of strategies an orchestrator can choose from
type Strategies struct {
	File  Strategy
	Print Strategy
	Share Strategy
}

// Orchestrator runs exports
type Orchestrator struct {
	renderer   TreeRenderer
	strategies Strategies
	flag       *DegradeFlag
	guard      *inflight
	confirmer  Confirmer
	releaser   *blobstore.Releaser
	metrics    *Metrics
	logger     logrus.FieldLogger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics sets the metrics collectors
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithConfirmer sets the confirmation surface consulted on blocked exports
func WithConfirmer(c Confirmer) Option {
	return func(o *Orchestrator) { o.confirmer = c }
}

// WithDegradeFlag replaces the process-wide degrade flag. Tests use it to
// keep orchestrators isolated.
func WithDegradeFlag(f *DegradeFlag) Option {
	return func(o *Orchestrator) { o.flag = f }
}

// WithReleaser hands the releaser to the orchestrator so Close can release
// pending handles
func WithReleaser(r *blobstore.Releaser) Option {
	return func(o *Orchestrator) { o.releaser = r }
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(renderer TreeRenderer, strategies Strategies, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		renderer:   renderer,
		strategies: strategies,
		flag:       ProcessDegradeFlag(),
		guard:      newInflight(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(nil)
	}
	if o.releaser != nil && o.releaser.OnRelease == nil {
		o.releaser.OnRelease = o.metrics.ObserveRelease
	}
	return o
}

// Degraded reports whether file rendering has been marked unavailable
func (o *Orchestrator) Degraded() bool {
	return o.flag.IsSet()
}

// InFlight returns the number of exports currently generating
func (o *Orchestrator) InFlight() int {
	return o.guard.len()
}

// Close releases every pending artifact handle
func (o *Orchestrator) Close(ctx context.Context) error {
	if o.releaser == nil {
		return nil
	}
	return o.releaser.Close(ctx)
}

type plan struct {
	primary  Strategy
	fallback Strategy
	degraded bool
}

func (o *Orchestrator) plan(req Request) (plan, error) {
	var p plan

	switch req.Type {
	case TypeShare:
		p.primary = o.strategies.Share
	case TypePrint:
		p.primary = o.strategies.Print
	case TypeDownload, TypePreview:
		switch {
		case req.Type == TypePreview && req.Device.IsHandheld():
			p.primary = o.strategies.Print
		case o.flag.IsSet():
			p.primary = o.strategies.Print
			p.degraded = true
		default:
			p.primary = o.strategies.File
			p.fallback = o.strategies.Print
		}
	}

	if p.primary == nil {
		return p, fmt.Errorf("no strategy configured for %s export", req.Type)
	}
	return p, nil
}

// Export runs one export of doc. The document is snapshotted before any
// work starts, so later edits by the caller do not reach the artifact.
func (o *Orchestrator) Export(ctx context.Context, doc *models.Document, req Request) Result {
	req = req.Normalize()
	op := string(req.Type)

	if err := req.Validate(); err != nil {
		return o.reject(req, NewError(op, "", wrap(ErrInvalidRequest, err), RemedyFixRequest))
	}
	if doc == nil {
		return o.reject(req, NewError(op, "", wrap(ErrInvalidRequest, errors.New("document is required")), RemedyFixRequest))
	}

	log := o.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"export_type": req.Type,
		"device":      req.Device,
	})

	if !o.guard.acquire(doc.ID) {
		log.Info("Export rejected, another export of this document is in flight")
		o.metrics.Exports.WithLabelValues(op, "", string(StatusBusy)).Inc()
		err := NewError(op, "", ErrConcurrentExport, RemedyWait)
		return Result{Status: StatusBusy, Reason: ErrConcurrentExport.Error(), Remedy: RemedyWait, Err: err}
	}
	defer o.guard.release(doc.ID)

	o.metrics.InFlight.Inc()
	defer o.metrics.InFlight.Dec()

	snapshot := doc.Clone()
	job := NewJob(snapshot, calculator.Compute(snapshot), req, o.renderer)

	p, err := o.plan(req)
	if err != nil {
		return o.reject(req, NewError(op, "", wrap(ErrInvalidRequest, err), RemedyFixRequest))
	}

	r := &run{o: o, job: job, op: op, state: StateIdle, log: log}
	r.result.Degraded = p.degraded
	result := r.execute(ctx, p)

	o.metrics.Exports.WithLabelValues(op, result.Strategy, string(result.Status)).Inc()
	fields := logrus.Fields{
		"strategy": result.Strategy,
		"status":   result.Status,
		"degraded": result.Degraded,
		"attempts": len(result.Attempts),
	}
	if result.Status == StatusOK {
		log.WithFields(fields).Info("Export completed")
	} else {
		log.WithFields(fields).WithField("reason", result.Reason).Warn("Export failed")
	}
	return result
}

func (o *Orchestrator) reject(req Request, err *Error) Result {
	o.metrics.Exports.WithLabelValues(string(req.Type), "", string(StatusFailed)).Inc()
	o.logger.WithError(err).Warn("Export request rejected")
	return Result{
		Status: StatusFailed,
		Reason: err.Err.Error(),
		Remedy: err.Remedy,
		Err:    err,
	}
}

// run is a single pass through the state machine
type run struct {
	o      *Orchestrator
	job    *Job
	op     string
	state  State
	log    logrus.FieldLogger
	result Result
}

func (r *run) to(next State) {
	if !CanTransition(r.state, next) {
		r.log.WithFields(logrus.Fields{"from": r.state, "to": next}).Error("Illegal export transition")
	}
	r.log.WithFields(logrus.Fields{"from": r.state, "to": next}).Debug("Export state changed")
	r.o.metrics.Transitions.WithLabelValues(string(r.state), string(next)).Inc()
	r.state = next
}

func (r *run) execute(ctx context.Context, p plan) Result {
	r.to(StateGenerating)
	artifact, err := r.attempt(ctx, p.primary)
	if err == nil {
		return r.succeed(p.primary, artifact)
	}

	if p.fallback == nil || ctx.Err() != nil {
		return r.fail(ctx, p.primary, err)
	}

	r.to(StateDegrading)
	r.result.Degraded = true
	// a store failure says nothing about the renderer, so the flag stays clear
	if p.primary.Name() == StrategyFile && !errors.Is(err, ErrArtifactStore) && r.o.flag.Set() {
		r.o.metrics.Degrades.Inc()
		r.log.WithError(err).Warn("File rendering unavailable, later downloads will use the print surface")
	}

	r.to(StateGenerating)
	artifact, err = r.attempt(ctx, p.fallback)
	if err == nil {
		return r.succeed(p.fallback, artifact)
	}
	return r.fail(ctx, p.fallback, err)
}

// attempt runs s once. A nil error means artifact is usable; a recovered
// error travelling with a usable artifact is kept as the result's reason.
func (r *run) attempt(ctx context.Context, s Strategy) (artifact *models.Artifact, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			artifact, err = nil, fmt.Errorf("%s strategy panicked: %v", s.Name(), rec)
		}

		outcome := "ok"
		a := Attempt{Strategy: s.Name(), Duration: time.Since(start)}
		if err != nil {
			outcome = "error"
			a.Error = err.Error()
		}
		r.result.Attempts = append(r.result.Attempts, a)
		r.o.metrics.Duration.WithLabelValues(s.Name(), outcome).Observe(a.Duration.Seconds())
	}()

	artifact, err = s.Execute(ctx, r.job)
	if artifact != nil && usable(artifact) {
		if err != nil {
			r.result.Reason = err.Error()
		}
		return artifact, nil
	}
	if err == nil {
		err = errUnusableArtifact
		if s.Name() == StrategyFile {
			err = wrap(ErrRenderingUnavailable, err)
		}
	}
	return nil, err
}

func (r *run) succeed(s Strategy, artifact *models.Artifact) Result {
	r.to(StateSucceeded)
	r.result.Status = StatusOK
	r.result.Strategy = s.Name()
	r.result.Artifact = artifact
	return r.result
}

func (r *run) fail(ctx context.Context, s Strategy, err error) Result {
	exportErr := NewError(r.op, s.Name(), err, remedyFor(s.Name(), err))

	if IsBlocked(err) && r.o.confirmer != nil && ctx.Err() == nil {
		decision, cerr := r.o.confirmer.Confirm(ctx, Prompt{
			DocumentID: r.job.Document.ID,
			Strategy:   s.Name(),
			Reason:     err.Error(),
			Remedy:     exportErr.Remedy,
		})
		switch {
		case cerr != nil:
			r.log.WithError(cerr).Info("Export confirmation aborted")
		case decision == DecisionRetry:
			r.log.WithField("strategy", s.Name()).Info("Retrying blocked export")
			artifact, rerr := r.attempt(ctx, s)
			if rerr == nil {
				return r.succeed(s, artifact)
			}
			exportErr = NewError(r.op, s.Name(), rerr, remedyFor(s.Name(), rerr))
		}
	}

	if ctx.Err() != nil && !errors.Is(exportErr, ctx.Err()) {
		exportErr.Err = fmt.Errorf("%w (%v)", exportErr.Err, ctx.Err())
	}

	r.to(StateFailed)
	r.result.Status = StatusFailed
	r.result.Strategy = s.Name()
	r.result.Reason = exportErr.Err.Error()
	r.result.Remedy = exportErr.Remedy
	r.result.Err = exportErr
	return r.result
}

func remedyFor(strategy string, err error) string {
	switch {
	case errors.Is(err, ErrFallbackBlocked):
		return RemedyAllowPopups
	case errors.Is(err, ErrShareBlocked):
		return RemedyCopyText
	case errors.Is(err, ErrArtifactStore), errors.Is(err, ErrPrintSurfaceFailed):
		return RemedyRetry
	case errors.Is(err, ErrRenderingUnavailable):
		return RemedyPrintToPDF
	}

	switch strategy {
	case StrategyShare:
		return RemedyCopyText
	case StrategyFile:
		return RemedyPrintToPDF
	default:
		return RemedyRetry
	}
}

// usable rejects empty blobs and files that claim to be PDFs without the
// PDF header
func usable(a *models.Artifact) bool {
	switch a.Kind {
	case models.ArtifactFile:
		if len(a.Blob) == 0 {
			return false
		}
		return a.ContentType != pdf.ContentType || pdf.IsPDF(a.Blob)
	case models.ArtifactText:
		return a.Content != ""
	case models.ArtifactPrintSurface:
		return a.Markup != "" || a.URL != ""
	default:
		return false
	}
}
