// Package session ties two documents, the comparison orchestrator and the
// change tracker into one diff view. A Session is owned by a single goroutine;
// only comparisons run elsewhere, and their results come back through
// Results to be handed to Apply.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mergeview/internal/apply"
	"mergeview/internal/compare"
	"mergeview/internal/document"
	"mergeview/internal/fragment"
	"mergeview/internal/navigate"
	"mergeview/internal/rediff"
	"mergeview/internal/syncscroll"
	"mergeview/internal/tracker"
)

// TwoSideTextDiffSession is what the reconciliation core needs from a view.
type TwoSideTextDiffSession interface {
	Document(side fragment.Side) *document.Document
	CaptureSnapshot() rediff.Input
	Apply(res rediff.Result) bool
	OnDocumentEdit(side fragment.Side, e document.Event)
}

type Notification int

const (
	NotifyNone Notification = iota
	NotifyEqual
	NotifyTooBig
	NotifyCancelled
	NotifyError
)

func (n Notification) String() string {
	switch n {
	case NotifyEqual:
		return "contents are identical"
	case NotifyTooBig:
		return "contents are too big to compare"
	case NotifyCancelled:
		return "comparison cancelled"
	case NotifyError:
		return "cannot calculate diff"
	default:
		return ""
	}
}

type Direction int

const (
	Next Direction = iota
	Prev
)

type ScrollTarget int

const (
	FirstChange ScrollTarget = iota
	LastChange
)

type options struct {
	oracle    compare.Oracle
	policy    compare.Policy
	log       *zap.Logger
	decorator tracker.Decorator
}

type Option func(*options)

func WithOracle(o compare.Oracle) Option {
	return func(opts *options) { opts.oracle = o }
}

func WithPolicy(p compare.Policy) Option {
	return func(opts *options) { opts.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(opts *options) { opts.log = l }
}

// WithDecorator sets the decorator that receives every change created.
func WithDecorator(d tracker.Decorator) Option {
	return func(opts *options) { opts.decorator = d }
}

type Session struct {
	docs   [2]*document.Document
	absent [2]bool

	policy       compare.Policy
	tracker      *tracker.Tracker
	orch         *rediff.Orchestrator
	log          *zap.Logger
	notification Notification
	busy         bool
	unlisten     []func()
}

var _ TwoSideTextDiffSession = (*Session)(nil)

// New builds a session over doc1 and doc2. A nil document is an absent side;
// it is replaced by an empty read-only document.
func New(doc1, doc2 *document.Document, opts ...Option) *Session {
	o := options{policy: compare.DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.oracle == nil {
		o.oracle = compare.NewLineOracle(compare.WithLogger(o.log))
	}

	s := &Session{
		policy:  o.policy,
		tracker: tracker.New(o.decorator),
		orch:    rediff.NewOrchestrator(o.oracle, o.log),
		log:     o.log.Named("session"),
	}
	for i, d := range []*document.Document{doc1, doc2} {
		if d == nil {
			d = document.New("", "")
			d.SetReadOnly(true)
			s.absent[i] = true
		}
		s.docs[i] = d
		side := fragment.Side(i)
		s.unlisten = append(s.unlisten, d.AddListener(func(_ *document.Document, e document.Event) {
			s.OnDocumentEdit(side, e)
		}))
	}
	return s
}

func (s *Session) Document(side fragment.Side) *document.Document {
	return s.docs[side.Index()]
}

// Absent reports whether side has no content at all, as opposed to empty
// content.
func (s *Session) Absent(side fragment.Side) bool {
	return s.absent[side.Index()]
}

func (s *Session) Policy() compare.Policy { return s.policy }

// SetPolicy changes the comparison policy and starts a new comparison.
func (s *Session) SetPolicy(ctx context.Context, p compare.Policy) uint64 {
	s.policy = p
	return s.Rediff(ctx)
}

func (s *Session) SetOracle(o compare.Oracle) {
	s.orch.SetOracle(o)
}

// CaptureSnapshot copies both documents with their stamps.
func (s *Session) CaptureSnapshot() rediff.Input {
	in := rediff.Input{Policy: s.policy}
	if !s.absent[0] {
		snap := s.docs[0].Snapshot()
		in.Side1 = &snap
	}
	if !s.absent[1] {
		snap := s.docs[1].Snapshot()
		in.Side2 = &snap
	}
	return in
}

// Rediff starts a comparison in the background, cancelling any in flight.
func (s *Session) Rediff(ctx context.Context) uint64 {
	s.busy = true
	return s.orch.Start(ctx, s.CaptureSnapshot())
}

// RediffNow compares on the calling goroutine and applies the result.
func (s *Session) RediffNow(ctx context.Context) rediff.Result {
	s.busy = true
	res := s.orch.Run(ctx, s.CaptureSnapshot())
	s.Apply(res)
	return res
}

// Cancel aborts the running comparison. Its result clears the view once
// applied.
func (s *Session) Cancel() {
	s.orch.Cancel()
}

func (s *Session) Results() <-chan rediff.Result {
	return s.orch.Results()
}

// Apply installs res unless it is stale: superseded by a newer comparison, or
// computed from content that has changed since. It reports whether res was
// installed.
func (s *Session) Apply(res rediff.Result) bool {
	if res.Generation != 0 && res.Generation != s.orch.Latest() {
		s.log.Debug("dropping superseded result", zap.Uint64("generation", res.Generation))
		return false
	}
	if (!s.absent[0] && s.docs[0].Stamp() != res.Stamp1) || (!s.absent[1] && s.docs[1].Stamp() != res.Stamp2) {
		s.log.Debug("dropping stale result",
			zap.Int64("stamp1", res.Stamp1),
			zap.Int64("stamp2", res.Stamp2),
			zap.Int64("live1", s.docs[0].Stamp()),
			zap.Int64("live2", s.docs[1].Stamp()))
		return false
	}

	s.busy = false
	s.notification = NotifyNone
	s.tracker.Clear()

	switch res.Outcome {
	case rediff.OutcomeTooLarge:
		s.notification = NotifyTooBig
	case rediff.OutcomeCancelled:
		s.notification = NotifyCancelled
	case rediff.OutcomeFailed:
		s.notification = NotifyError
		s.log.Warn("comparison failed", zap.Error(res.Err))
	default:
		if res.Equal {
			s.notification = NotifyEqual
		}
		s.tracker.Reset(res.Fragments)
	}
	return true
}

// OnDocumentEdit reprojects the changes for an edit about to be applied to
// side. The session registers it as a document listener itself.
func (s *Session) OnDocumentEdit(side fragment.Side, e document.Event) {
	if s.tracker.Len() == 0 {
		return
	}
	line1, line2, shift := tracker.EditRange(s.docs[side.Index()], e)
	if n := s.tracker.OnEdit(side, line1, line2, shift); n > 0 {
		s.log.Debug("changes invalidated",
			zap.Stringer("side", side),
			zap.Int("line1", line1),
			zap.Int("line2", line2),
			zap.Int("count", n))
	}
}

func (s *Session) Changes() []*tracker.Change { return s.tracker.Active() }

func (s *Session) InvalidChanges() []*tracker.Change { return s.tracker.Invalid() }

func (s *Session) ActiveChangeCount() int { return s.tracker.Len() }

func (s *Session) ChangeRange(c *tracker.Change, side fragment.Side) (int, int) {
	return c.StartLine(side), c.EndLine(side)
}

func (s *Session) Notification() Notification { return s.notification }

func (s *Session) Busy() bool { return s.busy }

// StatusText counts active and invalidated changes.
func (s *Session) StatusText() string {
	n := s.tracker.Total()
	if n == 1 {
		return "1 difference"
	}
	return fmt.Sprintf("%d differences", n)
}

// CanGo reports whether ScrollToNearestChange would find a change.
func (s *Session) CanGo(dir Direction, side fragment.Side, caret int) bool {
	changes := s.tracker.Active()
	if len(changes) == 0 {
		return false
	}
	if dir == Next {
		if caret == s.docs[side.Index()].LineCount()-1 {
			return false
		}
		return changes[len(changes)-1].StartLine(side) > caret
	}
	if caret == 0 {
		return false
	}
	first := changes[0]
	return first.EndLine(side) <= caret && first.StartLine(side) < caret
}

// ScrollToNearestChange returns the start line of the change after or before
// caret on side.
func (s *Session) ScrollToNearestChange(dir Direction, side fragment.Side, caret int) (int, bool) {
	if !s.CanGo(dir, side, caret) {
		return 0, false
	}
	changes := s.tracker.Active()
	if dir == Next {
		for _, c := range changes {
			if c.StartLine(side) > caret {
				return c.StartLine(side), true
			}
		}
		return 0, false
	}
	for i, c := range changes {
		if i == len(changes)-1 {
			return c.StartLine(side), true
		}
		next := changes[i+1]
		if next.EndLine(side) > caret || next.StartLine(side) >= caret {
			return c.StartLine(side), true
		}
	}
	return 0, false
}

// ScrollToChange returns the start line of the first or last change.
func (s *Session) ScrollToChange(target ScrollTarget, side fragment.Side) (int, bool) {
	changes := s.tracker.Active()
	if len(changes) == 0 {
		return 0, false
	}
	c := changes[0]
	if target == LastChange {
		c = changes[len(changes)-1]
	}
	return c.StartLine(side), true
}

// ChangeAt returns the active change touching line on side.
func (s *Session) ChangeAt(side fragment.Side, line int) (*tracker.Change, bool) {
	for _, c := range s.tracker.Active() {
		if c.Touches(side, line) {
			return c, true
		}
	}
	return nil, false
}

// Mapper snapshots the current change coordinates for scroll syncing.
func (s *Session) Mapper() *syncscroll.Mapper {
	return syncscroll.New(syncscroll.FromChanges(s.tracker.Active()), s.docs[0].LineCount(), s.docs[1].LineCount())
}

func (s *Session) MapLine(side fragment.Side, line int) int {
	return s.Mapper().Transfer(side, line)
}

// ApplySelected copies the changes selected on side into the other side.
func (s *Session) ApplySelected(side fragment.Side, sel apply.Selection) (int, error) {
	if !apply.IsSomeChangeSelected(s.tracker.Active(), side, sel) {
		return 0, apply.ErrNothingSelected
	}
	dst := s.docs[side.Other().Index()]
	n, err := apply.Selected(s.tracker, side, s.docs[side.Index()], dst, sel.Lines)
	if err != nil {
		if !errors.Is(err, apply.ErrNothingSelected) {
			s.log.Warn("apply selected failed", zap.Stringer("side", side), zap.Error(err))
		}
		return 0, err
	}
	s.log.Debug("applied changes", zap.Stringer("from", side), zap.Int("count", n))
	return n, nil
}

// Resolve finds the current line on the right side for a recorded context.
func (s *Session) Resolve(ctx navigate.Context) (int, bool) {
	doc := s.docs[fragment.Side2.Index()]
	return navigate.Resolve(ctx, navigate.ChangedLines(s.tracker.Active(), fragment.Side2, doc), navigate.AllLines(doc))
}

// Close stops background work, destroys all changes and detaches from the
// documents.
func (s *Session) Close() {
	s.orch.Stop()
	s.tracker.Clear()
	for _, remove := range s.unlisten {
		remove()
	}
	s.unlisten = nil
}
