// Package editor binds a text buffer to a document in the store: local edits
// are written back after a quiet period, remote updates replace the buffer
// without being written back.
package editor

import (
	"context"
	"sync"
	"time"

	"naskahpad/internal/document/model"
	"naskahpad/pkg/logger"

	"go.uber.org/zap"
)

// DefaultQuietPeriod is how long typing must pause before the buffer is written.
const DefaultQuietPeriod = 500 * time.Millisecond

const tabIndent = "  "

type Store interface {
	UpdateContent(ctx context.Context, id, content string) error
	Subscribe(ctx context.Context, id string, onChange func(model.Document)) (func(), error)
}

type Option func(*Surface)

func WithQuietPeriod(d time.Duration) Option {
	return func(s *Surface) { s.quiet = d }
}

func WithScheduler(sched Scheduler) Option {
	return func(s *Surface) { s.sched = sched }
}

// WithOnChange registers the view that mirrors the buffer. It is called
// outside the surface lock and may read the surface.
func WithOnChange(f func(content string)) Option {
	return func(s *Surface) { s.onChange = f }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Surface) { s.log = l }
}

// Surface is safe for use from the UI goroutine, the timer goroutine and the
// subscription goroutine at once; all state sits behind mu.
type Surface struct {
	store    Store
	sched    Scheduler
	quiet    time.Duration
	onChange func(string)
	log      *zap.SugaredLogger

	mu          sync.Mutex
	docID       string
	buffer      string
	caret       int
	suppress    bool // armed by a remote update, consumed by its own change handler run
	pending     Timer
	generation  uint64 // bumped on every cancel so a timer that already fired stays inert
	unsubscribe func()
	closed      bool
}

func New(store Store, doc model.Document, opts ...Option) *Surface {
	s := &Surface{
		store:    store,
		sched:    WallClock{},
		quiet:    DefaultQuietPeriod,
		onChange: func(string) {},
		log:      logger.Sugar,
		docID:    doc.ID,
		buffer:   doc.Content,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open subscribes to remote updates of the bound document.
func (s *Surface) Open(ctx context.Context) error {
	s.mu.Lock()
	docID := s.docID
	s.mu.Unlock()

	unsubscribe, err := s.store.Subscribe(ctx, docID, s.ApplyRemote)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed || s.docID != docID {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

// Rebind points the surface at another document: the pending write is
// dropped, the old subscription released and a new one opened.
func (s *Surface) Rebind(ctx context.Context, doc model.Document) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.cancelPendingLocked()
	old := s.unsubscribe
	s.unsubscribe = nil
	s.docID = doc.ID
	s.buffer = doc.Content
	s.caret = clamp(s.caret, 0, runeLen(doc.Content))
	s.suppress = false
	s.mu.Unlock()

	if old != nil {
		old()
	}
	return s.Open(ctx)
}

// ApplyRemote takes an update delivered by the store. The suppress flag is
// armed and the new content goes through the same change handler as a local
// edit, which consumes the flag: the buffer is replaced, any pending write is
// dropped and nothing is scheduled.
func (s *Surface) ApplyRemote(doc model.Document) {
	s.mu.Lock()
	if s.closed || doc.ID != s.docID {
		s.mu.Unlock()
		return
	}
	s.suppress = true
	s.changeLocked(doc.Content)
	s.mu.Unlock()

	s.onChange(doc.Content)
}

// Input handles an edit from the text field; content is the whole new buffer.
func (s *Surface) Input(content string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.changeLocked(content)
	s.mu.Unlock()

	s.onChange(content)
}

// changeLocked is the change handler shared by local edits and remote
// updates. An armed suppress flag is cleared instead of scheduling a write.
func (s *Surface) changeLocked(content string) {
	s.buffer = content
	s.caret = clamp(s.caret, 0, runeLen(content))
	s.cancelPendingLocked()
	if s.suppress {
		s.suppress = false
		return
	}
	s.scheduleLocked()
}

// InsertTab replaces the selection [start, end) with two spaces and returns
// the new caret. Offsets are in runes and are clamped to the buffer. Tab
// always schedules a write; the suppress flag is neither checked nor consumed.
func (s *Surface) InsertTab(start, end int) int {
	s.mu.Lock()
	if s.closed {
		caret := s.caret
		s.mu.Unlock()
		return caret
	}
	runes := []rune(s.buffer)
	start = clamp(start, 0, len(runes))
	end = clamp(end, 0, len(runes))
	if end < start {
		start, end = end, start
	}
	content := string(runes[:start]) + tabIndent + string(runes[end:])
	s.buffer = content
	s.caret = start + len(tabIndent)
	caret := s.caret
	s.cancelPendingLocked()
	s.scheduleLocked()
	s.mu.Unlock()

	s.onChange(content)
	return caret
}

// Close drops any pending write and releases the subscription. Safe to call twice.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelPendingLocked()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Surface) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

func (s *Surface) Caret() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caret
}

func (s *Surface) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docID
}

// Pending reports whether a write is scheduled.
func (s *Surface) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Surface) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.generation++
}

func (s *Surface) scheduleLocked() {
	gen := s.generation
	s.pending = s.sched.AfterFunc(s.quiet, func() { s.flush(gen) })
}

// flush writes the buffer as it is when the quiet period ends. Failures are
// logged and dropped: no rollback, no retry.
func (s *Surface) flush(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	docID, content := s.docID, s.buffer
	s.mu.Unlock()

	if err := s.store.UpdateContent(context.Background(), docID, content); err != nil {
		s.log.Errorf("Failed to update document %s: %v", docID, err)
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
