package session

import (
	"context"
	"sync"

	"naskahpad/internal/document/model"
	"naskahpad/internal/editor"
	"naskahpad/pkg/logger"
)

// Session holds the loaded document and keeps it in step with the store.
type Session struct {
	store      Store
	onDocument func(model.Document)

	mu          sync.Mutex
	doc         model.Document
	unsubscribe func()
	closed      bool
}

// New starts a session on a resolved document. onDocument, if set, is called
// whenever the displayed document changes.
func New(store Store, doc model.Document, onDocument func(model.Document)) *Session {
	if onDocument == nil {
		onDocument = func(model.Document) {}
	}
	return &Session{store: store, doc: doc, onDocument: onDocument}
}

// Start subscribes to updates of the whole row, so title changes made
// elsewhere reach this session.
func (s *Session) Start(ctx context.Context) error {
	unsubscribe, err := s.store.Subscribe(ctx, s.Document().ID, s.replace)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

func (s *Session) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Editor returns an editing surface bound to the session's document. The
// surface mirrors local edits into the session's copy of the content.
func (s *Session) Editor(opts ...editor.Option) *editor.Surface {
	doc := s.Document()
	opts = append(opts, editor.WithOnChange(s.setContent))
	return editor.New(s.store, doc, opts...)
}

// SetTitle shows title at once and writes it in the background of the
// caller; a failed write is logged and the displayed title is kept.
func (s *Session) SetTitle(ctx context.Context, title string) {
	s.mu.Lock()
	s.doc.Title = title
	doc := s.doc
	s.mu.Unlock()
	s.onDocument(doc)

	if err := s.store.UpdateTitle(ctx, doc.ID, title); err != nil {
		logger.Sugar.Errorf("Failed to update title: %v", err)
	}
}

func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Session) replace(doc model.Document) {
	s.mu.Lock()
	if s.closed || doc.ID != s.doc.ID {
		s.mu.Unlock()
		return
	}
	s.doc = doc
	s.mu.Unlock()
	s.onDocument(doc)
}

func (s *Session) setContent(content string) {
	s.mu.Lock()
	s.doc.Content = content
	doc := s.doc
	s.mu.Unlock()
	s.onDocument(doc)
}
