package session

import (
	"context"
	"fmt"

	"naskahpad/internal/document/model"
	"naskahpad/pkg/logger"
)

type State int

const (
	Loading State = iota
	Ready
	NotFound
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "Loading..."
	case Ready:
		return "ready"
	case NotFound:
		return "Document not found"
	case Failed:
		return "Failed to load document"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the state ends the session. There is no retry.
func (s State) Terminal() bool {
	return s == NotFound || s == Failed
}

type Store interface {
	Create(ctx context.Context, title string) (*model.Document, error)
	Get(ctx context.Context, id string) (*model.Document, error)
	UpdateContent(ctx context.Context, id, content string) error
	UpdateTitle(ctx context.Context, id, title string) error
	Subscribe(ctx context.Context, id string, onChange func(model.Document)) (func(), error)
}

// Navigator is the navigation context the document id lives in.
type Navigator interface {
	DocumentID() (string, bool)
	// ReplaceDocumentID rewrites the context in place, without reloading.
	ReplaceDocumentID(id string)
}

type Result struct {
	State    State
	Document *model.Document
	Err      error
}

// Resolve decides which document this session edits: the one named by the
// navigation context, or a fresh one whose id is then written back into it.
func Resolve(ctx context.Context, store Store, nav Navigator) Result {
	if id, ok := nav.DocumentID(); ok {
		doc, err := store.Get(ctx, id)
		if err != nil {
			logger.Sugar.Errorf("Failed to initialize document: %v", err)
			return Result{State: Failed, Err: err}
		}
		if doc == nil {
			return Result{State: NotFound}
		}
		return Result{State: Ready, Document: doc}
	}

	doc, err := store.Create(ctx, model.DefaultTitle)
	if err != nil {
		logger.Sugar.Errorf("Failed to initialize document: %v", err)
		return Result{State: Failed, Err: err}
	}
	nav.ReplaceDocumentID(doc.ID)
	return Result{State: Ready, Document: doc}
}
