package session

import (
	"context"
	"strings"
	"sync"
)

// TitleEditor is the inline title field: a draft that is either submitted
// or thrown away.
type TitleEditor struct {
	session *Session

	mu      sync.Mutex
	editing bool
	draft   string
}

func NewTitleEditor(s *Session) *TitleEditor {
	return &TitleEditor{session: s, draft: s.Document().Title}
}

func (t *TitleEditor) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.editing = true
	t.draft = t.session.Document().Title
}

func (t *TitleEditor) Set(draft string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = draft
}

// Cancel reverts the draft to the current title.
func (t *TitleEditor) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = t.session.Document().Title
	t.editing = false
}

// Submit applies the trimmed draft. A blank draft reverts to the current
// title and nothing is written. It reports whether an update was issued.
func (t *TitleEditor) Submit(ctx context.Context) bool {
	t.mu.Lock()
	title := strings.TrimSpace(t.draft)
	t.editing = false
	if title == "" {
		t.draft = t.session.Document().Title
		t.mu.Unlock()
		return false
	}
	t.draft = title
	t.mu.Unlock()

	t.session.SetTitle(ctx, title)
	return true
}

func (t *TitleEditor) Editing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editing
}

func (t *TitleEditor) Draft() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}
