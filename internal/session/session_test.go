package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"naskahpad/internal/document/model"
	"naskahpad/internal/editor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	docs      map[string]*model.Document
	creates   []string
	gets      []string
	titles    []string
	contents  []string
	getErr    error
	createErr error
	titleErr  error
	listeners map[int]func(model.Document)
	next      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*model.Document), listeners: make(map[int]func(model.Document))}
}

func (f *fakeStore) Create(_ context.Context, title string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, title)
	if f.createErr != nil {
		return nil, f.createErr
	}
	doc := &model.Document{ID: "new-id", Title: title, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.docs[id], nil
}

func (f *fakeStore) UpdateContent(_ context.Context, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, content)
	return nil
}

func (f *fakeStore) UpdateTitle(_ context.Context, id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	return f.titleErr
}

func (f *fakeStore) Subscribe(_ context.Context, id string, onChange func(model.Document)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.next
	f.next++
	f.listeners[key] = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, key)
	}, nil
}

func (f *fakeStore) emit(doc model.Document) {
	f.mu.Lock()
	var ls []func(model.Document)
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(doc)
	}
}

type stepClock struct {
	timers []*stepTimer
}

type stepTimer struct {
	f    func()
	done bool
}

func (t *stepTimer) Stop() bool {
	was := !t.done
	t.done = true
	return was
}

func (c *stepClock) AfterFunc(_ time.Duration, f func()) editor.Timer {
	t := &stepTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *stepClock) fireAll() {
	for _, t := range c.timers {
		if !t.done {
			t.done = true
			t.f()
		}
	}
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func TestResolveCreatesWhenNoID(t *testing.T) {
	store := newFakeStore()
	nav, err := NewURLNavigator("https://pad.example/")
	require.NoError(t, err)

	res := Resolve(context.Background(), store, nav)

	require.Equal(t, Ready, res.State)
	assert.Equal(t, "new-id", res.Document.ID)
	assert.Equal(t, []string{model.DefaultTitle}, store.creates)
	assert.Empty(t, store.gets)
	id, ok := nav.DocumentID()
	assert.True(t, ok)
	assert.Equal(t, "new-id", id)
	assert.Equal(t, "https://pad.example/?doc=new-id", nav.String())
}

func TestResolveLoadsExisting(t *testing.T) {
	store := newFakeStore()
	store.docs["abc"] = &model.Document{ID: "abc", Title: "Existing", Content: "text"}
	nav, _ := NewURLNavigator("https://pad.example/?doc=abc")

	res := Resolve(context.Background(), store, nav)

	require.Equal(t, Ready, res.State)
	assert.Equal(t, "text", res.Document.Content)
	assert.Empty(t, store.creates)
	assert.Equal(t, "https://pad.example/?doc=abc", nav.String())
}

func TestResolveNotFoundDoesNotCreate(t *testing.T) {
	store := newFakeStore()
	nav, _ := NewURLNavigator("https://pad.example/?doc=missing")

	res := Resolve(context.Background(), store, nav)

	assert.Equal(t, NotFound, res.State)
	assert.True(t, res.State.Terminal())
	assert.Equal(t, "Document not found", res.State.String())
	assert.Nil(t, res.Document)
	assert.Empty(t, store.creates)
}

func TestResolveFailures(t *testing.T) {
	t.Run("get fails", func(t *testing.T) {
		store := newFakeStore()
		store.getErr = errors.New("network down")
		nav, _ := NewURLNavigator("/?doc=abc")

		res := Resolve(context.Background(), store, nav)
		assert.Equal(t, Failed, res.State)
		assert.Equal(t, "Failed to load document", res.State.String())
		assert.Empty(t, store.creates)
	})

	t.Run("create fails", func(t *testing.T) {
		store := newFakeStore()
		store.createErr = errors.New("insert rejected")
		nav, _ := NewURLNavigator("/")

		res := Resolve(context.Background(), store, nav)
		assert.Equal(t, Failed, res.State)
		assert.Error(t, res.Err)
		_, ok := nav.DocumentID()
		assert.False(t, ok, "context is untouched when creation fails")
	})
}

func TestSessionFollowsRemoteUpdates(t *testing.T) {
	store := newFakeStore()
	var seen []model.Document
	s := New(store, model.Document{ID: "abc", Title: "Old"}, func(d model.Document) { seen = append(seen, d) })
	require.NoError(t, s.Start(context.Background()))

	store.emit(model.Document{ID: "abc", Title: "Renamed elsewhere", Content: "c"})
	assert.Equal(t, "Renamed elsewhere", s.Document().Title)
	require.Len(t, seen, 1)

	store.emit(model.Document{ID: "other", Title: "x"})
	assert.Equal(t, "Renamed elsewhere", s.Document().Title)

	s.Close()
	s.Close()
	store.emit(model.Document{ID: "abc", Title: "After close"})
	assert.Equal(t, "Renamed elsewhere", s.Document().Title)
	assert.Len(t, seen, 1)
}

func TestSessionEditorMirrorsContent(t *testing.T) {
	store := newFakeStore()
	s := New(store, model.Document{ID: "abc", Content: ""}, nil)
	clock := &stepClock{}

	surface := s.Editor(editor.WithScheduler(clock))
	defer surface.Close()

	surface.Input("typed")
	assert.Equal(t, "typed", s.Document().Content)
	clock.fireAll()
	assert.Equal(t, []string{"typed"}, store.contents)
}

func TestTitleSubmit(t *testing.T) {
	t.Run("trimmed title is applied", func(t *testing.T) {
		store := newFakeStore()
		s := New(store, model.Document{ID: "abc", Title: "Old"}, nil)
		te := NewTitleEditor(s)

		te.Begin()
		assert.True(t, te.Editing())
		te.Set("  New title  ")
		assert.True(t, te.Submit(context.Background()))

		assert.False(t, te.Editing())
		assert.Equal(t, "New title", s.Document().Title)
		assert.Equal(t, []string{"New title"}, store.titles)
	})

	t.Run("blank title reverts without update", func(t *testing.T) {
		store := newFakeStore()
		s := New(store, model.Document{ID: "abc", Title: "Old"}, nil)
		te := NewTitleEditor(s)

		te.Begin()
		te.Set(" \t ")
		assert.False(t, te.Submit(context.Background()))

		assert.Equal(t, "Old", te.Draft())
		assert.Equal(t, "Old", s.Document().Title)
		assert.Empty(t, store.titles)
	})

	t.Run("cancel reverts", func(t *testing.T) {
		store := newFakeStore()
		s := New(store, model.Document{ID: "abc", Title: "Old"}, nil)
		te := NewTitleEditor(s)

		te.Begin()
		te.Set("Half typed")
		te.Cancel()
		assert.Equal(t, "Old", te.Draft())
		assert.False(t, te.Editing())
		assert.Empty(t, store.titles)
	})

	t.Run("failed update keeps optimistic title", func(t *testing.T) {
		store := newFakeStore()
		store.titleErr = errors.New("rejected")
		s := New(store, model.Document{ID: "abc", Title: "Old"}, nil)
		te := NewTitleEditor(s)

		te.Begin()
		te.Set("Kept")
		assert.True(t, te.Submit(context.Background()))
		assert.Equal(t, "Kept", s.Document().Title)
	})
}

func TestShare(t *testing.T) {
	assert.Equal(t, "https://pad.example?doc=abc", ShareURL("https://pad.example", "abc"))

	clip := &fakeClipboard{}
	clock := &stepClock{}
	sh := NewSharer("https://pad.example", clip, clock)

	link := sh.Share(context.Background(), "abc")
	assert.Equal(t, "https://pad.example?doc=abc", link)
	assert.Equal(t, link, clip.text)
	assert.True(t, sh.Copied())

	clock.fireAll()
	assert.False(t, sh.Copied())
}

func TestShareClipboardFailure(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("denied")}
	sh := NewSharer("https://pad.example", clip, &stepClock{})

	sh.Share(context.Background(), "abc")
	assert.False(t, sh.Copied())
}

func TestTerminalClipboard(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, TerminalClipboard{W: &sb}.WriteText(context.Background(), "hi"))
	assert.Equal(t, "\x1b]52;c;aGk=\a", sb.String())
}
