package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"time"

	"naskahpad/internal/editor"
	"naskahpad/pkg/logger"
)

// CopiedFor is how long the "copied" indicator stays on after a share.
const CopiedFor = 2 * time.Second

// ShareURL is the link another client opens to edit the same document.
func ShareURL(origin, id string) string {
	return origin + "?" + DocParam + "=" + id
}

type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Sharer copies the share link and keeps the short-lived "copied" indicator.
type Sharer struct {
	origin    string
	clipboard Clipboard
	sched     editor.Scheduler

	mu     sync.Mutex
	copied bool
	reset  editor.Timer
}

func NewSharer(origin string, clipboard Clipboard, sched editor.Scheduler) *Sharer {
	if sched == nil {
		sched = editor.WallClock{}
	}
	return &Sharer{origin: origin, clipboard: clipboard, sched: sched}
}

// Share writes the link for id to the clipboard. A clipboard failure is
// logged and leaves the indicator off.
func (s *Sharer) Share(ctx context.Context, id string) string {
	link := ShareURL(s.origin, id)
	if err := s.clipboard.WriteText(ctx, link); err != nil {
		logger.Sugar.Errorf("Failed to copy: %v", err)
		return link
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reset != nil {
		s.reset.Stop()
	}
	s.copied = true
	s.reset = s.sched.AfterFunc(CopiedFor, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.copied = false
		s.reset = nil
	})
	return link
}

func (s *Sharer) Copied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copied
}

// TerminalClipboard sets the system clipboard through the OSC 52 escape
// sequence, which most terminal emulators forward to the host.
type TerminalClipboard struct {
	W io.Writer
}

func (c TerminalClipboard) WriteText(_ context.Context, text string) error {
	_, err := fmt.Fprintf(c.W, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}
