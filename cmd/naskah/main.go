package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"naskahpad/config"
	"naskahpad/internal/document/model"
	"naskahpad/internal/editor"
	"naskahpad/internal/session"
	"naskahpad/pkg/logger"
	"naskahpad/pkg/naskah"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"
)

const version = "0.1.0"

const usage = `Collaborative plain-text pad.

Opens the document named by --doc, or creates a new one and prints its share link.
Lines typed on stdin are appended to the document; lines starting with ':' are commands.

Usage:
    naskah [--server=<url>] [--key=<key>] [--origin=<origin>] [--doc=<id>]
    naskah -h | --help
    naskah --version

Options:
    -h --help          Show this screen.
    --version          Show version.
    --server=<url>     Document store URL [env: NASKAH_URL].
    --key=<key>        API key [env: NASKAH_KEY].
    --origin=<origin>  Origin used in share links [env: NASKAH_ORIGIN].
    --doc=<id>         Document id to open.

Commands:
    :title <text>      Rename the document.
    :tab <pos>         Insert two spaces at rune offset <pos>.
    :share             Copy the share link to the clipboard.
    :show              Print the document.
    :q                 Quit.`

func main() {
	_ = godotenv.Load()
	cfg := config.LoadClient()

	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if v, _ := opts.String("--server"); v != "" {
		cfg.ServerURL = v
		if o, _ := opts.String("--origin"); o == "" && os.Getenv("NASKAH_ORIGIN") == "" {
			cfg.Origin = v
		}
	}
	if v, _ := opts.String("--key"); v != "" {
		cfg.APIKey = v
	}
	if v, _ := opts.String("--origin"); v != "" {
		cfg.Origin = v
	}
	docID, _ := opts.String("--doc")

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if err := run(cfg, docID, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.ClientConfig, docID string, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := naskah.Init(cfg.ServerURL, cfg.APIKey); err != nil {
		return err
	}
	store := naskah.Default()

	start := cfg.Origin
	if docID != "" {
		start = session.ShareURL(cfg.Origin, docID)
	}
	nav, err := session.NewURLNavigator(start)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, session.Loading)
	res := session.Resolve(ctx, store, nav)
	if res.State != session.Ready {
		return fmt.Errorf("%s", res.State)
	}

	v := &view{out: out, shown: *res.Document}
	sess := session.New(store, *res.Document, v.onDocument)
	if err := sess.Start(ctx); err != nil {
		logger.Sugar.Errorf("Failed to subscribe to document: %v", err)
	}
	defer sess.Close()

	c := newClient(sess, v, cfg.Origin)
	if err := c.surface.Open(ctx); err != nil {
		logger.Sugar.Errorf("Failed to subscribe to document: %v", err)
	}
	defer c.surface.Close()

	doc := sess.Document()
	v.printf("%s\n%s\n", doc.Title, session.ShareURL(cfg.Origin, doc.ID))
	v.printDoc(doc)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// client dispatches stdin lines to the editing surface and the header controls.
type client struct {
	sess    *session.Session
	surface *editor.Surface
	title   *session.TitleEditor
	sharer  *session.Sharer
	view    *view
}

func newClient(sess *session.Session, v *view, origin string, opts ...editor.Option) *client {
	return &client{
		sess:    sess,
		surface: sess.Editor(opts...),
		title:   session.NewTitleEditor(sess),
		sharer:  session.NewSharer(origin, session.TerminalClipboard{W: v}, nil),
		view:    v,
	}
}

// handle runs one input line and reports whether the client should quit.
func (c *client) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		content := c.surface.Content() + line + "\n"
		c.view.expect(func(doc *model.Document) { doc.Content = content })
		c.surface.Input(content)
		return false
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	switch cmd {
	case "q", "quit":
		return true
	case "title":
		if title := strings.TrimSpace(arg); title != "" {
			c.view.expect(func(doc *model.Document) { doc.Title = title })
		}
		c.title.Begin()
		c.title.Set(arg)
		if !c.title.Submit(ctx) {
			c.view.printf("title unchanged\n")
		}
	case "tab":
		pos, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			c.view.printf("usage: :tab <pos>\n")
			return false
		}
		c.view.expect(func(doc *model.Document) {
			runes := []rune(doc.Content)
			at := min(max(pos, 0), len(runes))
			doc.Content = string(runes[:at]) + "  " + string(runes[at:])
		})
		c.view.printf("caret at %d\n", c.surface.InsertTab(pos, pos))
	case "share":
		link := c.sharer.Share(ctx, c.surface.DocumentID())
		c.view.printf("\ncopied %s\n", link)
	case "show":
		c.view.printDoc(c.sess.Document())
	default:
		c.view.printf("unknown command %q\n", cmd)
	}
	return false
}

// view serializes terminal output and prints documents changed by other
// clients as they arrive. shown is the last state on screen, so local edits
// and their echoes from the store print nothing.
type view struct {
	mu    sync.Mutex
	out   io.Writer
	shown model.Document
}

func (v *view) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.out.Write(p)
}

func (v *view) printf(format string, args ...interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

// expect records a local edit before it is applied.
func (v *view) expect(edit func(doc *model.Document)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	edit(&v.shown)
}

func (v *view) onDocument(doc model.Document) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if doc.Title == v.shown.Title && doc.Content == v.shown.Content {
		return
	}
	if doc.Title != v.shown.Title {
		fmt.Fprintf(v.out, "title changed: %s\n", doc.Title)
	}
	if doc.Content != v.shown.Content {
		writeDoc(v.out, doc)
	}
	v.shown.Title, v.shown.Content = doc.Title, doc.Content
}

func (v *view) printDoc(doc model.Document) {
	v.mu.Lock()
	defer v.mu.Unlock()
	writeDoc(v.out, doc)
}

func writeDoc(out io.Writer, doc model.Document) {
	fmt.Fprintf(out, "--- %s ---\n%s", doc.Title, doc.Content)
	if doc.Content != "" && !strings.HasSuffix(doc.Content, "\n") {
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "---")
}
