package session

import (
	"net/url"
	"strings"
	"sync"
)

// DocParam is the query parameter carrying the document id.
const DocParam = "doc"

// URLNavigator keeps the navigation context as a URL and its ?doc= parameter.
type URLNavigator struct {
	mu  sync.Mutex
	url *url.URL
}

func NewURLNavigator(raw string) (*URLNavigator, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &URLNavigator{url: u}, nil
}

func (n *URLNavigator) DocumentID() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := strings.TrimSpace(n.url.Query().Get(DocParam))
	return id, id != ""
}

func (n *URLNavigator) ReplaceDocumentID(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	q := n.url.Query()
	q.Set(DocParam, id)
	n.url.RawQuery = q.Encode()
}

func (n *URLNavigator) String() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.url.String()
}
