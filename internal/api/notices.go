package api

import (
	"sync"
	"time"
)

// NoticeTTL is how long a notice waits to be shown before it is dropped.
const NoticeTTL = 10 * time.Second

const (
	NoticeDefaultLocation     = "Using default location"
	NoticeLocationUnavailable = "Location access unavailable"
)

type notice struct {
	text    string
	expires time.Time
}

// Notices is a small queue of transient messages such as "Location detected".
// Each notice is delivered at most once.
type Notices struct {
	mu    sync.Mutex
	items []notice
	ttl   time.Duration
	now   func() time.Time
}

func NewNotices(ttl time.Duration) *Notices {
	return &Notices{ttl: ttl, now: time.Now}
}

func (n *Notices) Push(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notice{text: text, expires: n.now().Add(n.ttl)})
}

// Take returns the unexpired notices and clears the queue.
func (n *Notices) Take() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	var out []string
	for _, it := range n.items {
		if now.Before(it.expires) {
			out = append(out, it.text)
		}
	}
	n.items = nil
	return out
}
