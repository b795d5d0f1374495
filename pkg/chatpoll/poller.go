// Package chatpoll keeps a client-side copy of a messaging thread current
// by polling the thread endpoint at a fixed interval.
//
// Delivery is at-least-once: every poll returns the whole thread and the
// poller merges it by message id, so a message edited or read between two
// polls is replaced in place and nothing is emitted when nothing changed.
package chatpoll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultInterval = 3 * time.Second

// Message is the client view of one thread message.
type Message struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"senderId"`
	RecipientID string     `json:"recipientId"`
	Content     string     `json:"content"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// differs reports whether m carries an update over old.
func (m Message) differs(old Message) bool {
	return m.Content != old.Content || !sameTime(m.ReadAt, old.ReadAt) || !sameTime(m.EditedAt, old.EditedAt)
}

// Fetcher loads the current thread.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Message, error)
}

type FetcherFunc func(ctx context.Context) ([]Message, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]Message, error) { return f(ctx) }

type Poller struct {
	fetcher  Fetcher
	interval time.Duration

	mu     sync.Mutex
	thread []Message
	index  map[string]int
}

func New(fetcher Fetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		index:    make(map[string]int),
	}
}

// Merge folds batch into the thread. New ids are appended in batch order,
// known ids are replaced when they changed. It reports whether anything
// changed.
func (p *Poller) Merge(batch []Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed := false
	for _, m := range batch {
		i, ok := p.index[m.ID]
		if !ok {
			p.index[m.ID] = len(p.thread)
			p.thread = append(p.thread, m)
			changed = true
			continue
		}
		if m.differs(p.thread[i]) {
			p.thread[i] = m
			changed = true
		}
	}
	return changed
}

// Thread returns a copy of the merged thread.
func (p *Poller) Thread() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.thread))
	copy(out, p.thread)
	return out
}

// Poll fetches once and merges the result.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	batch, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return false, err
	}
	return p.Merge(batch), nil
}

// Run polls immediately and then on every tick until ctx is done, calling
// onChange with the merged thread whenever a poll changed it. Failed polls
// are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context, onChange func([]Message)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		changed, err := p.Poll(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn().Err(err).Msg("chat poll failed")
		case changed && onChange != nil:
			onChange(p.Thread())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
