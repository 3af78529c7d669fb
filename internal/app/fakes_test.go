package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"daily_fact_bot/internal/domain/fact"
	"daily_fact_bot/internal/domain/ledger"
	"daily_fact_bot/internal/domain/messaging"
	"daily_fact_bot/internal/domain/subscriber"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeCatalog is an in-memory fact.Repository.
type fakeCatalog struct {
	facts map[int64]*fact.Fact
}

func newFakeCatalog(ids ...int64) *fakeCatalog {
	c := &fakeCatalog{facts: make(map[int64]*fact.Fact)}
	for _, id := range ids {
		c.add(id)
	}
	return c
}

func (c *fakeCatalog) add(id int64) {
	c.facts[id] = &fact.Fact{ID: id, Text: fmt.Sprintf("Fact number %d.", id)}
}

func (c *fakeCatalog) ListIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(c.facts))
	for id := range c.facts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (c *fakeCatalog) GetByID(ctx context.Context, id int64) (*fact.Fact, error) {
	f, ok := c.facts[id]
	if !ok {
		return nil, fact.ErrFactNotFound
	}
	return f, nil
}

func (c *fakeCatalog) Upsert(ctx context.Context, f *fact.Fact) error {
	c.facts[f.ID] = f
	return nil
}

func (c *fakeCatalog) SetImagePath(ctx context.Context, id int64, path string) error {
	f, ok := c.facts[id]
	if !ok {
		return fact.ErrFactNotFound
	}
	f.ImagePath = sql.NullString{String: path, Valid: true}
	return nil
}

func (c *fakeCatalog) Count(ctx context.Context) (int, error) {
	return len(c.facts), nil
}

// fakeLedger is an in-memory ledger.Repository backed by a fakeCatalog for
// the never-sent query.
type fakeLedger struct {
	mu      sync.Mutex
	catalog *fakeCatalog
	rows    map[string]*ledger.SentFact
	// beforeRecord runs before an insert, outside the lock; used to simulate
	// a concurrent writer.
	beforeRecord func(date string)
	recordCalls  int
	lookupErr    error
}

func newFakeLedger(catalog *fakeCatalog) *fakeLedger {
	return &fakeLedger{catalog: catalog, rows: make(map[string]*ledger.SentFact)}
}

func (l *fakeLedger) RecordSend(ctx context.Context, factID int64, date string, cycle int) error {
	if l.beforeRecord != nil {
		l.beforeRecord(date)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordCalls++
	if _, ok := l.rows[date]; ok {
		return ledger.ErrDuplicateDate
	}
	l.rows[date] = &ledger.SentFact{SendDate: date, FactID: factID, Cycle: cycle}
	return nil
}

func (l *fakeLedger) GetSendForDate(ctx context.Context, date string) (*ledger.SentFact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lookupErr != nil {
		return nil, l.lookupErr
	}
	sf, ok := l.rows[date]
	if !ok {
		return nil, ledger.ErrSendNotFound
	}
	cp := *sf
	return &cp, nil
}

func (l *fakeLedger) GetCurrentCycle(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cycle := 1
	for _, sf := range l.rows {
		if sf.Cycle > cycle {
			cycle = sf.Cycle
		}
	}
	return cycle, nil
}

func (l *fakeLedger) GetFactIDsSentInCycle(ctx context.Context, cycle int) (map[int64]struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make(map[int64]struct{})
	for _, sf := range l.rows {
		if sf.Cycle == cycle {
			ids[sf.FactID] = struct{}{}
		}
	}
	return ids, nil
}

func (l *fakeLedger) GetFactIDsNeverSent(ctx context.Context) (map[int64]struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make(map[int64]struct{})
	for id := range l.catalog.facts {
		ids[id] = struct{}{}
	}
	for _, sf := range l.rows {
		delete(ids, sf.FactID)
	}
	return ids, nil
}

func (l *fakeLedger) ListRecent(ctx context.Context, limit int) ([]*ledger.SentFact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*ledger.SentFact, 0, len(l.rows))
	for _, sf := range l.rows {
		out = append(out, sf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SendDate > out[j].SendDate })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *fakeLedger) rowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

// fakeSubscribers is an in-memory subscriber.Repository.
type fakeSubscribers struct {
	subs   []*subscriber.Subscriber
	nextID int64
}

func newFakeSubscribers(addresses ...string) *fakeSubscribers {
	r := &fakeSubscribers{}
	for _, a := range addresses {
		_ = r.Create(context.Background(), &subscriber.Subscriber{
			Channel:          subscriber.ChannelEmail,
			Address:          a,
			UnsubscribeToken: "token-" + a,
			IsActive:         true,
		})
	}
	return r
}

func (r *fakeSubscribers) Create(ctx context.Context, s *subscriber.Subscriber) error {
	for _, existing := range r.subs {
		if existing.Channel == s.Channel && existing.Address == s.Address {
			return subscriber.ErrDuplicateAddress
		}
	}
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.subs = append(r.subs, &cp)
	return nil
}

func (r *fakeSubscribers) GetByAddress(ctx context.Context, channel subscriber.Channel, address string) (*subscriber.Subscriber, error) {
	for _, s := range r.subs {
		if s.Channel == channel && s.Address == address {
			cp := *s
			return &cp, nil
		}
	}
	return nil, subscriber.ErrSubscriberNotFound
}

func (r *fakeSubscribers) GetByUnsubscribeToken(ctx context.Context, token string) (*subscriber.Subscriber, error) {
	for _, s := range r.subs {
		if s.UnsubscribeToken == token {
			cp := *s
			return &cp, nil
		}
	}
	return nil, subscriber.ErrSubscriberNotFound
}

func (r *fakeSubscribers) Update(ctx context.Context, s *subscriber.Subscriber) error {
	for _, existing := range r.subs {
		if existing.ID == s.ID {
			existing.IsActive = s.IsActive
			existing.UnsubscribeToken = s.UnsubscribeToken
			return nil
		}
	}
	return subscriber.ErrSubscriberNotFound
}

func (r *fakeSubscribers) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	out := make([]*subscriber.Subscriber, 0)
	for _, s := range r.subs {
		if s.IsActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeSender records deliveries and fails or panics for chosen addresses.
type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	msgs    []messaging.Message
	failFor map[string]bool
	panicOn map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFor: map[string]bool{}, panicOn: map[string]bool{}}
}

func (s *fakeSender) Send(ctx context.Context, to subscriber.Subscriber, msg messaging.Message) error {
	if s.panicOn[to.Address] {
		panic("transport exploded")
	}
	if s.failFor[to.Address] {
		return errors.New("provider rejected message")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to.Address)
	s.msgs = append(s.msgs, msg)
	return nil
}

// seqRand returns values from a fixed list, wrapping modulo n.
type seqRand struct {
	values []int
	i      int
}

func (r *seqRand) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.i%len(r.values)] % n
	r.i++
	return v
}
