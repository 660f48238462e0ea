package ordersvc

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/foodorder/internal/service/models/catalog"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/outbox"
	"github.com/stretchr/testify/mock"
)

type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]order.Order
	seq       int
	createErr error
	// casMisses makes the next UpdateStatus calls report a lost race.
	casMisses int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]order.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, o order.Order) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return order.Order{}, r.createErr
	}
	if o.ExternalPaymentID != "" {
		for _, existing := range r.orders {
			if existing.ExternalPaymentID == o.ExternalPaymentID {
				return order.Order{}, iorderrepo.ErrDuplicatePayment
			}
		}
	}

	r.seq++
	o.CreatedAt = time.Date(2025, 1, 1, 12, 0, r.seq, 0, time.UTC)
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = o

	return o, nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id string) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, iorderrepo.ErrNotFound
	}

	return o, nil
}

func (r *memOrderRepo) FindByExternalPaymentID(_ context.Context, paymentID string) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ExternalPaymentID == paymentID {
			return o, nil
		}
	}

	return order.Order{}, iorderrepo.ErrNotFound
}

func (r *memOrderRepo) Query(_ context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]order.Order, 0)
	for _, o := range r.orders {
		if filter.OwnerID != "" && o.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	return result, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id string, from, to order.Status) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.casMisses > 0 {
		r.casMisses--
		return order.Order{}, iorderrepo.ErrStatusChanged
	}

	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return order.Order{}, iorderrepo.ErrStatusChanged
	}
	o.Status = to
	o.UpdatedAt = o.UpdatedAt.Add(time.Minute)
	r.orders[id] = o

	return o, nil
}

func (r *memOrderRepo) CountByStatus(_ context.Context) (order.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := order.NewStatusCounts()
	for _, o := range r.orders {
		counts[o.Status]++
	}

	return counts, nil
}

func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.orders)
}

type memOutbox struct {
	mu       sync.Mutex
	messages []outbox.Message
}

func (o *memOutbox) Enqueue(_ context.Context, msg outbox.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)

	return nil
}

func (o *memOutbox) FetchDue(_ context.Context, _ int) ([]outbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]outbox.Message(nil), o.messages...), nil
}

func (o *memOutbox) MarkPublished(context.Context, int64) error { return nil }

func (o *memOutbox) MarkFailed(context.Context, int64, int, string, time.Time) error { return nil }

func (o *memOutbox) routingKeys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys := make([]string, 0, len(o.messages))
	for _, m := range o.messages {
		keys = append(keys, m.RoutingKey)
	}

	return keys
}

// memUOW shares the in-memory repositories; it records commit and rollback calls.
type memUOW struct {
	orders    *memOrderRepo
	outbox    *memOutbox
	committed bool
}

func (u *memUOW) Begin(context.Context) error { return nil }

func (u *memUOW) Commit(context.Context) error {
	u.committed = true
	return nil
}

func (u *memUOW) Rollback(context.Context) error { return nil }

func (u *memUOW) OrderRepository() iorderrepo.IOrderRepository { return u.orders }

func (u *memUOW) OutboxRepository() ioutboxrepo.IOutboxRepository { return u.outbox }

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

type sentEvent struct {
	room    string
	event   string
	payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Broadcast(_ context.Context, evt string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{event: evt, payload: payload})

	return nil
}

func (n *recordingNotifier) BroadcastToRoom(_ context.Context, room, evt string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{room: room, event: evt, payload: payload})

	return nil
}

func (n *recordingNotifier) named(evt string) []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []sentEvent
	for _, e := range n.events {
		if e.event == evt {
			out = append(out, e)
		}
	}

	return out
}

func (n *recordingNotifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.events)
}

type memUsers struct {
	owners map[string]order.Owner
}

func (u *memUsers) GetOwner(_ context.Context, id string) (order.Owner, error) {
	o, ok := u.owners[id]
	if !ok {
		return order.Owner{}, iuserrepo.ErrUserNotFound
	}

	return o, nil
}

func (u *memUsers) GetOwners(_ context.Context, ids []string) (map[string]order.Owner, error) {
	out := make(map[string]order.Owner)
	for _, id := range ids {
		if o, ok := u.owners[id]; ok {
			out[id] = o
		}
	}

	return out, nil
}

type memHistory struct {
	entries []event.HistoryEntry
}

func (h *memHistory) SaveHistory(_ context.Context, entry event.HistoryEntry) (bool, error) {
	h.entries = append(h.entries, entry)
	return true, nil
}

func (h *memHistory) ListByOrder(_ context.Context, orderID string) ([]event.HistoryEntry, error) {
	out := make([]event.HistoryEntry, 0)
	for _, e := range h.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}

	return out, nil
}
