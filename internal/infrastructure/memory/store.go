// Package memory keeps orders and game states in process memory. It backs
// the service when no database is configured and doubles as a test fake.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

// Store guards orders and game states with one mutex so ticket spends can
// read paid orders consistently.
type Store struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	states map[string]domain.GameState
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string]domain.Order),
		states: make(map[string]domain.GameState),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{s: s}
}

func (s *Store) Tickets() *TicketLedger {
	return &TicketLedger{s: s}
}

type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Upsert(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.orders[order.OrderCode]
	if !ok {
		cur = *order
		if cur.UpdatedAt.IsZero() {
			cur.UpdatedAt = r.s.now()
		}
		if cur.CreatedAt.IsZero() {
			cur.CreatedAt = cur.UpdatedAt
		}
	} else {
		if !cur.IsPaid() {
			cur.Status = order.Status
		}
		cur.Delivered = order.Delivered
		cur.UpdatedAt = r.s.now()
	}
	r.s.orders[cur.OrderCode] = cur
	out := cur
	return &out, nil
}

func (r *OrderRepository) GetByCode(_ context.Context, orderCode string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderCode]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]*domain.Order, error) {
	out := r.collect(func(*domain.Order) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) ListPending(_ context.Context) ([]*domain.Order, error) {
	out := r.collect(func(o *domain.Order) bool { return o.Status == domain.StatusPending })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) collect(keep func(*domain.Order) bool) []*domain.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		o := o
		if keep(&o) {
			out = append(out, &o)
		}
	}
	return out
}

func (r *OrderRepository) MarkPaid(_ context.Context, orderCode string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderCode]
	if !ok || o.Status != domain.StatusPending {
		return false, nil
	}
	o.Status = domain.StatusPaid
	o.UpdatedAt = r.s.now()
	r.s.orders[orderCode] = o
	return true, nil
}

func (r *OrderRepository) SetDelivered(_ context.Context, orderCode string, delivered bool) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderCode]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Delivered = delivered
	o.UpdatedAt = r.s.now()
	r.s.orders[orderCode] = o
	return &o, nil
}

func (r *OrderRepository) Delete(_ context.Context, orderCode string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[orderCode]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.s.orders, orderCode)
	return nil
}

func (r *OrderRepository) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.orders))
	r.s.orders = make(map[string]domain.Order)
	return n, nil
}

func (r *OrderRepository) DeletePendingBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var codes []string
	for code, o := range r.s.orders {
		if o.Status == domain.StatusPending && o.CreatedAt.Before(cutoff) {
			codes = append(codes, code)
			delete(r.s.orders, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *OrderRepository) PaidTicketsByPhone(_ context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]int64)
	for _, o := range r.s.orders {
		if o.IsPaid() {
			out[o.Phone] += o.Tickets
		}
	}
	return out, nil
}

type TicketLedger struct {
	s *Store
}

func (l *TicketLedger) Balance(_ context.Context, phone string) (domain.TicketBalance, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.balanceLocked(phone), nil
}

func (l *TicketLedger) Spend(_ context.Context, phone string, apply domain.SpendFunc) (domain.TicketBalance, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if l.s.balanceLocked(phone).Available() <= 0 {
		return domain.TicketBalance{}, domain.ErrInsufficientTickets
	}

	st := l.s.states[phone]
	st.Phone = phone
	work := st
	work.CollectedCards = append([]int{}, st.CollectedCards...)
	if err := apply(&work); err != nil {
		return domain.TicketBalance{}, err
	}

	work.UsedTickets = st.UsedTickets + 1
	work.BonusTickets = st.BonusTickets
	work.UpdatedAt = l.s.now()
	l.s.states[phone] = work
	return l.s.balanceLocked(phone), nil
}

func (l *TicketLedger) Grant(_ context.Context, phone string, count int64) (domain.TicketBalance, error) {
	if count <= 0 {
		return domain.TicketBalance{}, domain.NewValidationError("count", "must be positive")
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	st, ok := l.s.states[phone]
	if !ok {
		st = domain.GameState{Phone: phone, CollectedCards: []int{}}
	}
	st.BonusTickets += count
	st.UpdatedAt = l.s.now()
	l.s.states[phone] = st
	return l.s.balanceLocked(phone), nil
}

func (l *TicketLedger) Delete(_ context.Context, phone string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.s.states[phone]; !ok {
		return domain.ErrGameStateNotFound
	}
	delete(l.s.states, phone)
	return nil
}

func (l *TicketLedger) ListStates(_ context.Context) ([]*domain.GameState, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	out := make([]*domain.GameState, 0, len(l.s.states))
	for _, st := range l.s.states {
		st := st
		st.CollectedCards = append([]int{}, st.CollectedCards...)
		out = append(out, &st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phone < out[j].Phone })
	return out, nil
}

func (s *Store) balanceLocked(phone string) domain.TicketBalance {
	b := domain.TicketBalance{Phone: phone, CollectedCards: []int{}}
	for _, o := range s.orders {
		if o.Phone == phone && o.IsPaid() {
			b.OrderTickets += o.Tickets
		}
	}
	if st, ok := s.states[phone]; ok {
		b.HasState = true
		b.BonusTickets = st.BonusTickets
		b.UsedTickets = st.UsedTickets
		b.CollectedCards = append(b.CollectedCards, st.CollectedCards...)
	}
	return b
}
