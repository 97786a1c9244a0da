package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories. The tx manager snapshots
// it before running fn and restores the snapshot when fn fails, which is the
// behaviour the Mongo transaction gives the real repositories.
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	seq      int
	products map[string]domain.Product
	orders   map[string]domain.Order
	sales    map[string]domain.Sale
	users    map[string]domain.User

	// adjustCalls counts AdjustQuantity calls; failAdjustAt makes the n-th
	// call (1-based) fail with failErr.
	adjustCalls  int
	failAdjustAt int
	failErr      error
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		sales:    make(map[string]domain.Sale),
		users:    make(map[string]domain.User),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

type memSnapshot struct {
	products map[string]domain.Product
	orders   map[string]domain.Order
	sales    map[string]domain.Sale
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		products: make(map[string]domain.Product, len(m.products)),
		orders:   make(map[string]domain.Order, len(m.orders)),
		sales:    make(map[string]domain.Sale, len(m.sales)),
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.orders {
		s.orders[k] = v
	}
	for k, v := range m.sales {
		s.sales[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.products = s.products
	m.orders = s.orders
	m.sales = s.sales
}

func (m *memStore) addProduct(p domain.Product) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.nextID("prod")
	}
	if p.Status == "" {
		p.Status = domain.StatusActive
	}
	m.products[p.ID] = p
	return &p
}

func (m *memStore) quantity(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Quantity
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

// stubTx serialises transactions; the store mutex is not held during fn so
// the repositories can lock it themselves.
type stubTx struct {
	store *memStore
	txMu  sync.Mutex
}

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	t.store.mu.Lock()
	snap := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.store.mu.Lock()
		t.store.restore(snap)
		t.store.mu.Unlock()
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct{ store *memStore }

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p.ID = r.store.nextID("prod")
	r.store.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProductRepo) UpdateFields(_ context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	r.store.products[id] = p
	return &p, nil
}

func (r *stubProductRepo) SetStatus(_ context.Context, id string, status domain.RecordStatus) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.Status = status
	r.store.products[id] = p
	return &p, nil
}

func (r *stubProductRepo) AdjustQuantity(_ context.Context, id string, delta int) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.adjustCalls++
	if r.store.failAdjustAt > 0 && r.store.adjustCalls == r.store.failAdjustAt {
		return nil, r.store.failErr
	}
	p, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if p.Quantity+delta < 0 {
		return nil, domain.ErrInsufficientStock
	}
	p.Quantity += delta
	r.store.products[id] = p
	return &p, nil
}

// ---------------------------------------------------------------------------
// Orders and sales
// ---------------------------------------------------------------------------

type stubOrderRepo struct{ store *memStore }

func cloneOrder(o domain.Order) *domain.Order {
	o.Items = append([]domain.LineItem(nil), o.Items...)
	return &o
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o.ID = r.store.nextID("order")
	r.store.orders[o.ID] = *cloneOrder(*o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) List(_ context.Context, f ports.OrderFilter) ([]*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.store.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Assigned != "" && o.Assigned != f.Assigned {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubOrderRepo) Update(_ context.Context, o *domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Version != o.Version {
		return domain.ErrConcurrentUpdate
	}
	o.Version++
	r.store.orders[o.ID] = *cloneOrder(*o)
	return nil
}

type stubSaleRepo struct{ store *memStore }

func (r *stubSaleRepo) Create(_ context.Context, s *domain.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s.ID = r.store.nextID("sale")
	r.store.sales[s.ID] = *s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id string) (*domain.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sales[id]
	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	return &s, nil
}

func (r *stubSaleRepo) List(_ context.Context) ([]*domain.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.Sale, 0, len(r.store.sales))
	for _, s := range r.store.sales {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

func (r *stubSaleRepo) Update(_ context.Context, s *domain.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.sales[s.ID]
	if !ok {
		return domain.ErrSaleNotFound
	}
	if stored.Version != s.Version {
		return domain.ErrConcurrentUpdate
	}
	s.Version++
	r.store.sales[s.ID] = *s
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct{ store *memStore }

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	if u.ID == "" {
		u.ID = r.store.nextID("user")
	}
	r.store.users[u.ID] = *u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *stubUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == login || u.Username == login })
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		u := u
		out = append(out, &u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.store.users[u.ID] = *u
	return nil
}

// ---------------------------------------------------------------------------
// Idempotency, events, mail
// ---------------------------------------------------------------------------

type stubIdempotency struct {
	mu       sync.Mutex
	results  map[string]string
	claimErr error
	released []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{results: make(map[string]string)}
}

func (s *stubIdempotency) Claim(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return "", false, s.claimErr
	}
	k := scope + ":" + key
	if id, ok := s.results[k]; ok {
		return id, false, nil
	}
	s.results[k] = ""
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, scope, key, resultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[scope+":"+key] = resultID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, scope+":"+key)
	s.released = append(s.released, key)
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingSink) Enqueue(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type stubMailer struct {
	to, code string
	err      error
}

func (m *stubMailer) SendRecoveryCode(_ context.Context, to, _ string, code string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.code = to, code
	return nil
}

var errStorage = errors.New("storage unavailable")
