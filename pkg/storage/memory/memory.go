// Package memory provides a storage.Storage kept entirely in process memory. It
// backs local development and the HTTP-level tests; data is lost on restart.
package memory

import (
	"context"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/storage"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// state is the whole dataset. Transactions work on a clone and swap it in on commit.
type state struct {
	products map[domain.ProductID]domain.Product
	users    map[domain.UserID]domain.User
	families map[domain.FamilyID]domain.Family
	orders   map[domain.OrderID]domain.Order
	// joined records when each family member joined, to keep members ordered.
	joined map[domain.UserID]int64
	seq    int64
	jobs   []river.JobArgs
}

func newState() *state {
	return &state{
		products: map[domain.ProductID]domain.Product{},
		users:    map[domain.UserID]domain.User{},
		families: map[domain.FamilyID]domain.Family{},
		orders:   map[domain.OrderID]domain.Order{},
		joined:   map[domain.UserID]int64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.families {
		c.families[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.joined {
		c.joined[k] = v
	}
	c.seq = s.seq
	c.jobs = append([]river.JobArgs(nil), s.jobs...)

	return c
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// ops implements storage.AllStorage on top of a state. The locker is the store
// mutex for the root handle and a no-op inside a transaction, which already
// holds the mutex.
type ops struct {
	mu  sync.Locker
	st  *state
	now func() time.Time
}

// Memory is an in-memory storage.Storage. Transactions are serialized: Begin holds
// the store lock until Commit or Rollback.
type Memory struct {
	ops

	lock sync.Mutex
}

// Ensure Memory implements storage.Storage.
var _ storage.Storage = (*Memory)(nil)

// New creates an empty in-memory store.
func New() *Memory {
	m := &Memory{}
	m.ops = ops{mu: &m.lock, st: newState(), now: func() time.Time { return time.Now().UTC() }}

	return m
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Jobs returns the jobs enqueued so far. The in-memory backend has no queue
// runner, so jobs are only recorded.
func (m *Memory) Jobs() []river.JobArgs {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]river.JobArgs(nil), m.st.jobs...)
}

type tx struct {
	ops

	parent *Memory
	done   bool
}

// Begin locks the store and returns a transactional handle working on a copy of
// the data.
func (m *Memory) Begin(_ context.Context) (storage.TxStorage, error) {
	m.lock.Lock()

	return &tx{
		ops:    ops{mu: noLock{}, st: m.st.clone(), now: m.now},
		parent: m,
	}, nil
}

// WithTx runs cb in a transaction, committing on success. The transaction is
// rolled back when cb fails or panics.
func (m *Memory) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	t, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = t.Rollback()
		}
	}()

	if err := cb(t); err != nil {
		return err
	}

	committed = true

	return t.Commit()
}

func (t *tx) Commit() error {
	if t.done {
		return storage.ErrNotInTx
	}
	t.done = true
	*t.parent.st = *t.st
	t.parent.lock.Unlock()

	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return storage.ErrNotInTx
	}
	t.done = true
	t.parent.lock.Unlock()

	return nil
}

func (o *ops) AddJob(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.st.jobs = append(o.st.jobs, args)

	return true, nil
}

// products

func (o *ops) StoreProduct(_ context.Context, p domain.Product) (*domain.Product, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p.ID = domain.ProductID(uuid.New())
	p.CreatedAt = o.now()
	p.UpdatedAt = p.CreatedAt
	o.st.products[p.ID] = p

	return &p, nil
}

func (o *ops) UpdateProduct(_ context.Context,
	id domain.ProductID,
	updates storage.ProductUpdates) (*domain.Product, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.st.products[id]
	if !ok {
		return nil, nil
	}
	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.Description != nil {
		p.Description = *updates.Description
	}
	if updates.Category != nil {
		p.Category = *updates.Category
	}
	if updates.PriceCents != nil {
		p.PriceCents = *updates.PriceCents
	}
	if updates.Stock != nil {
		p.Stock = *updates.Stock
	}
	if updates.ImageURL != nil {
		p.ImageURL = *updates.ImageURL
	}
	p.UpdatedAt = o.now()
	o.st.products[id] = p

	return &p, nil
}

func (o *ops) DeleteProduct(_ context.Context, id domain.ProductID) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.st.products[id]; !ok {
		return false, nil
	}
	delete(o.st.products, id)

	return true, nil
}

func (o *ops) ProductByID(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.st.products[id]
	if !ok {
		return nil, nil
	}

	return &p, nil
}

func (o *ops) ProductsByIDs(_ context.Context, ids []domain.ProductID) ([]domain.Product, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]domain.Product, 0, len(ids))
	seen := map[domain.ProductID]bool{}
	for _, id := range ids {
		if p, ok := o.st.products[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}

	return out, nil
}

func (o *ops) Products(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	search := strings.ToLower(filter.Search)
	out := make([]domain.Product, 0, len(o.st.products))
	for _, p := range o.st.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID.String() < out[j].ID.String()
		}

		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (o *ops) AdjustStock(_ context.Context, id domain.ProductID, delta int) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.st.products[id]
	if !ok || p.Stock+delta < 0 {
		return false, nil
	}
	p.Stock += delta
	p.UpdatedAt = o.now()
	o.st.products[id] = p

	return true, nil
}

// users

func (o *ops) emailTaken(email string, except domain.UserID) bool {
	for id, u := range o.st.users {
		if id != except && u.Email == email {
			return true
		}
	}

	return false
}

func (o *ops) withFamily(u domain.User) domain.User {
	if u.FamilyID != nil {
		fid := *u.FamilyID
		u.FamilyID = &fid
	}

	return u
}

func (o *ops) StoreUser(_ context.Context, u domain.User) (*domain.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.emailTaken(u.Email, domain.UserID{}) {
		return nil, storage.ErrDuplicate
	}
	u.ID = domain.UserID(uuid.New())
	u.CreatedAt = o.now()
	u.UpdatedAt = u.CreatedAt
	u.FamilyID = nil
	o.st.users[u.ID] = u

	return &u, nil
}

func (o *ops) UpdateUser(_ context.Context, id domain.UserID, updates storage.UserUpdates) (*domain.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, ok := o.st.users[id]
	if !ok {
		return nil, nil
	}
	if updates.Email != nil {
		if o.emailTaken(*updates.Email, id) {
			return nil, storage.ErrDuplicate
		}
		u.Email = *updates.Email
	}
	if updates.Name != nil {
		u.Name = *updates.Name
	}
	if updates.PasswordHash != nil {
		u.PasswordHash = *updates.PasswordHash
	}
	u.UpdatedAt = o.now()
	o.st.users[id] = u
	u = o.withFamily(u)

	return &u, nil
}

func (o *ops) DeleteUser(_ context.Context, id domain.UserID) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.st.users[id]; !ok {
		return false, nil
	}
	delete(o.st.users, id)
	delete(o.st.joined, id)

	return true, nil
}

func (o *ops) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, ok := o.st.users[id]
	if !ok {
		return nil, nil
	}
	u = o.withFamily(u)

	return &u, nil
}

func (o *ops) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, u := range o.st.users {
		if u.Email == email {
			u = o.withFamily(u)

			return &u, nil
		}
	}

	return nil, nil
}

func (o *ops) Users(_ context.Context) ([]domain.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]domain.User, 0, len(o.st.users))
	for _, u := range o.st.users {
		out = append(out, o.withFamily(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}

		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// families

func (o *ops) StoreFamily(_ context.Context, f domain.Family) (*domain.Family, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	f.ID = domain.FamilyID(uuid.New())
	f.CreatedAt = o.now()
	f.Members = nil
	o.st.families[f.ID] = f

	return &f, nil
}

func (o *ops) FamilyByID(_ context.Context, id domain.FamilyID) (*domain.Family, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	f, ok := o.st.families[id]
	if !ok {
		return nil, nil
	}

	members := []domain.UserID{}
	for uid, u := range o.st.users {
		if u.FamilyID != nil && *u.FamilyID == id {
			members = append(members, uid)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return o.st.joined[members[i]] < o.st.joined[members[j]]
	})
	f.Members = members

	return &f, nil
}

func (o *ops) DeleteFamily(_ context.Context, id domain.FamilyID) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.st.families[id]; !ok {
		return false, nil
	}
	delete(o.st.families, id)
	for uid, u := range o.st.users {
		if u.FamilyID != nil && *u.FamilyID == id {
			u.FamilyID = nil
			o.st.users[uid] = u
			delete(o.st.joined, uid)
		}
	}

	return true, nil
}

func (o *ops) SetFamilyOwner(_ context.Context, id domain.FamilyID, owner domain.UserID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if f, ok := o.st.families[id]; ok {
		f.OwnerID = owner
		o.st.families[id] = f
	}

	return nil
}

func (o *ops) SetUserFamily(_ context.Context, userID domain.UserID, familyID *domain.FamilyID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, ok := o.st.users[userID]
	if !ok {
		return nil
	}
	if familyID == nil {
		u.FamilyID = nil
		delete(o.st.joined, userID)
	} else {
		fid := *familyID
		u.FamilyID = &fid
		o.st.seq++
		o.st.joined[userID] = o.st.seq
	}
	u.UpdatedAt = o.now()
	o.st.users[userID] = u

	return nil
}

// orders

func copyOrder(ord domain.Order) domain.Order {
	ord.Items = append([]domain.OrderItem(nil), ord.Items...)
	if ord.FamilyID != nil {
		fid := *ord.FamilyID
		ord.FamilyID = &fid
	}

	return ord
}

func (o *ops) StoreOrder(_ context.Context, ord domain.Order) (*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ord = copyOrder(ord)
	ord.ID = domain.OrderID(uuid.New())
	ord.CreatedAt = o.now()
	ord.UpdatedAt = ord.CreatedAt
	o.st.orders[ord.ID] = ord
	out := copyOrder(ord)

	return &out, nil
}

func (o *ops) OrderByID(_ context.Context, id domain.OrderID) (*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ord, ok := o.st.orders[id]
	if !ok {
		return nil, nil
	}
	ord = copyOrder(ord)

	return &ord, nil
}

func (o *ops) ordersWhere(match func(domain.Order) bool) []domain.Order {
	out := []domain.Order{}
	for _, ord := range o.st.orders {
		if match(ord) {
			out = append(out, copyOrder(ord))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number > out[j].Number
		}

		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

func (o *ops) UserOrders(_ context.Context, userID domain.UserID) ([]domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.ordersWhere(func(ord domain.Order) bool { return ord.UserID == userID }), nil
}

func (o *ops) FamilyOrders(_ context.Context, familyID domain.FamilyID) ([]domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.ordersWhere(func(ord domain.Order) bool {
		return ord.FamilyID != nil && *ord.FamilyID == familyID
	}), nil
}

func (o *ops) TransitionOrder(_ context.Context,
	id domain.OrderID,
	from, to domain.OrderStatus) (*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ord, ok := o.st.orders[id]
	if !ok || ord.Status != from {
		return nil, nil
	}
	ord.Status = to
	ord.UpdatedAt = o.now()
	o.st.orders[id] = ord
	out := copyOrder(ord)

	return &out, nil
}
