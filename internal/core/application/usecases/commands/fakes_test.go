package commands_test

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/listing"
	"ecolocker/internal/core/domain/model/locker"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryStore is a transactional in-memory stand-in for the Postgres adapters. Every
// unit of work edits a private copy that is written back on Commit.
type memoryStore struct {
	mu        sync.Mutex
	orders    map[kernel.UUID]order.Snapshot
	lockers   map[kernel.UUID]*locker.Locker
	listings  map[kernel.UUID]*listing.Listing
	published []order.StatusChanged

	failOrderUpdate error
	failCommit      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:   map[kernel.UUID]order.Snapshot{},
		lockers:  map[kernel.UUID]*locker.Locker{},
		listings: map[kernel.UUID]*listing.Listing{},
	}
}

func (s *memoryStore) Create() commands.UoW { return &memoryUoW{store: s} }

func (s *memoryStore) orderFactory() commands.OrderUoWFactory {
	return orderUoWFactory(func() commands.OrderUoW { return &memoryUoW{store: s} })
}

type orderUoWFactory func() commands.OrderUoW

func (f orderUoWFactory) Create() commands.OrderUoW { return f() }

func (s *memoryStore) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.orders[id]
	require.True(t, ok, "order %s not stored", id)
	o, err := order.Restore(snap)
	require.NoError(t, err)
	return o
}

func (s *memoryStore) putOrder(t *testing.T, o *order.Order) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID()] = o.Snapshot()
}

func (s *memoryStore) locker(id kernel.UUID) *locker.Locker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLocker(s.lockers[id])
}

func (s *memoryStore) listing(id kernel.UUID) *listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyListing(s.listings[id])
}

func (s *memoryStore) publishedStatuses() []order.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Status, 0, len(s.published))
	for _, e := range s.published {
		out = append(out, e.To)
	}
	return out
}

func copyLocker(l *locker.Locker) *locker.Locker {
	if l == nil {
		return nil
	}
	c, _ := locker.RestoreLocker(l.ID(), l.Name(), l.Address(), l.Coordinates(),
		l.TotalCompartments(), l.AvailableCompartments(), l.Status())
	return c
}

func copyListing(l *listing.Listing) *listing.Listing {
	if l == nil {
		return nil
	}
	c, _ := listing.RestoreListing(l.ID(), l.SellerID(), l.Price(), l.Status(), l.BuyerID())
	return c
}

type memoryUoW struct {
	store *memoryStore
	open  bool

	orders   map[kernel.UUID]order.Snapshot
	lockers  map[kernel.UUID]*locker.Locker
	listings map[kernel.UUID]*listing.Listing
	tracked  []*order.Order
}

func (u *memoryUoW) Begin(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.open = true
	u.orders = map[kernel.UUID]order.Snapshot{}
	for k, v := range u.store.orders {
		u.orders[k] = v
	}
	u.lockers = map[kernel.UUID]*locker.Locker{}
	for k, v := range u.store.lockers {
		u.lockers[k] = copyLocker(v)
	}
	u.listings = map[kernel.UUID]*listing.Listing{}
	for k, v := range u.store.listings {
		u.listings[k] = copyListing(v)
	}
	return nil
}

func (u *memoryUoW) Commit(context.Context) error {
	if !u.open {
		return errors.New("no transaction")
	}
	u.open = false
	if u.store.failCommit != nil {
		return u.store.failCommit
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.orders = u.orders
	u.store.lockers = u.lockers
	u.store.listings = u.listings
	for _, o := range u.tracked {
		u.store.published = append(u.store.published, o.DomainEvents()...)
		o.ClearDomainEvents()
	}
	return nil
}

func (u *memoryUoW) Rollback(context.Context) error {
	if !u.open {
		return errors.New("no transaction")
	}
	u.open = false
	return nil
}

// view returns the transaction copy, or the committed state when no transaction is open.
func (u *memoryUoW) view() (map[kernel.UUID]order.Snapshot, map[kernel.UUID]*locker.Locker, map[kernel.UUID]*listing.Listing) {
	if u.open {
		return u.orders, u.lockers, u.listings
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return u.store.orders, u.store.lockers, u.store.listings
}

func (u *memoryUoW) OrderRepository() ports.OrderRepository     { return memoryOrders{u} }
func (u *memoryUoW) LockerRepository() ports.LockerRepository   { return memoryLockers{u} }
func (u *memoryUoW) ListingRepository() ports.ListingRepository { return memoryListings{u} }

type memoryOrders struct{ u *memoryUoW }

func (r memoryOrders) Add(_ context.Context, o *order.Order) error {
	orders, _, _ := r.u.view()
	orders[o.ID()] = o.Snapshot()
	r.u.tracked = append(r.u.tracked, o)
	return nil
}

func (r memoryOrders) Update(_ context.Context, o *order.Order) error {
	if r.u.store.failOrderUpdate != nil {
		return r.u.store.failOrderUpdate
	}
	orders, _, _ := r.u.view()
	orders[o.ID()] = o.Snapshot()
	r.u.tracked = append(r.u.tracked, o)
	return nil
}

func (r memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	orders, _, _ := r.u.view()
	snap, ok := orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderId", id)
	}
	return order.Restore(snap)
}

func (r memoryOrders) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

func (r memoryOrders) list(keep func(order.Snapshot) bool) []*order.Order {
	orders, _, _ := r.u.view()
	var out []*order.Order
	for _, snap := range orders {
		if keep(snap) {
			o, _ := order.Restore(snap)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservedAt().After(out[j].ReservedAt()) })
	return out
}

func (r memoryOrders) ids(keep func(order.Snapshot) bool, limit int, skip []kernel.UUID) []kernel.UUID {
	var ids []kernel.UUID
	for _, o := range r.list(keep) {
		if limit > 0 && len(ids) == limit {
			break
		}
		if slices.ContainsFunc(skip, o.ID().IsEqual) {
			continue
		}
		ids = append(ids, o.ID())
	}
	return ids
}

func (r memoryOrders) ListByBuyer(_ context.Context, buyerID kernel.UUID) ([]*order.Order, error) {
	return r.list(func(s order.Snapshot) bool { return s.BuyerID == buyerID }), nil
}

func (r memoryOrders) ListBySeller(_ context.Context, sellerID kernel.UUID) ([]*order.Order, error) {
	return r.list(func(s order.Snapshot) bool { return s.SellerID == sellerID }), nil
}

func (r memoryOrders) FindPaymentOverdue(_ context.Context, now time.Time, limit int, skip []kernel.UUID) ([]kernel.UUID, error) {
	return r.ids(func(s order.Snapshot) bool {
		return s.Status == order.PendingPayment && s.PaymentDeadline.Before(now)
	}, limit, skip), nil
}

func (r memoryOrders) FindPickupExpired(_ context.Context, now time.Time, limit int, skip []kernel.UUID) ([]kernel.UUID, error) {
	return r.ids(func(s order.Snapshot) bool {
		return s.Status == order.ReadyForPickup && s.ExpiresAt != nil && s.ExpiresAt.Before(now)
	}, limit, skip), nil
}

func (r memoryOrders) FindAwaitingDelivery(_ context.Context, olderThan time.Time) ([]*order.Order, error) {
	return r.list(func(s order.Snapshot) bool {
		return (s.Status == order.Paid || s.Status == order.PickupScheduled) &&
			s.PaidAt != nil && s.PaidAt.Before(olderThan)
	}), nil
}

func (r memoryOrders) FindStaleCompartments(context.Context) ([]kernel.UUID, error) {
	return r.ids(func(s order.Snapshot) bool {
		return s.Status.IsTerminal() && s.CompartmentNumber != nil
	}, 0, nil), nil
}

func (r memoryOrders) CountHeldCompartments(_ context.Context, lockerID kernel.UUID) (int, error) {
	return len(r.list(func(s order.Snapshot) bool {
		return s.LockerID == lockerID && s.Status.HoldsCompartment()
	})), nil
}

type memoryLockers struct{ u *memoryUoW }

func (r memoryLockers) Add(_ context.Context, l *locker.Locker) error {
	_, lockers, _ := r.u.view()
	lockers[l.ID()] = copyLocker(l)
	return nil
}

func (r memoryLockers) Get(_ context.Context, id kernel.UUID) (*locker.Locker, error) {
	_, lockers, _ := r.u.view()
	l, ok := lockers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("lockerId", id)
	}
	return copyLocker(l), nil
}

func (r memoryLockers) GetForUpdate(ctx context.Context, id kernel.UUID) (*locker.Locker, error) {
	return r.Get(ctx, id)
}

func (r memoryLockers) GetAll(context.Context) ([]*locker.Locker, error) {
	_, lockers, _ := r.u.view()
	out := make([]*locker.Locker, 0, len(lockers))
	for _, l := range lockers {
		out = append(out, copyLocker(l))
	}
	return out, nil
}

func (r memoryLockers) GetAllActive(ctx context.Context) ([]*locker.Locker, error) {
	all, _ := r.GetAll(ctx)
	var out []*locker.Locker
	for _, l := range all {
		if l.IsActive() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r memoryLockers) AllocateCompartment(_ context.Context, lockerID kernel.UUID) (int, error) {
	orders, lockers, _ := r.u.view()
	l, ok := lockers[lockerID]
	if !ok {
		return 0, errs.NewObjectNotFoundError("lockerId", lockerID)
	}
	if err := l.Allocate(); err != nil {
		return 0, err
	}
	used := map[int]bool{}
	for _, s := range orders {
		if s.LockerID == lockerID && s.CompartmentNumber != nil {
			used[*s.CompartmentNumber] = true
		}
	}
	for n := 1; n <= l.TotalCompartments(); n++ {
		if !used[n] {
			return n, nil
		}
	}
	return 0, errs.NewStateConflictError(locker.MsgNoAvailableCompartments)
}

func (r memoryLockers) ReleaseCompartment(_ context.Context, lockerID kernel.UUID) (bool, error) {
	_, lockers, _ := r.u.view()
	l, ok := lockers[lockerID]
	if !ok {
		return false, errs.NewObjectNotFoundError("lockerId", lockerID)
	}
	if err := l.Release(); err != nil {
		return false, nil //nolint:nilerr // full capacity is reported through the bool
	}
	return true, nil
}

func (r memoryLockers) SetAvailable(_ context.Context, lockerID kernel.UUID, available int) error {
	_, lockers, _ := r.u.view()
	l := lockers[lockerID]
	c, err := locker.RestoreLocker(l.ID(), l.Name(), l.Address(), l.Coordinates(),
		l.TotalCompartments(), available, l.Status())
	if err != nil {
		return err
	}
	lockers[lockerID] = c
	return nil
}

type memoryListings struct{ u *memoryUoW }

func (r memoryListings) Add(_ context.Context, l *listing.Listing) error {
	_, _, listings := r.u.view()
	listings[l.ID()] = copyListing(l)
	return nil
}

func (r memoryListings) Update(ctx context.Context, l *listing.Listing) error {
	return r.Add(ctx, l)
}

func (r memoryListings) Get(_ context.Context, id kernel.UUID) (*listing.Listing, error) {
	_, _, listings := r.u.view()
	l, ok := listings[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("listingId", id)
	}
	return copyListing(l), nil
}

func (r memoryListings) GetForUpdate(ctx context.Context, id kernel.UUID) (*listing.Listing, error) {
	return r.Get(ctx, id)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockRewardsGateway struct{ mock.Mock }

func (m *MockRewardsGateway) AwardPoints(
	ctx context.Context,
	userID kernel.UUID,
	orderID kernel.UUID,
	points int,
	reason string,
) (int, error) {
	args := m.Called(ctx, userID, orderID, points, reason)
	return args.Int(0), args.Error(1)
}

// fixture is a seeded store with one locker and one active listing.
type fixture struct {
	store    *memoryStore
	clock    *fixedClock
	buyer    kernel.UUID
	seller   kernel.UUID
	locker   *locker.Locker
	listing  *listing.Listing
	settings commands.Settings
}

func newFixture(t *testing.T, compartments int) *fixture {
	t.Helper()
	coords, err := kernel.NewCoordinates(52.52, 13.405)
	require.NoError(t, err)
	lk, err := locker.NewLocker(kernel.NewUUID(), "Alexanderplatz", "Alexanderplatz 1", coords, compartments)
	require.NoError(t, err)

	f := &fixture{
		store:    newMemoryStore(),
		clock:    &fixedClock{now: time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)},
		buyer:    kernel.NewUUID(),
		seller:   kernel.NewUUID(),
		locker:   lk,
		settings: commands.DefaultSettings(),
	}
	f.listing = f.addListing(t, "10.00")
	f.store.lockers[lk.ID()] = copyLocker(lk)
	return f
}

func (f *fixture) addListing(t *testing.T, price string) *listing.Listing {
	t.Helper()
	l, err := listing.RestoreListing(kernel.NewUUID(), f.seller, kernel.MustMoney(price), listing.Active, nil)
	require.NoError(t, err)
	f.store.listings[l.ID()] = copyListing(l)
	return l
}

// createOrder places an order through the real handler.
func (f *fixture) createOrder(t *testing.T, listingID kernel.UUID) *order.Order {
	t.Helper()
	h := commands.NewCreateOrderCommandHandler(f.store, f.clock, f.settings)
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), f.buyer, listingID, f.locker.ID())
	require.NoError(t, err)
	o, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return o
}

// advance walks a stored order forward to status using the aggregate directly.
func (f *fixture) advance(t *testing.T, id kernel.UUID, status order.Status) *order.Order {
	t.Helper()
	o := f.store.order(t, id)
	now := f.clock.Now()
	for o.Status() != status {
		var err error
		switch o.Status() {
		case order.PendingPayment:
			err = o.Pay(now)
		case order.Paid:
			err = o.SchedulePickup(now.Add(time.Hour), now)
		case order.PickupScheduled:
			err = o.ConfirmRiderPickup(now)
		case order.InTransit:
			pin, _ := order.NewPin("123456")
			err = o.MarkReadyForPickup(pin, now, 0)
		default:
			t.Fatalf("cannot advance from %s to %s", o.Status(), status)
		}
		require.NoError(t, err)
	}
	f.store.putOrder(t, o)
	return o
}
