package queries_test

import (
	"context"
	"testing"
	"time"

	"ecolocker/internal/adapters/out/postgres/orderrepo"
	"ecolocker/internal/adapters/out/postgres/pgtest"
	"ecolocker/internal/core/application/usecases/queries"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/listing"
	"ecolocker/internal/core/domain/model/locker"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type QueriesIntegrationTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	now     time.Time
	locker  *locker.Locker
	listing *listing.Listing
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	suite.Require().NoError(suite.pg.Truncate())

	lk, err := suite.pg.SeedLocker(ctx, "Central", 6)
	suite.Require().NoError(err)
	suite.locker = lk
	ls, err := suite.pg.SeedListing(ctx, kernel.NewUUID(), "10.00")
	suite.Require().NoError(err)
	suite.listing = ls
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Terminate(context.Background()))
}

func (suite *QueriesIntegrationTestSuite) storeOrder(buyer kernel.UUID, compartment int, at time.Time) *order.Order {
	o, err := pgtest.NewOrder(suite.listing, suite.locker.ID(), buyer, compartment, at)
	suite.Require().NoError(err)
	suite.Require().NoError(orderrepo.NewGormOrderRepository(suite.pg.DB, noopTracker{}).Add(context.Background(), o))
	return o
}

func (suite *QueriesIntegrationTestSuite) TestActiveLockers() {
	ctx := context.Background()
	closed, err := suite.pg.SeedLocker(ctx, "Annex", 2)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.pg.DB.Exec(
		"UPDATE lockers SET status = 'inactive' WHERE id = ?", closed.ID().Bytes()).Error)

	views, err := queries.NewGetActiveLockersQueryHandler(suite.pg.DB).
		Handle(ctx, queries.NewGetActiveLockersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(views, 1)
	suite.Equal("Central", views[0].Name)
	suite.Equal(6, views[0].AvailableCompartments)
}

func (suite *QueriesIntegrationTestSuite) TestNearbyLockers() {
	ctx := context.Background()

	near, err := queries.NewGetNearbyLockersQuery(52.37, 4.90, 2)
	suite.Require().NoError(err)
	views, err := queries.NewGetNearbyLockersQueryHandler(suite.pg.DB).Handle(ctx, near)
	suite.Require().NoError(err)
	suite.Require().Len(views, 1)
	suite.Less(views[0].DistanceKm, 2.0)

	far, err := queries.NewGetNearbyLockersQuery(48.85, 2.35, 10)
	suite.Require().NoError(err)
	views, err = queries.NewGetNearbyLockersQueryHandler(suite.pg.DB).Handle(ctx, far)
	suite.Require().NoError(err)
	suite.Empty(views)
}

func (suite *QueriesIntegrationTestSuite) TestOrdersByRoleAndStatus() {
	ctx := context.Background()
	buyer := kernel.NewUUID()
	older := suite.storeOrder(buyer, 1, suite.now)
	newer := suite.storeOrder(buyer, 2, suite.now.Add(time.Hour))
	suite.storeOrder(kernel.NewUUID(), 3, suite.now)

	handler := queries.NewGetOrdersQueryHandler(suite.pg.DB)

	q, err := queries.NewGetOrdersQuery(buyer, queries.RoleBuyer)
	suite.Require().NoError(err)
	views, err := handler.Handle(ctx, q)
	suite.Require().NoError(err)
	suite.Require().Len(views, 2)
	suite.True(views[0].ID.IsEqual(newer.ID()))
	suite.True(views[1].ID.IsEqual(older.ID()))
	suite.Equal("12.00", views[0].TotalPrice.String())

	q, err = queries.NewGetOrdersQuery(suite.listing.SellerID(), queries.RoleSeller)
	suite.Require().NoError(err)
	views, err = handler.Handle(ctx, q)
	suite.Require().NoError(err)
	suite.Len(views, 3)

	q, err = queries.NewGetOrdersQuery(buyer, queries.RoleBuyer, order.Paid)
	suite.Require().NoError(err)
	views, err = handler.Handle(ctx, q)
	suite.Require().NoError(err)
	suite.Empty(views)

	q, err = queries.NewGetOrdersQuery(buyer, queries.RoleBuyer, order.PendingPayment, order.Paid)
	suite.Require().NoError(err)
	views, err = handler.Handle(ctx, q)
	suite.Require().NoError(err)
	suite.Len(views, 2)
}

func (suite *QueriesIntegrationTestSuite) TestOrderVisibleToPartiesOnly() {
	ctx := context.Background()
	buyer := kernel.NewUUID()
	o := suite.storeOrder(buyer, 1, suite.now)
	handler := queries.NewGetOrderQueryHandler(suite.pg.DB)

	for _, actor := range []kernel.UUID{buyer, suite.listing.SellerID()} {
		q, err := queries.NewGetOrderQuery(actor, o.ID())
		suite.Require().NoError(err)
		view, err := handler.Handle(ctx, q)
		suite.Require().NoError(err)
		suite.True(view.ID.IsEqual(o.ID()))
		suite.Equal(order.PendingPayment, view.Status)
	}

	q, err := queries.NewGetOrderQuery(kernel.NewUUID(), o.ID())
	suite.Require().NoError(err)
	_, err = handler.Handle(ctx, q)
	var notFound *errs.ObjectNotFoundError
	suite.ErrorAs(err, &notFound)
}

func TestQueriesIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
