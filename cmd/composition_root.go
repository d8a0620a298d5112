package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	httpin "ecolocker/internal/adapters/in/http"
	rabbitin "ecolocker/internal/adapters/in/rabbit"
	"ecolocker/internal/adapters/out/clock"
	"ecolocker/internal/adapters/out/events"
	"ecolocker/internal/adapters/out/kafka"
	mongoout "ecolocker/internal/adapters/out/mongo"
	"ecolocker/internal/adapters/out/postgres"
	"ecolocker/internal/adapters/out/rabbit"
	redisout "ecolocker/internal/adapters/out/redis"
	"ecolocker/internal/adapters/out/rewards"
	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/application/usecases/queries"
	"ecolocker/internal/core/domain/services"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/jobs"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Infrastructure holds the connections opened by main. Redis and Mongo are optional.
type Infrastructure struct {
	DB     *gorm.DB
	Rabbit *amqp.Connection
	Redis  redis.UniversalClient
	Mongo  *mongo.Database
}

type CompositionRoot struct {
	cfg    Config
	gormDB *gorm.DB
	rabbit *amqp.Connection
	logger *slog.Logger

	uowFactory *postgres.GormUnitOfWorkFactory
	clock      ports.Clock
	notifier   ports.Notifier
	rewards    ports.RewardsGateway
	lease      ports.SweepLease
	pins       services.PinGenerator

	closers []func() error
}

func NewCompositionRoot(ctx context.Context, cfg Config, infra Infrastructure, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:    cfg,
		gormDB: infra.DB,
		rabbit: infra.Rabbit,
		logger: logger,
		clock:  clock.System{},
		pins:   services.NewPinGenerator(),
	}

	notifier, err := rabbit.NewNotifier(infra.Rabbit)
	if err != nil {
		return nil, err
	}
	c.notifier = notifier

	var sinks []events.Sink
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrderChangedTopic)
		c.closers = append(c.closers, publisher.Close)
		sinks = append(sinks, events.Sink{Name: "kafka", Publisher: publisher})
	}
	if infra.Mongo != nil {
		audit := mongoout.NewTransitionAudit(infra.Mongo)
		if err = audit.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, events.Sink{Name: "mongo", Publisher: audit})
	}
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(infra.DB, events.NewFanOut(sinks...), logger)

	c.rewards = rewards.Disabled{}
	if cfg.RewardsBaseURL != "" {
		c.rewards = rewards.NewClient(cfg.RewardsBaseURL, 3*time.Second, logger)
	}

	c.lease = redisout.NoopLease{}
	if infra.Redis != nil {
		c.lease = redisout.NewSweepLease(infra.Redis, logger)
	}

	return c, nil
}

// Close releases the publishers owned by the root. Connections stay with main.
func (c *CompositionRoot) Close() error {
	var err error
	for _, closeFn := range c.closers {
		err = errors.Join(err, closeFn())
	}
	return err
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	h := commands.NewCreateOrderCommandHandler(c.uow(), c.clock, c.cfg.Orders)
	return &h
}

func (c *CompositionRoot) CreatePayOrderCommandHandler() *commands.PayOrderCommandHandler {
	h := commands.NewPayOrderCommandHandler(c.uow(), c.clock, c.notifier, c.logger)
	return &h
}

func (c *CompositionRoot) CreateSchedulePickupCommandHandler() *commands.SchedulePickupCommandHandler {
	h := commands.NewSchedulePickupCommandHandler(c.orderUoW(), c.clock)
	return &h
}

func (c *CompositionRoot) CreateConfirmRiderPickupCommandHandler() *commands.ConfirmRiderPickupCommandHandler {
	h := commands.NewConfirmRiderPickupCommandHandler(c.orderUoW(), c.clock, c.rewards, c.cfg.Orders, c.logger)
	return &h
}

func (c *CompositionRoot) CreateMarkReadyForPickupCommandHandler() *commands.MarkReadyForPickupCommandHandler {
	h := commands.NewMarkReadyForPickupCommandHandler(c.orderUoW(), c.clock, c.pins, c.notifier, c.cfg.Orders, c.logger)
	return &h
}

func (c *CompositionRoot) CreateVerifyPinCommandHandler() *commands.VerifyPinCommandHandler {
	h := commands.NewVerifyPinCommandHandler(c.uow(), c.clock, c.logger)
	return &h
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() *commands.CancelOrderCommandHandler {
	h := commands.NewCancelOrderCommandHandler(c.uow(), c.clock, c.notifier, c.logger)
	return &h
}

func (c *CompositionRoot) CreateExpireOverdueReservationsCommandHandler() *commands.ExpireOverdueReservationsCommandHandler {
	h := commands.NewExpireOverdueReservationsCommandHandler(c.uow(), c.clock, c.notifier, c.cfg.Orders, c.logger)
	return &h
}

func (c *CompositionRoot) CreateExpireUnclaimedPickupsCommandHandler() *commands.ExpireUnclaimedPickupsCommandHandler {
	h := commands.NewExpireUnclaimedPickupsCommandHandler(c.uow(), c.clock, c.notifier, c.cfg.Orders, c.logger)
	return &h
}

func (c *CompositionRoot) CreateReconcileCompartmentsCommandHandler() *commands.ReconcileCompartmentsCommandHandler {
	h := commands.NewReconcileCompartmentsCommandHandler(c.uow(), c.logger)
	return &h
}

func (c *CompositionRoot) CreateRequeuePendingDeliveriesCommandHandler() *commands.RequeuePendingDeliveriesCommandHandler {
	h := commands.NewRequeuePendingDeliveriesCommandHandler(c.orderUoW(), c.clock, c.notifier, c.cfg.Orders, c.logger)
	return &h
}

func (c *CompositionRoot) CreateGetActiveLockersQueryHandler() queries.GetActiveLockersQueryHandler {
	return queries.NewGetActiveLockersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetNearbyLockersQueryHandler() queries.GetNearbyLockersQueryHandler {
	return queries.NewGetNearbyLockersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersQueryHandler() queries.GetOrdersQueryHandler {
	return queries.NewGetOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:        c.CreateCreateOrderCommandHandler(),
		PayOrder:           c.CreatePayOrderCommandHandler(),
		SchedulePickup:     c.CreateSchedulePickupCommandHandler(),
		ConfirmRiderPickup: c.CreateConfirmRiderPickupCommandHandler(),
		VerifyPin:          c.CreateVerifyPinCommandHandler(),
		CancelOrder:        c.CreateCancelOrderCommandHandler(),
		ActiveLockers:      c.CreateGetActiveLockersQueryHandler(),
		NearbyLockers:      c.CreateGetNearbyLockersQueryHandler(),
		Orders:             c.CreateGetOrdersQueryHandler(),
		Order:              c.CreateGetOrderQueryHandler(),
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(jobs.Handlers{
		ExpireReservations: c.CreateExpireOverdueReservationsCommandHandler(),
		ExpirePickups:      c.CreateExpireUnclaimedPickupsCommandHandler(),
		Reconcile:          c.CreateReconcileCompartmentsCommandHandler(),
		Requeue:            c.CreateRequeuePendingDeliveriesCommandHandler(),
	}, c.cfg.Schedules, c.lease, c.logger)
}

func (c *CompositionRoot) CreateDepositConsumer() (*rabbitin.DepositConsumer, error) {
	return rabbitin.NewDepositConsumer(c.rabbit, c.CreateMarkReadyForPickupCommandHandler(), c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
