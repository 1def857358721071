// Package app wires configuration, storage, the event bus and all
// command handlers into a single container the CLI consumes.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/tempora/internal/assistant"
	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	calendarCalDAV "github.com/felixgeelhaar/tempora/internal/calendar/infrastructure/caldav"
	calendarGoogle "github.com/felixgeelhaar/tempora/internal/calendar/infrastructure/google"
	memoryApp "github.com/felixgeelhaar/tempora/internal/memory/application"
	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	memoryPersistence "github.com/felixgeelhaar/tempora/internal/memory/infrastructure/persistence"
	notificationsApp "github.com/felixgeelhaar/tempora/internal/notifications/application"
	notificationsDomain "github.com/felixgeelhaar/tempora/internal/notifications/domain"
	notificationsPersistence "github.com/felixgeelhaar/tempora/internal/notifications/infrastructure/persistence"
	scheduleCommands "github.com/felixgeelhaar/tempora/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/tempora/internal/scheduling/application/queries"
	scheduleServices "github.com/felixgeelhaar/tempora/internal/scheduling/application/services"
	scheduleSubs "github.com/felixgeelhaar/tempora/internal/scheduling/application/subscribers"
	schedulingDomain "github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	schedulePersistence "github.com/felixgeelhaar/tempora/internal/scheduling/infrastructure/persistence"
	sharedApp "github.com/felixgeelhaar/tempora/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	taskCommands "github.com/felixgeelhaar/tempora/internal/tasks/application/commands"
	taskQueries "github.com/felixgeelhaar/tempora/internal/tasks/application/queries"
	taskServices "github.com/felixgeelhaar/tempora/internal/tasks/application/services"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	taskPersistence "github.com/felixgeelhaar/tempora/internal/tasks/infrastructure/persistence"
	"github.com/felixgeelhaar/tempora/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Option customizes container construction.
type Option func(*options)

type options struct {
	assistant assistant.Assistant
}

// WithAssistant injects an assistant implementation. It is wrapped in a
// circuit breaker; the scheduler degrades to heuristics when it trips.
func WithAssistant(a assistant.Assistant) Option {
	return func(o *options) { o.assistant = a }
}

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database. Exactly one of the two is set.
	SQLiteDB *sql.DB
	Pool     *pgxpool.Pool

	RedisClient *redis.Client

	// Repositories
	TaskRepo         task.Repository
	MemoryRepo       memoryDomain.Repository
	ChangeRepo       schedulingDomain.Repository
	NotificationRepo notificationsDomain.Repository

	// Shared infrastructure
	UnitOfWork      sharedApp.UnitOfWork
	EventBus        *eventbus.InProcessEventBus
	EventPublisher  sharedApp.EventPublisher
	UserLock        lock.UserLock
	BrokerPublisher *eventbus.RabbitMQPublisher

	// Services
	MemoryService *memoryApp.Service
	Notifier      *notificationsApp.Notifier
	Assessor      *taskServices.PriorityAssessor
	DayWalker     *scheduleServices.DayWalker
	Assistant     assistant.Assistant

	// Calendar
	CalendarRegistry *calendarApp.Registry
	CalendarProvider calendarApp.Provider

	// Task command handlers
	CreateTaskHandler   *taskCommands.CreateTaskHandler
	CompleteTaskHandler *taskCommands.CompleteTaskHandler
	UpdateTaskHandler   *taskCommands.UpdateTaskHandler
	CancelTaskHandler   *taskCommands.CancelTaskHandler

	// Task query handlers
	GetTaskHandler   *taskQueries.GetTaskHandler
	ListTasksHandler *taskQueries.ListTasksHandler

	// Scheduling handlers
	ScheduleTaskHandler *scheduleCommands.ScheduleTaskHandler
	CascadeHandler      *scheduleCommands.CascadeHandler
	ListChangesHandler  *scheduleQueries.ListChangesHandler
	FindSlotHandler     *scheduleQueries.FindSlotHandler

	// Event subscribers
	TaskEventSubscriber *scheduleSubs.TaskEventSubscriber
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initStorage(ctx, cfg, logger); err != nil {
		return nil, err
	}

	if err := c.initLock(ctx, cfg, logger); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initEventBus(cfg, logger); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initCalendar(ctx, cfg, logger); err != nil {
		c.Close()
		return nil, err
	}

	if o.assistant != nil {
		c.Assistant = assistant.NewBreakerAssistant(o.assistant, cfg.AssistantTimeout, logger)
	}

	c.MemoryService = memoryApp.NewService(c.MemoryRepo, memoryApp.Defaults{
		Timezone:          cfg.Timezone,
		StartHour:         cfg.WorkdayStartHour,
		EndHour:           cfg.WorkdayEndHour,
		MaxExtensionHours: cfg.MaxExtensionHours,
		BufferMinutes:     cfg.BufferMinutes,
		MaxDaysAhead:      cfg.MaxDaysAhead,
	}, logger)
	c.Notifier = notificationsApp.NewNotifier(c.NotificationRepo, logger)
	c.Assessor = taskServices.NewPriorityAssessor(c.Assistant, logger)
	c.DayWalker = scheduleServices.NewDayWalker(logger)

	c.CreateTaskHandler = taskCommands.NewCreateTaskHandler(
		c.TaskRepo, c.UnitOfWork, c.Assessor, c.Assistant, c.EventPublisher, logger)
	c.CompleteTaskHandler = taskCommands.NewCompleteTaskHandler(
		c.TaskRepo, c.UnitOfWork, c.EventPublisher, logger)
	c.UpdateTaskHandler = taskCommands.NewUpdateTaskHandler(
		c.TaskRepo, c.UnitOfWork, c.EventPublisher, logger)
	c.CancelTaskHandler = taskCommands.NewCancelTaskHandler(
		c.TaskRepo, c.UnitOfWork, c.EventPublisher, logger)

	c.GetTaskHandler = taskQueries.NewGetTaskHandler(c.TaskRepo)
	c.ListTasksHandler = taskQueries.NewListTasksHandler(c.TaskRepo)

	c.ScheduleTaskHandler = scheduleCommands.NewScheduleTaskHandler(
		c.TaskRepo, c.MemoryService, c.DayWalker, c.CalendarProvider,
		c.UnitOfWork, c.EventPublisher, c.Notifier, c.UserLock, logger)
	c.CascadeHandler = scheduleCommands.NewCascadeHandler(
		c.TaskRepo, c.MemoryService, c.DayWalker, c.CalendarProvider, c.ChangeRepo,
		c.UnitOfWork, c.EventPublisher, c.Notifier, c.UserLock, logger)
	c.ListChangesHandler = scheduleQueries.NewListChangesHandler(c.ChangeRepo)
	c.FindSlotHandler = scheduleQueries.NewFindSlotHandler(
		c.TaskRepo, c.MemoryService, c.DayWalker, c.CalendarProvider, logger)

	// Task lifecycle events drive the rescheduling cascade. The tasks
	// context publishes; this subscriber reacts.
	c.TaskEventSubscriber = scheduleSubs.NewTaskEventSubscriber(c.CascadeHandler, logger)
	c.EventBus.RegisterConsumer(c.TaskEventSubscriber)

	return c, nil
}

// initStorage connects the configured backend and applies migrations.
// DATABASE_URL selects PostgreSQL; the default is embedded SQLite.
func (c *Container) initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migrations.ApplyPostgres(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.Pool = pool
		c.TaskRepo = taskPersistence.NewPostgresTaskRepository(pool)
		c.MemoryRepo = memoryPersistence.NewPostgresMemoryRepository(pool)
		c.ChangeRepo = schedulePersistence.NewPostgresChangeRepository(pool)
		c.NotificationRepo = notificationsPersistence.NewPostgresNotificationRepository(pool)
		c.UnitOfWork = sharedPersistence.NewPgxUnitOfWork(pool)
		logger.Info("connected to database", "driver", "postgres")
		return nil
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	c.SQLiteDB = db
	c.TaskRepo = taskPersistence.NewSQLiteTaskRepository(db)
	c.MemoryRepo = memoryPersistence.NewSQLiteMemoryRepository(db)
	c.ChangeRepo = schedulePersistence.NewSQLiteChangeRepository(db)
	c.NotificationRepo = notificationsPersistence.NewSQLiteNotificationRepository(db)
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
	logger.Info("connected to database", "driver", "sqlite", "path", cfg.SQLitePath)
	return nil
}

// initLock selects the per-user scheduling lock. Redis makes it hold
// across processes; local mode falls back to an in-process mutex.
func (c *Container) initLock(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.RedisURL == "" {
		c.UserLock = lock.NewMemoryUserLock()
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		logger.Warn("invalid Redis URL, using in-process scheduling lock", "error", err)
		c.UserLock = lock.NewMemoryUserLock()
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Warn("Redis not available, using in-process scheduling lock", "error", err)
		c.UserLock = lock.NewMemoryUserLock()
		return nil
	}

	c.RedisClient = client
	c.UserLock = lock.NewRedisUserLock(client, logger)
	logger.Info("connected to Redis")
	return nil
}

// initEventBus sets up event delivery. The in-process bus always runs so
// the cascade subscriber fires synchronously; RabbitMQ is added as a
// second target when a broker URL is configured.
func (c *Container) initEventBus(cfg *config.Config, logger *slog.Logger) error {
	c.EventBus = eventbus.NewInProcessEventBus(logger)
	c.EventPublisher = c.EventBus

	if cfg.RabbitMQURL == "" {
		return nil
	}

	broker, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		logger.Warn("RabbitMQ not available, events stay in-process", "error", err)
		return nil
	}

	c.BrokerPublisher = broker
	c.EventPublisher = &fanoutPublisher{targets: []sharedApp.EventPublisher{c.EventBus, broker}}
	logger.Info("connected to RabbitMQ")
	return nil
}

// initCalendar registers configured providers and resolves the active one.
func (c *Container) initCalendar(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	c.CalendarRegistry = calendarApp.NewRegistry()

	if cfg.CalDAVURL != "" && cfg.CalDAVUsername != "" && cfg.CalDAVPassword != "" {
		provider := calendarCalDAV.NewProvider(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, logger)
		if cfg.CalDAVPath != "" {
			provider.WithCalendarPath(cfg.CalDAVPath)
		}
		c.CalendarRegistry.Register(provider)
	}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" && cfg.GoogleRefreshToken != "" {
		srv, err := calendarGoogle.NewService(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken)
		if err != nil {
			logger.Warn("failed to initialize google calendar", "error", err)
		} else {
			c.CalendarRegistry.Register(calendarGoogle.NewProvider(srv, cfg.GoogleCalendarID, logger))
		}
	}

	if cfg.CalendarProvider == "" {
		logger.Info("no calendar provider configured, scheduling without external events")
		return nil
	}

	provider, err := c.CalendarRegistry.Get(cfg.CalendarProvider)
	if err != nil {
		return err
	}
	c.CalendarProvider = provider
	logger.Info("calendar provider active", "provider", provider.Name())
	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.BrokerPublisher != nil {
		if err := c.BrokerPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.Pool != nil {
		c.Pool.Close()
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		}
	}
}

// fanoutPublisher delivers each event to every target. The in-process
// bus comes first so subscribers run even when the broker is down.
type fanoutPublisher struct {
	targets []sharedApp.EventPublisher
}

func (p *fanoutPublisher) PublishDomainEvent(ctx context.Context, event sharedDomain.DomainEvent) error {
	var firstErr error
	for _, target := range p.targets {
		if err := target.PublishDomainEvent(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
