package cli

import (
	memoryApp "github.com/felixgeelhaar/tempora/internal/memory/application"
	notificationsApp "github.com/felixgeelhaar/tempora/internal/notifications/application"
	scheduleCommands "github.com/felixgeelhaar/tempora/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/tempora/internal/scheduling/application/queries"
	taskCommands "github.com/felixgeelhaar/tempora/internal/tasks/application/commands"
	taskQueries "github.com/felixgeelhaar/tempora/internal/tasks/application/queries"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	// Task command handlers
	CreateTaskHandler   *taskCommands.CreateTaskHandler
	CompleteTaskHandler *taskCommands.CompleteTaskHandler
	UpdateTaskHandler   *taskCommands.UpdateTaskHandler
	CancelTaskHandler   *taskCommands.CancelTaskHandler

	// Task query handlers
	GetTaskHandler   *taskQueries.GetTaskHandler
	ListTasksHandler *taskQueries.ListTasksHandler

	// Scheduling
	ScheduleTaskHandler *scheduleCommands.ScheduleTaskHandler
	ListChangesHandler  *scheduleQueries.ListChangesHandler
	FindSlotHandler     *scheduleQueries.FindSlotHandler

	// Services
	MemoryService *memoryApp.Service
	Notifier      *notificationsApp.Notifier

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
