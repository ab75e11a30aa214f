package logging

import (
	"log/slog"
	"os"
	"time"

	"gorm.io/gorm"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler())))
}

// AttachDB makes the default logger also persist ERROR+ records to db.
// Call Stop on the returned handler during shutdown.
func AttachDB(db *gorm.DB) *DBHandler {
	dbHandler := NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), dbHandler)))
	return dbHandler
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
