package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
	)
}

// LogBookingCreated logs when a pending booking is created
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, eventID, userID string) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
}

// LogBookingCancelled logs when a booking is cancelled
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID string) {
	l.Logger.InfoContext(ctx,
		"Booking Cancelled",
		slog.String("booking_id", bookingID),
	)
}

// LogSweepRun logs one run of a reconciliation sweep
func (l *Logger) LogSweepRun(ctx context.Context, job string, affected int, err error) {
	if err != nil {
		l.Logger.ErrorContext(ctx,
			"Sweep Failed",
			slog.String("job", job),
			slog.String("error", err.Error()),
		)
		return
	}
	if affected > 0 {
		l.Logger.InfoContext(ctx,
			"Sweep Completed",
			slog.String("job", job),
			slog.Int("affected", affected),
		)
	}
}

// LogRefundOutcome logs the result of a single refund attempt in a fan-out
func (l *Logger) LogRefundOutcome(ctx context.Context, paymentID string, err error) {
	if err != nil {
		l.Logger.ErrorContext(ctx,
			"Refund Failed",
			slog.String("payment_id", paymentID),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Logger.InfoContext(ctx,
		"Refund Processed",
		slog.String("payment_id", paymentID),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
