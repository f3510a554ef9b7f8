package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	output *os.File
)

// Init points the process-wide logger at the given file.
// Until Init is called, log records are discarded.
func Init(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		output.Close()
	}
	output = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	return nil
}

// GetLogger returns the process-wide slog logger instance.
func GetLogger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if output == nil {
		return nil
	}
	err := output.Close()
	output = nil
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return err
}
