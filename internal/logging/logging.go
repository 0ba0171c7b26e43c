package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	dateLayout       = "2006-01-02"
	maxRetentionDays = 7
)

// Options configure New.
type Options struct {
	Dir           string
	RetentionDays int
	Level         string
}

// New returns a logger writing JSON to stdout and to a daily log file under Dir.
// The returned func stops rotation and closes the current file.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)}
	cleanup := func() {}
	if opts.Dir != "" {
		writer, err := NewDailyFile(opts.Dir, opts.RetentionDays)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		go writer.Run(ctx, time.Minute)
		cores = append(cores, zapcore.NewCore(encoder, writer, level))
		cleanup = func() {
			cancel()
			_ = writer.Close()
		}
	}
	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger, func() {
		_ = logger.Sync()
		cleanup()
	}, nil
}

// DailyFile is a zapcore.WriteSyncer that writes to app-YYYY-MM-DD.log and
// switches files when the date changes, pruning files older than the retention window.
type DailyFile struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	currentDate   string
	file          *os.File
	now           func() time.Time
}

func NewDailyFile(dir string, retentionDays int) (*DailyFile, error) {
	if retentionDays <= 0 || retentionDays > maxRetentionDays {
		retentionDays = maxRetentionDays
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	d := &DailyFile{dir: dir, retentionDays: retentionDays, now: time.Now}
	if err := d.rotate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return 0, os.ErrClosed
	}
	return d.file.Write(p)
}

func (d *DailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Run checks for a date change every interval until ctx is done.
func (d *DailyFile) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = d.rotate()
		case <-ctx.Done():
			return
		}
	}
}

func (d *DailyFile) rotate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	date := d.now().Format(dateLayout)
	if date == d.currentDate && d.file != nil {
		return nil
	}
	file, err := os.OpenFile(filepath.Join(d.dir, fmt.Sprintf("app-%s.log", date)), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if d.file != nil {
		_ = d.file.Close()
	}
	d.file = file
	d.currentDate = date
	d.cleanupOld()
	return nil
}

func (d *DailyFile) cleanupOld() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	cutoff := d.now().AddDate(0, 0, -(d.retentionDays - 1))
	cutoffDate, _ := time.Parse(dateLayout, cutoff.Format(dateLayout))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		logDate, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log"))
		if err != nil {
			continue
		}
		if logDate.Before(cutoffDate) {
			_ = os.Remove(filepath.Join(d.dir, name))
		}
	}
}
