package audit

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lakshaymaurya-felt/sitemole/internal/core"
)

// filePrefix and fileExt name session files session_<stamp>.log.
const (
	filePrefix  = "session_"
	fileExt     = ".log"
	stampLayout = "2006-01-02_15-04-05"
)

// Logger is one session's audit log.
type Logger struct {
	sugar *zap.SugaredLogger
	file  string // empty when degraded to stderr
}

// encoderConfig renders plain text lines: ISO8601 timestamp, level,
// message, then the structured fields.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// Open starts a session log in dir. An unwritable directory degrades to
// stderr logging instead of failing; a cleaning run must never abort
// because its log cannot be written.
func Open(dir, version, profileKey string) *Logger {
	var (
		sink zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
		file string
	)

	if err := os.MkdirAll(dir, 0o755); err == nil {
		path := filepath.Join(dir, filePrefix+time.Now().Format(stampLayout)+fileExt)
		if f, openErr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); openErr == nil {
			sink = zapcore.AddSync(f)
			file = path
		}
	}

	zc := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, zap.InfoLevel)
	l := &Logger{sugar: zap.New(zc).Sugar(), file: file}

	l.sugar.Infow("session start",
		"tool", "SiteMole",
		"version", version,
		"profile", profileKey,
		"os", core.WindowsVersionString(),
	)
	if file == "" {
		l.sugar.Warnw("log directory not writable, logging to stderr", "dir", dir)
	}
	return l
}

// File returns the session file path, empty when degraded to stderr.
func (l *Logger) File() string {
	return l.file
}

// Deletion records one deletion attempt, the central audit entry: what was
// targeted, which kind of data, and how it went.
func (l *Logger) Deletion(site, kind, status, detail string) {
	l.sugar.Infow("deletion",
		"site", site,
		"kind", kind,
		"status", status,
		"detail", detail,
	)
}

// Infow logs a general informational entry.
func (l *Logger) Infow(msg string, kv ...any) {
	l.sugar.Infow(msg, kv...)
}

// Warnw logs a warning entry.
func (l *Logger) Warnw(msg string, kv ...any) {
	l.sugar.Warnw(msg, kv...)
}

// Errorw logs an error entry.
func (l *Logger) Errorw(msg string, kv ...any) {
	l.sugar.Errorw(msg, kv...)
}

// Close flushes the session log.
func (l *Logger) Close() {
	_ = l.sugar.Sync()
}

// ─── Session listing ─────────────────────────────────────────────────────────

// Session is one past session log file.
type Session struct {
	Path    string
	Name    string
	ModTime time.Time
	Size    int64
}

// Sessions lists session logs in dir, newest first. A missing directory is
// an empty list, not an error.
func Sessions(dir string) ([]Session, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		info, infoErr := e.Info()
		if infoErr != nil {
			continue
		}
		sessions = append(sessions, Session{
			Path:    filepath.Join(dir, e.Name()),
			Name:    e.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

// Read returns a session log's contents.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
