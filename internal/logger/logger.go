package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

var (
	mu     sync.RWMutex
	level  = os.Getenv("LOG_LEVEL")
	format = os.Getenv("LOG_FORMAT")
)

var output io.Writer = os.Stderr

// Configure overrides the level ("debug", "info", "warn", "error") and format
// ("text", "json") used by subsequent New calls. Empty values keep the current
// setting.
func Configure(lvl, fmtName string) {
	mu.Lock()
	defer mu.Unlock()
	if lvl != "" {
		level = lvl
	}
	if fmtName != "" {
		format = fmtName
	}
}

// SetOutput redirects subsequent loggers, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func New() *Logger {
	mu.RLock()
	lvl, fmtName, out := level, format, output
	mu.RUnlock()

	base := logrus.New()

	// text unless json is asked for explicitly or we are outside a local env
	env := os.Getenv("ENVIRONMENT")
	if fmtName == "json" || (fmtName == "" && env != "" && env != "local") {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(out)

	switch strings.ToLower(lvl) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.New().String()
	}

	return l.WithFields(logrus.Fields{
		"req_id":     reqID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
