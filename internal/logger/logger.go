// Package logger builds the logrus entries shared by the insights service and
// the report CLI.
//
// LOG_LEVEL sets the level (info by default). Output is colored text when
// ENVIRONMENT is empty or "local" and JSON otherwise; LOG_FORMAT=json|text
// overrides that choice.
package logger

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the caller's request id, echoed back in responses.
const RequestIDHeader = "X-Request-ID"

// reportParams are the query parameters logged as fields of a request.
var reportParams = []string{"technician", "provider", "search", "current", "reference", "metric", "group"}

type Logger struct {
	*logrus.Entry
}

func New() *Logger {
	base := logrus.New()
	base.SetFormatter(formatter())
	base.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	return &Logger{Entry: logrus.NewEntry(base)}
}

func formatter() logrus.Formatter {
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if format == "" {
		if env := os.Getenv("ENVIRONMENT"); env == "" || env == "local" {
			format = "text"
		}
	}
	if format == "text" {
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		}
	}
	return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
}

// Component returns a logger tagged with the part of the pipeline writing to it,
// such as "dataset.weekly".
func Component(name string) *Logger {
	l := New()
	return &Logger{Entry: l.WithField("component", name)}
}

// WithWorkbook tags the workbook source and sheet being read. Empty values are
// left out.
func (l *Logger) WithWorkbook(source, sheet string) *Logger {
	fields := logrus.Fields{}
	if source != "" {
		fields["source"] = source
	}
	if sheet != "" {
		fields["sheet"] = sheet
	}
	return &Logger{Entry: l.WithFields(fields)}
}

// RequestID returns the request id of r, generating one when absent.
func RequestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// WithRequest attaches the request id, route and report filters of r.
func (l *Logger) WithRequest(r *http.Request, reqID string) *logrus.Entry {
	fields := logrus.Fields{
		"req_id":    reqID,
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	}
	q := r.URL.Query()
	for _, p := range reportParams {
		switch vals := q[p]; len(vals) {
		case 0:
		case 1:
			fields[p] = vals[0]
		default:
			fields[p] = strings.Join(vals, ",")
		}
	}
	return l.WithFields(fields)
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
