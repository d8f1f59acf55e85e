package exceptions

import (
	"sort"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
)

type SeverityLevel string

const (
	SeverityCritical SeverityLevel = "critical"
	SeverityError    SeverityLevel = "error"
	SeverityWarning  SeverityLevel = "warning"
	SeverityInfo     SeverityLevel = "info"
)

type ErrorTracker struct {
	mu      sync.Mutex
	count   map[string]int
	details map[string]ErrorDetail
}

var errorTracker = NewErrorTracker()

type ErrorDetail struct {
	Message   string        `json:"message"`
	Count     int           `json:"count"`
	Severity  SeverityLevel `json:"severity"`
	Timestamp string        `json:"timestamp"`
}

func NewErrorTracker() *ErrorTracker {
	return &ErrorTracker{count: make(map[string]int), details: make(map[string]ErrorDetail)}
}

// Track counts err under its message and returns the updated detail.
func (t *ErrorTracker) Track(err error, severity SeverityLevel) ErrorDetail {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count[err.Error()]++
	detail := ErrorDetail{
		Message:   err.Error(),
		Count:     t.count[err.Error()],
		Severity:  severity,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	t.details[err.Error()] = detail
	return detail
}

// Summary lists tracked errors, most frequent first.
func (t *ErrorTracker) Summary() []ErrorDetail {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ErrorDetail, 0, len(t.details))
	for _, d := range t.details {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Message < out[j].Message
	})
	return out
}

func (t *ErrorTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = make(map[string]int)
	t.details = make(map[string]ErrorDetail)
}

// Report logs err at the level matching severity and tracks it process wide.
func Report(err error, severity SeverityLevel) ErrorDetail {
	switch severity {
	case SeverityCritical, SeverityError:
		log.Error(err)
	case SeverityWarning:
		log.Warn(err)
	default:
		log.Info(err)
	}
	return errorTracker.Track(err, severity)
}

// Summary returns the process wide tracked errors.
func Summary() []ErrorDetail {
	return errorTracker.Summary()
}

// Dump renders v with its full structure for diagnostics of unexpected errors.
func Dump(v any) string {
	return spew.Sdump(v)
}

// LogDump logs msg with a full dump of v attached.
func LogDump(msg string, v any) {
	log.WithField("dump", Dump(v)).Error(msg)
}
