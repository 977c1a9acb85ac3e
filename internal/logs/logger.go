package logs

import (
	"fmt"
	"sync"
	"time"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// levelPriority defines the priority of each log level
// higher value = more severe
var levelPriority = map[Level]int{
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

// ParseLevel maps a level name to a Level. Used when the level comes
// from the environment rather than code.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if _, ok := levelPriority[l]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Record is a single captured log line.
type Record struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// Logger keeps the last maxSize records in memory, oldest dropped first.
// It never writes to stdout itself; callers decide what to do with the tail.
type Logger struct {
	mu      sync.Mutex
	records []Record
	maxSize int
	level   Level
}

// NewLogger creates a logger that records messages at or above the given
// minimum level, keeping at most maxSize records.
func NewLogger(maxSize int, level Level) *Logger {
	return &Logger{
		records: make([]Record, 0, maxSize),
		maxSize: maxSize,
		level:   level,
	}
}

// log is the internal logging function.
// It applies level filtering and ring buffer behavior.
func (l *Logger) log(level Level, msg string) {
	if levelPriority[level] < levelPriority[l.level] {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) >= l.maxSize {
		// remove oldest record (ring behavior)
		l.records = l.records[1:]
	}

	l.records = append(l.records, Record{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
	})
}

func (l *Logger) Debug(msg string) { l.log(DEBUG, msg) }
func (l *Logger) Info(msg string)  { l.log(INFO, msg) }
func (l *Logger) Warn(msg string)  { l.log(WARN, msg) }
func (l *Logger) Error(msg string) { l.log(ERROR, msg) }

func (l *Logger) Debugf(format string, args ...any) { l.log(DEBUG, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log(INFO, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(WARN, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log(ERROR, fmt.Sprintf(format, args...)) }

// GetLast returns a copy of the most recent n records, oldest first.
func (l *Logger) GetLast(n int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.records) {
		out := make([]Record, len(l.records))
		copy(out, l.records)
		return out
	}

	start := len(l.records) - n
	out := make([]Record, n)
	copy(out, l.records[start:])
	return out
}
