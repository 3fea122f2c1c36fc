package audit

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SDID constants for structured data IDs (RFC5424).
const (
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
)

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH - security/authorization messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event levels, mirroring the legacy tamperproof event log.
type Level int

const (
	LevelAuthentication Level = iota
	LevelObjectManipulation
	LevelConfiguration
)

func (l Level) messageID() string {
	switch l {
	case LevelAuthentication:
		return "authn"
	case LevelConfiguration:
		return "config"
	default:
		return "object"
	}
}

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes audit events in RFC5424 syslog format
type Logger struct {
	writer   io.Writer
	hostname string
	appName  string
	pid      int
}

// NewLogger creates a new audit logger writing to stdout
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  "passvault",
		pid:      os.Getpid(),
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

// Log writes an audit event in RFC5424 syslog format
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	pri := event.Facility()*8 + int(event.Severity())

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	logLine := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)

	_, _ = l.writer.Write([]byte(logLine))
}

// formatStructuredData formats the structured data according to RFC5424
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var parts []string
	for sdid, params := range sd {
		var paramParts []string
		paramParts = append(paramParts, sdid)
		for key, value := range params {
			escaped := escapeSDValue(value)
			paramParts = append(paramParts, fmt.Sprintf("%s=%s", key, escaped))
		}
		parts = append(parts, "["+strings.Join(paramParts, " ")+"]")
	}
	return strings.Join(parts, "")
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// Sink is the write-only audit collaborator handed to the engines. It fans
// events out to the syslog-format logger and, when configured, the database
// store.
type Sink struct {
	logger *Logger
	store  *Store
	log    *zap.SugaredLogger
}

// NewSink creates a Sink. store may be nil (no database persistence).
func NewSink(store *Store, log *zap.SugaredLogger) *Sink {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sink{
		logger: NewLogger(),
		store:  store,
		log:    log,
	}
}

// Logger exposes the underlying syslog-format logger (for test writers).
func (s *Sink) Logger() *Logger {
	return s.logger
}

// Record emits an item event. Fire-and-forget: a store failure is logged as
// a warning, never returned.
func (s *Sink) Record(level Level, userID, itemID, message string, emailOnly bool) {
	s.Emit(ItemEvent{
		Level:     level,
		UserID:    userID,
		ItemID:    itemID,
		Detail:    message,
		EmailOnly: emailOnly,
	})
}

// Emit writes any event to the logger and the store.
func (s *Sink) Emit(event Event) {
	s.logger.Log(event)

	if s.store == nil {
		return
	}
	if err := s.store.Save(event); err != nil {
		s.log.Warnw("failed to persist audit event", "msgid", event.MessageID(), "error", err)
	}
}
