package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// JournalWriter forwards zerolog's JSON events to the systemd journal,
// one entry per event with every field as an upper-cased journal field.
type JournalWriter struct {
	Identifier string

	send func(msg string, p journal.Priority, vars map[string]string) error
}

func NewJournalWriter(identifier string) *JournalWriter {
	return &JournalWriter{Identifier: identifier, send: journal.Send}
}

func (w *JournalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (w *JournalWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	var ev map[string]any
	if err := json.Unmarshal(p, &ev); err != nil {
		// not an event; pass it through as the message
		ev = map[string]any{zerolog.MessageFieldName: strings.TrimSpace(string(p))}
	}
	msg, _ := ev[zerolog.MessageFieldName].(string)
	if l == zerolog.NoLevel {
		if s, ok := ev[zerolog.LevelFieldName].(string); ok {
			if parsed, err := zerolog.ParseLevel(s); err == nil {
				l = parsed
			}
		}
	}

	fields := map[string]string{"SYSLOG_IDENTIFIER": w.Identifier}
	for k, v := range ev {
		switch k {
		case zerolog.MessageFieldName, zerolog.LevelFieldName:
			continue
		}
		fields[fieldKey(k)] = fieldValue(v)
	}
	if err := w.send(msg, priority(l), fields); err != nil {
		fmt.Fprintf(os.Stderr, "journal: %v\n", err)
		return 0, err
	}
	return len(p), nil
}

func priority(l zerolog.Level) journal.Priority {
	switch l {
	case zerolog.PanicLevel, zerolog.FatalLevel:
		return journal.PriCrit
	case zerolog.ErrorLevel:
		return journal.PriErr
	case zerolog.WarnLevel:
		return journal.PriWarning
	case zerolog.InfoLevel, zerolog.NoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// fieldKey upper-cases k and maps anything journald rejects to '_'.
func fieldKey(k string) string {
	b := []byte(strings.ToUpper(k))
	for i, c := range b {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			b[i] = '_'
		}
	}
	if len(b) > 0 && b[0] == '_' {
		return "F" + string(b)
	}
	return string(b)
}

func fieldValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
