package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Format: FormatJSON, Out: &buf})
	require.NoError(t, err)

	log.Info().Msg("quiet")
	assert.Zero(t, buf.Len())
	log.Warn().Str("component", "test").Msg("loud")
	assert.Contains(t, buf.String(), `"message":"loud"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Format: FormatConsole, Out: &buf})
	require.NoError(t, err)
	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	_, err = New(Options{Level: "nope"})
	assert.Error(t, err)
}

type sent struct {
	msg    string
	pri    journal.Priority
	fields map[string]string
}

func TestJournalWriter(t *testing.T) {
	var got []sent
	w := NewJournalWriter("lightstrip")
	w.send = func(msg string, p journal.Priority, vars map[string]string) error {
		got = append(got, sent{msg, p, vars})
		return nil
	}
	log := zerolog.New(w)

	log.Warn().Str("driver", "spi").Int("case", 3).Bool("ok", true).Msg("fallback")
	log.Error().Err(errors.New("boom")).Msg("flush failed")
	log.Debug().Msg("tick")

	require.Len(t, got, 3)
	assert.Equal(t, "fallback", got[0].msg)
	assert.Equal(t, journal.PriWarning, got[0].pri)
	assert.Equal(t, "lightstrip", got[0].fields["SYSLOG_IDENTIFIER"])
	assert.Equal(t, "spi", got[0].fields["DRIVER"])
	assert.Equal(t, "3", got[0].fields["CASE"])
	assert.Equal(t, "true", got[0].fields["OK"])
	assert.NotContains(t, got[0].fields, "MESSAGE")

	assert.Equal(t, journal.PriErr, got[1].pri)
	assert.Equal(t, "boom", got[1].fields["ERROR"])
	assert.Equal(t, journal.PriDebug, got[2].pri)
}

func TestJournalWriterRawAndFailure(t *testing.T) {
	w := NewJournalWriter("x")
	var msg string
	w.send = func(m string, _ journal.Priority, _ map[string]string) error { msg = m; return nil }
	n, err := w.Write([]byte("plain text\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "plain text", msg)

	w.send = func(string, journal.Priority, map[string]string) error { return errors.New("no journal") }
	_, err = w.Write([]byte(`{"level":"info","message":"m"}`))
	assert.Error(t, err)
}

func TestFieldKey(t *testing.T) {
	assert.Equal(t, "FLUSH_MS", fieldKey("flush_ms"))
	assert.Equal(t, "A_B", fieldKey("a.b"))
	assert.Equal(t, "F_X", fieldKey("_x"))
}
