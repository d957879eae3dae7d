package logging

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvents struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *capturedEvents) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	// nothing leaves the process
	return nil
}

func newCapturingLogger(t *testing.T, levels []logrus.Level) (*logrus.Logger, *capturedEvents) {
	t.Helper()
	captured := &capturedEvents{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Environment: "test",
		BeforeSend:  captured.beforeSend,
	})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(NewSentryHook(sentry.NewHub(client, sentry.NewScope()), levels))
	return logger, captured
}

func TestSentryHook_ForwardsErrorEntries(t *testing.T) {
	logger, captured := newCapturingLogger(t, []logrus.Level{logrus.ErrorLevel})

	logger.Infof("not forwarded")
	logger.WithError(errors.New("disk full")).WithField("key", "fp_users_v1").Errorf("save users")

	captured.mu.Lock()
	defer captured.mu.Unlock()
	require.Len(t, captured.events, 1)
	event := captured.events[0]
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "save users", event.Message)
	assert.Equal(t, "test", event.Environment)
	assert.Equal(t, "disk full", event.Extra[logrus.ErrorKey])
	assert.Equal(t, "fp_users_v1", event.Extra["key"])
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.PanicLevel))
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.FatalLevel))
	assert.Equal(t, sentry.LevelError, sentryLevel(logrus.ErrorLevel))
	assert.Equal(t, sentry.LevelWarning, sentryLevel(logrus.WarnLevel))
	assert.Equal(t, sentry.LevelInfo, sentryLevel(logrus.InfoLevel))
	assert.Equal(t, sentry.LevelDebug, sentryLevel(logrus.TraceLevel))
}
