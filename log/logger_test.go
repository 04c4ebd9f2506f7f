package log

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCategoryFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := logrus.New()
	lg.SetOutput(&buf)
	lg.SetLevel(logrus.DebugLevel)
	lg.SetFormatter(&logrus.JSONFormatter{})

	l := New(lg, regexp.MustCompile(`^ElementFinder`))
	l.Debugf("ElementFinder:FindElement", "strategy:%s", "css")
	l.Debugf("AcceptAlert:ExecuteInternal", "hwnd:%d", 42)

	out := buf.String()
	assert.Contains(t, out, `"category":"ElementFinder:FindElement"`)
	assert.Contains(t, out, "strategy:css")
	assert.NotContains(t, out, "AcceptAlert")
}

func TestLoggerLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := logrus.New()
	lg.SetOutput(&buf)

	l := New(lg, nil)
	require.NoError(t, l.SetLevel("warn"))
	assert.False(t, l.DebugMode())

	l.Infof("Session:Close", "closed")
	assert.Empty(t, buf.String())

	l.Warnf("Session:Close", "still open")
	assert.Contains(t, buf.String(), "still open")

	require.Error(t, l.SetLevel("loud"))
}

func TestNilLogger(t *testing.T) {
	t.Parallel()

	var l *Logger
	assert.NotPanics(t, func() {
		l.Errorf("Script:Execute", "ignored %d", 1)
	})
}
