package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Report(OpPollStatus, errors.New("boom"))
	r.Report(OpRouteQuery, errors.New("nope"))
	r.Report(OpPollStatus, errors.New("again"))

	assert.Equal(t, 2, r.Count(OpPollStatus))
	assert.Equal(t, 1, r.Count(OpRouteQuery))
	assert.Equal(t, 0, r.Count(OpBridgeSubmit))

	failures := r.Failures()
	require.Len(t, failures, 3)
	assert.Equal(t, "again", failures[2].Err.Error())
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	NewLogReporter(logger).Report(OpBridgeSubmit, errors.New("connection refused"))

	out := buf.String()
	assert.Contains(t, out, `"op":"bridge_submit"`)
	assert.Contains(t, out, `"error":"connection refused"`)
	assert.Contains(t, out, `"level":"warning"`)
}

func TestLatestKeepsMostRecent(t *testing.T) {
	l := NewLatest()
	l.Report(OpPollStatus, errors.New("first"))
	l.Report(OpPollStatus, errors.New("second"))

	select {
	case f := <-l.C():
		assert.Equal(t, "second", f.Err.Error())
	default:
		t.Fatal("expected a failure on the channel")
	}

	select {
	case f := <-l.C():
		t.Fatalf("unexpected extra failure: %v", f.Err)
	default:
	}
}

func TestMultiSkipsNil(t *testing.T) {
	var a, b Recorder
	r := Multi(&a, nil, &b)
	r.Report(OpRouteQuery, errors.New("x"))

	assert.Equal(t, 1, a.Count(OpRouteQuery))
	assert.Equal(t, 1, b.Count(OpRouteQuery))
}
