package errors_test

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/fossas/mkrelease/errors"
)

func TestErrorMessageIncludesCause(t *testing.T) {
	err := errors.Wrap(pkgerrors.New("exit status 1"), errors.Query, "could not get status of %s", "/tmp/sandbox")
	assert.Equal(t, "could not get status of /tmp/sandbox: exit status 1", err.Error())
}

func TestIsFindsWrappedError(t *testing.T) {
	inner := errors.New(errors.Ambiguity, "ambiguous")
	wrapped := pkgerrors.Wrap(inner, "resolving backend")

	assert.True(t, errors.Is(wrapped, errors.Ambiguity))
	assert.False(t, errors.Is(wrapped, errors.Recursion))
	assert.False(t, errors.Is(pkgerrors.New("plain"), errors.Unknown))
}

func TestReportIncludesTroubleshooting(t *testing.T) {
	err := errors.New(errors.User, "not a sandbox: /tmp").
		WithTroubleshooting("Run mkrelease from inside a working copy.")

	report := errors.Report(err)
	assert.Contains(t, report, "not a sandbox: /tmp")
	assert.Contains(t, report, "TROUBLESHOOTING")
	assert.Contains(t, report, "Run mkrelease from inside a working copy.")
	assert.NotContains(t, report, "REPORTING A BUG")
}

func TestReportUnknownAsksForBugReport(t *testing.T) {
	report := errors.Report(errors.New(errors.Unknown, "boom"))
	assert.Contains(t, report, "REPORTING A BUG")
}
