package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	t.Parallel()

	testCases := map[error]Status{
		nil:                      Success,
		ErrNoSuchElement:         NoSuchElement,
		ErrWrongDocument:         StaleElementReference,
		ErrStaleElement:          StaleElementReference,
		ErrScriptExecution:       JavascriptError,
		ErrNoSuchWindow:          NoSuchWindow,
		ErrNoAlertOpen:           NoAlertOpen,
		ErrButtonNotFound:        UnhandledError,
		ErrResultShape:           UnhandledError,
		ErrDocumentGone:          UnhandledError,
		errors.New("unexpected"): UnhandledError,
	}
	for err, want := range testCases {
		assert.Equal(t, want, StatusFromError(err), "%v", err)
		if err != nil {
			assert.Equal(t, want, StatusFromError(fmt.Errorf("wrapped: %w", err)), "%v", err)
		}
	}

	assert.Equal(t, "no alert open", NoAlertOpen.String())
	assert.Equal(t, "status 99", Status(99).String())
}

func TestNewLocator(t *testing.T) {
	t.Parallel()

	loc, err := NewLocator("partial link text", "Sign")
	assert.NoError(t, err)
	assert.Equal(t, "partialLinkText", loc.CriteriaKey())
	assert.Equal(t, `partial link text="Sign"`, loc.String())

	_, err = NewLocator("accessibility id", "x")
	assert.Error(t, err)
}
