package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

func lockNotAvailableErr() error {
	return fmt.Errorf("lock installment: %w", &pq.Error{Code: "55P03"})
}

func TestOpErrorTranslatesLockTimeout(t *testing.T) {
	err := opError(lockNotAvailableErr(), "failed to process payment")
	assert.True(t, appErrors.IsContention(err))
}

func TestOpErrorWrapsOtherFailures(t *testing.T) {
	err := opError(errors.New("connection reset"), "failed to process payment")
	assert.False(t, appErrors.IsContention(err))

	var typed *appErrors.Error
	assert.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrInternal.Code, typed.Code)
}
