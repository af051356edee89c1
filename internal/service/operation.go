package service

import (
	"github.com/coronacion-creator/colegio-api/pkg/database"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

// opError normalises infrastructure failures from transactional repository
// calls. Lock waits that exceed the configured bound come back as 55P03 and
// map to the retryable contention error; anything else is internal.
func opError(err error, message string) error {
	if database.IsLockNotAvailable(err) {
		return appErrors.Clone(appErrors.ErrContention, "")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
