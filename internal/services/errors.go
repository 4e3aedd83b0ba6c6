package services

import (
	"errors"

	"projectflow/internal/common"
	"projectflow/internal/repositories"
)

// notFoundOrInternal maps a repository lookup failure to NotFound, or hides it as internal.
func notFoundOrInternal(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return common.NotFoundError(resource)
	}
	return common.InternalError(err)
}
