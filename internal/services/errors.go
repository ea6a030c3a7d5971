package services

import (
	"errors"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
)

// repoError converts a repository failure into an AppError. notFound is
// returned for domain.ErrNotFound.
func repoError(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, domain.ErrNotFound) {
		return notFound
	}
	return apperrors.NewDatabaseError(err)
}
