package directory

import (
	"errors"

	directoryerrors "go-hrflow/internal/directory/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return directoryerrors.ErrEmployeeNotFound
	}

	// 22P02: invalid_text_representation, i.e. a malformed uuid
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return directoryerrors.ErrInvalidEmployeeID
	}

	return err
}
