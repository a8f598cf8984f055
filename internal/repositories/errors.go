package repositories

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = stderrors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = stderrors.New("duplicate record")
	// ErrUnknownCursor is returned when a pagination cursor names no row the
	// listing could continue from.
	ErrUnknownCursor = stderrors.New("unknown cursor")
)

// translate maps driver errors onto the package sentinels and annotates
// anything else with the failing operation.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, op)
	case isMalformedID(err):
		// An id that is not a UUID cannot name a row.
		return errors.Wrap(ErrNotFound, op)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrDuplicate, op)
	default:
		return errors.Wrap(err, op)
	}
}

// translateCursor is translate for the cursor anchor lookup of a listing.
func translateCursor(err error, op string) error {
	err = translate(err, op)
	if IsNotFound(err) {
		return errors.Wrap(ErrUnknownCursor, op)
	}
	return err
}

// invalid_text_representation, raised when a non-UUID string is compared
// with a uuid column.
const pgInvalidTextRepresentation = "22P02"

func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

// ListOptions selects one page of a cursor-paginated listing. Limit is the
// number of rows to fetch; callers over-fetch by one to detect more pages.
type ListOptions struct {
	Cursor string
	Limit  int
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}
