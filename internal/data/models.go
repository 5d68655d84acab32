package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Define common error messages for use throughout the data package.
var (
	ErrRecordNotFound = errors.New("record not found") // Error when a requested record does not exist in the database.
)

// queryTimeout bounds every statement issued by the models.
const queryTimeout = 3 * time.Second

// Models struct is a container for the movie and actor models.
type Models struct {
	Movies MovieModel // MovieModel handles operations on the movies table.
	Actors ActorModel // ActorModel handles operations on the actors table.
}

// NewModels initializes and returns a Models struct sharing one database connection pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Movies: MovieModel{DB: db},
		Actors: ActorModel{DB: db},
	}
}

// namePattern turns a search term into an unanchored LIKE pattern. The term is
// folded like the search_fold SQL function folds names, and its LIKE
// metacharacters are escaped so that it matches literally.
func namePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(fold(term))
	return "%" + escaped + "%"
}

// withTimeout derives the per-statement context from the caller's context.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, queryTimeout)
}

// checkAffected maps a write that touched no rows to ErrRecordNotFound.
func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// IsConnectionError reports whether err came from the PostgreSQL server
// refusing or dropping the connection rather than from the statement itself.
func IsConnectionError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08"
	}
	return errors.Is(err, sql.ErrConnDone)
}
