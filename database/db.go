package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/internal/apierror"
	pgconn "github.com/blnkfinance/vault/internal/pg-conn"
	"github.com/lib/pq"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

const uniqueViolation = "23505"

type Datasource struct {
	Conn *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx so reads can be shared
// between plain lookups and the locked reads of a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// NewDataSource returns the in-memory datasource for "memory://" and the
// Postgres datasource otherwise.
func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	if strings.HasPrefix(configuration.DataSource.Dns, config.MemoryDataSource) {
		return NewMemoryDataSource(), nil
	}
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := pgconn.ConnectDB(configuration.DataSource)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, errors.New("database connection was not initialized")
	}
	return instance, nil
}

// storageError converts a driver error into an APIError. Unique constraint
// violations become CONFLICT, everything else INTERNAL_SERVER_ERROR.
func storageError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apierror.NewAPIError(apierror.ErrConflict, message+": resource already exists", err)
	}
	return apierror.NewAPIError(apierror.ErrInternalServer, message, err)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
