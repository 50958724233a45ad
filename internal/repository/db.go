package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/cradoe/nationalid/assets"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

var (
	// ErrNotFoundOrWrongState is returned when a guarded update matched no row:
	// the record is missing or not in a status the transition accepts.
	ErrNotFoundOrWrongState = errors.New("record not found or not in the expected state")

	// ErrNotFound is returned when a lookup by id matched no row.
	ErrNotFound = errors.New("record not found")
)

// Database interface defines available repositories
type Database interface {
	Officer() OfficerRepository
	Admin() AdminRepository
	Constituency() ConstituencyRepository
	Application() ApplicationRepository
	Document() DocumentRepository
	Payment() PaymentRepository
	Report() ReportRepository
	Activity() ActivityRepository

	Ping(ctx context.Context) error
	Close() error
}

// DatabaseImpl implements the Database interface
type DatabaseImpl struct {
	db               *sqlx.DB
	officerRepo      OfficerRepository
	adminRepo        AdminRepository
	constituencyRepo ConstituencyRepository
	applicationRepo  ApplicationRepository
	documentRepo     DocumentRepository
	paymentRepo      PaymentRepository
	reportRepo       ReportRepository
	activityRepo     ActivityRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &DatabaseImpl{db: db}, nil
}

func (d *DatabaseImpl) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) Officer() OfficerRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.officerRepo == nil {
		d.officerRepo = NewOfficerRepository(d.db)
	}
	return d.officerRepo
}

func (d *DatabaseImpl) Admin() AdminRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.adminRepo == nil {
		d.adminRepo = NewAdminRepository(d.db)
	}
	return d.adminRepo
}

func (d *DatabaseImpl) Constituency() ConstituencyRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.constituencyRepo == nil {
		d.constituencyRepo = NewConstituencyRepository(d.db)
	}
	return d.constituencyRepo
}

func (d *DatabaseImpl) Application() ApplicationRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.applicationRepo == nil {
		d.applicationRepo = NewApplicationRepository(d.db)
	}
	return d.applicationRepo
}

func (d *DatabaseImpl) Document() DocumentRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.documentRepo == nil {
		d.documentRepo = NewDocumentRepository(d.db)
	}
	return d.documentRepo
}

func (d *DatabaseImpl) Payment() PaymentRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.paymentRepo == nil {
		d.paymentRepo = NewPaymentRepository(d.db)
	}
	return d.paymentRepo
}

func (d *DatabaseImpl) Report() ReportRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.reportRepo == nil {
		d.reportRepo = NewReportRepository(d.db)
	}
	return d.reportRepo
}

func (d *DatabaseImpl) Activity() ActivityRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activityRepo == nil {
		d.activityRepo = NewActivityRepository(d.db)
	}
	return d.activityRepo
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
