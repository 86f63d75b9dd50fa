package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	ErrDuplicate  = errors.New("duplicate key")
	ErrReferenced = errors.New("row is still referenced")
)

// DuplicateError is a unique-constraint violation. Constraint is empty when
// the driver does not report it.
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	if e.Constraint == "" {
		return "duplicate key"
	}
	return fmt.Sprintf("duplicate key violates %s", e.Constraint)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn against a repo bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}, &models.Review{})
}

var sqliteUnique = regexp.MustCompile(`UNIQUE constraint failed: ([^()]+)`)

func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &DuplicateError{Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
		}
		return err
	}

	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &DuplicateError{Err: err}
	case strings.Contains(msg, "UNIQUE constraint failed"):
		var constraint string
		if m := sqliteUnique.FindStringSubmatch(msg); m != nil {
			constraint = strings.TrimSpace(m[1])
		}
		return &DuplicateError{Constraint: constraint, Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
