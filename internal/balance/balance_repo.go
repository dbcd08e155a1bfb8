package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "go-leave/internal/balance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindByEmployee(ctx context.Context, employeeID uint) ([]LeaveBalance, error)
	FindByEmployeeAndKind(ctx context.Context, employeeID uint, kind string) (*LeaveBalance, error)
	SetAllocated(ctx context.Context, employeeID uint, kind string, allocated int) error
	TryDeduct(ctx context.Context, employeeID uint, kind string, amount int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the repository onto the caller's transaction, the same way
// gorm's own Begin swaps the session's connection pool, so every statement
// issued through the returned repository commits or aborts with that tx.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	txDB := r.db.Session(&gorm.Session{Context: r.db.Statement.Context, NewDB: true})
	txDB.Statement.ConnPool = tx
	return &repository{db: txDB}
}

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	err := r.db.WithContext(ctx).Create(b).Error
	return mapRepositoryError(err)
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID uint) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("kind ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) FindByEmployeeAndKind(ctx context.Context, employeeID uint, kind string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		First(&b, "kind = ?", kind).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &b, nil
}

func (r *repository) SetAllocated(ctx context.Context, employeeID uint, kind string, allocated int) error {
	res := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("employee_id = ?", employeeID).
		Where("kind = ?", kind).
		Update("allocated", allocated)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrBalanceNotFound
	}
	return nil
}

// TryDeduct consumes amount days in a single guarded UPDATE so the
// used <= allocated invariant can never be broken, even under concurrent
// approvals. It runs on the caller's transaction when one is attached, which
// is what lets a final approval and its deduction commit or abort together.
func (r *repository) TryDeduct(ctx context.Context, employeeID uint, kind string, amount int) error {
	query := `
UPDATE leave_balances
SET
	used = used + $3,
	updated_at = NOW()
WHERE employee_id = $1
	AND kind = $2
	AND used + $3 <= allocated
`

	res := r.db.WithContext(ctx).Exec(query, employeeID, kind, amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the bucket is missing or it cannot cover the
	// amount. Tell the caller which.
	existsQuery := `SELECT EXISTS (SELECT 1 FROM leave_balances WHERE employee_id = $1 AND kind = $2)`
	var exists bool
	if err := r.db.WithContext(ctx).Raw(existsQuery, employeeID, kind).Scan(&exists).Error; err != nil {
		return err
	}
	if !exists {
		return balanceerrors.ErrBalanceNotFound
	}
	return balanceerrors.ErrInsufficientBalance
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return balanceerrors.ErrBalanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_leave_balances_employee_kind" {
			return balanceerrors.ErrBalanceAlreadyExists
		}
	}

	return err
}
