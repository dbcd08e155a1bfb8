package request

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-leave/internal/workflow"

	"gorm.io/gorm"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID uint) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id uint) (*LeaveRequest, error)
	Update(ctx context.Context, l *LeaveRequest) error
	Delete(ctx context.Context, id uint) error
	HasOverlappingRequest(ctx context.Context, employeeID uint, startDate, endDate time.Time, excludeID *uint) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID uint) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

// Update persists the request only if the row still carries the version the
// caller loaded. Zero rows affected means a concurrent writer won.
func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	loadedVersion := l.Version
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", l.ID).
		Where("version = ?", loadedVersion).
		Updates(map[string]any{
			"leave_type":      l.LeaveType,
			"start_date":      l.StartDate,
			"end_date":        l.EndDate,
			"start_time":      l.StartTime,
			"end_time":        l.EndTime,
			"number_of_days":  l.NumberOfDays,
			"reason":          l.Reason,
			"manager_status":  l.ManagerStatus,
			"hr_status":       l.HRStatus,
			"manager_remarks": l.ManagerRemarks,
			"hr_remarks":      l.HRRemarks,
			"version":         loadedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionMismatch
	}
	l.Version = loadedVersion + 1
	return nil
}

// ErrVersionMismatch signals a lost optimistic-concurrency race. The service
// maps it onto the caller-facing stale-request error.
var ErrVersionMismatch = errors.New("leave request version mismatch")

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&LeaveRequest{}, "id = ?", id).Error
}

// HasOverlappingRequest answers the conflict-oracle contract: does the
// employee already hold a not-rejected request whose inclusive date range
// intersects [startDate, endDate]? A request rejected at either stage is out
// of the running. excludeID skips the request being updated.
func (r *repository) HasOverlappingRequest(ctx context.Context, employeeID uint, startDate, endDate time.Time, excludeID *uint) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("manager_status <> ?", workflow.StatusRejected).
		Where("hr_status <> ?", workflow.StatusRejected).
		Where("NOT (COALESCE(end_date, start_date) < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
