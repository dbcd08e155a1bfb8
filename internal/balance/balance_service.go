package balance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	balanceerrors "go-leave/internal/balance/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const balanceCachePrefix = "balances:employee:"

func cacheKeyFor(employeeID uint) string {
	return fmt.Sprintf("%s%d", balanceCachePrefix, employeeID)
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetByEmployee(ctx context.Context, employeeID uint) ([]BalanceResponse, error)
	Allocate(ctx context.Context, req AllocateBalanceRequest) (BalanceResponse, error)
	InvalidateCache(ctx context.Context, employeeID uint)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) GetByEmployee(ctx context.Context, employeeID uint) ([]BalanceResponse, error) {
	cacheKey := cacheKeyFor(employeeID)

	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []BalanceResponse
			if err := json.Unmarshal([]byte(val), &resp); err == nil {
				return resp, nil
			}
		}
	}

	// Singleflight collapses a stampede of identical reads into one query.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		balances, err := s.repo.FindByEmployee(ctx, employeeID)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(balances)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 10*time.Minute)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]BalanceResponse), nil
}

// Allocate creates the (employee, kind) bucket or raises an existing
// allocation. Lowering below the amount already used is refused so the
// used <= allocated invariant survives re-allocation.
func (s *service) Allocate(ctx context.Context, req AllocateBalanceRequest) (BalanceResponse, error) {
	s.logger.Debug("allocate balance requested",
		zap.Uint("employee_id", req.EmployeeID),
		zap.String("kind", req.Kind),
		zap.Int("allocated", req.Allocated),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("allocate balance begin tx failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := qtx.FindByEmployeeAndKind(ctx, req.EmployeeID, req.Kind)
	if err != nil && !errors.Is(err, balanceerrors.ErrBalanceNotFound) {
		return BalanceResponse{}, err
	}

	var result LeaveBalance
	if existing == nil {
		b := &LeaveBalance{
			EmployeeID: req.EmployeeID,
			Kind:       req.Kind,
			Allocated:  req.Allocated,
		}
		if err := qtx.Create(ctx, b); err != nil {
			s.logger.Error("allocate balance persist failed", zap.Error(err))
			return BalanceResponse{}, err
		}
		result = *b
	} else {
		if req.Allocated < existing.Used {
			return BalanceResponse{}, balanceerrors.ErrInvalidAllocation
		}
		if err := qtx.SetAllocated(ctx, req.EmployeeID, req.Kind, req.Allocated); err != nil {
			s.logger.Error("allocate balance update failed", zap.Error(err))
			return BalanceResponse{}, err
		}
		result = *existing
		result.Allocated = req.Allocated
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("allocate balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.InvalidateCache(ctx, req.EmployeeID)
	s.logger.Info("allocate balance success",
		zap.Uint("employee_id", req.EmployeeID),
		zap.String("kind", req.Kind),
	)

	return mapToResponse(result), nil
}

func (s *service) InvalidateCache(ctx context.Context, employeeID uint) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKeyFor(employeeID)).Err(); err != nil {
		s.logger.Error("invalidate balance cache failed",
			zap.Uint("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID,
		Kind:       b.Kind,
		Allocated:  b.Allocated,
		Used:       b.Used,
		Remaining:  b.Allocated - b.Used,
	}
}

func mapToListResponse(balances []LeaveBalance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
