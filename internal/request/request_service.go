package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-leave/internal/authz"
	"go-leave/internal/balance"
	"go-leave/internal/events"
	"go-leave/internal/leavetype"
	"go-leave/internal/messaging/kafka"
	requesterrors "go-leave/internal/request/errors"
	"go-leave/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor authz.Actor, req CreateLeaveRequest) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, actor authz.Actor) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, actor authz.Actor, id uint) (LeaveRequestResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, req UpdateLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, actor authz.Actor, id uint, remarks string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, actor authz.Actor, id uint, reason string) (LeaveRequestResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id uint) error
}

// BalanceCache is the slice of the balance module the workflow needs: once a
// final approval deducts days, the owner's cached balance view is stale and
// must be dropped. balance.Service satisfies it.
type BalanceCache interface {
	InvalidateCache(ctx context.Context, employeeID uint)
}

// The service owns the two-stage approval state machine. It holds no state of
// its own: every operation loads, decides and saves inside one DB transaction,
// and the request row's version column is what serializes racing reviewers.
type service struct {
	db     *sql.DB
	repo   Repository
	ledger balance.Repository
	outbox kafka.OutboxRepository
	cache  BalanceCache
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ledger balance.Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, ledger, nil, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	ledger balance.Repository,
	outboxRepo kafka.OutboxRepository,
	cache BalanceCache,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{db: db, repo: repo, ledger: ledger, outbox: outboxRepo, cache: cache, logger: l}
}

func (s *service) Create(ctx context.Context, actor authz.Actor, req CreateLeaveRequest) (LeaveRequestResponse, error) {
	s.logger.Debug("create leave request requested",
		zap.Uint("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
	)

	leaveType, startDate, endDate, err := parseTypeAndDates(req.LeaveType, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create leave request parse failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if fieldErrs := ValidateFields(leaveType, time.Now(), startDate, endDate, req.StartTime, req.EndTime); len(fieldErrs) > 0 {
		s.logger.Warn("create leave request validation failed",
			zap.Uint("actor_id", actor.ID),
			zap.Int("violations", len(fieldErrs)),
		)
		return LeaveRequestResponse{}, requesterrors.ErrFieldValidation.WithDetails(fieldErrs)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave request begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l := &LeaveRequest{
		EmployeeID:    actor.ID,
		Department:    actor.Department,
		LeaveType:     leaveType,
		StartDate:     startDate,
		EndDate:       endDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		NumberOfDays:  BusinessDays(startDate, endDate),
		Reason:        req.Reason,
		ManagerStatus: workflow.StatusPending,
		HRStatus:      workflow.StatusPending,
		Version:       1,
	}

	if err := s.checkConflicts(ctx, qtx, actor.ID, startDate, endDate, nil); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.writeTransitionEvent(ctx, tx, l, actor.ID, events.LeaveRequested, "", stateString(l.Snapshot()))

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave request commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	s.logger.Info("create leave request success",
		zap.Uint("request_id", l.ID),
		zap.Uint("employee_id", l.EmployeeID),
		zap.Int("number_of_days", l.NumberOfDays),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, actor authz.Actor) ([]LeaveRequestResponse, error) {
	if !authz.CanManageRequests(actor) {
		own, err := s.repo.FindByEmployee(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(own), nil
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// Managers only see what they could act or report on; admins and HR see
	// everything.
	if !actor.IsAdmin && !actor.IsHR {
		visible := make([]LeaveRequest, 0, len(all))
		for _, l := range all {
			if authz.CanView(l.Snapshot(), actor) {
				visible = append(visible, l)
			}
		}
		all = visible
	}
	return mapToListResponse(all), nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id uint) (LeaveRequestResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if !authz.CanView(l.Snapshot(), actor) {
		return LeaveRequestResponse{}, authz.ErrNotVisible
	}
	return mapToResponse(*l), nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, id uint, req UpdateLeaveRequest) (LeaveRequestResponse, error) {
	s.logger.Debug("update leave request requested",
		zap.Uint("request_id", id),
		zap.Uint("actor_id", actor.ID),
	)

	leaveType, startDate, endDate, err := parseTypeAndDates(req.LeaveType, req.StartDate, req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	if fieldErrs := ValidateFields(leaveType, time.Now(), startDate, endDate, req.StartTime, req.EndTime); len(fieldErrs) > 0 {
		return LeaveRequestResponse{}, requesterrors.ErrFieldValidation.WithDetails(fieldErrs)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave request begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	if err := s.authorizeMutation(l.Snapshot(), actor); err != nil {
		return LeaveRequestResponse{}, err
	}

	excludeID := l.ID
	if err := s.checkConflicts(ctx, qtx, l.EmployeeID, startDate, endDate, &excludeID); err != nil {
		return LeaveRequestResponse{}, err
	}

	l.LeaveType = leaveType
	l.StartDate = startDate
	l.EndDate = endDate
	l.StartTime = req.StartTime
	l.EndTime = req.EndTime
	l.NumberOfDays = BusinessDays(startDate, endDate)
	l.Reason = req.Reason

	if err := qtx.Update(ctx, l); err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return LeaveRequestResponse{}, requesterrors.ErrStaleRequest
		}
		s.logger.Error("update leave request persist failed",
			zap.Uint("request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave request commit failed",
			zap.Uint("request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}
	s.logger.Info("update leave request success", zap.Uint("request_id", id))

	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor authz.Actor, id uint, remarks string) (LeaveRequestResponse, error) {
	return s.decide(ctx, actor, id, workflow.StatusApproved, remarks)
}

func (s *service) Reject(ctx context.Context, actor authz.Actor, id uint, reason string) (LeaveRequestResponse, error) {
	if reason == "" {
		return LeaveRequestResponse{}, requesterrors.ErrRejectionReasonRequired
	}
	return s.decide(ctx, actor, id, workflow.StatusRejected, reason)
}

// decide records an approval or rejection on the stage the actor represents.
// Final approval of a balance-bearing type deducts the business days from the
// owner's balance inside the same transaction, so an insufficient balance
// aborts the whole transition. Once such a deduction commits, the owner's
// cached balance view is dropped.
func (s *service) decide(
	ctx context.Context,
	actor authz.Actor,
	id uint,
	decision workflow.Status,
	remarks string,
) (LeaveRequestResponse, error) {
	s.logger.Debug("leave request decision requested",
		zap.Uint("request_id", id),
		zap.Uint("actor_id", actor.ID),
		zap.String("decision", string(decision)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave request decision begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	snap := l.Snapshot()
	oldState := stateString(snap)

	if err := s.authorizeDecision(snap, actor); err != nil {
		s.logger.Warn("leave request decision forbidden",
			zap.Uint("request_id", id),
			zap.Uint("actor_id", actor.ID),
		)
		return LeaveRequestResponse{}, err
	}

	stage, err := actionableStage(snap, actor)
	if err != nil {
		s.logger.Warn("leave request decision rejected by state machine",
			zap.Uint("request_id", id),
			zap.String("manager_status", string(snap.ManagerStatus)),
			zap.String("hr_status", string(snap.HRStatus)),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	applyDecision(l, stage, decision, remarks)

	deducted := false
	if decision == workflow.StatusApproved && l.Snapshot().FullyApproved() && l.LeaveType.RequiresBalance() {
		kind, _ := l.LeaveType.BalanceKind()
		if err := s.ledger.WithTx(tx).TryDeduct(ctx, l.EmployeeID, kind, l.NumberOfDays); err != nil {
			s.logger.Warn("leave request final approval balance deduct failed",
				zap.Uint("request_id", id),
				zap.Uint("employee_id", l.EmployeeID),
				zap.String("kind", kind),
				zap.Int("amount", l.NumberOfDays),
				zap.Error(err),
			)
			return LeaveRequestResponse{}, err
		}
		deducted = true
	}

	if err := qtx.Update(ctx, l); err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return LeaveRequestResponse{}, requesterrors.ErrStaleRequest
		}
		s.logger.Error("leave request decision persist failed",
			zap.Uint("request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	eventType := events.LeaveApproved
	if decision == workflow.StatusRejected {
		eventType = events.LeaveRejected
	}
	s.writeTransitionEvent(ctx, tx, l, actor.ID, eventType, oldState, stateString(l.Snapshot()))

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave request decision commit failed",
			zap.Uint("request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	// The deduction just landed; the cached balance view no longer matches.
	if deducted && s.cache != nil {
		s.cache.InvalidateCache(ctx, l.EmployeeID)
	}

	s.logger.Info("leave request decision success",
		zap.Uint("request_id", id),
		zap.String("stage", string(stage)),
		zap.String("decision", string(decision)),
	)

	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return requesterrors.ErrRequestNotFound
		}
		return err
	}

	if err := s.authorizeMutation(l.Snapshot(), actor); err != nil {
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// authorizeMutation gates edit and delete: admins always, owners only while
// neither stage has acted.
func (s *service) authorizeMutation(snap workflow.Snapshot, actor authz.Actor) error {
	if actor.IsAdmin {
		return nil
	}
	if snap.OwnerID != actor.ID {
		return authz.ErrNotVisible
	}
	if !snap.Untouched() {
		return requesterrors.ErrRequestLocked
	}
	return nil
}

// authorizeDecision answers "may this identity review this request at all":
// never the owner, otherwise admins, HR, and department-matching managers.
// Stage-state legality is checked separately so a stale caller gets a state
// error rather than a misleading forbidden.
func (s *service) authorizeDecision(snap workflow.Snapshot, actor authz.Actor) error {
	if snap.OwnerID == actor.ID {
		return authz.ErrSelfApproval
	}
	if actor.IsAdmin || actor.IsHR {
		return nil
	}
	if actor.IsManager && authz.CanView(snap, actor) {
		return nil
	}
	return authz.ErrNotReviewer
}

// actionableStage resolves the stage an actor's decision lands on and
// verifies the state machine allows a decision there.
func actionableStage(snap workflow.Snapshot, actor authz.Actor) (workflow.Stage, error) {
	if snap.ManagerStatus == workflow.StatusRejected || snap.HRStatus == workflow.StatusRejected {
		return "", requesterrors.ErrWorkflowTerminated
	}

	stage, ok := workflow.ResolveStage(snap, actor.IsHR)
	if !ok {
		// Manager track already approved; only HR may still act.
		return "", requesterrors.ErrStageAlreadyDecided
	}
	if stage == workflow.StageHR && snap.ManagerStatus != workflow.StatusApproved {
		return "", requesterrors.ErrManagerApprovalRequired
	}
	if snap.StatusAt(stage) != workflow.StatusPending {
		return "", requesterrors.ErrStageAlreadyDecided
	}
	return stage, nil
}

func applyDecision(l *LeaveRequest, stage workflow.Stage, decision workflow.Status, remarks string) {
	var remarksPtr *string
	if remarks != "" {
		remarksPtr = &remarks
	}
	if stage == workflow.StageHR {
		l.HRStatus = decision
		l.HRRemarks = remarksPtr
		return
	}
	l.ManagerStatus = decision
	l.ManagerRemarks = remarksPtr
}

func (s *service) checkConflicts(
	ctx context.Context,
	qtx Repository,
	employeeID uint,
	startDate time.Time,
	endDate *time.Time,
	excludeID *uint,
) error {
	effectiveEnd := startDate
	if endDate != nil {
		effectiveEnd = *endDate
	}

	overlap, err := qtx.HasOverlappingRequest(ctx, employeeID, startDate, effectiveEnd, excludeID)
	if err != nil {
		s.logger.Error("leave request overlap check failed", zap.Error(err))
		return err
	}
	if overlap {
		s.logger.Warn("leave request overlap detected",
			zap.Uint("employee_id", employeeID),
			zap.Time("start_date", startDate),
			zap.Time("end_date", effectiveEnd),
		)
		return requesterrors.ErrRequestConflict
	}
	return nil
}

// writeTransitionEvent stages a fire-and-forget workflow event in the outbox,
// inside the caller's transaction. The engine never waits on delivery; a
// failed staging is logged and swallowed.
func (s *service) writeTransitionEvent(
	ctx context.Context,
	tx *sql.Tx,
	l *LeaveRequest,
	actorID uint,
	eventType, oldState, newState string,
) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(events.LeaveTransitionedEvent{
		EventType:  eventType,
		RequestID:  l.ID,
		EmployeeID: l.EmployeeID,
		ActorID:    actorID,
		OldState:   oldState,
		NewState:   newState,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("marshal transition event failed", zap.Error(err))
		return
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "leave_request",
		AggregateID:   fmt.Sprintf("%d", l.ID),
		EventType:     eventType,
		Topic:         events.LeaveWorkflowTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("stage transition event failed",
			zap.Uint("request_id", l.ID),
			zap.Error(err),
		)
	}
}

func stateString(s workflow.Snapshot) string {
	return string(s.ManagerStatus) + "/" + string(s.HRStatus)
}

func parseTypeAndDates(rawType, rawStart string, rawEnd *string) (leavetype.LeaveType, time.Time, *time.Time, error) {
	leaveType, err := leavetype.Parse(rawType)
	if err != nil {
		return "", time.Time{}, nil, requesterrors.ErrInvalidLeaveType
	}

	startDate, err := parseDate(rawStart)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	var endDate *time.Time
	if rawEnd != nil && *rawEnd != "" {
		end, err := parseDate(*rawEnd)
		if err != nil {
			return "", time.Time{}, nil, err
		}
		endDate = &end
	}
	return leaveType, startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:             l.ID,
		EmployeeID:     l.EmployeeID,
		Department:     l.Department,
		LeaveType:      string(l.LeaveType),
		StartDate:      l.StartDate.Format("2006-01-02"),
		StartTime:      l.StartTime,
		EndTime:        l.EndTime,
		NumberOfDays:   l.NumberOfDays,
		Reason:         l.Reason,
		ManagerStatus:  string(l.ManagerStatus),
		HRStatus:       string(l.HRStatus),
		ManagerRemarks: l.ManagerRemarks,
		HRRemarks:      l.HRRemarks,
	}
	if l.EndDate != nil {
		v := l.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapToResponse(l)
	}
	return resp
}
