package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leavedesk/internal/balance"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	StageFaculty  = "FACULTY"
	StageHOD      = "HOD"
	StageDirector = "DIRECTOR"

	StatusPending  = "pending"
	StatusAwaiting = "awaiting"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"

	// Cancellation must happen more than this long before the leave starts.
	cancellationWindow = 3 * 24 * time.Hour

	maxReqMessageWords = 100

	statsCacheTTL = 5 * time.Minute
)

// Actor is the authenticated caller driving an operation.
type Actor struct {
	Username string
	Role     string
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, actor Actor, req ApplyRequest) (RecordResponse, error)
	GetLeaves(ctx context.Context, username, status string) ([]RecordResponse, error)
	GetApplications(ctx context.Context, actor Actor) ([]RecordResponse, error)
	Decide(ctx context.Context, actor Actor, name, decision, reason string) (RecordResponse, error)
	Cancel(ctx context.Context, actor Actor, name string) error
	ClearRejected(ctx context.Context, actor Actor, name string) error
	Stats(ctx context.Context, username string) (StatsResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	ledger balance.Ledger
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, ledger balance.Ledger, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// log prefers the request-scoped logger so entries carry the request id and
// actor set by the HTTP middleware.
func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

// Apply runs the full application gate in one transaction: duplicate name,
// overlap, then a validation-only balance reservation. Nothing is debited
// until final approval. An HOD applicant skips their own stage and enters
// directly at DIRECTOR.
func (s *service) Apply(ctx context.Context, actor Actor, req ApplyRequest) (RecordResponse, error) {
	s.log(ctx).Debug("apply leave requested",
		zap.String("username", actor.Username),
		zap.String("name", req.Name),
		zap.String("type", req.Type),
	)

	lt, err := balance.ParseLeaveType(req.Type)
	if err != nil {
		return RecordResponse{}, err
	}

	from, err := parseDate(req.From)
	if err != nil {
		return RecordResponse{}, err
	}
	to, err := parseDate(req.To)
	if err != nil {
		return RecordResponse{}, err
	}
	if from.After(to) {
		return RecordResponse{}, leaveerrors.ErrInvalidDateRange
	}
	if len(strings.Fields(req.ReqMessage)) > maxReqMessageWords {
		return RecordResponse{}, leaveerrors.ErrReqMessageTooLong
	}

	days := daysInclusive(from, to)

	stage := actor.Role
	if actor.Role == StageHOD {
		stage = StageDirector
	}
	status := StatusPending
	if stage == StageDirector {
		// The record is already in front of its final approver.
		status = StatusAwaiting
	}

	rec := &Record{
		ID:         uuid.New(),
		Name:       req.Name,
		Username:   actor.Username,
		Type:       lt.String(),
		FromDate:   from,
		ToDate:     to,
		ReqMessage: req.ReqMessage,
		Stage:      stage,
		Status:     status,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		exists, err := qtx.ExistsByName(ctx, req.Name)
		if err != nil {
			return err
		}
		if exists {
			return leaveerrors.ErrDuplicateName
		}

		overlap, err := qtx.HasOverlappingPeriod(ctx, actor.Username, from, to)
		if err != nil {
			return err
		}
		if overlap {
			return leaveerrors.ErrOverlappingDates
		}

		if err := s.ledger.WithTx(tx).Reserve(ctx, actor.Username, lt, days); err != nil {
			return err
		}

		// Unique index backstops a concurrent apply racing the exists check.
		if err := qtx.Create(ctx, rec); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return leaveerrors.ErrDuplicateName
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.log(ctx).Warn("apply leave failed",
			zap.String("username", actor.Username),
			zap.String("name", req.Name),
			zap.Error(err),
		)
		return RecordResponse{}, err
	}

	s.invalidateStats(ctx, actor.Username)
	s.log(ctx).Info("leave applied",
		zap.String("username", actor.Username),
		zap.String("name", rec.Name),
		zap.String("stage", rec.Stage),
		zap.Int("days", days),
	)
	return mapToResponse(*rec), nil
}

func (s *service) GetLeaves(ctx context.Context, username, status string) ([]RecordResponse, error) {
	recs, err := s.repo.FindAllForUser(ctx, username, status)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(recs), nil
}

// GetApplications returns the queue awaiting the actor's decision. The HOD
// reviews everything faculty submitted that is not yet rejected; the
// DIRECTOR reviews records forwarded to the final stage.
func (s *service) GetApplications(ctx context.Context, actor Actor) ([]RecordResponse, error) {
	switch actor.Role {
	case StageHOD:
		recs, err := s.repo.FindByStage(ctx, StageFaculty, true)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(recs), nil
	case StageDirector:
		recs, err := s.repo.FindByStageStatus(ctx, StageDirector, StatusAwaiting)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(recs), nil
	default:
		return nil, leaveerrors.ErrNotAuthorized
	}
}

// Decide advances the approval state machine. The record row is locked for
// the transaction, the final-approval debit and the status update commit or
// roll back together, and terminal records reject any further decision.
func (s *service) Decide(ctx context.Context, actor Actor, name, decision, reason string) (RecordResponse, error) {
	s.log(ctx).Debug("decide leave requested",
		zap.String("actor", actor.Username),
		zap.String("role", actor.Role),
		zap.String("name", name),
		zap.String("decision", decision),
	)

	if decision != StatusAccepted && decision != StatusRejected {
		return RecordResponse{}, leaveerrors.ErrInvalidDecision
	}
	if decision == StatusRejected && strings.TrimSpace(reason) == "" {
		return RecordResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	if actor.Role != StageHOD && actor.Role != StageDirector {
		return RecordResponse{}, leaveerrors.ErrNotAuthorized
	}

	var rec *Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		rec, err = qtx.FindByNameForUpdate(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrRecordNotFound
			}
			return err
		}

		if rec.Status == StatusAccepted || rec.Status == StatusRejected {
			return leaveerrors.ErrInvalidTransition
		}

		switch actor.Role {
		case StageHOD:
			if rec.Stage != StageFaculty {
				return leaveerrors.ErrInvalidTransition
			}
			if decision == StatusAccepted {
				rec.Stage = StageDirector
				rec.Status = StatusAwaiting
			} else {
				rec.Status = StatusRejected
				rec.RejMessage = &reason
			}

		case StageDirector:
			if rec.Stage != StageDirector {
				return leaveerrors.ErrInvalidTransition
			}
			if decision == StatusAccepted {
				lt, err := balance.ParseLeaveType(rec.Type)
				if err != nil {
					return err
				}
				// Recompute from the date range; stored day counts are
				// never trusted at balance-mutation time.
				days := rec.Days()
				if err := s.ledger.WithTx(tx).Debit(ctx, rec.Username, lt, days); err != nil {
					return err
				}
				rec.Status = StatusAccepted
			} else {
				rec.Status = StatusRejected
				rec.RejMessage = &reason
			}
		}

		return qtx.Update(ctx, rec)
	})
	if err != nil {
		s.log(ctx).Warn("decide leave failed",
			zap.String("name", name),
			zap.String("decision", decision),
			zap.Error(err),
		)
		return RecordResponse{}, err
	}

	s.invalidateStats(ctx, rec.Username)
	s.log(ctx).Info("leave decision applied",
		zap.String("name", name),
		zap.String("stage", rec.Stage),
		zap.String("status", rec.Status),
		zap.String("decided_by", actor.Username),
	)
	return mapToResponse(*rec), nil
}

// Cancel deletes an accepted record and credits its days back, as one
// transaction. A retry after a successful cancel no longer finds the record
// and gets a not-found instead of a second credit.
func (s *service) Cancel(ctx context.Context, actor Actor, name string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		rec, err := qtx.FindByNameForUpdate(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrRecordNotFound
			}
			return err
		}
		if rec.Username != actor.Username || rec.Status != StatusAccepted {
			return leaveerrors.ErrRecordNotFound
		}

		if time.Until(rec.FromDate) <= cancellationWindow {
			return leaveerrors.ErrCancellationWindowClosed
		}

		lt, err := balance.ParseLeaveType(rec.Type)
		if err != nil {
			return err
		}
		if err := s.ledger.WithTx(tx).Credit(ctx, rec.Username, lt, rec.Days()); err != nil {
			return err
		}

		return qtx.DeleteByName(ctx, name)
	})
	if err != nil {
		s.log(ctx).Warn("cancel leave failed",
			zap.String("username", actor.Username),
			zap.String("name", name),
			zap.Error(err),
		)
		return err
	}

	s.invalidateStats(ctx, actor.Username)
	s.log(ctx).Info("leave cancelled",
		zap.String("username", actor.Username),
		zap.String("name", name),
	)
	return nil
}

// ClearRejected deletes a rejected record. No balance effect: nothing was
// ever debited for it.
func (s *service) ClearRejected(ctx context.Context, actor Actor, name string) error {
	rec, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrRecordNotFound
		}
		return err
	}
	if rec.Username != actor.Username || rec.Status != StatusRejected {
		return leaveerrors.ErrRecordNotFound
	}

	if err := s.repo.DeleteByName(ctx, name); err != nil {
		return err
	}

	s.invalidateStats(ctx, actor.Username)
	s.log(ctx).Info("rejected leave cleared",
		zap.String("username", actor.Username),
		zap.String("name", name),
	)
	return nil
}

func statsCacheKey(username string) string {
	return fmt.Sprintf("leave:stats:%s", username)
}

func (s *service) Stats(ctx context.Context, username string) (StatsResponse, error) {
	cacheKey := statsCacheKey(username)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp StatsResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		total, err := s.repo.CountForUser(ctx, username)
		if err != nil {
			return nil, err
		}
		approved, err := s.repo.CountByUserAndStatus(ctx, username, StatusAccepted)
		if err != nil {
			return nil, err
		}
		pending, err := s.repo.CountByUserAndStatus(ctx, username, StatusAwaiting)
		if err != nil {
			return nil, err
		}

		resp := StatsResponse{
			TotalLeaves:    total,
			ApprovedLeaves: approved,
			PendingLeaves:  pending,
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, statsCacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return StatsResponse{}, err
	}
	return v.(StatsResponse), nil
}

func (s *service) invalidateStats(ctx context.Context, username string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, statsCacheKey(username)).Err(); err != nil {
		s.log(ctx).Warn("failed to invalidate stats cache",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:         rec.ID.String(),
		Name:       rec.Name,
		Username:   rec.Username,
		Type:       rec.Type,
		From:       rec.FromDate.Format("2006-01-02"),
		To:         rec.ToDate.Format("2006-01-02"),
		Days:       rec.Days(),
		ReqMessage: rec.ReqMessage,
		Stage:      rec.Stage,
		Status:     rec.Status,
		RejMessage: rec.RejMessage,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(recs []Record) []RecordResponse {
	resp := make([]RecordResponse, len(recs))
	for i, rec := range recs {
		resp[i] = mapToResponse(rec)
	}
	return resp
}
