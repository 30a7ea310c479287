package report

import (
	"context"
	"fmt"

	"leavedesk/internal/balance"
	"leavedesk/internal/leave"
	"leavedesk/internal/shared/contextutil"
	"leavedesk/internal/user"
	usererrors "leavedesk/internal/user/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Monthly chart buckets are capped at a fixed ceiling so a single long leave
// does not flatten the rest of the chart.
const histogramCeiling = 20

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	Summary(ctx context.Context, username string) (SummaryResponse, error)
	UserReportPDF(ctx context.Context, username, leaveType string) ([]byte, error)
	FacultyReportPDF(ctx context.Context) ([]byte, error)
}

type service struct {
	users  user.Repository
	leaves leave.Repository
	logger *zap.Logger
}

func NewService(users user.Repository, leaves leave.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{users: users, leaves: leaves, logger: l}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

// Summary derives consumed/remaining per leave type plus the monthly
// day-count histogram over accepted records. Read-only; no invariants of
// its own beyond correct arithmetic.
func (s *service) Summary(ctx context.Context, username string) (SummaryResponse, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return SummaryResponse{}, usererrors.ErrUserNotFound
		}
		return SummaryResponse{}, err
	}

	remaining := balance.Balances{
		Casual:   u.CasualLeave,
		Medical:  u.MedicalLeave,
		Earned:   u.EarnedLeave,
		Academic: u.AcademicLeave,
	}

	resp := SummaryResponse{Username: u.Username}
	for _, lt := range balance.AllTypes() {
		allotted := lt.Allotment()
		rem := remaining.For(lt)
		resp.Types = append(resp.Types, TypeSummary{
			Type:      lt.String(),
			Allotted:  allotted,
			Remaining: rem,
			Consumed:  allotted - rem,
		})
	}

	accepted, err := s.leaves.FindAcceptedForUser(ctx, username)
	if err != nil {
		return SummaryResponse{}, err
	}
	for _, rec := range accepted {
		bucket := int(rec.FromDate.Month()) - 1
		resp.MonthlyDays[bucket] += rec.Days()
		if resp.MonthlyDays[bucket] > histogramCeiling {
			resp.MonthlyDays[bucket] = histogramCeiling
		}
	}

	return resp, nil
}

// UserReportPDF renders one user's balances and leave history, optionally
// filtered to a single leave type.
func (s *service) UserReportPDF(ctx context.Context, username, leaveType string) ([]byte, error) {
	if leaveType != "" {
		if _, err := balance.ParseLeaveType(leaveType); err != nil {
			return nil, err
		}
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}

	records, err := s.leaves.FindAllForUser(ctx, u.Username, "")
	if err != nil {
		return nil, err
	}

	lines := []string{
		"Leave Report",
		"",
		fmt.Sprintf("%s %s (%s) - %s", u.FirstName, u.LastName, u.Username, u.Role),
		fmt.Sprintf("Balance - Casual: %d, Medical: %d, Earned: %d, Academic: %d",
			u.CasualLeave, u.MedicalLeave, u.EarnedLeave, u.AcademicLeave),
		"",
	}
	lines = append(lines, recordLines(records, leaveType)...)

	s.log(ctx).Info("user report generated",
		zap.String("username", u.Username),
		zap.String("leave_type", leaveType),
	)
	return buildSimpleReportPDF(lines)
}

// FacultyReportPDF renders every FACULTY user's balances and applications.
func (s *service) FacultyReportPDF(ctx context.Context) ([]byte, error) {
	faculty, err := s.users.FindByRole(ctx, "FACULTY")
	if err != nil {
		return nil, err
	}

	lines := []string{"Faculty Leave Report", ""}
	for i, u := range faculty {
		lines = append(lines,
			fmt.Sprintf("%d. %s %s (%s)", i+1, u.FirstName, u.LastName, u.Username),
			fmt.Sprintf("   Balance - Casual: %d, Medical: %d, Earned: %d, Academic: %d",
				u.CasualLeave, u.MedicalLeave, u.EarnedLeave, u.AcademicLeave),
		)

		records, err := s.leaves.FindAllForUser(ctx, u.Username, "")
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			lines = append(lines, "   No leave applications submitted.", "")
			continue
		}
		lines = append(lines, recordLines(records, "")...)
		lines = append(lines, "")
	}

	s.log(ctx).Info("faculty report generated", zap.Int("users", len(faculty)))
	return buildSimpleReportPDF(lines)
}

func recordLines(records []leave.Record, leaveType string) []string {
	var lines []string
	n := 0
	for _, rec := range records {
		if leaveType != "" && rec.Type != leaveType {
			continue
		}
		n++
		rej := "N/A"
		if rec.RejMessage != nil && *rec.RejMessage != "" {
			rej = *rec.RejMessage
		}
		lines = append(lines, fmt.Sprintf(
			"   %d. %s | %s | %s | From: %s To: %s (%d days) | Reason: %s | Rejection Comment: %s",
			n, rec.Name, rec.Type, rec.Status,
			rec.FromDate.Format("2006-01-02"), rec.ToDate.Format("2006-01-02"),
			rec.Days(), rec.ReqMessage, rej,
		))
	}
	if n == 0 {
		lines = append(lines, "   No leave applications submitted.")
	}
	return lines
}
