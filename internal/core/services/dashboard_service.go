package services

import (
	"context"
	"time"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
)

// DashboardService aggregates cross-module statistics for the admin
// dashboard
type DashboardService struct {
	studentRepo    repositories.StudentRepository
	paymentRepo    repositories.PaymentRepository
	attendanceRepo repositories.AttendanceRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	studentRepo repositories.StudentRepository,
	paymentRepo repositories.PaymentRepository,
	attendanceRepo repositories.AttendanceRepository,
) *DashboardService {
	return &DashboardService{
		studentRepo:    studentRepo,
		paymentRepo:    paymentRepo,
		attendanceRepo: attendanceRepo,
	}
}

// DashboardStats is the headline numbers block
type DashboardStats struct {
	TotalStudents   int64 `json:"totalStudents"`
	ActiveStudents  int64 `json:"activeStudents"`
	PendingPayments int64 `json:"pendingPayments"`
	TodayAttendance int64 `json:"todayAttendance"`
}

// Dashboard is the full dashboard payload
type Dashboard struct {
	Stats          *DashboardStats   `json:"stats"`
	RecentStudents []*models.Student `json:"recentStudents"`
	RecentPayments []*models.Payment `json:"recentPayments"`
}

// Stats computes the headline dashboard numbers
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	total, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.studentRepo.CountByStatus(ctx, models.StudentActive)
	if err != nil {
		return nil, err
	}

	pendingPayments, err := s.paymentRepo.CountByStatus(ctx, models.PaymentPending)
	if err != nil {
		return nil, err
	}

	todayAttendance, err := s.attendanceRepo.CountPresentOn(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalStudents:   total,
		ActiveStudents:  active,
		PendingPayments: pendingPayments,
		TodayAttendance: todayAttendance,
	}, nil
}

// Overview returns the dashboard stats with recent activity
func (s *DashboardService) Overview(ctx context.Context) (*Dashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	recentStudents, err := s.studentRepo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}

	recentPayments, err := s.paymentRepo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Stats:          stats,
		RecentStudents: recentStudents,
		RecentPayments: recentPayments,
	}, nil
}
