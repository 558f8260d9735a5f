// Package dashboard computes the read-only statistics behind the admin and
// doctor panels. Nothing here mutates state; counts reconcile with the
// collections at read time, not transactionally.
package dashboard

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/docpoint/booking-api/models"
)

const recentLimit = 5

// Filter narrows an appointment count by its stored flags. Nil fields match
// everything.
type Filter struct {
	Cancelled   *bool
	IsCompleted *bool
}

// Store is the read surface the aggregator needs.
type Store interface {
	CountUsers(ctx context.Context) (int64, error)
	CountDoctors(ctx context.Context) (int64, error)
	CountAppointments(ctx context.Context, f Filter) (int64, error)
	RecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error)
	// AppointmentsByDoctor returns the doctor's bookings newest first.
	AppointmentsByDoctor(ctx context.Context, docID primitive.ObjectID) ([]models.Appointment, error)
}

// AdminStats is the admin panel's headline numbers plus the most recent
// bookings.
type AdminStats struct {
	TotalDoctors          int64                `json:"totalDoctors"`
	TotalPatients         int64                `json:"totalPatients"`
	TotalAppointments     int64                `json:"totalAppointments"`
	CancelledAppointments int64                `json:"cancelledAppointments"`
	CompletedAppointments int64                `json:"completedAppointments"`
	PendingAppointments   int64                `json:"pendingAppointments"`
	RecentAppointments    []models.Appointment `json:"recentAppointments"`
}

// DoctorStats is the doctor panel's dashboard: earnings over paid or
// completed bookings, distinct patients, and today's schedule.
type DoctorStats struct {
	Earnings           int64                `json:"earnings"`
	Appointments       int                  `json:"appointments"`
	Patients           int                  `json:"patients"`
	TodayAppointments  []models.Appointment `json:"todayAppointments"`
	LatestAppointments []models.Appointment `json:"latestAppointments"`
}

// Service computes dashboard statistics.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService wires the aggregator over its read store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func boolPtr(b bool) *bool { return &b }

// AdminStats fans the independent counts out concurrently and assembles the
// admin dashboard.
func (s *Service) AdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalDoctors, err = s.store.CountDoctors(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalPatients, err = s.store.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalAppointments, err = s.store.CountAppointments(ctx, Filter{})
		return err
	})
	g.Go(func() (err error) {
		stats.CancelledAppointments, err = s.store.CountAppointments(ctx, Filter{Cancelled: boolPtr(true)})
		return err
	})
	g.Go(func() (err error) {
		stats.CompletedAppointments, err = s.store.CountAppointments(ctx, Filter{
			Cancelled:   boolPtr(false),
			IsCompleted: boolPtr(true),
		})
		return err
	})
	g.Go(func() (err error) {
		stats.PendingAppointments, err = s.store.CountAppointments(ctx, Filter{
			Cancelled:   boolPtr(false),
			IsCompleted: boolPtr(false),
		})
		return err
	})
	g.Go(func() (err error) {
		recent, err := s.store.RecentAppointments(ctx, recentLimit)
		if err != nil {
			return err
		}
		now := s.now()
		for i := range recent {
			recent[i].Enrich(now)
		}
		stats.RecentAppointments = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// DoctorStats walks the doctor's bookings once and derives earnings, distinct
// patient count, today's schedule, and the latest bookings.
func (s *Service) DoctorStats(ctx context.Context, docID primitive.ObjectID) (*DoctorStats, error) {
	appts, err := s.store.AppointmentsByDoctor(ctx, docID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := models.DateKey(now)
	stats := &DoctorStats{Appointments: len(appts)}
	patients := make(map[string]struct{})

	for i := range appts {
		appts[i].Enrich(now)
		a := &appts[i]
		if a.IsCompleted || a.Payment {
			stats.Earnings += a.Amount
		}
		patients[a.UserID.Hex()] = struct{}{}
		if a.SlotDate == today && !a.Cancelled {
			stats.TodayAppointments = append(stats.TodayAppointments, *a)
		}
	}
	stats.Patients = len(patients)

	if len(appts) > recentLimit {
		stats.LatestAppointments = appts[:recentLimit]
	} else {
		stats.LatestAppointments = appts
	}
	return stats, nil
}
