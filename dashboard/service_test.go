package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/models"
)

// fakeStore serves the aggregator from slices.
type fakeStore struct {
	users   int64
	doctors int64
	appts   []models.Appointment
}

func (f *fakeStore) CountUsers(context.Context) (int64, error)   { return f.users, nil }
func (f *fakeStore) CountDoctors(context.Context) (int64, error) { return f.doctors, nil }

func (f *fakeStore) CountAppointments(_ context.Context, filter Filter) (int64, error) {
	var n int64
	for _, a := range f.appts {
		if filter.Cancelled != nil && a.Cancelled != *filter.Cancelled {
			continue
		}
		if filter.IsCompleted != nil && a.IsCompleted != *filter.IsCompleted {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeStore) RecentAppointments(_ context.Context, limit int) ([]models.Appointment, error) {
	if len(f.appts) > limit {
		return append([]models.Appointment(nil), f.appts[:limit]...), nil
	}
	return append([]models.Appointment(nil), f.appts...), nil
}

func (f *fakeStore) AppointmentsByDoctor(_ context.Context, docID primitive.ObjectID) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appts {
		if a.DocID == docID {
			out = append(out, a)
		}
	}
	return out, nil
}

func appt(docID primitive.ObjectID, cancelled, completed, paid bool, slotDate string, amount int64) models.Appointment {
	return models.Appointment{
		ID:          primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		DocID:       docID,
		SlotDate:    slotDate,
		SlotTime:    "10:00 am",
		Amount:      amount,
		Cancelled:   cancelled,
		IsCompleted: completed,
		Payment:     paid,
	}
}

func TestAdminStatsReconcileWithCollections(t *testing.T) {
	docID := primitive.NewObjectID()
	st := &fakeStore{
		users:   7,
		doctors: 3,
		appts: []models.Appointment{
			appt(docID, false, false, false, "15_6_2025", 50), // pending
			appt(docID, false, false, true, "15_6_2025", 50),  // confirmed, still pending count-wise
			appt(docID, false, true, true, "15_6_2025", 50),   // completed
			appt(docID, true, false, false, "15_6_2025", 50),  // cancelled
		},
	}
	svc := NewService(st)

	stats, err := svc.AdminStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalDoctors)
	assert.Equal(t, int64(7), stats.TotalPatients)
	assert.Equal(t, int64(4), stats.TotalAppointments)
	assert.Equal(t, int64(1), stats.CancelledAppointments)
	assert.Equal(t, int64(1), stats.CompletedAppointments)
	assert.Equal(t, int64(2), stats.PendingAppointments)

	sum := stats.CancelledAppointments + stats.CompletedAppointments + stats.PendingAppointments
	assert.Equal(t, stats.TotalAppointments, sum, "status counts partition the total")

	require.Len(t, stats.RecentAppointments, 4)
	assert.NotEmpty(t, stats.RecentAppointments[0].Status, "recent list is enriched")
}

func TestRecentAppointmentsBounded(t *testing.T) {
	docID := primitive.NewObjectID()
	st := &fakeStore{}
	for i := 0; i < 9; i++ {
		st.appts = append(st.appts, appt(docID, false, false, false, "15_6_2025", 50))
	}
	svc := NewService(st)

	stats, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats.RecentAppointments, recentLimit)
}

func TestDoctorStats(t *testing.T) {
	docID := primitive.NewObjectID()
	otherDoc := primitive.NewObjectID()
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	today := models.DateKey(now)

	samePatient := appt(docID, false, true, false, today, 60)
	repeat := appt(docID, false, false, true, "20_6_2025", 60)
	repeat.UserID = samePatient.UserID

	st := &fakeStore{appts: []models.Appointment{
		samePatient, // completed today -> earnings, today's list
		repeat,      // paid, same patient -> earnings, not today
		appt(docID, false, false, false, today, 60),  // unpaid pending today -> today's list only
		appt(docID, true, false, false, today, 60),   // cancelled today -> excluded from today's list
		appt(otherDoc, false, true, true, today, 60), // different doctor entirely
	}}
	svc := NewService(st)
	svc.now = func() time.Time { return now }

	stats, err := svc.DoctorStats(context.Background(), docID)
	require.NoError(t, err)

	assert.Equal(t, int64(120), stats.Earnings, "completed or paid bookings earn")
	assert.Equal(t, 4, stats.Appointments)
	assert.Equal(t, 3, stats.Patients, "repeat patient counted once")
	assert.Len(t, stats.TodayAppointments, 2)
	assert.Len(t, stats.LatestAppointments, 4)
}
