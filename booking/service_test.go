package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/ledger"
	"github.com/docpoint/booking-api/models"
)

const (
	testDate = "15_6_2025"
	testSlot = "10:00 am"
)

// fakeStore keeps all three collections in maps behind one mutex.
type fakeStore struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*models.User
	doctors   map[primitive.ObjectID]*models.Doctor
	appts     map[primitive.ObjectID]*models.Appointment
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[primitive.ObjectID]*models.User),
		doctors: make(map[primitive.ObjectID]*models.Doctor),
		appts:   make(map[primitive.ObjectID]*models.Appointment),
	}
}

func (f *fakeStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) FindDoctorByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeStore) InsertAppointment(_ context.Context, appt *models.Appointment) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	id := primitive.NewObjectID()
	cp := *appt
	cp.ID = id
	f.appts[id] = &cp
	return id, nil
}

func (f *fakeStore) FindAppointmentByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) MarkCancelled(_ context.Context, id primitive.ObjectID, hideFromUser bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Cancelled = true
	if hideFromUser {
		a.ShowToUser = false
	}
	return nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.IsCompleted = true
	return nil
}

func (f *fakeStore) DeleteAppointment(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.appts[id]; !ok {
		return ErrNotFound
	}
	delete(f.appts, id)
	return nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID primitive.ObjectID, visibleOnly bool) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if a.UserID != userID {
			continue
		}
		if visibleOnly && !a.ShowToUser {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) ListByDoctor(_ context.Context, docID primitive.ObjectID) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if a.DocID == docID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		out = append(out, *a)
	}
	return out, nil
}

type fixture struct {
	svc    *Service
	store  *fakeStore
	ledger *ledger.Memory
	userID primitive.ObjectID
	docID  primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newFakeStore()
	led := ledger.NewMemory()

	userID := primitive.NewObjectID()
	st.users[userID] = &models.User{
		ID:    userID,
		Name:  "Jane Roe",
		Email: "jane@example.com",
		DOB:   "1990-06-16",
	}

	docID := primitive.NewObjectID()
	st.doctors[docID] = &models.Doctor{
		ID:         docID,
		Name:       "Dr. Smith",
		Speciality: "Dermatologist",
		Fees:       50,
		Available:  true,
	}
	led.AddDoctor(docID, true)

	return &fixture{
		svc:    NewService(st, st, st, led, zerolog.Nop()),
		store:  st,
		ledger: led,
		userID: userID,
		docID:  docID,
	}
}

func (fx *fixture) book(t *testing.T) *models.Appointment {
	t.Helper()
	appt, err := fx.svc.Book(context.Background(), fx.userID, fx.docID, testDate, testSlot)
	require.NoError(t, err)
	return appt
}

func (fx *fixture) isBooked(t *testing.T) bool {
	t.Helper()
	booked, err := fx.ledger.IsBooked(context.Background(), fx.docID, testDate, testSlot)
	require.NoError(t, err)
	return booked
}

func TestBookCreatesSnapshotAndReservesSlot(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)

	assert.Equal(t, fx.userID, appt.UserID)
	assert.Equal(t, fx.docID, appt.DocID)
	assert.Equal(t, int64(50), appt.Amount, "fee copied at booking time")
	assert.Equal(t, "Jane Roe", appt.UserData.Name)
	assert.Equal(t, "Dr. Smith", appt.DocData.Name)
	assert.True(t, appt.ShowToUser)
	assert.False(t, appt.Cancelled)
	assert.True(t, fx.isBooked(t))

	// Exactly one non-cancelled appointment matches the ledger entry.
	all, err := fx.svc.ListAll(context.Background())
	require.NoError(t, err)
	matches := 0
	for _, a := range all {
		if !a.Cancelled && a.DocID == fx.docID && a.SlotDate == testDate && a.SlotTime == testSlot {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestBookValidatesSlot(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Book(ctx, fx.userID, fx.docID, testDate, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = fx.svc.Book(ctx, fx.userID, fx.docID, "", testSlot)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookRejectsTakenSlot(t *testing.T) {
	fx := newFixture(t)
	fx.book(t)

	_, err := fx.svc.Book(context.Background(), fx.userID, fx.docID, testDate, testSlot)
	assert.ErrorIs(t, err, ledger.ErrSlotUnavailable)
}

func TestBookUnknownDoctor(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Book(context.Background(), fx.userID, primitive.NewObjectID(), testDate, testSlot)
	assert.ErrorIs(t, err, ledger.ErrDoctorNotFound)
}

func TestBookUnavailableDoctor(t *testing.T) {
	fx := newFixture(t)
	fx.store.doctors[fx.docID].Available = false

	_, err := fx.svc.Book(context.Background(), fx.userID, fx.docID, testDate, testSlot)
	assert.ErrorIs(t, err, ledger.ErrDoctorUnavailable)
}

func TestBookUnknownUser(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Book(context.Background(), primitive.NewObjectID(), fx.docID, testDate, testSlot)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, fx.isBooked(t), "failed booking must not hold the slot")
}

func TestBookInsertFailureReleasesReservation(t *testing.T) {
	fx := newFixture(t)
	fx.store.insertErr = assert.AnError

	_, err := fx.svc.Book(context.Background(), fx.userID, fx.docID, testDate, testSlot)
	require.Error(t, err)
	assert.False(t, fx.isBooked(t), "reservation rolled back after insert failure")

	// The slot is immediately reusable.
	fx.store.insertErr = nil
	fx.book(t)
}

func TestCancelByPatientIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()
	actor := Actor{ID: fx.userID, Role: auth.RolePatient}

	require.NoError(t, fx.svc.Cancel(ctx, appt.ID, actor))
	got, err := fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.Cancelled)
	assert.True(t, got.ShowToUser, "patient cancellation stays visible")
	assert.False(t, fx.isBooked(t))

	require.NoError(t, fx.svc.Cancel(ctx, appt.ID, actor), "second cancel is a no-op")
}

func TestCancelOwnership(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()

	err := fx.svc.Cancel(ctx, appt.ID, Actor{ID: primitive.NewObjectID(), Role: auth.RolePatient})
	assert.ErrorIs(t, err, ErrNotFound, "foreign patient cannot cancel")

	err = fx.svc.Cancel(ctx, appt.ID, Actor{ID: primitive.NewObjectID(), Role: auth.RoleDoctor})
	assert.ErrorIs(t, err, ErrNotFound, "foreign doctor cannot cancel")

	assert.True(t, fx.isBooked(t))
}

func TestAdminCancelHidesFromPatient(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()

	require.NoError(t, fx.svc.Cancel(ctx, appt.ID, Actor{Role: auth.RoleAdmin}))

	got, err := fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.Cancelled)
	assert.False(t, got.ShowToUser)

	visible, err := fx.svc.ListForUser(ctx, fx.userID)
	require.NoError(t, err)
	assert.Empty(t, visible, "admin-cancelled booking leaves the patient list")

	all, err := fx.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "admin list retains the record")
}

func TestDoctorCancelStaysVisible(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()

	require.NoError(t, fx.svc.Cancel(ctx, appt.ID, Actor{ID: fx.docID, Role: auth.RoleDoctor}))

	got, err := fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.Cancelled)
	assert.True(t, got.ShowToUser, "doctor cancellation keeps the booking in the patient list")
}

func TestComplete(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()

	assert.ErrorIs(t, fx.svc.Complete(ctx, appt.ID, primitive.NewObjectID()), ErrInvalidState,
		"only the owning doctor may complete")

	require.NoError(t, fx.svc.Complete(ctx, appt.ID, fx.docID))
	got, err := fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	assert.ErrorIs(t, fx.svc.Complete(ctx, appt.ID, fx.docID), ErrInvalidState, "already completed")
}

func TestCompleteCancelledAppointment(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()

	require.NoError(t, fx.svc.Cancel(ctx, appt.ID, Actor{ID: fx.docID, Role: auth.RoleDoctor}))
	assert.ErrorIs(t, fx.svc.Complete(ctx, appt.ID, fx.docID), ErrInvalidState)
}

func TestDeleteRefusesActiveBooking(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()

	err := fx.svc.Delete(ctx, appt.ID, Actor{Role: auth.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	assert.NoError(t, err, "active booking survives the refused delete")
}

func TestDeleteCompletedReleasesSlot(t *testing.T) {
	fx := newFixture(t)
	appt := fx.book(t)
	ctx := context.Background()

	require.NoError(t, fx.svc.Complete(ctx, appt.ID, fx.docID))
	assert.True(t, fx.isBooked(t), "completed booking keeps its ledger entry")

	require.NoError(t, fx.svc.Delete(ctx, appt.ID, Actor{ID: fx.docID, Role: auth.RoleDoctor}))
	assert.False(t, fx.isBooked(t))

	_, err := fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEnrichesStatusAndAge(t *testing.T) {
	fx := newFixture(t)
	fx.book(t)
	fx.svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	appts, err := fx.svc.ListForUser(context.Background(), fx.userID)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, models.StatusPending, appts[0].Status)
	assert.Equal(t, 34, appts[0].UserData.Age)
}

func TestConcurrentBookSingleWinner(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	secondUser := primitive.NewObjectID()
	fx.store.users[secondUser] = &models.User{ID: secondUser, Name: "John Doe"}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = fx.svc.Book(ctx, fx.userID, fx.docID, testDate, testSlot)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = fx.svc.Book(ctx, secondUser, fx.docID, testDate, testSlot)
	}()
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ledger.ErrSlotUnavailable)
			losers++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)

	all, err := fx.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "never two bookings for the same slot")
}

func TestBookCancelDeleteEndToEnd(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	appt, err := fx.svc.Book(ctx, fx.userID, fx.docID, "15_6_2025", "10:00 am")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"15_6_2025": {"10:00 am"}}, fx.ledger.Slots(fx.docID))

	require.NoError(t, fx.svc.Cancel(ctx, appt.ID, Actor{Role: auth.RoleAdmin}))
	assert.Empty(t, fx.ledger.Slots(fx.docID), "date key removed with its last slot")

	got, err := fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.Cancelled)
	assert.False(t, got.ShowToUser)

	require.NoError(t, fx.svc.Delete(ctx, appt.ID, Actor{Role: auth.RoleAdmin}))
	_, err = fx.svc.appointments.FindAppointmentByID(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
