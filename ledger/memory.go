package ledger

import (
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Ledger guarded by a single mutex. It backs the unit
// tests and serves as the reference for the reservation semantics the Mongo
// implementation must match.
type Memory struct {
	mu      sync.Mutex
	doctors map[string]*memoryDoctor
}

type memoryDoctor struct {
	available bool
	slots     map[string][]string
}

// NewMemory returns an empty in-memory ledger with no doctors registered.
func NewMemory() *Memory {
	return &Memory{doctors: make(map[string]*memoryDoctor)}
}

// AddDoctor registers a doctor so reservations against it can resolve.
func (m *Memory) AddDoctor(docID primitive.ObjectID, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doctors[docID.Hex()] = &memoryDoctor{
		available: available,
		slots:     make(map[string][]string),
	}
}

// SetAvailable flips the doctor's availability flag.
func (m *Memory) SetAvailable(docID primitive.ObjectID, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.doctors[docID.Hex()]; ok {
		d.available = available
	}
}

// Slots returns a copy of the doctor's booked slots for inspection.
func (m *Memory) Slots(docID primitive.ObjectID) map[string][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[docID.Hex()]
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(d.slots))
	for date, times := range d.slots {
		out[date] = slices.Clone(times)
	}
	return out
}

func (m *Memory) Reserve(_ context.Context, docID primitive.ObjectID, date, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[docID.Hex()]
	if !ok {
		return ErrDoctorNotFound
	}
	if !d.available {
		return ErrDoctorUnavailable
	}
	if slices.Contains(d.slots[date], slot) {
		return ErrSlotUnavailable
	}
	d.slots[date] = append(d.slots[date], slot)
	return nil
}

func (m *Memory) Release(_ context.Context, docID primitive.ObjectID, date, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[docID.Hex()]
	if !ok {
		return nil
	}
	times := d.slots[date]
	i := slices.Index(times, slot)
	if i < 0 {
		return nil
	}
	times = slices.Delete(times, i, i+1)
	if len(times) == 0 {
		delete(d.slots, date)
	} else {
		d.slots[date] = times
	}
	return nil
}

func (m *Memory) IsBooked(_ context.Context, docID primitive.ObjectID, date, slot string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[docID.Hex()]
	if !ok {
		return false, nil
	}
	return slices.Contains(d.slots[date], slot), nil
}
