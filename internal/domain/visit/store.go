package visit

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no visit with the requested id exists in
// the partition an operation works on.
var ErrNotFound = errors.New("visit not found")

// Store is the single source of truth for all visits, active and
// discharged, for the lifetime of the process. A visit lives in exactly
// one of the two partitions at any time; ids are unique across the union
// of both and are never reused.
//
// One mutex makes Admit, Transition and Readmit mutually exclusive and
// atomic, so concurrent staff clients cannot mint duplicate ids or race
// a visit into both partitions.
type Store struct {
	mu         sync.Mutex
	nextID     int
	active     []*Visit
	discharged []*Visit // most recent discharge first
	now        func() time.Time
}

// NewStore creates an empty store. Ids start at P-001.
func NewStore() *Store {
	return &Store{nextID: 1, now: time.Now}
}

// Admit registers a new visit in the waiting room and returns a copy of
// the stored record. Callers validate that intake.Name is non-empty.
func (s *Store) Admit(intake Intake) Visit {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &Visit{
		ID:          FormatID(s.nextID),
		Name:        intake.Name,
		Stage:       StageWaitingRoom,
		CheckInTime: s.now(),
		Email:       intake.Email,
		Phone:       intake.Phone,
		Address:     intake.Address,
		Age:         intake.Age,
		Sex:         intake.Sex,
		Priority:    intake.Priority,
	}
	s.nextID++
	s.active = append(s.active, v)
	return *v
}

// Transition moves the active visit with the given id to nextStage,
// resets its check-in time and merges the clinical update. Moving to
// Discharged re-homes the visit at the head of the discharged partition.
// The store does not validate stage ordering; it applies whatever next
// stage the caller asks for.
func (s *Store) Transition(id string, nextStage Stage, update *ClinicalUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, v := range s.active {
		if v.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	v := s.active[idx]
	v.Stage = nextStage
	v.CheckInTime = s.now()
	update.apply(v)

	if nextStage == StageDischarged {
		s.active = append(s.active[:idx], s.active[idx+1:]...)
		s.discharged = append([]*Visit{v}, s.discharged...)
	}
	return nil
}

// Readmit moves a discharged visit back into the waiting room. Clinical
// history is discarded; the id and demographic fields survive.
func (s *Store) Readmit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, v := range s.discharged {
		if v.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	v := s.discharged[idx]
	s.discharged = append(s.discharged[:idx], s.discharged[idx+1:]...)

	v.Stage = StageWaitingRoom
	v.CheckInTime = s.now()
	v.RequestedLabTests = nil
	v.LabResults = ""
	v.Diagnosis = ""
	v.Prescription = ""
	s.active = append(s.active, v)
	return nil
}

// Get looks a visit up by id, checking the active partition first, then
// the discharged one. The second return is false when the id is unknown.
func (s *Store) Get(id string) (Visit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.active {
		if v.ID == id {
			return *v, true
		}
	}
	for _, v := range s.discharged {
		if v.ID == id {
			return *v, true
		}
	}
	return Visit{}, false
}

// ListActive returns a snapshot of the active partition in admission
// order. Consumers sort by check-in time within a stage for display.
func (s *Store) ListActive() []Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.active)
}

// ListDischarged returns a snapshot of the discharged partition, most
// recent discharge first.
func (s *Store) ListDischarged() []Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.discharged)
}

// ListAll returns the union of both partitions: active visits first,
// then discharged visits in most-recent-first order.
func (s *Store) ListAll() []Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Visit, 0, len(s.active)+len(s.discharged))
	for _, v := range s.active {
		out = append(out, *v)
	}
	for _, v := range s.discharged {
		out = append(out, *v)
	}
	return out
}

// CountByStage returns the number of active visits per stage. Used for
// the queue-depth gauges and the admin dashboard cards.
func (s *Store) CountByStage() map[Stage]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[Stage]int, len(ActiveStages))
	for _, v := range s.active {
		counts[v.Stage]++
	}
	return counts
}

func snapshot(visits []*Visit) []Visit {
	out := make([]Visit, 0, len(visits))
	for _, v := range visits {
		out = append(out, *v)
	}
	return out
}
