package visit

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Metrics receives business events from the service. The prometheus
// implementation lives in internal/platform/metrics; tests use a no-op.
type Metrics interface {
	VisitAdmitted(priority string)
	StageTransition(from, to string)
	VisitReadmitted()
	QueueDepth(stage string, depth int)
}

type noopMetrics struct{}

func (noopMetrics) VisitAdmitted(string)        {}
func (noopMetrics) StageTransition(_, _ string) {}
func (noopMetrics) VisitReadmitted()            {}
func (noopMetrics) QueueDepth(string, int)      {}

// Service validates queue operations and keeps the queue-depth gauges
// current. Stage ordering is deliberately not validated: the workflow UI
// drives sequential transitions, and the store applies whatever next
// stage is requested.
type Service struct {
	store   *Store
	metrics Metrics
}

// NewService wraps the store. A nil metrics sink is replaced by a no-op.
func NewService(store *Store, m Metrics) *Service {
	if m == nil {
		m = noopMetrics{}
	}
	return &Service{store: store, metrics: m}
}

// Admit validates the intake and registers a new waiting-room visit.
func (s *Service) Admit(intake Intake) (Visit, error) {
	if strings.TrimSpace(intake.Name) == "" {
		return Visit{}, fmt.Errorf("name is required")
	}
	if intake.Priority == "" {
		intake.Priority = PriorityStandard
	}
	if !intake.Priority.Valid() {
		return Visit{}, fmt.Errorf("invalid priority: %s", intake.Priority)
	}
	v := s.store.Admit(intake)
	s.metrics.VisitAdmitted(string(v.Priority))
	s.publishQueueDepth()
	return v, nil
}

// Transition moves a visit to nextStage and merges the clinical update.
func (s *Service) Transition(id string, nextStage Stage, update *ClinicalUpdate) error {
	if !nextStage.Valid() {
		return fmt.Errorf("invalid stage: %s", nextStage)
	}
	prev, ok := s.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	if err := s.store.Transition(id, nextStage, update); err != nil {
		return err
	}
	s.metrics.StageTransition(string(prev.Stage), string(nextStage))
	s.publishQueueDepth()
	return nil
}

// Readmit moves a discharged visit back into the waiting room.
func (s *Service) Readmit(id string) error {
	if err := s.store.Readmit(id); err != nil {
		return err
	}
	s.metrics.VisitReadmitted()
	s.publishQueueDepth()
	return nil
}

// Get returns the visit with the given id from either partition.
func (s *Service) Get(id string) (Visit, bool) {
	return s.store.Get(id)
}

// ListActive returns all active visits.
func (s *Service) ListActive() []Visit {
	return s.store.ListActive()
}

// ListAll returns active and discharged visits.
func (s *Service) ListAll() []Visit {
	return s.store.ListAll()
}

// QueueBoard groups active visits by stage, oldest check-in first within
// each stage. Every active stage is present, empty or not, so the board
// always renders all four columns.
func (s *Service) QueueBoard() map[Stage][]Visit {
	board := make(map[Stage][]Visit, len(ActiveStages))
	for _, st := range ActiveStages {
		board[st] = []Visit{}
	}
	for _, v := range s.store.ListActive() {
		board[v.Stage] = append(board[v.Stage], v)
	}
	for st := range board {
		group := board[st]
		sort.Slice(group, func(i, j int) bool {
			return group[i].CheckInTime.Before(group[j].CheckInTime)
		})
	}
	return board
}

// PrescriptionDocument is the rendered prescription for one visit.
type PrescriptionDocument struct {
	ClinicName string             `json:"clinic_name"`
	Date       string             `json:"date"`
	PatientID  string             `json:"patient_id"`
	Patient    string             `json:"patient"`
	Age        *int               `json:"age,omitempty"`
	Sex        string             `json:"sex,omitempty"`
	Diagnosis  string             `json:"diagnosis,omitempty"`
	Items      []PrescriptionItem `json:"items"`
}

// Prescription renders the prescription document for a visit. It fails
// when the visit is unknown or no prescription has been written yet.
func (s *Service) Prescription(id, clinicName string) (PrescriptionDocument, error) {
	v, ok := s.store.Get(id)
	if !ok {
		return PrescriptionDocument{}, ErrNotFound
	}
	if strings.TrimSpace(v.Prescription) == "" {
		return PrescriptionDocument{}, fmt.Errorf("no prescription recorded for %s", id)
	}
	return PrescriptionDocument{
		ClinicName: clinicName,
		Date:       time.Now().Format("2006-01-02"),
		PatientID:  v.ID,
		Patient:    v.Name,
		Age:        v.Age,
		Sex:        v.Sex,
		Diagnosis:  v.Diagnosis,
		Items:      ParsePrescription(v.Prescription),
	}, nil
}

func (s *Service) publishQueueDepth() {
	counts := s.store.CountByStage()
	for _, st := range ActiveStages {
		s.metrics.QueueDepth(string(st), counts[st])
	}
}
