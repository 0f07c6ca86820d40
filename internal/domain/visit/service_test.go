package visit

import (
	"fmt"
	"strings"
	"testing"
)

// recordingMetrics captures business events for assertions.
type recordingMetrics struct {
	admitted    []string
	transitions []string
	readmits    int
	depths      map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{depths: make(map[string]int)}
}

func (m *recordingMetrics) VisitAdmitted(priority string) { m.admitted = append(m.admitted, priority) }
func (m *recordingMetrics) StageTransition(from, to string) {
	m.transitions = append(m.transitions, fmt.Sprintf("%s->%s", from, to))
}
func (m *recordingMetrics) VisitReadmitted()               { m.readmits++ }
func (m *recordingMetrics) QueueDepth(stage string, n int) { m.depths[stage] = n }

func newTestService(m Metrics) *Service {
	store := NewStore()
	store.now = fakeClock()
	return NewService(store, m)
}

func TestServiceAdmit_Validation(t *testing.T) {
	svc := newTestService(nil)

	if _, err := svc.Admit(Intake{Name: "   "}); err == nil {
		t.Error("expected error for blank name")
	}
	if _, err := svc.Admit(Intake{Name: "Ok", Priority: "Critical"}); err == nil {
		t.Error("expected error for unknown priority")
	}

	v, err := svc.Admit(Intake{Name: "Defaulted"})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if v.Priority != PriorityStandard {
		t.Errorf("priority = %q, want default %q", v.Priority, PriorityStandard)
	}
}

func TestServiceTransition_InvalidStage(t *testing.T) {
	svc := newTestService(nil)
	v, _ := svc.Admit(Intake{Name: "Patient"})

	if err := svc.Transition(v.ID, Stage("Surgery"), nil); err == nil {
		t.Error("expected error for unknown stage")
	}
	if err := svc.Transition("P-404", StageQuestioning, nil); err != ErrNotFound {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestServiceMetricsEvents(t *testing.T) {
	m := newRecordingMetrics()
	svc := newTestService(m)

	v, _ := svc.Admit(Intake{Name: "Patient", Priority: PriorityUrgent})
	if err := svc.Transition(v.ID, StageQuestioning, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := svc.Transition(v.ID, StageDischarged, nil); err != nil {
		t.Fatalf("discharge: %v", err)
	}
	if err := svc.Readmit(v.ID); err != nil {
		t.Fatalf("Readmit: %v", err)
	}

	if len(m.admitted) != 1 || m.admitted[0] != string(PriorityUrgent) {
		t.Errorf("admitted events = %v", m.admitted)
	}
	wantTransitions := []string{"Waiting Room->Questioning", "Questioning->Discharged"}
	if len(m.transitions) != 2 || m.transitions[0] != wantTransitions[0] || m.transitions[1] != wantTransitions[1] {
		t.Errorf("transition events = %v, want %v", m.transitions, wantTransitions)
	}
	if m.readmits != 1 {
		t.Errorf("readmit events = %d, want 1", m.readmits)
	}
	if m.depths[string(StageWaitingRoom)] != 1 {
		t.Errorf("waiting room depth gauge = %d, want 1", m.depths[string(StageWaitingRoom)])
	}
}

func TestServiceQueueBoard(t *testing.T) {
	svc := newTestService(nil)

	first, _ := svc.Admit(Intake{Name: "First"})
	second, _ := svc.Admit(Intake{Name: "Second"})
	third, _ := svc.Admit(Intake{Name: "Third"})
	if err := svc.Transition(third.ID, StageQuestioning, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	board := svc.QueueBoard()
	if len(board) != len(ActiveStages) {
		t.Fatalf("board has %d columns, want %d", len(board), len(ActiveStages))
	}
	for _, st := range ActiveStages {
		if _, ok := board[st]; !ok {
			t.Errorf("board missing column %q", st)
		}
	}

	waiting := board[StageWaitingRoom]
	if len(waiting) != 2 || waiting[0].ID != first.ID || waiting[1].ID != second.ID {
		t.Errorf("waiting room column = %+v, want [%s %s] oldest first", waiting, first.ID, second.ID)
	}
	if got := board[StageQuestioning]; len(got) != 1 || got[0].ID != third.ID {
		t.Errorf("questioning column = %+v", got)
	}
	if got := board[StageLaboratoryTest]; len(got) != 0 {
		t.Errorf("expected empty laboratory column, got %+v", got)
	}
}

func TestServicePrescription(t *testing.T) {
	svc := newTestService(nil)
	age := 34
	v, _ := svc.Admit(Intake{Name: "Hana Girma", Age: &age, Sex: "F"})

	if _, err := svc.Prescription("P-404", "Clinic"); err != ErrNotFound {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Prescription(v.ID, "Clinic"); err == nil {
		t.Error("expected error when no prescription is recorded")
	}

	diagnosis := "Tonsillitis"
	rx := "Amoxicillin, 500mg, 3x daily, 7 days\nParacetamol, 500mg, as needed, 3 days"
	if err := svc.Transition(v.ID, StageDischarged, &ClinicalUpdate{Diagnosis: &diagnosis, Prescription: &rx}); err != nil {
		t.Fatalf("discharge: %v", err)
	}

	doc, err := svc.Prescription(v.ID, "Menaharia Medium Clinic")
	if err != nil {
		t.Fatalf("Prescription: %v", err)
	}
	if doc.ClinicName != "Menaharia Medium Clinic" {
		t.Errorf("clinic name = %q", doc.ClinicName)
	}
	if doc.PatientID != v.ID || doc.Patient != "Hana Girma" {
		t.Errorf("patient fields = %q %q", doc.PatientID, doc.Patient)
	}
	if doc.Diagnosis != diagnosis {
		t.Errorf("diagnosis = %q, want %q", doc.Diagnosis, diagnosis)
	}
	if len(doc.Items) != 2 || doc.Items[0].DrugName != "Amoxicillin" {
		t.Errorf("items = %+v", doc.Items)
	}
	if !strings.HasPrefix(doc.Date, "20") {
		t.Errorf("date = %q, want yyyy-mm-dd", doc.Date)
	}
}
