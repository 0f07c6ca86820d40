package visit

import (
	"fmt"
	"strings"
	"time"
)

// Stage is the station in the clinic workflow a visit currently occupies.
type Stage string

const (
	StageWaitingRoom    Stage = "Waiting Room"
	StageQuestioning    Stage = "Questioning"
	StageLaboratoryTest Stage = "Laboratory Test"
	StageResultsDoctor  Stage = "Results by Doctor"
	StageDischarged     Stage = "Discharged"
)

// ActiveStages lists the stages of the active partition in workflow order.
// Discharged is deliberately absent.
var ActiveStages = []Stage{
	StageWaitingRoom,
	StageQuestioning,
	StageLaboratoryTest,
	StageResultsDoctor,
}

var validStages = map[Stage]bool{
	StageWaitingRoom:    true,
	StageQuestioning:    true,
	StageLaboratoryTest: true,
	StageResultsDoctor:  true,
	StageDischarged:     true,
}

// Valid reports whether s is one of the five workflow stages.
func (s Stage) Valid() bool { return validStages[s] }

// Priority is the triage priority assigned at check-in.
type Priority string

const (
	PriorityStandard Priority = "Standard"
	PriorityUrgent   Priority = "Urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityStandard || p == PriorityUrgent
}

// Visit is one clinic encounter, tracked from admission to discharge.
type Visit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Stage       Stage     `json:"stage"`
	CheckInTime time.Time `json:"check_in_time"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Sex         string    `json:"sex,omitempty"`
	Priority    Priority  `json:"priority"`

	RequestedLabTests []string `json:"requested_lab_tests,omitempty"`
	LabResults        string   `json:"lab_results,omitempty"`
	Diagnosis         string   `json:"diagnosis,omitempty"`
	Prescription      string   `json:"prescription,omitempty"`
}

// Intake carries the demographic fields supplied at check-in.
type Intake struct {
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Address  string   `json:"address,omitempty"`
	Age      *int     `json:"age,omitempty"`
	Sex      string   `json:"sex,omitempty"`
	Priority Priority `json:"priority"`
}

// ClinicalUpdate carries the optional clinical fields a stage transition
// may merge into a visit. Fields are merged one by one; a nil field leaves
// the current value untouched.
type ClinicalUpdate struct {
	RequestedLabTests []string `json:"requested_lab_tests,omitempty"`
	LabResults        *string  `json:"lab_results,omitempty"`
	Diagnosis         *string  `json:"diagnosis,omitempty"`
	Prescription      *string  `json:"prescription,omitempty"`
}

// apply merges the update into v field by field.
func (u *ClinicalUpdate) apply(v *Visit) {
	if u == nil {
		return
	}
	if u.RequestedLabTests != nil {
		v.RequestedLabTests = u.RequestedLabTests
	}
	if u.LabResults != nil {
		v.LabResults = *u.LabResults
	}
	if u.Diagnosis != nil {
		v.Diagnosis = *u.Diagnosis
	}
	if u.Prescription != nil {
		v.Prescription = *u.Prescription
	}
}

// AvailableLabTests is the catalog of orderable laboratory tests.
var AvailableLabTests = []string{
	"Complete Blood Count (CBC)",
	"Urinalysis",
	"Blood Glucose",
	"Lipid Panel",
	"Liver Function Test",
}

// PrescriptionItem is one drug order line of a prescription document.
type PrescriptionItem struct {
	DrugName  string `json:"drug_name"`
	Dose      string `json:"dose"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// ParsePrescription splits line-structured prescription text into items.
// Each non-empty line is a comma-separated "drug, dose, frequency,
// duration" record; missing trailing fields are left empty.
func ParsePrescription(text string) []PrescriptionItem {
	var items []PrescriptionItem
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ",")
		item := PrescriptionItem{}
		if len(parts) > 0 {
			item.DrugName = strings.TrimSpace(parts[0])
		}
		if len(parts) > 1 {
			item.Dose = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			item.Frequency = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 {
			item.Duration = strings.TrimSpace(parts[3])
		}
		items = append(items, item)
	}
	return items
}

// FormatID renders the sequential patient identifier, e.g. P-001.
func FormatID(n int) string {
	return fmt.Sprintf("P-%03d", n)
}
