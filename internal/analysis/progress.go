package analysis

import "time"

// Stage is one label of the upload progress list.
type Stage struct {
	Label string
	After time.Duration
}

// ProgressStages returns the labels the upload page reveals while the
// analysis request is in flight. They run on a local timer and carry no
// information about backend progress.
func ProgressStages() []Stage {
	return []Stage{
		{Label: "Dokument wird verarbeitet ✓", After: 0},
		{Label: "BA GZ 04 Kriterien werden geprüft ✓", After: 5 * time.Second},
		{Label: "Finanzplan wird bewertet", After: 10 * time.Second},
		{Label: "Report wird erstellt", After: 15 * time.Second},
	}
}
