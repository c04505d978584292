package alerts

import (
	"strconv"

	"jaldrishti/internal/models"
)

// Unit is the concentration unit of every rule limit.
const Unit = "mg/L"

// CriticalFactor is the multiple of a limit above which a violation is critical.
const CriticalFactor = 1.2

// Rule defines a fixed per-substance safety ceiling.
type Rule struct {
	Substance models.Substance
	Limit     float64
}

// Exceeded reports whether value is over the limit.
func (r Rule) Exceeded(value float64) bool {
	return value > r.Limit
}

// Severity grades a violating value. Callers check Exceeded first.
func (r Rule) Severity(value float64) models.AlertSeverity {
	if value > r.Limit*CriticalFactor {
		return models.SeverityCritical
	}
	return models.SeverityWarning
}

// Priority maps a severity to its queue priority. Lower is more urgent.
func Priority(s models.AlertSeverity) int {
	switch s {
	case models.SeverityCritical:
		return 1
	case models.SeverityWarning:
		return 2
	default:
		return 3
	}
}

// limits is the process-wide threshold table. Order is evaluation order.
var limits = []Rule{
	{Substance: models.SubstanceLead, Limit: 0.01},
	{Substance: models.SubstanceMercury, Limit: 0.006},
	{Substance: models.SubstanceArsenic, Limit: 0.01},
	{Substance: models.SubstanceCadmium, Limit: 0.003},
	{Substance: models.SubstanceChromium, Limit: 0.05},
	{Substance: models.SubstanceNickel, Limit: 0.02},
}

// Limits returns a copy of the threshold table.
func Limits() []Rule {
	return append([]Rule(nil), limits...)
}

// Lookup returns the rule for substance s.
func Lookup(s models.Substance) (Rule, bool) {
	for _, r := range limits {
		if r.Substance == s {
			return r, true
		}
	}
	return Rule{}, false
}

// Classify derives a reading status from the same comparison the evaluator uses.
func Classify(m models.Measurements) models.ReadingStatus {
	status := models.ReadingSafe
	for _, rule := range limits {
		v, _ := m.Value(rule.Substance)
		if !rule.Exceeded(v) {
			continue
		}
		if rule.Severity(v) == models.SeverityCritical {
			return models.ReadingCritical
		}
		status = models.ReadingWarning
	}
	return status
}

func formatConcentration(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + Unit
}
