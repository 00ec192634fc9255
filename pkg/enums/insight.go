package enums

// InsightType identifies the story an insight carries.
type InsightType string

const (
	InsightTypePerformanceComparison InsightType = "performance_comparison"
	InsightTypePricingAnalysis       InsightType = "pricing_analysis"
)

// String implements fmt.Stringer.
func (t InsightType) String() string {
	return string(t)
}

// InsightImpact grades how actionable an insight is.
type InsightImpact string

const (
	InsightImpactLow    InsightImpact = "low"
	InsightImpactMedium InsightImpact = "medium"
	InsightImpactHigh   InsightImpact = "high"
)

// String implements fmt.Stringer.
func (i InsightImpact) String() string {
	return string(i)
}
