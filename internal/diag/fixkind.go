package diag

// FixKind classifies a fix for listings.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactorRewrite
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactorRewrite:
		return "rewrite"
	}
	return "unknown"
}

// FixApplicability is the confidence that applying a fix keeps the program
// meaning. Only AlwaysSafe fixes are applied in bulk.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}
