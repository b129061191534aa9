package analytics

// maxRecommendations caps the final list length.
const maxRecommendations = 6

// seedRecommendations is keyed strictly by risk level; the copy is
// configurable, the shape (4 per level) is not.
var seedRecommendations = map[string][]string{
	RiskLow: {
		"Keep up the current study routine",
		"Consider joining a peer mentoring program as a mentor",
		"Explore advanced or honors coursework",
		"Maintain regular contact with your academic advisor",
	},
	RiskMedium: {
		"Schedule a meeting with your academic advisor",
		"Set up a weekly study plan with clear goals",
		"Attend office hours for courses with low scores",
		"Review time management and study habits",
	},
	RiskHigh: {
		"Meet with your academic advisor as soon as possible",
		"Enroll in the student success program",
		"Reduce course load if possible this semester",
		"Reach out to campus counseling and support services",
	},
}

// factorRecommendations adds one entry per negative factor.
var factorRecommendations = map[string]string{
	FactorAcademic:   "Seek academic support such as tutoring or study groups",
	FactorAttendance: "Improve class attendance immediately",
	FactorEngagement: "Increase participation in class activities and discussions",
}

// Recommendations returns an ordered list of at most maxRecommendations
// actionable items: the risk level's seed list first, then one extra per
// negative factor. The extractor guarantees at most one factor per name,
// so no dedup beyond natural order is needed.
func Recommendations(riskLevel string, factors []Factor) []string {
	recs := make([]string, 0, maxRecommendations)
	recs = append(recs, seedRecommendations[riskLevel]...)
	for _, f := range factors {
		if f.Impact != ImpactNegative {
			continue
		}
		if rec, ok := factorRecommendations[f.Name]; ok {
			recs = append(recs, rec)
		}
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
