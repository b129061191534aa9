package analytics

import "testing"

func TestRecommendations_seedPerLevel(t *testing.T) {
	for _, level := range []string{RiskLow, RiskMedium, RiskHigh} {
		t.Run(level, func(t *testing.T) {
			recs := Recommendations(level, nil)
			if len(recs) != 4 {
				t.Errorf("len(recs) = %d; want 4 seed items", len(recs))
			}
		})
	}
}

func TestRecommendations_negativeFactorsAppend(t *testing.T) {
	factors := []Factor{
		{Name: FactorAcademic, Impact: ImpactNegative},
		{Name: FactorAttendance, Impact: ImpactPositive},
		{Name: FactorEngagement, Impact: ImpactNegative},
	}
	recs := Recommendations(RiskMedium, factors)
	if len(recs) != 6 {
		t.Fatalf("len(recs) = %d; want 4 seed + 2 factor items", len(recs))
	}
	if recs[4] != factorRecommendations[FactorAcademic] {
		t.Errorf("recs[4] = %q; want academic factor recommendation", recs[4])
	}
	if recs[5] != factorRecommendations[FactorEngagement] {
		t.Errorf("recs[5] = %q; want engagement factor recommendation", recs[5])
	}
}

func TestRecommendations_capped(t *testing.T) {
	factors := []Factor{
		{Name: FactorAcademic, Impact: ImpactNegative},
		{Name: FactorAttendance, Impact: ImpactNegative},
		{Name: FactorEngagement, Impact: ImpactNegative},
	}
	recs := Recommendations(RiskHigh, factors)
	if len(recs) != maxRecommendations {
		t.Errorf("len(recs) = %d; want capped at %d", len(recs), maxRecommendations)
	}
}

func TestRecommendations_unknownFactorIgnored(t *testing.T) {
	factors := []Factor{{Name: "Homework Volume", Impact: ImpactNegative}}
	recs := Recommendations(RiskLow, factors)
	if len(recs) != 4 {
		t.Errorf("len(recs) = %d; want 4 (unknown factor contributes nothing)", len(recs))
	}
}
