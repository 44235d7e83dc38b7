// internal/matching/score.go
package matching

import (
	"strings"

	"dealflow-workers/internal/models"
)

// Score weights. Mutually exclusive pitch clauses cap the total at 100,
// so no explicit clamp is needed.
const (
	stagePoints        = 30
	sectorPoints       = 25
	checkSizePoints    = 15
	geographyPoints    = 10
	verifiedPoints     = 6
	activePoints       = 4
	pitchStrongPoints  = 10
	pitchPartialPoints = 5

	pitchStrongFloor  = 80
	pitchPartialFloor = 60
)

// Score computes the compatibility score for one founder/investor pair.
// It is deterministic and additive: each factor either fires or is
// silently skipped when its inputs are missing. Reasons come back in
// evaluation order; factors without display text add points only.
//
// Every call site (feed assembly, founder-side batch generation, the
// standalone scoring worker) must go through this function so the two
// sides of the marketplace can never drift apart.
func Score(f *models.FounderProfile, inv *models.InvestorProfile, pitchScore int) (int, []string) {
	score := 0
	var reasons []string

	if stage := norm(f.Stage); stage != "" {
		for _, s := range inv.Stages() {
			if s == stage {
				score += stagePoints
				reasons = append(reasons, "Stage alignment")
				break
			}
		}
	}

	if f.Sector != "" && inv.SectorFocus != "" {
		if strings.Contains(norm(inv.SectorFocus), norm(f.Sector)) {
			score += sectorPoints
			reasons = append(reasons, "Sector alignment")
		}
	}

	if inv.TypicalCheckMin.Valid && inv.TypicalCheckMax.Valid && f.MinCheckSize.Valid {
		check := f.MinCheckSize.Decimal
		if inv.TypicalCheckMin.Decimal.LessThanOrEqual(check) &&
			check.LessThanOrEqual(inv.TypicalCheckMax.Decimal) {
			score += checkSizePoints
			reasons = append(reasons, "Check size compatibility")
		}
	}

	if region := f.Region(); region != "" && inv.GeographyFocus != "" {
		if strings.Contains(norm(inv.GeographyFocus), norm(region)) {
			score += geographyPoints
			reasons = append(reasons, "Geographic focus")
		}
	}

	if inv.VerificationStatus == models.VerificationVerified {
		score += verifiedPoints
		reasons = append(reasons, "Verified investor")
	}

	if inv.ActivityStatus == models.ActivityActive {
		score += activePoints
	}

	switch {
	case pitchScore >= pitchStrongFloor:
		score += pitchStrongPoints
		reasons = append(reasons, "Strong pitch readiness")
	case pitchScore >= pitchPartialFloor:
		score += pitchPartialPoints
	}

	return score, reasons
}

// ReasonString joins reasons for storage and display, preserving
// evaluation order.
func ReasonString(reasons []string) string {
	return strings.Join(reasons, ", ")
}

// norm is the normalization policy for every substring factor: trim and
// lowercase, applied to both sides.
func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
