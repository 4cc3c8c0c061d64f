package models

import (
	"math"
	"time"
)

// PointsRules is the reward configuration. It is read-only at runtime;
// values come from config at boot and changing them requires a redeploy.
type PointsRules struct {
	// Rent submission rules.
	BasePoints            int // points per 1000 AED of rent
	EarlySubmissionBonus  int // added when submitted EarlySubmissionDays+ before due
	LateSubmissionPenalty int // deducted when submitted after the due date
	EarlySubmissionDays   int
	MinimumPoints         int // awards never go below this

	// Referral rules.
	TenantReferralJoined int
	OwnerReferralJoined  int
	PerPropertyBonus     int
	PerTenantBonus       int
}

// DefaultPointsRules mirrors the shipped rewards configuration.
func DefaultPointsRules() PointsRules {
	return PointsRules{
		BasePoints:            10,
		EarlySubmissionBonus:  5,
		LateSubmissionPenalty: 5,
		EarlySubmissionDays:   3,
		MinimumPoints:         0,
		TenantReferralJoined:  500,
		OwnerReferralJoined:   1000,
		PerPropertyBonus:      500,
		PerTenantBonus:        100,
	}
}

// RentPoints converts a rent amount into base reward points:
// floor(amount/1000 * BasePoints). Non-positive amounts earn nothing.
func (r PointsRules) RentPoints(amount float64) int {
	if amount <= 0 {
		return 0
	}
	return int(math.Floor(amount / 1000 * float64(r.BasePoints)))
}

// RentAward applies the early/late adjustment to the base points. A record
// submitted EarlySubmissionDays or more before the due date earns the bonus;
// one submitted after the due date pays the penalty. The result is clamped at
// MinimumPoints. Zero dates skip the adjustment entirely.
func (r PointsRules) RentAward(amount float64, submitted, due time.Time) int {
	points := r.RentPoints(amount)
	if !submitted.IsZero() && !due.IsZero() {
		if !submitted.After(due.AddDate(0, 0, -r.EarlySubmissionDays)) {
			points += r.EarlySubmissionBonus
		} else if submitted.After(due) {
			points -= r.LateSubmissionPenalty
		}
	}
	if points < r.MinimumPoints {
		points = r.MinimumPoints
	}
	return points
}
