package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRentPoints(t *testing.T) {
	rules := DefaultPointsRules()

	assert.Equal(t, 0, rules.RentPoints(0))
	assert.Equal(t, 0, rules.RentPoints(-1500))
	assert.Equal(t, 0, rules.RentPoints(99))
	assert.Equal(t, 10, rules.RentPoints(1000))
	assert.Equal(t, 15, rules.RentPoints(1500))
	// partial thousands round down
	assert.Equal(t, 19, rules.RentPoints(1999))
	assert.Equal(t, 50, rules.RentPoints(5000))
}

func TestRentPointsMonotonic(t *testing.T) {
	rules := DefaultPointsRules()
	prev := 0
	for amount := 500.0; amount <= 20000; amount += 500 {
		points := rules.RentPoints(amount)
		assert.GreaterOrEqual(t, points, prev, "points must not decrease as amount grows (amount=%v)", amount)
		prev = points
	}
}

func TestRentAwardEarlyBonus(t *testing.T) {
	rules := DefaultPointsRules()
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// 5 days early: base 50 + bonus 5
	submitted := due.AddDate(0, 0, -5)
	assert.Equal(t, 55, rules.RentAward(5000, submitted, due))

	// exactly 3 days early still counts
	submitted = due.AddDate(0, 0, -3)
	assert.Equal(t, 55, rules.RentAward(5000, submitted, due))

	// 2 days early: no bonus, no penalty
	submitted = due.AddDate(0, 0, -2)
	assert.Equal(t, 50, rules.RentAward(5000, submitted, due))
}

func TestRentAwardLatePenalty(t *testing.T) {
	rules := DefaultPointsRules()
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// on the due date: no penalty
	assert.Equal(t, 50, rules.RentAward(5000, due, due))

	// a day after is late
	assert.Equal(t, 45, rules.RentAward(5000, due.AddDate(0, 0, 1), due))
}

func TestRentAwardNeverNegative(t *testing.T) {
	rules := DefaultPointsRules()
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// tiny rent earns 0 base; a late penalty must not push it below zero
	assert.Equal(t, 0, rules.RentAward(300, due.AddDate(0, 0, 10), due))
}

func TestRentAwardZeroDatesSkipAdjustment(t *testing.T) {
	rules := DefaultPointsRules()
	assert.Equal(t, 50, rules.RentAward(5000, time.Time{}, time.Time{}))
}

func TestDeriveReferralCode(t *testing.T) {
	joined := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "SARAHJOHNSON2025", DeriveReferralCode("Sarah Johnson", joined))
	assert.Equal(t, "ALI2025", DeriveReferralCode("ali", joined))
}
