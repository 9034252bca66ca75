package engagement

import (
	"math"

	"telepost/internal/database/models"
)

// Per-member rates applied to the audience size.
const (
	impressionRate = 3.5
	reachRate      = 1.0
	likeRate       = 0.15
	commentRate    = 0.05
	shareRate      = 0.02
	saveRate       = 0.01

	// EngagementRate is the sum of the like, comment and share rates as a
	// percentage. Summing the float rates would not give exactly 22.
	EngagementRate = 15.0 + 5.0 + 2.0

	// minMembers replaces unknown or non-positive audience sizes.
	minMembers = 4
)

// Floors forced when an all-zero reading is overridden.
const (
	FloorImpressions = 10
	FloorReach       = 5
	FloorLikes       = 1
)

// Model derives plausible metrics from an audience size. rnd must return
// values in [0, 1); it drives the per-call variation and the click-through rate.
func Model(members int, rnd func() float64) models.Metrics {
	if members <= 0 {
		members = minMembers
	}
	m := float64(members)
	v := 0.8 + 0.4*rnd()

	scaled := func(rate float64) int64 {
		return int64(math.Floor(m * rate * v))
	}

	return models.Metrics{
		Impressions:      scaled(impressionRate),
		Reach:            scaled(reachRate),
		Likes:            scaled(likeRate),
		Comments:         scaled(commentRate),
		Shares:           scaled(shareRate),
		Saves:            scaled(saveRate),
		Engagement:       EngagementRate,
		ClickThroughRate: math.Round(rnd()*2*100) / 100,
	}
}

// ModelWithFloors runs Model and raises impressions, reach and likes to
// their floors.
func ModelWithFloors(members int, rnd func() float64) models.Metrics {
	out := Model(members, rnd)
	out.Impressions = max(out.Impressions, FloorImpressions)
	out.Reach = max(out.Reach, FloorReach)
	out.Likes = max(out.Likes, FloorLikes)
	return out
}
