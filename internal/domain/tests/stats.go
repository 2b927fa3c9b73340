package tests

import "time"

// TypeStats is one aggregation group: all of a user's records that share
// a test type.
type TypeStats struct {
	TestType     TestType  `json:"testType"`
	Count        int64     `json:"count"`
	ThreatsFound int64     `json:"threatsFound"`
	AvgRiskScore float64   `json:"avgRiskScore"`
	LastTest     time.Time `json:"lastTest"`
}

// StatsSummary rolls the per-type groups up. AvgRiskScore is the mean of
// the per-type averages; WeightedAvgRiskScore weights by record count so
// types with few records do not dominate. Callers pick the figure they want.
type StatsSummary struct {
	TotalThreats         int64   `json:"totalThreats"`
	AvgRiskScore         float64 `json:"avgRiskScore"`
	WeightedAvgRiskScore float64 `json:"weightedAvgRiskScore"`
}

// StatsReport is the full stats payload for one user.
type StatsReport struct {
	TotalTests int64        `json:"totalTests"`
	ByType     []TypeStats  `json:"byType"`
	Summary    StatsSummary `json:"summary"`
}

// Summarize computes the roll-up from per-type groups.
func Summarize(total int64, byType []TypeStats) StatsReport {
	var threats int64
	var sumAvg float64
	var weighted float64
	var n int64
	for _, g := range byType {
		threats += g.ThreatsFound
		sumAvg += g.AvgRiskScore
		weighted += g.AvgRiskScore * float64(g.Count)
		n += g.Count
	}
	sum := StatsSummary{TotalThreats: threats}
	if len(byType) > 0 {
		sum.AvgRiskScore = sumAvg / float64(len(byType))
	}
	if n > 0 {
		sum.WeightedAvgRiskScore = weighted / float64(n)
	}
	return StatsReport{TotalTests: total, ByType: byType, Summary: sum}
}
