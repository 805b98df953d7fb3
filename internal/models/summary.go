package models

import (
	"math"
	"sort"
)

// Summary holds team-level aggregates over the scored developers.
type Summary struct {
	AverageGPA      float64        `json:"averageGPA"`
	AverageImpact   int            `json:"averageImpact"`
	ArchetypeCounts map[string]int `json:"archetypeCounts"`
	DeveloperCount  int            `json:"developerCount"`
	CommitCount     int            `json:"commitCount"`
}

// Summarize computes team averages. Returns nil for an empty slice.
func Summarize(devs []DeveloperAssessment) *Summary {
	if len(devs) == 0 {
		return nil
	}

	s := &Summary{
		ArchetypeCounts: make(map[string]int),
		DeveloperCount:  len(devs),
	}
	var gpaSum float64
	var impactSum int
	for _, d := range devs {
		gpaSum += d.ImpactGPA
		impactSum += d.StrategicImpact
		s.CommitCount += d.CommitCount
		s.ArchetypeCounts[d.Archetype]++
	}
	n := float64(len(devs))
	s.AverageGPA = math.Round(gpaSum/n*100) / 100
	s.AverageImpact = int(math.Round(float64(impactSum) / n))
	return s
}

// Sort orders accepted by SortDevelopers.
const (
	SortByGPA     = "gpa"
	SortByRisk    = "risk"
	SortByCommits = "commits"
)

// SortDevelopers sorts devs in place: "gpa" highest first, "risk" lowest GPA
// first, "commits" most commits first. Unknown orders leave devs untouched.
func SortDevelopers(devs []DeveloperAssessment, by string) {
	switch by {
	case SortByGPA, "":
		sort.SliceStable(devs, func(i, j int) bool { return devs[i].ImpactGPA > devs[j].ImpactGPA })
	case SortByRisk:
		sort.SliceStable(devs, func(i, j int) bool { return devs[i].ImpactGPA < devs[j].ImpactGPA })
	case SortByCommits:
		sort.SliceStable(devs, func(i, j int) bool { return devs[i].CommitCount > devs[j].CommitCount })
	}
}
