package models

import (
	"context"
	"math"
)

// ChartPoint is one period on the score-versus-average chart. Percentages are
// relative to the largest value on the chart so bars can be drawn directly.
type ChartPoint struct {
	Period      string
	Score       float64
	Average     float64
	ScorePct    float64
	AveragePct  float64
	Achievement float64
}

type Report struct {
	Student    Student
	Found      bool
	Weekly     []WeeklyRecord
	Counseling []CounselingEntry
	Chart      []ChartPoint

	HomeworkAverage    float64
	WeeklyScoreAverage float64
	Latest             *WeeklyRecord
}

// BuildReport gathers everything the report view shows for one student.
func (r *Repository) BuildReport(ctx context.Context, name string) Report {
	student, found := r.FindStudent(ctx, name)
	weekly := r.Weekly(ctx, name)
	rep := Report{
		Student:    student,
		Found:      found,
		Weekly:     weekly,
		Counseling: r.Counseling(ctx, name),
		Chart:      Chart(weekly),
	}
	if len(weekly) == 0 {
		return rep
	}

	var homework, score float64
	for _, w := range weekly {
		homework += w.Homework
		score += w.WeeklyScore
	}
	n := float64(len(weekly))
	rep.HomeworkAverage = round1(homework / n)
	rep.WeeklyScoreAverage = round1(score / n)
	latest := weekly[len(weekly)-1]
	rep.Latest = &latest
	return rep
}

// Chart converts weekly records into bar chart points.
func Chart(weekly []WeeklyRecord) []ChartPoint {
	var max float64
	for _, w := range weekly {
		max = math.Max(max, math.Max(w.WeeklyScore, w.WeeklyAverage))
	}
	points := make([]ChartPoint, 0, len(weekly))
	for _, w := range weekly {
		p := ChartPoint{
			Period:      w.Period,
			Score:       w.WeeklyScore,
			Average:     w.WeeklyAverage,
			Achievement: w.AchievementScore,
		}
		if max > 0 {
			p.ScorePct = round1(w.WeeklyScore / max * 100)
			p.AveragePct = round1(w.WeeklyAverage / max * 100)
		}
		points = append(points, p)
	}
	return points
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
