package models

import (
	"studentdesk/internal/sheets"
	"studentdesk/internal/util"
)

type Student struct {
	Name         string
	Class        string
	OriginSchool string
	TargetSchool string
	Address      string
}

type CounselingEntry struct {
	StudentName string
	Date        string
	Note        string
}

type WeeklyRecord struct {
	StudentName string
	Period      string
	Homework    float64 // completion %

	WeeklyScore   float64
	WeeklyAverage float64
	WeeklyWrong   string
	WeeklyNote    string

	AchievementScore   float64
	AchievementAverage float64
	AchievementWrong   string
	AchievementNote    string

	Assignment string
	Analysis   string
}

func (s Student) Record() sheets.Record {
	return sheets.Record{
		sheets.ColName:         s.Name,
		sheets.ColClass:        s.Class,
		sheets.ColOriginSchool: s.OriginSchool,
		sheets.ColTargetSchool: s.TargetSchool,
		sheets.ColAddress:      s.Address,
	}
}

func studentFromRow(r sheets.Row) Student {
	return Student{
		Name:         r.String(sheets.ColName),
		Class:        r.String(sheets.ColClass),
		OriginSchool: r.String(sheets.ColOriginSchool),
		TargetSchool: r.String(sheets.ColTargetSchool),
		Address:      r.String(sheets.ColAddress),
	}
}

// Normalized returns s with the class code and school names in canonical form.
func (s Student) Normalized() Student {
	return Student{
		Name:         trim(s.Name),
		Class:        util.CanonicalClass(s.Class),
		OriginSchool: util.CanonicalSchool(s.OriginSchool, util.Middle),
		TargetSchool: util.CanonicalSchool(s.TargetSchool, util.High),
		Address:      trim(s.Address),
	}
}

func (e CounselingEntry) Record() sheets.Record {
	return sheets.Record{
		sheets.ColName: e.StudentName,
		sheets.ColDate: e.Date,
		sheets.ColNote: e.Note,
	}
}

func counselingFromRow(r sheets.Row) CounselingEntry {
	return CounselingEntry{
		StudentName: r.String(sheets.ColName),
		Date:        r.String(sheets.ColDate),
		Note:        r.String(sheets.ColNote),
	}
}

func (w WeeklyRecord) Record() sheets.Record {
	return sheets.Record{
		sheets.ColName:          w.StudentName,
		sheets.ColPeriod:        w.Period,
		sheets.ColHomework:      util.FormatNumber(w.Homework),
		sheets.ColWeeklyScore:   util.FormatNumber(w.WeeklyScore),
		sheets.ColWeeklyAverage: util.FormatNumber(w.WeeklyAverage),
		sheets.ColWeeklyWrong:   w.WeeklyWrong,
		sheets.ColWeeklyNote:    w.WeeklyNote,
		sheets.ColAchScore:      util.FormatNumber(w.AchievementScore),
		sheets.ColAchAverage:    util.FormatNumber(w.AchievementAverage),
		sheets.ColAchWrong:      w.AchievementWrong,
		sheets.ColAchNote:       w.AchievementNote,
		sheets.ColAssignment:    w.Assignment,
		sheets.ColAnalysis:      w.Analysis,
	}
}

func weeklyFromRow(r sheets.Row) WeeklyRecord {
	return WeeklyRecord{
		StudentName:        r.String(sheets.ColName),
		Period:             r.String(sheets.ColPeriod),
		Homework:           r.Number(sheets.ColHomework),
		WeeklyScore:        r.Number(sheets.ColWeeklyScore),
		WeeklyAverage:      r.Number(sheets.ColWeeklyAverage),
		WeeklyWrong:        r.String(sheets.ColWeeklyWrong),
		WeeklyNote:         r.String(sheets.ColWeeklyNote),
		AchievementScore:   r.Number(sheets.ColAchScore),
		AchievementAverage: r.Number(sheets.ColAchAverage),
		AchievementWrong:   r.String(sheets.ColAchWrong),
		AchievementNote:    r.String(sheets.ColAchNote),
		Assignment:         r.String(sheets.ColAssignment),
		Analysis:           r.String(sheets.ColAnalysis),
	}
}
