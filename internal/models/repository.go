package models

import (
	"context"
	"sort"
	"strings"

	"studentdesk/internal/sheets"
	"studentdesk/internal/util"
)

// Repository reads and appends the three record kinds. Student name is the
// only link between them; joins on an unknown name are simply empty.
type Repository struct {
	store *sheets.Store
}

func NewRepository(store *sheets.Store) *Repository {
	return &Repository{store: store}
}

// Store exposes the underlying sheet store.
func (r *Repository) Store() *sheets.Store {
	return r.store
}

// Students returns the whole roster in sheet order.
func (r *Repository) Students(ctx context.Context) []Student {
	table := r.store.Read(ctx, sheets.Students)
	out := make([]Student, 0, table.Len())
	for _, row := range table.Rows {
		s := studentFromRow(row)
		if s.Name == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Roster returns students sorted by name, limited to classFilter when it is
// not empty. The filter is compared in canonical class form.
func (r *Repository) Roster(ctx context.Context, classFilter string) []Student {
	class := util.CanonicalClass(classFilter)
	var out []Student
	for _, s := range r.Students(ctx) {
		if class != "" && util.CanonicalClass(s.Class) != class {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Classes returns the distinct canonical class codes on the roster, sorted.
func (r *Repository) Classes(ctx context.Context) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.Students(ctx) {
		c := util.CanonicalClass(s.Class)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FindStudent looks a student up by exact name.
func (r *Repository) FindStudent(ctx context.Context, name string) (Student, bool) {
	name = strings.TrimSpace(name)
	for _, s := range r.Students(ctx) {
		if s.Name == name {
			return s, true
		}
	}
	return Student{}, false
}

// RegisterStudent normalizes s and appends it to the roster. Names are unique;
// the roster is read strictly so a failed read cannot hide a duplicate.
func (r *Repository) RegisterStudent(ctx context.Context, s Student) (Student, error) {
	s = s.Normalized()
	if s.Name == "" {
		return Student{}, ErrNameRequired
	}

	table, err := r.store.Load(ctx, sheets.Students)
	if err != nil {
		return Student{}, err
	}
	if len(table.Where(sheets.ColName, s.Name)) > 0 {
		return Student{}, &StudentExistsError{Name: s.Name}
	}

	if err := r.store.Append(ctx, sheets.Students, s.Record()); err != nil {
		return Student{}, err
	}
	return s, nil
}

// Counseling returns a student's counseling log, newest date first. Entries
// sharing a date keep the order they were written in, newest first.
func (r *Repository) Counseling(ctx context.Context, name string) []CounselingEntry {
	rows := r.store.Read(ctx, sheets.Counseling).Where(sheets.ColName, strings.TrimSpace(name))
	out := make([]CounselingEntry, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, counselingFromRow(rows[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// AddCounseling appends one counseling note.
func (r *Repository) AddCounseling(ctx context.Context, e CounselingEntry) error {
	e.StudentName = trim(e.StudentName)
	if e.StudentName == "" {
		return ErrNameRequired
	}
	e.Note = trim(e.Note)
	return r.store.Append(ctx, sheets.Counseling, e.Record())
}

// Weekly returns a student's weekly records in the order they were entered.
func (r *Repository) Weekly(ctx context.Context, name string) []WeeklyRecord {
	rows := r.store.Read(ctx, sheets.Weekly).Where(sheets.ColName, strings.TrimSpace(name))
	out := make([]WeeklyRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, weeklyFromRow(row))
	}
	return out
}

// AddWeekly appends one weekly record with its wrong-answer lists sorted.
func (r *Repository) AddWeekly(ctx context.Context, w WeeklyRecord) error {
	w.StudentName = trim(w.StudentName)
	if w.StudentName == "" {
		return ErrNameRequired
	}
	w.Period = trim(w.Period)
	w.WeeklyWrong = util.SortNumberList(w.WeeklyWrong)
	w.AchievementWrong = util.SortNumberList(w.AchievementWrong)
	return r.store.Append(ctx, sheets.Weekly, w.Record())
}
