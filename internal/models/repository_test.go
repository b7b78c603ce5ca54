package models

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdesk/internal/sheets"
)

func newTestRepository() (*Repository, *sheets.MemoryBackend) {
	mem := sheets.NewMemoryBackend()
	store := sheets.NewStore(sheets.StaticProvider(mem), time.Minute)
	return NewRepository(store), mem
}

func TestRegisterStudentNormalizes(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()

	got, err := repo.RegisterStudent(ctx, Student{
		Name:         " 김민준 ",
		Class:        " a1",
		OriginSchool: "풍생중학교",
		TargetSchool: "분당",
		Address:      "성남시 분당구 ",
	})
	require.NoError(t, err)

	want := Student{Name: "김민준", Class: "A1", OriginSchool: "풍생중", TargetSchool: "분당고", Address: "성남시 분당구"}
	assert.Empty(t, cmp.Diff(want, got))

	stored, ok := repo.FindStudent(ctx, "김민준")
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(want, stored))
}

func TestRegisterStudentRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()

	_, err := repo.RegisterStudent(ctx, Student{Name: "이서연", Class: "B1"})
	require.NoError(t, err)

	_, err = repo.RegisterStudent(ctx, Student{Name: "이서연", Class: "B2"})
	require.Error(t, err)
	assert.True(t, IsStudentExists(err))
	assert.Len(t, repo.Students(ctx), 1)
}

func TestRegisterStudentRequiresName(t *testing.T) {
	repo, _ := newTestRepository()
	_, err := repo.RegisterStudent(context.Background(), Student{Name: "  ", Class: "A1"})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestRosterFiltersByClass(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()
	for _, s := range []Student{
		{Name: "최유나", Class: "a1"},
		{Name: "김민준", Class: "A1"},
		{Name: "박지호", Class: "B2"},
	} {
		_, err := repo.RegisterStudent(ctx, s)
		require.NoError(t, err)
	}

	all := repo.Roster(ctx, "")
	require.Len(t, all, 3)
	assert.Equal(t, "김민준", all[0].Name, "roster is sorted by name")

	a1 := repo.Roster(ctx, " a1 ")
	require.Len(t, a1, 2)
	assert.Equal(t, []string{"A1", "B2"}, repo.Classes(ctx))
	assert.Empty(t, repo.Roster(ctx, "Z9"))
}

func TestCounselingNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()

	require.NoError(t, repo.AddCounseling(ctx, CounselingEntry{StudentName: "김민준", Date: "2025-09-01", Note: "첫 상담"}))
	require.NoError(t, repo.AddCounseling(ctx, CounselingEntry{StudentName: "이서연", Date: "2025-09-02", Note: "다른 학생"}))
	require.NoError(t, repo.AddCounseling(ctx, CounselingEntry{StudentName: "김민준", Date: "2025-09-08", Note: "두번째 상담"}))
	require.NoError(t, repo.AddCounseling(ctx, CounselingEntry{StudentName: "김민준", Date: "2025-09-08", Note: "같은 날 추가"}))

	log := repo.Counseling(ctx, "김민준")
	require.Len(t, log, 3)
	assert.Equal(t, "같은 날 추가", log[0].Note)
	assert.Equal(t, "두번째 상담", log[1].Note)
	assert.Equal(t, "첫 상담", log[2].Note)

	assert.Empty(t, repo.Counseling(ctx, "없는학생"), "unknown names join to nothing")
}

func TestAddWeeklySortsWrongAnswers(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()

	require.NoError(t, repo.AddWeekly(ctx, WeeklyRecord{
		StudentName:      "김민준",
		Period:           "9월 1주",
		Homework:         95,
		WeeklyScore:      82,
		WeeklyAverage:    74.5,
		WeeklyWrong:      "13 2 7",
		AchievementWrong: "20, 4",
	}))

	weekly := repo.Weekly(ctx, "김민준")
	require.Len(t, weekly, 1)
	assert.Equal(t, "2, 7, 13", weekly[0].WeeklyWrong)
	assert.Equal(t, "4, 20", weekly[0].AchievementWrong)
	assert.Equal(t, 74.5, weekly[0].WeeklyAverage)
	assert.Equal(t, 95.0, weekly[0].Homework)
}

func TestAddRequiresStudentName(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()
	assert.ErrorIs(t, repo.AddCounseling(ctx, CounselingEntry{Note: "x"}), ErrNameRequired)
	assert.ErrorIs(t, repo.AddWeekly(ctx, WeeklyRecord{Period: "9월"}), ErrNameRequired)
}

func TestBuildReport(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()
	_, err := repo.RegisterStudent(ctx, Student{Name: "김민준", Class: "A1"})
	require.NoError(t, err)
	require.NoError(t, repo.AddWeekly(ctx, WeeklyRecord{StudentName: "김민준", Period: "1주", Homework: 100, WeeklyScore: 80, WeeklyAverage: 70}))
	require.NoError(t, repo.AddWeekly(ctx, WeeklyRecord{StudentName: "김민준", Period: "2주", Homework: 85, WeeklyScore: 100, WeeklyAverage: 75}))
	require.NoError(t, repo.AddCounseling(ctx, CounselingEntry{StudentName: "김민준", Date: "2025-09-03", Note: "상담"}))

	rep := repo.BuildReport(ctx, "김민준")
	assert.True(t, rep.Found)
	assert.Equal(t, 92.5, rep.HomeworkAverage)
	assert.Equal(t, 90.0, rep.WeeklyScoreAverage)
	require.NotNil(t, rep.Latest)
	assert.Equal(t, "2주", rep.Latest.Period)
	require.Len(t, rep.Chart, 2)
	assert.Equal(t, 80.0, rep.Chart[0].ScorePct)
	assert.Equal(t, 100.0, rep.Chart[1].ScorePct)
	assert.Equal(t, 75.0, rep.Chart[1].AveragePct)
	assert.Len(t, rep.Counseling, 1)
}

func TestBuildReportUnknownStudent(t *testing.T) {
	repo, _ := newTestRepository()
	rep := repo.BuildReport(context.Background(), "없는학생")
	assert.False(t, rep.Found)
	assert.Empty(t, rep.Weekly)
	assert.Nil(t, rep.Latest)
}

func TestChartWithoutScores(t *testing.T) {
	points := Chart([]WeeklyRecord{{Period: "1주"}})
	require.Len(t, points, 1)
	assert.Zero(t, points[0].ScorePct)
}
