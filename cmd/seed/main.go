// Seed command for populating a demo roster with counseling notes and weekly
// grades.
//
// SAFETY: writes only when --confirm is given. Records are append-only, so
// running it twice duplicates counseling and grade rows; students that already
// exist are skipped.
//
// Usage:
//
//	go run ./cmd/seed --confirm
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"studentdesk/internal/app"
	"studentdesk/internal/config"
	"studentdesk/internal/logging"
	"studentdesk/internal/models"
)

var demoStudents = []models.Student{
	{Name: "김민준", Class: "a1", OriginSchool: "풍생중학교", TargetSchool: "분당", Address: "성남시 분당구 정자동"},
	{Name: "이서연", Class: "A1", OriginSchool: "내정중", TargetSchool: "수내고등학교", Address: "성남시 분당구 수내동"},
	{Name: "박지호", Class: "b2", OriginSchool: "서현중학교", TargetSchool: "서현고", Address: "성남시 분당구 서현동"},
	{Name: "최윤서", Class: "B2", OriginSchool: "이매중", TargetSchool: "낙생", Address: "성남시 분당구 이매동"},
}

var demoCounseling = []models.CounselingEntry{
	{StudentName: "김민준", Date: "2025-09-02", Note: "수업 집중도가 좋아졌고 숙제 제출도 꾸준합니다."},
	{StudentName: "이서연", Date: "2025-09-03", Note: "서술형 답안 작성에 자신감이 부족해 연습을 권했습니다."},
	{StudentName: "박지호", Date: "2025-09-04", Note: "지각이 잦아 학부모님과 통화 예정입니다."},
}

var demoWeekly = []models.WeeklyRecord{
	{StudentName: "김민준", Period: "9월 1주", Homework: 90, WeeklyScore: 82, WeeklyAverage: 71, WeeklyWrong: "7 3 15", Assignment: "쎈 수학 p.10-25"},
	{StudentName: "김민준", Period: "9월 2주", Homework: 100, WeeklyScore: 91, WeeklyAverage: 74, WeeklyWrong: "12", Assignment: "쎈 수학 p.26-40"},
	{StudentName: "이서연", Period: "9월 1주", Homework: 80, WeeklyScore: 68, WeeklyAverage: 71, WeeklyWrong: "2, 5, 9, 11", AchievementScore: 75, AchievementAverage: 70, AchievementWrong: "4 8"},
	{StudentName: "박지호", Period: "9월 1주", Homework: 60, WeeklyScore: 55, WeeklyAverage: 71, WeeklyWrong: "1 2 6 10 14"},
}

func main() {
	var envFile string
	var confirm bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Append a demo roster, counseling notes and weekly grades",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("--confirm is required to write demo data")
			}
			cfg := config.LoadFrom(envFile)
			if _, err := logging.Init(cfg.Debug); err != nil {
				return err
			}
			defer logging.Sync()

			store, closeStore, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := store.Ping(cmd.Context()); err != nil {
				return err
			}
			return seed(cmd.Context(), models.NewRepository(store), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm writing to the configured backend")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("seed failed: %v", err))
		os.Exit(1)
	}
}

func seed(ctx context.Context, repo *models.Repository, out io.Writer) error {
	ok := color.New(color.FgGreen).SprintFunc()
	skip := color.New(color.FgYellow).SprintFunc()

	for _, s := range demoStudents {
		stored, err := repo.RegisterStudent(ctx, s)
		switch {
		case models.IsStudentExists(err):
			fmt.Fprintf(out, "%s student %s already registered\n", skip("SKIP"), s.Name)
			continue
		case err != nil:
			return fmt.Errorf("register %s: %w", s.Name, err)
		}
		fmt.Fprintf(out, "%s student %s (%s, %s → %s)\n", ok("ADD "), stored.Name, stored.Class, stored.OriginSchool, stored.TargetSchool)
	}
	for _, e := range demoCounseling {
		if err := repo.AddCounseling(ctx, e); err != nil {
			return fmt.Errorf("counseling for %s: %w", e.StudentName, err)
		}
		fmt.Fprintf(out, "%s counseling %s %s\n", ok("ADD "), e.StudentName, e.Date)
	}
	for _, w := range demoWeekly {
		if err := repo.AddWeekly(ctx, w); err != nil {
			return fmt.Errorf("weekly record for %s: %w", w.StudentName, err)
		}
		fmt.Fprintf(out, "%s weekly %s %s\n", ok("ADD "), w.StudentName, w.Period)
	}
	color.New(color.Bold).Fprintf(out, "seeded %d students, %d counseling notes, %d weekly records\n",
		len(demoStudents), len(demoCounseling), len(demoWeekly))
	return nil
}
