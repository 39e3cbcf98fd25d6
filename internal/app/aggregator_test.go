package app_test

import (
	"errors"
	"testing"

	"challenge-quiz-service/internal/app"
	"challenge-quiz-service/internal/domain"
)

func TestBuildRecordReportBreaksDownByChallengeCount(t *testing.T) {
	records := []domain.AnswerRecord{
		{IsCorrect: true, ChallengeCount: 1, GroupName: "G2", Degree: 1},
		{IsCorrect: true, ChallengeCount: 1, GroupName: "G2", Degree: 1},
		{IsCorrect: false, ChallengeCount: 2, GroupName: "G2", Degree: 1},
		{IsCorrect: true, ChallengeCount: 2, GroupName: "G2", Degree: 1},
	}

	report, err := app.BuildRecordReport(records)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.TotalCount != 4 || report.CorrectAnswerCount != 3 || report.CorrectAnswerRate != "75.0" {
		t.Fatalf("unexpected summary %+v", report)
	}
	if len(report.Detail) != 2 {
		t.Fatalf("expected 2 detail entries, got %d", len(report.Detail))
	}
	first, second := report.Detail[0], report.Detail[1]
	if first.ChallengeCount != 1 || first.TotalCount != 2 || first.CorrectAnswerCount != 2 || first.CorrectAnswerRate != "100.0" {
		t.Fatalf("unexpected detail for count 1: %+v", first)
	}
	if second.ChallengeCount != 2 || second.TotalCount != 2 || second.CorrectAnswerCount != 1 || second.CorrectAnswerRate != "50.0" {
		t.Fatalf("unexpected detail for count 2: %+v", second)
	}
	if first.GroupName != "G2" || second.GroupName != "G2" {
		t.Fatalf("expected group G2 on every detail, got %q/%q", first.GroupName, second.GroupName)
	}
}

func TestBuildRecordReportUsesFirstGroupSeenPerCount(t *testing.T) {
	records := []domain.AnswerRecord{
		{IsCorrect: true, ChallengeCount: 1, GroupName: "G2", Degree: 1},
		{IsCorrect: true, ChallengeCount: 1, GroupName: "G2", Degree: 1},
		{IsCorrect: false, ChallengeCount: 2, GroupName: "G2", Degree: 1},
		{IsCorrect: true, ChallengeCount: 2, GroupName: "G2", Degree: 1},
		{IsCorrect: true, ChallengeCount: 3, GroupName: "G3", Degree: 2},
		{IsCorrect: true, ChallengeCount: 3, GroupName: "G1", Degree: 3},
	}

	report, err := app.BuildRecordReport(records)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.CorrectAnswerRate != "83.3" {
		t.Fatalf("expected 83.3, got %s", report.CorrectAnswerRate)
	}
	last := report.Detail[2]
	if last.ChallengeCount != 3 || last.GroupName != "G3" || last.Degree != 2 {
		t.Fatalf("expected first-seen group G3 degree 2 at count 3, got %+v", last)
	}
}

func TestBuildRecordReportInvariants(t *testing.T) {
	records := []domain.AnswerRecord{
		{IsCorrect: false, ChallengeCount: 4},
		{IsCorrect: true, ChallengeCount: 1},
		{IsCorrect: true, ChallengeCount: 4},
		{IsCorrect: false, ChallengeCount: 1},
		{IsCorrect: true, ChallengeCount: 1},
		{IsCorrect: true, ChallengeCount: 7},
	}

	report, err := app.BuildRecordReport(records)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	total, correct := 0, 0
	prev := 0
	for _, d := range report.Detail {
		if d.ChallengeCount <= prev {
			t.Fatalf("detail not strictly increasing: %+v", report.Detail)
		}
		prev = d.ChallengeCount
		total += d.TotalCount
		correct += d.CorrectAnswerCount
	}
	if total != report.TotalCount || correct != report.CorrectAnswerCount {
		t.Fatalf("detail sums %d/%d differ from summary %d/%d", total, correct, report.TotalCount, report.CorrectAnswerCount)
	}
	// gaps are skipped, not zero-filled
	if len(report.Detail) != 3 {
		t.Fatalf("expected counts 1,4,7 only, got %+v", report.Detail)
	}
	if report.Detail[0].CorrectAnswerRate != "66.7" {
		t.Fatalf("expected 2/3 rendered as 66.7, got %s", report.Detail[0].CorrectAnswerRate)
	}
}

func TestBuildRecordReportRejectsEmptyInput(t *testing.T) {
	if _, err := app.BuildRecordReport(nil); !errors.Is(err, domain.ErrDivisionUndefined) {
		t.Fatalf("expected division undefined, got %v", err)
	}
}

func TestBuildRankingSortsByRateDescending(t *testing.T) {
	users := []domain.UserRef{
		{ID: "1", Name: "user1"},
		{ID: "2", Name: "user2"},
		{ID: "3", Name: "user3"},
		{ID: "4", Name: "user4"},
		{ID: "5", Name: "user5"},
	}
	var records []domain.AnswerRecord
	for id, correct := range map[string]int{"1": 3, "2": 4, "3": 2, "4": 1, "5": 5} {
		for i := 0; i < 5; i++ {
			records = append(records, domain.AnswerRecord{UserID: id, IsCorrect: i < correct})
		}
	}

	ranking := app.BuildRanking(users, records, domain.RankByRate)

	want := []struct {
		name string
		rate string
	}{
		{"user5", "100.0"}, {"user2", "80.0"}, {"user1", "60.0"}, {"user3", "40.0"}, {"user4", "20.0"},
	}
	if len(ranking) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(ranking))
	}
	for i, w := range want {
		if ranking[i].UserName != w.name || ranking[i].CorrectAnswerRate != w.rate {
			t.Fatalf("position %d: expected %s(%s), got %+v", i, w.name, w.rate, ranking[i])
		}
	}
	if ranking[2].TotalCount != 5 || ranking[2].CorrectAnswerCount != 3 {
		t.Fatalf("unexpected counts for user1: %+v", ranking[2])
	}
}

func TestBuildRankingIncludesUsersWithoutAnswers(t *testing.T) {
	users := []domain.UserRef{{ID: "a", Name: "alice"}, {ID: "z", Name: "zed"}}
	records := []domain.AnswerRecord{
		{UserID: "a", IsCorrect: false},
		{UserID: "ghost", IsCorrect: true},
	}

	ranking := app.BuildRanking(users, records, domain.RankByRate)
	if len(ranking) != 2 {
		t.Fatalf("expected one entry per active user, got %d", len(ranking))
	}
	for _, e := range ranking {
		if e.CorrectAnswerRate != "0.0" {
			t.Fatalf("expected zero rate for %s, got %s", e.UserName, e.CorrectAnswerRate)
		}
	}
	if ranking[1].UserName != "zed" || ranking[1].TotalCount != 0 {
		t.Fatalf("expected zed with no answers last, got %+v", ranking[1])
	}
}

func TestBuildRankingBreaksTiesByName(t *testing.T) {
	users := []domain.UserRef{
		{ID: "c", Name: "carol"},
		{ID: "b", Name: "bob"},
		{ID: "a", Name: "alice"},
	}
	records := []domain.AnswerRecord{
		{UserID: "c", IsCorrect: true}, {UserID: "c", IsCorrect: false},
		{UserID: "b", IsCorrect: true}, {UserID: "b", IsCorrect: false},
		{UserID: "a", IsCorrect: true}, {UserID: "a", IsCorrect: true}, {UserID: "a", IsCorrect: true},
	}

	ranking := app.BuildRanking(users, records, domain.RankByRate)
	got := []string{ranking[0].UserName, ranking[1].UserName, ranking[2].UserName}
	if got[0] != "alice" || got[1] != "bob" || got[2] != "carol" {
		t.Fatalf("expected alice, bob, carol; got %v", got)
	}

	byTotal := app.BuildRanking(users, records, domain.RankByTotalCount)
	if byTotal[0].UserName != "alice" || byTotal[1].UserName != "bob" {
		t.Fatalf("expected alice then bob by total count, got %+v", byTotal)
	}
}

func TestBuildRecordReportRoundsHalfToEven(t *testing.T) {
	cases := []struct {
		correct int
		want    string
	}{
		{1, "6.2"},
		{3, "18.8"},
		{5, "31.2"},
	}
	for _, tc := range cases {
		records := make([]domain.AnswerRecord, 16)
		for i := 0; i < tc.correct; i++ {
			records[i].IsCorrect = true
		}
		for i := range records {
			records[i].ChallengeCount = 1
		}

		report, err := app.BuildRecordReport(records)
		if err != nil {
			t.Fatalf("build report: %v", err)
		}
		if report.CorrectAnswerRate != tc.want || report.Detail[0].CorrectAnswerRate != tc.want {
			t.Fatalf("%d/16: expected %s, got %s (detail %s)", tc.correct, tc.want, report.CorrectAnswerRate, report.Detail[0].CorrectAnswerRate)
		}
	}
}

func TestBuildRankingSortsOnUnroundedRate(t *testing.T) {
	users := []domain.UserRef{{ID: "a", Name: "alice"}, {ID: "b", Name: "bob"}}
	var records []domain.AnswerRecord
	for i := 0; i < 1000; i++ {
		records = append(records, domain.AnswerRecord{UserID: "a", IsCorrect: i < 333})
	}
	for i := 0; i < 3; i++ {
		records = append(records, domain.AnswerRecord{UserID: "b", IsCorrect: i == 0})
	}

	ranking := app.BuildRanking(users, records, domain.RankByRate)
	if ranking[0].UserName != "bob" || ranking[1].UserName != "alice" {
		t.Fatalf("expected 1/3 ahead of 333/1000, got %+v", ranking)
	}
	if ranking[0].CorrectAnswerRate != "33.3" || ranking[1].CorrectAnswerRate != "33.3" {
		t.Fatalf("expected both rendered as 33.3, got %+v", ranking)
	}
}
