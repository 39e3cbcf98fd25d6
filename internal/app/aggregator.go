package app

import (
	"sort"
	"strconv"

	"challenge-quiz-service/internal/domain"
)

// BuildRecordReport summarizes one user's non-deleted answers, overall and per challenge count.
// Detail entries follow ascending challenge count; counts without records are absent.
// Group name and degree of a detail entry come from the first record seen at that count.
func BuildRecordReport(records []domain.AnswerRecord) (domain.RecordReport, error) {
	if len(records) == 0 {
		return domain.RecordReport{}, domain.ErrDivisionUndefined
	}

	byCount := make(map[int]*domain.RecordDetail)
	correct := 0
	for _, r := range records {
		detail, ok := byCount[r.ChallengeCount]
		if !ok {
			detail = &domain.RecordDetail{
				ChallengeCount: r.ChallengeCount,
				GroupName:      r.GroupName,
				Degree:         r.Degree,
			}
			byCount[r.ChallengeCount] = detail
		}
		detail.TotalCount++
		if r.IsCorrect {
			detail.CorrectAnswerCount++
			correct++
		}
	}

	counts := make([]int, 0, len(byCount))
	for count := range byCount {
		counts = append(counts, count)
	}
	sort.Ints(counts)

	details := make([]domain.RecordDetail, 0, len(counts))
	for _, count := range counts {
		detail := byCount[count]
		detail.CorrectAnswerRate = FormatRate(rate(detail.CorrectAnswerCount, detail.TotalCount))
		details = append(details, *detail)
	}

	return domain.RecordReport{
		TotalCount:         len(records),
		CorrectAnswerCount: correct,
		CorrectAnswerRate:  FormatRate(rate(correct, len(records))),
		Detail:             details,
	}, nil
}

type rankingRow struct {
	entry domain.RankingEntry
	raw   float64
	rate  float64
}

// BuildRanking produces one entry per user, including users without answers.
// Rows are sorted by name first and then stably by the selected field descending,
// so ties keep ascending name order. Sorting uses the unrounded fraction.
func BuildRanking(users []domain.UserRef, records []domain.AnswerRecord, sortBy domain.RankingField) []domain.RankingEntry {
	rows := make([]*rankingRow, 0, len(users))
	byUser := make(map[string]*rankingRow, len(users))
	for _, u := range users {
		row := &rankingRow{entry: domain.RankingEntry{UserName: u.Name}}
		rows = append(rows, row)
		byUser[u.ID] = row
	}

	for _, r := range records {
		row, ok := byUser[r.UserID]
		if !ok {
			continue
		}
		row.entry.TotalCount++
		if r.IsCorrect {
			row.entry.CorrectAnswerCount++
		}
	}
	for _, row := range rows {
		if row.entry.TotalCount > 0 {
			row.raw = float64(row.entry.CorrectAnswerCount) / float64(row.entry.TotalCount)
			row.rate = rate(row.entry.CorrectAnswerCount, row.entry.TotalCount)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].entry.UserName < rows[j].entry.UserName
	})
	sort.SliceStable(rows, func(i, j int) bool {
		switch sortBy {
		case domain.RankByCorrectCount:
			return rows[i].entry.CorrectAnswerCount > rows[j].entry.CorrectAnswerCount
		case domain.RankByTotalCount:
			return rows[i].entry.TotalCount > rows[j].entry.TotalCount
		default:
			return rows[i].raw > rows[j].raw
		}
	})

	entries := make([]domain.RankingEntry, 0, len(rows))
	for _, row := range rows {
		row.entry.CorrectAnswerRate = FormatRate(row.rate)
		entries = append(entries, row.entry)
	}
	return entries
}

// rate returns correct/total rounded to three decimals, half to even on the exact
// binary value (5/16 -> 0.312).
func rate(correct, total int) float64 {
	rounded := strconv.FormatFloat(float64(correct)/float64(total), 'f', 3, 64)
	r, _ := strconv.ParseFloat(rounded, 64)
	return r
}

// FormatRate renders a 0..1 rate as a percentage with one fractional digit, e.g. 0.8 -> "80.0".
func FormatRate(r float64) string {
	return strconv.FormatFloat(r*100, 'f', 1, 64)
}
