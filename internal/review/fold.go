package review

import (
	"sort"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

// Fold collapses wrong answers into one entry per question. answers must be
// ordered newest first: the first sighting of a question seeds its snapshot
// and later sightings only add to the count and the set of error types.
func Fold(answers []models.IncorrectAnswer) []models.ReviewEntry {
	entries := make([]models.ReviewEntry, 0)
	index := make(map[uuid.UUID]int)

	for _, a := range answers {
		i, seen := index[a.QuestionID]
		if !seen {
			i = len(entries)
			index[a.QuestionID] = i
			entries = append(entries, models.ReviewEntry{
				QuestionID:           a.QuestionID,
				Statement:            a.Statement,
				Explanation:          a.Explanation,
				Tips:                 a.Tips,
				SubjectID:            a.SubjectID,
				SubjectName:          a.SubjectName,
				TopicName:            a.TopicName,
				Options:              a.Options,
				ErrorTypes:           []models.ErrorType{},
				LastSelectedOptionID: a.SelectedOptionID,
				LastAnsweredAt:       a.CreatedAt,
			})
		}
		e := &entries[i]
		e.ErrorCount++
		if a.ErrorType != nil && !e.HasErrorType(*a.ErrorType) {
			e.ErrorTypes = append(e.ErrorTypes, *a.ErrorType)
		}
	}
	return entries
}

func SeverityFor(pct int) models.Severity {
	switch {
	case pct < 20:
		return models.SeverityLow
	case pct < 40:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

func Summarize(entries []models.ReviewEntry, totalIncorrect, totalAnswers int) models.ReviewSummary {
	sum := models.ReviewSummary{
		TotalToReview:  len(entries),
		TotalIncorrect: totalIncorrect,
		TotalAnswers:   totalAnswers,
	}
	for _, e := range entries {
		if e.HasErrorType(models.ErrorKnowledge) {
			sum.KnowledgeCount++
		}
		if e.HasErrorType(models.ErrorAttention) {
			sum.AttentionCount++
		}
	}

	sum.ErrorRate = models.Percent(sum.TotalToReview, totalAnswers)
	sum.Severity = SeverityFor(sum.ErrorRate)
	sum.KnowledgePct = models.Percent(sum.KnowledgeCount, totalIncorrect)
	sum.KnowledgeSeverity = SeverityFor(sum.KnowledgePct)
	sum.AttentionPct = models.Percent(sum.AttentionCount, totalIncorrect)
	sum.AttentionSeverity = SeverityFor(sum.AttentionPct)
	return sum
}

// Group buckets entries by subject name, names ascending. Entry order within
// a group is preserved.
func Group(entries []models.ReviewEntry) []models.ReviewGroup {
	bySubject := make(map[string][]models.ReviewEntry)
	for _, e := range entries {
		bySubject[e.SubjectName] = append(bySubject[e.SubjectName], e)
	}

	groups := make([]models.ReviewGroup, 0, len(bySubject))
	for name, es := range bySubject {
		groups = append(groups, models.ReviewGroup{SubjectName: name, Entries: es})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].SubjectName < groups[j].SubjectName })
	return groups
}
