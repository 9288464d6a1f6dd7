package schedule

import (
	"sort"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

// CurrentWeek projects the active curriculum week from session state: the
// first week in curriculum order with no completed session attached to it,
// falling back to the last week once everything is done. It is recomputed on
// every call and never persisted; session completion is the single source of
// truth. Returns 0 when the program has no curriculum.
func CurrentWeek(weeks []models.CurriculumWeek, sessions []models.Session) int {
	if len(weeks) == 0 {
		return 0
	}

	ordered := make([]models.CurriculumWeek, len(weeks))
	copy(ordered, weeks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].WeekNumber < ordered[j].WeekNumber
	})

	completed := make(map[int]bool, len(sessions))
	for _, sess := range sessions {
		if sess.Status == models.SessionCompleted && sess.WeekNumber != nil {
			completed[*sess.WeekNumber] = true
		}
	}

	for _, week := range ordered {
		if !completed[week.WeekNumber] {
			return week.WeekNumber
		}
	}
	return ordered[len(ordered)-1].WeekNumber
}

// WeekDuration resolves the session duration for a week, preferring the
// week's override and falling back to the program default. Returns 0 when
// neither is configured.
func WeekDuration(program models.Program, weeks []models.CurriculumWeek, weekNumber *int) int {
	if weekNumber != nil {
		for _, week := range weeks {
			if week.WeekNumber == *weekNumber && week.DurationOverrideMin != nil {
				return *week.DurationOverrideMin
			}
		}
	}
	if program.SessionDurationMin != nil {
		return *program.SessionDurationMin
	}
	return 0
}
