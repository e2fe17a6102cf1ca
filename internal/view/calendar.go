package view

import (
	"sort"
	"time"

	"taskboard/internal/dates"
	"taskboard/internal/model"
)

// DayMark flags a calendar day.
type DayMark struct {
	HasTasks bool
	Selected bool
}

// ByDay returns the tasks due on day's calendar date, ordered by status rank
// (Pending, InProgress, Done). The sort is stable. Tasks without a due date
// never match.
func ByDay(tasks []model.Task, day time.Time) []model.Task {
	loc := day.Location()
	key := dates.DayKey(day, loc)

	out := make([]model.Task, 0)
	for _, task := range tasks {
		if task.DueDate != nil && dates.DayKey(*task.DueDate, loc) == key {
			out = append(out, task)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status.Rank() < out[j].Status.Rank()
	})
	return out
}

// CalendarMarks maps every day that has tasks to a mark. The selected day is
// always present.
func CalendarMarks(tasks []model.Task, selected time.Time) map[string]DayMark {
	loc := selected.Location()
	marks := make(map[string]DayMark)
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		marks[dates.DayKey(*task.DueDate, loc)] = DayMark{HasTasks: true}
	}
	key := dates.DayKey(selected, loc)
	mark := marks[key]
	mark.Selected = true
	marks[key] = mark
	return marks
}
