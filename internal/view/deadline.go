package view

import (
	"time"

	"taskboard/internal/dates"
	"taskboard/internal/model"
)

// DueToday selects unfinished tasks due between local midnight and
// 23:59:59.999 of now's day.
func DueToday(tasks []model.Task, now time.Time) []model.Task {
	loc := now.Location()
	start, end := dates.StartOfDay(now, loc), dates.EndOfDay(now, loc)

	var out []model.Task
	for _, task := range tasks {
		if task.DueDate == nil || task.Status.IsDone() {
			continue
		}
		if dates.Within(*task.DueDate, start, end) {
			out = append(out, task)
		}
	}
	return out
}
