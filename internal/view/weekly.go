package view

import (
	"time"

	"taskboard/internal/dates"
	"taskboard/internal/model"
)

// WeekStats counts the current week's tasks.
type WeekStats struct {
	Done       int
	Incomplete int
}

// Series is the completed-per-week chart data.
type Series struct {
	Labels []string
	Data   []int
}

// SeriesLabels name the chart's weeks: last, this, next, and the one after.
var SeriesLabels = []string{"Minggu Lalu", "Minggu Ini", "Minggu +1", "Minggu +2"}

var seriesOffsets = []int{-1, 0, 1, 2}

// WeekRange returns Monday 00:00:00.000 and Sunday 23:59:59.999 of the week
// containing now, shifted by offset weeks. Weeks start on Monday regardless
// of locale.
func WeekRange(now time.Time, offset int) (start, end time.Time) {
	loc := now.Location()
	back := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		back = 6
	}
	start = dates.StartOfDay(now, loc).AddDate(0, 0, -back+7*offset)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// WeeklyStats counts tasks due this week: done ones and everything else,
// including tasks whose status is not recognized. Tasks without a due date
// are left out.
func WeeklyStats(tasks []model.Task, now time.Time) WeekStats {
	start, end := WeekRange(now, 0)
	var stats WeekStats
	for _, task := range tasks {
		if task.DueDate == nil || !dates.Within(*task.DueDate, start, end) {
			continue
		}
		if task.Status.IsDone() {
			stats.Done++
		} else {
			stats.Incomplete++
		}
	}
	return stats
}

// WeeklySeries counts done tasks due in last week, this week and the next two
// weeks. When every count is zero the data collapses to a single zero point
// so the chart still has something to draw.
func WeeklySeries(tasks []model.Task, now time.Time) Series {
	data := make([]int, len(seriesOffsets))
	total := 0
	for i, offset := range seriesOffsets {
		start, end := WeekRange(now, offset)
		for _, task := range tasks {
			if task.DueDate != nil && task.Status.IsDone() && dates.Within(*task.DueDate, start, end) {
				data[i]++
			}
		}
		total += data[i]
	}
	if total == 0 {
		data = []int{0}
	}
	labels := make([]string, len(SeriesLabels))
	copy(labels, SeriesLabels)
	return Series{Labels: labels, Data: data}
}
