package view

import (
	"sort"
	"time"

	"taskboard/internal/model"
)

// AllCategories selects every category in the home filter.
const AllCategories = "all"

// HomeSelector is the home screen's filter state. It is not persisted.
type HomeSelector struct {
	Status       model.Status
	CategoryID   string
	CategoryName string // matched against tasks stored before category ids existed
}

// DefaultHomeSelector shows pending tasks of every category.
func DefaultHomeSelector() HomeSelector {
	return HomeSelector{Status: model.StatusPending, CategoryID: AllCategories}
}

// ByStatusAndCategory keeps tasks with the selected status and category,
// preserving snapshot order.
func ByStatusAndCategory(tasks []model.Task, sel HomeSelector) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == sel.Status && matchesCategory(task, sel) {
			out = append(out, task)
		}
	}
	return out
}

func matchesCategory(task model.Task, sel HomeSelector) bool {
	if sel.CategoryID == "" || sel.CategoryID == AllCategories {
		return true
	}
	if task.CategoryID != "" {
		return task.CategoryID == sel.CategoryID
	}
	return sel.CategoryName != "" && task.CategoryName == sel.CategoryName
}

// Chronological orders tasks by ascending due date. A missing due date sorts
// as the Unix epoch; ties keep snapshot order.
func Chronological(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return dueOrEpoch(out[i]).Before(dueOrEpoch(out[j]))
	})
	return out
}

func dueOrEpoch(task model.Task) time.Time {
	if task.DueDate == nil {
		return time.Unix(0, 0)
	}
	return *task.DueDate
}

// CategoryByID indexes categories for lookups from task references.
func CategoryByID(categories []model.Category) map[string]model.Category {
	out := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out
}
