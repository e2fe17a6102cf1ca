package bot

import (
	"strconv"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/model"
	"taskboard/internal/view"
)

func due(y int, m time.Month, d, h int) *time.Time {
	t := time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	return &t
}

func buttons(markup tgbotapi.InlineKeyboardMarkup) map[string]string {
	out := make(map[string]string)
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				out[*btn.CallbackData] = btn.Text
			}
		}
	}
	return out
}

func TestRenderHome(t *testing.T) {
	categories := []model.Category{{ID: "c1", Name: "Kuliah"}, {ID: "c2", Name: "Rumah"}}
	tasks := []model.Task{
		{ID: "t1", Title: "later", CategoryID: "c1", CategoryName: "Kuliah", Status: model.StatusPending, DueDate: due(2025, 3, 14, 9)},
		{ID: "t2", Title: "sooner", CategoryID: "c2", CategoryName: "Rumah", Status: model.StatusPending, DueDate: due(2025, 3, 12, 9)},
		{ID: "t3", Title: "done", CategoryID: "c1", Status: model.StatusDone},
	}

	text, markup := renderHome(tasks, categories, view.DefaultHomeSelector(), time.UTC)
	if strings.Index(text, "Sooner") > strings.Index(text, "Later") || strings.Contains(text, "Done") {
		t.Fatalf("unexpected home text:\n%s", text)
	}
	got := buttons(markup)
	if got[cbStatusPrefix+"1"] != "• Belum Dikerjakan" || got[cbCategoryPrefix+"all"] != "• All" || got[cbCategoryPrefix+"c1"] != "Kuliah" {
		t.Fatalf("unexpected buttons: %v", got)
	}

	sel := view.HomeSelector{Status: model.StatusPending, CategoryID: "c1"}
	text, _ = renderHome(tasks, categories, sel, time.UTC)
	if strings.Contains(text, "Sooner") || !strings.Contains(text, "Later") {
		t.Fatalf("category filter not applied:\n%s", text)
	}

	sel = view.HomeSelector{Status: model.StatusInProgress, CategoryID: view.AllCategories}
	if text, _ = renderHome(tasks, categories, sel, time.UTC); !strings.Contains(text, "Belum Ada Tugas") {
		t.Fatalf("expected empty state:\n%s", text)
	}
}

func TestRenderTasks(t *testing.T) {
	tasks := []model.Task{
		{ID: "done", Title: "b", Status: model.StatusDone, DueDate: due(2025, 3, 12, 8)},
		{ID: "pending", Title: "a", Status: model.StatusPending, DueDate: due(2025, 3, 12, 10)},
		{ID: "other", Title: "c", Status: model.StatusInProgress, DueDate: due(2025, 3, 20, 10)},
	}
	day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	text, markup := renderTasks(tasks, day)
	if !strings.Contains(text, "12 Maret 2025") {
		t.Fatalf("missing date header:\n%s", text)
	}
	if strings.Index(text, "A</b>") > strings.Index(text, "B</b>") {
		t.Fatalf("pending must be listed before done:\n%s", text)
	}

	got := buttons(markup)
	if got[cbDayPrefix+"2025-03-12"] != "[12•]" || got[cbDayPrefix+"2025-03-20"] != "20•" || got[cbDayPrefix+"2025-03-13"] != "13" {
		t.Fatalf("unexpected calendar cells: %v", got)
	}
	if _, ok := got[actionData(model.ActionDelete, "pending")]; !ok {
		t.Fatalf("pending task needs a delete button")
	}
	for data := range got {
		if strings.HasSuffix(data, ":done") {
			t.Fatalf("done task must have no actions, found %q", data)
		}
	}

	if text, _ := renderTasks(tasks, day.AddDate(0, 0, 1)); !strings.Contains(text, "Tidak ada tugas untuk tanggal ini") {
		t.Fatalf("expected empty state:\n%s", text)
	}
}

func TestCalendarRowsStartOnMonday(t *testing.T) {
	// March 2025 starts on a Saturday
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := calendarRows(view.CalendarMarks(nil, day), day)
	firstWeek := rows[2]
	if len(firstWeek) != 7 || firstWeek[4].Text != calendarEmptyCell || firstWeek[5].Text != "[1]" || firstWeek[6].Text != "2" {
		t.Fatalf("unexpected first week: %+v", firstWeek)
	}
	for _, row := range rows[2:] {
		if len(row) != 7 {
			t.Fatalf("week row has %d cells", len(row))
		}
	}
}

func TestRenderProfile(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{Status: model.StatusDone, DueDate: due(2025, 3, 10, 9)},
		{Status: model.StatusPending, DueDate: due(2025, 3, 12, 23)},
		{Status: model.StatusDone, DueDate: due(2025, 3, 17, 1)},
	}
	text := renderProfile("a@b.co", tasks, now)
	for _, want := range []string{"a@b.co", "Tugas Selesai: <b>1</b>", "Belum Selesai: <b>1</b>", "Minggu Ini", "Minggu +1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("profile misses %q:\n%s", want, text)
		}
	}
}

func TestRenderChart(t *testing.T) {
	series := view.Series{Labels: view.SeriesLabels, Data: []int{0, 2, 1, 0}}
	lines := strings.Split(renderChart(series), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasSuffix(lines[1], strings.Repeat("█", chartWidth)+" 2") || !strings.HasSuffix(lines[0], "│ 0") {
		t.Fatalf("unexpected bars: %q", lines)
	}

	collapsed := view.Series{Labels: view.SeriesLabels, Data: []int{0}}
	if got := renderChart(collapsed); !strings.HasSuffix(got, "0") || strings.Contains(got, "\n") {
		t.Fatalf("collapsed chart = %q", got)
	}
}

func TestParseActionData(t *testing.T) {
	action, id, ok := parseActionData("complete:abc")
	if !ok || action != model.ActionComplete || id != "abc" {
		t.Fatalf("got %q %q %t", action, id, ok)
	}
	for _, bad := range []string{"complete", "complete:", "fly:abc"} {
		if _, _, ok := parseActionData(bad); ok {
			t.Fatalf("%q must not parse", bad)
		}
	}
	if p, payload := splitCallback("act:start:x"); p != cbActionPrefix || payload != "start:x" {
		t.Fatalf("split = %q %q", p, payload)
	}
}

func TestParseStatusData(t *testing.T) {
	for _, s := range model.Statuses {
		if got, ok := parseStatusData(strconv.Itoa(int(s))); !ok || got != s {
			t.Fatalf("%v: got %v %t", s, got, ok)
		}
	}
	for _, bad := range []string{"", "0", "4", "258", "-1", "done"} {
		if _, ok := parseStatusData(bad); ok {
			t.Fatalf("%q must not parse", bad)
		}
	}
}

func TestParseDue(t *testing.T) {
	got, err := parseDue("2025-03-12 17:30", time.UTC)
	if err != nil || !got.Equal(time.Date(2025, 3, 12, 17, 30, 0, 0, time.UTC)) {
		t.Fatalf("got %v, %v", got, err)
	}
	got, err = parseDue(" 2025-03-12 ", time.UTC)
	if err != nil || !got.Equal(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := parseDue("besok", time.UTC); err == nil {
		t.Fatalf("expected error")
	}
}
