package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/dates"
	"taskboard/internal/model"
	"taskboard/internal/view"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var weekdayHeader = []string{"Sen", "Sel", "Rab", "Kam", "Jum", "Sab", "Min"}

// showTasks opens the calendar on the given day, or on the day last picked.
func (b *Bot) showTasks(chatID int64, args string) error {
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}
	if raw := strings.TrimSpace(args); raw != "" {
		day, err := dates.ParseDay(raw, b.loc)
		if err != nil {
			return b.sendText(chatID, "Format tanggal: /tasks 2025-03-12")
		}
		ws.day = day
	}
	text, markup := b.tasksScreen(ws)
	return b.sendScreen(chatID, text, markup)
}

func (b *Bot) tasksScreen(ws *workspace) (string, tgbotapi.InlineKeyboardMarkup) {
	if ws.mirror.Loading() {
		return "⏳ Memuat...", tgbotapi.InlineKeyboardMarkup{}
	}
	return renderTasks(ws.mirror.Tasks.Snapshot(), ws.day)
}

func (b *Bot) selectDay(chatID int64, messageID int, payload string) error {
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}
	day, err := dates.ParseDay(payload, b.loc)
	if err != nil {
		return nil
	}
	ws.day = day
	text, markup := b.tasksScreen(ws)
	return b.editScreen(chatID, messageID, text, markup)
}

// applyAction runs a workflow action and returns the toast text. The mirror
// is already current when the write returns, so the screen is redrawn from
// it.
func (b *Bot) applyAction(ctx context.Context, chatID int64, messageID int, payload string) (string, error) {
	ws := b.workspace(chatID)
	if ws == nil {
		return "", b.sendNoSession(chatID)
	}
	action, taskID, ok := parseActionData(payload)
	if !ok {
		return "", nil
	}

	res, err := b.taskSvc.Apply(ctx, ws.ownerID, taskID, action)
	if err != nil {
		if !errors.Is(err, model.ErrTransitionNotAllowed) && !errors.Is(err, model.ErrTaskNotFound) {
			b.log.Errorw("apply action", "user_id", ws.ownerID, "task_id", taskID, "action", action, "error", err)
		}
		if action == model.ActionDelete {
			return "Gagal: Tugas tidak berhasil dihapus", nil
		}
		return "Gagal: Status tidak berhasil diperbarui", nil
	}

	toast := res.Status.Label() + ": Status berhasil diperbarui"
	if res.Removed {
		toast = "Sukses: Tugas berhasil dihapus"
	}
	text, markup := b.tasksScreen(ws)
	return toast, b.editScreen(chatID, messageID, text, markup)
}

// renderTasks draws the month calendar around day, marking days with tasks,
// followed by the day's tasks and their actions.
func renderTasks(tasks []model.Task, day time.Time) (string, tgbotapi.InlineKeyboardMarkup) {
	loc := day.Location()
	dayTasks := view.ByDay(tasks, day)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Tugas untuk <b>%s</b>\n\n", formatLongDate(day)))
	if len(dayTasks) == 0 {
		sb.WriteString("Tidak ada tugas untuk tanggal ini")
	}
	for i, task := range dayTasks {
		sb.WriteString(formatTask(i+1, task, loc))
	}

	rows := calendarRows(view.CalendarMarks(tasks, day), day)
	for i, task := range dayTasks {
		var row []tgbotapi.InlineKeyboardButton
		for _, action := range model.AvailableActions(task.Status) {
			label := fmt.Sprintf("%d %s", i+1, actionLabels[action])
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, actionData(action, task.ID)))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	return strings.TrimRight(sb.String(), "\n"), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func calendarRows(marks map[string]view.DayMark, day time.Time) [][]tgbotapi.InlineKeyboardButton {
	loc := day.Location()
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)

	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("‹", cbDayPrefix+dates.DayKey(prev, loc)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", monthNames[first.Month()-1], first.Year()), cbNoop),
			tgbotapi.NewInlineKeyboardButtonData("›", cbDayPrefix+dates.DayKey(next, loc)),
		},
	}

	header := make([]tgbotapi.InlineKeyboardButton, 0, len(weekdayHeader))
	for _, name := range weekdayHeader {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(name, cbNoop))
	}
	rows = append(rows, header)

	// Monday first
	lead := (int(first.Weekday()) + 6) % 7
	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < lead; i++ {
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(calendarEmptyCell, cbNoop))
	}
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		key := dates.DayKey(d, loc)
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(dayLabel(d.Day(), marks[key]), cbDayPrefix+key))
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(calendarEmptyCell, cbNoop))
		}
		rows = append(rows, week)
	}
	return rows
}

func dayLabel(day int, mark view.DayMark) string {
	label := strconv.Itoa(day)
	if mark.HasTasks {
		label += "•"
	}
	if mark.Selected {
		label = "[" + label + "]"
	}
	return label
}

func formatLongDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}
