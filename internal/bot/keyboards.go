package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/model"
)

// Callback data prefixes. Telegram limits callback data to 64 bytes, which
// fits a prefix plus a uuid.
const (
	cbStatusPrefix   = "st:"
	cbCategoryPrefix = "cat:"
	cbActionPrefix   = "act:"
	cbDayPrefix      = "day:"
	cbPickPrefix     = "pick:"
	cbDuePrefix      = "due:"
	cbLogout         = "logout"
	cbNoop           = "noop"

	dueToday = "today"
	dueNone  = "none"
)

const (
	menuLabelHome     = "🏠 Beranda"
	menuLabelTasks    = "📅 Tugas"
	menuLabelNewTask  = "➕ Tugas Baru"
	menuLabelProfile  = "👤 Profil"
	btnCancelDialog   = "⏪ Batal"
	btnLogout         = "Logout"
	btnDueToday       = "Hari ini"
	btnDueNone        = "Tanpa tanggal"
	selectedMarker    = "• "
	categoriesPerRow  = 3
	calendarEmptyCell = " "
)

var actionLabels = map[model.Action]string{
	model.ActionStart:    "▶️ Progress",
	model.ActionComplete: "✅ Selesai",
	model.ActionDelete:   "✖️ Hapus",
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelHome),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelProfile),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func categoryPickKeyboard(categories []model.Category) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range categories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(shortTitle(c.Name, 20), cbPickPrefix+c.ID))
		if len(row) == categoriesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func dueKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnDueToday, cbDuePrefix+dueToday),
			tgbotapi.NewInlineKeyboardButtonData(btnDueNone, cbDuePrefix+dueNone),
		),
	)
}

func logoutKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnLogout, cbLogout),
		),
	)
}

func marked(label string, selected bool) string {
	if selected {
		return selectedMarker + label
	}
	return label
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "batal"
}

// splitCallback separates callback data into its prefix and payload.
func splitCallback(data string) (prefix, payload string) {
	for _, p := range []string{cbStatusPrefix, cbCategoryPrefix, cbActionPrefix, cbDayPrefix, cbPickPrefix, cbDuePrefix} {
		if strings.HasPrefix(data, p) {
			return p, strings.TrimPrefix(data, p)
		}
	}
	return data, ""
}

// parseActionData reads "start:<task id>" style payloads.
func parseActionData(payload string) (model.Action, string, bool) {
	raw, taskID, ok := strings.Cut(payload, ":")
	if !ok || taskID == "" {
		return "", "", false
	}
	action, ok := model.ParseAction(raw)
	if !ok {
		return "", "", false
	}
	return action, taskID, true
}

// parseStatusData reads a status tab payload. Only the known tabs are
// accepted.
func parseStatusData(payload string) (model.Status, bool) {
	n, err := strconv.Atoi(payload)
	if err != nil {
		return model.StatusUnknown, false
	}
	for _, s := range model.Statuses {
		if int(s) == n {
			return s, true
		}
	}
	return model.StatusUnknown, false
}

func actionData(action model.Action, taskID string) string {
	return cbActionPrefix + string(action) + ":" + taskID
}
