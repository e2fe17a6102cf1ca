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
	"taskboard/internal/service"
	"taskboard/internal/view"
)

const (
	validationMessage = "Pilih Kategori dan Isi Tugas Dulu"
	noDataMessage     = "Tidak Ada Data"
	dueLayout         = "2006-01-02 15:04"
)

func (b *Bot) showHome(chatID int64) error {
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}
	text, markup := b.homeScreen(ws)
	return b.sendScreen(chatID, text, markup)
}

func (b *Bot) homeScreen(ws *workspace) (string, tgbotapi.InlineKeyboardMarkup) {
	if ws.mirror.Loading() {
		return "⏳ Memuat...", tgbotapi.InlineKeyboardMarkup{}
	}
	return renderHome(ws.mirror.Tasks.Snapshot(), ws.mirror.Categories.Snapshot(), ws.home, b.loc)
}

func (b *Bot) selectStatus(chatID int64, messageID int, payload string) error {
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}
	status, ok := parseStatusData(payload)
	if !ok {
		return nil
	}
	ws.home.Status = status
	text, markup := b.homeScreen(ws)
	return b.editScreen(chatID, messageID, text, markup)
}

func (b *Bot) selectCategory(chatID int64, messageID int, payload string) error {
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}
	ws.home.CategoryID = payload
	ws.home.CategoryName = ""
	if category, ok := view.CategoryByID(ws.mirror.Categories.Snapshot())[payload]; ok {
		ws.home.CategoryName = category.Name
	}
	text, markup := b.homeScreen(ws)
	return b.editScreen(chatID, messageID, text, markup)
}

// renderHome draws the status tabs, the category filter and the filtered
// tasks in due date order.
func renderHome(tasks []model.Task, categories []model.Category, sel view.HomeSelector, loc *time.Location) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("🏠 <b>Daftar Tugas</b>\n")
	sb.WriteString(fmt.Sprintf("Status: <b>%s</b>\n\n", escape(sel.Status.Label())))

	visible := view.Chronological(view.ByStatusAndCategory(tasks, sel))
	if len(visible) == 0 {
		sb.WriteString("Belum Ada Tugas")
	}
	for i, task := range visible {
		sb.WriteString(formatTask(i+1, task, loc))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var tabs []tgbotapi.InlineKeyboardButton
	for _, s := range model.Statuses {
		tabs = append(tabs, tgbotapi.NewInlineKeyboardButtonData(marked(s.Label(), s == sel.Status), cbStatusPrefix+strconv.Itoa(int(s))))
	}
	rows = append(rows, tabs)

	allSelected := sel.CategoryID == "" || sel.CategoryID == view.AllCategories
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(marked("All", allSelected), cbCategoryPrefix+view.AllCategories),
	}
	for _, c := range categories {
		if len(row) == categoriesPerRow {
			rows = append(rows, row)
			row = nil
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(marked(shortTitle(c.Name, 16), c.ID == sel.CategoryID), cbCategoryPrefix+c.ID))
	}
	rows = append(rows, row)

	return strings.TrimRight(sb.String(), "\n"), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatTask(n int, task model.Task, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d. <b>%s</b>\n", n, escape(normalizeTitle(task.Title))))
	details := []string{}
	if task.CategoryName != "" {
		details = append(details, "🏷 "+escape(task.CategoryName))
	}
	if task.DueDate != nil {
		details = append(details, "⏰ "+formatDue(*task.DueDate, loc))
	}
	if label := task.Status.Label(); label != "" {
		details = append(details, label)
	}
	if len(details) > 0 {
		sb.WriteString("   " + strings.Join(details, " · ") + "\n")
	}
	return sb.String()
}

func formatDue(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("02 Jan 2006")
	}
	return t.Format("02 Jan 2006 15:04")
}

func (b *Bot) startNewTask(chatID int64) error {
	if b.workspace(chatID) == nil {
		return b.sendNoSession(chatID)
	}
	b.setConversation(chatID, &conversationState{stage: stageTaskTitle})
	return b.sendWithReplyMarkup(chatID, "🆕 <b>Tugas baru</b>\nMasukkan Tugas:", cancelKeyboard())
}

func (b *Bot) taskTitleEntered(chatID int64, state *conversationState, title string) error {
	ws := b.workspace(chatID)
	if ws == nil {
		b.clearConversation(chatID)
		return b.sendNoSession(chatID)
	}
	state.title = title
	categories := ws.mirror.Categories.Snapshot()
	if len(categories) == 0 {
		b.clearConversation(chatID)
		return b.sendText(chatID, "Belum ada kategori. Tambahkan dulu dengan /newcategory &lt;nama&gt;.")
	}
	state.stage = stageTaskCategory
	return b.sendScreen(chatID, "Pilih kategori:", categoryPickKeyboard(categories))
}

// taskCategoryTyped accepts a category typed by name instead of tapped.
func (b *Bot) taskCategoryTyped(chatID int64, state *conversationState, name string) error {
	ws := b.workspace(chatID)
	if ws == nil {
		b.clearConversation(chatID)
		return b.sendNoSession(chatID)
	}
	for _, c := range ws.mirror.Categories.Snapshot() {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return b.categoryChosen(chatID, state, c.ID)
		}
	}
	return b.sendText(chatID, "Pilih kategori dari tombol di atas.")
}

func (b *Bot) pickCategory(chatID int64, categoryID string) error {
	state := b.getConversation(chatID)
	if state == nil || state.stage != stageTaskCategory {
		return nil
	}
	return b.categoryChosen(chatID, state, categoryID)
}

func (b *Bot) categoryChosen(chatID int64, state *conversationState, categoryID string) error {
	state.categoryID = categoryID
	state.stage = stageTaskDue
	return b.sendScreen(chatID, "Tanggal deadline (<code>YYYY-MM-DD</code> atau <code>YYYY-MM-DD HH:MM</code>):", dueKeyboard())
}

func (b *Bot) pickDue(ctx context.Context, chatID int64, payload string) error {
	state := b.getConversation(chatID)
	if state == nil || state.stage != stageTaskDue {
		return nil
	}
	switch payload {
	case dueToday:
		now := b.now().In(b.loc)
		return b.finishNewTask(ctx, chatID, state, &now)
	case dueNone:
		return b.finishNewTask(ctx, chatID, state, nil)
	default:
		return nil
	}
}

func (b *Bot) taskDueTyped(ctx context.Context, chatID int64, state *conversationState, raw string) error {
	due, err := parseDue(raw, b.loc)
	if err != nil {
		return b.sendScreen(chatID, "Tanggal tidak dikenali. Gunakan <code>2025-03-12</code> atau <code>2025-03-12 17:00</code>.", dueKeyboard())
	}
	return b.finishNewTask(ctx, chatID, state, &due)
}

func parseDue(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dueLayout, raw, loc); err == nil {
		return t, nil
	}
	return dates.ParseDay(raw, loc)
}

func (b *Bot) finishNewTask(ctx context.Context, chatID int64, state *conversationState, due *time.Time) error {
	b.clearConversation(chatID)
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}

	input := service.TaskInput{Title: state.title, CategoryID: state.categoryID, DueDate: due}
	task, err := b.taskSvc.CreateTask(ctx, ws.ownerID, input)
	switch {
	case errors.Is(err, model.ErrTitleRequired), errors.Is(err, model.ErrCategoryRequired):
		return b.sendText(chatID, "❌ Gagal: "+validationMessage)
	case errors.Is(err, model.ErrCategoryNotFound):
		return b.sendText(chatID, "❌ Gagal: "+noDataMessage)
	case err != nil:
		b.log.Errorw("create task", "user_id", ws.ownerID, "error", err)
		return b.sendText(chatID, "❌ Gagal: Tugas tidak berhasil disimpan")
	}

	if err := b.sendText(chatID, fmt.Sprintf("✅ Tugas <b>%s</b> tersimpan.", escape(normalizeTitle(task.Title)))); err != nil {
		return err
	}
	return b.showHome(chatID)
}

func (b *Bot) newCategory(ctx context.Context, chatID int64, args string) error {
	if b.workspace(chatID) == nil {
		return b.sendNoSession(chatID)
	}
	if strings.TrimSpace(args) != "" {
		return b.createCategory(ctx, chatID, args)
	}
	b.setConversation(chatID, &conversationState{stage: stageCategoryName})
	return b.sendWithReplyMarkup(chatID, "Masukkan Kategori:", cancelKeyboard())
}

// createCategory writes the category and redraws home. A blank name writes
// nothing.
func (b *Bot) createCategory(ctx context.Context, chatID int64, name string) error {
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}
	category, err := b.categorySvc.CreateCategory(ctx, ws.ownerID, name)
	if err != nil {
		b.log.Errorw("create category", "user_id", ws.ownerID, "error", err)
		return b.sendText(chatID, "❌ Gagal: Kategori tidak berhasil disimpan")
	}
	if category != nil {
		if err := b.sendText(chatID, fmt.Sprintf("✅ Kategori <b>%s</b> ditambahkan.", escape(category.Name))); err != nil {
			return err
		}
	}
	return b.showHome(chatID)
}
