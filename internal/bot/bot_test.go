package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/dedup"
	"taskboard/internal/livequery"
	"taskboard/internal/logger"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/session"
)

type fakeAPI struct {
	sent   []tgbotapi.Chattable
	toasts []string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.toasts = append(f.toasts, cb.Text)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

// texts returns the text of every message and edit sent so far.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeAPI) sawText(substr string) bool {
	for _, text := range f.texts() {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

type testBot struct {
	*Bot
	api   *fakeAPI
	tasks repository.TaskStore
	msgID int
}

var fixedNow = time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.Nop()
	users := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	hub := livequery.NewHub(taskRepo, repository.NewCategoryRepository(db))
	reminders := service.NewReminderService(taskRepo, users, nil, dedup.NewMemoryLedger(dedup.DefaultTTL), log)

	api := &fakeAPI{}
	b := New(api, Deps{
		Sessions:   session.NewProvider(users, log),
		Auth:       service.NewAuthService(users, 0, log),
		Tasks:      service.NewTaskService(hub.Tasks(), hub.Categories(), log),
		Categories: service.NewCategoryService(hub.Categories(), log),
		Reminders:  reminders,
		Users:      users,
		Source:     hub,
		Location:   time.UTC,
		Logger:     log,
	})
	b.now = func() time.Time { return fixedNow }
	reminders.SetSender(b)
	t.Cleanup(b.shutdown)

	return &testBot{Bot: b, api: api, tasks: taskRepo}
}

func (tb *testBot) say(chatID int64, text string) {
	tb.msgID++
	msg := &tgbotapi.Message{
		MessageID: tb.msgID,
		From:      &tgbotapi.User{ID: chatID},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	tb.handleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (tb *testBot) tap(chatID int64, data string) {
	tb.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID, Type: "private"}},
		Data:    data,
	}})
}

func (tb *testBot) signUpAndLogin(t *testing.T, chatID int64, email string) {
	t.Helper()
	tb.say(chatID, "/register")
	tb.say(chatID, email)
	tb.say(chatID, "secret1")
	tb.say(chatID, "secret1")
	if !tb.api.sawText("Akun berhasil dibuat") {
		t.Fatalf("register failed: %q", tb.api.texts())
	}
	tb.say(chatID, email)
	tb.say(chatID, "secret1")
	if !tb.api.sawText("Berhasil Login") {
		t.Fatalf("login failed: %q", tb.api.texts())
	}
	if tb.workspace(chatID) == nil {
		t.Fatalf("workspace not mounted after login")
	}
}

func TestBot_ScreensRequireSession(t *testing.T) {
	tb := newTestBot(t)
	for _, cmd := range []string{"/home", "/tasks", "/newtask", "/profile"} {
		tb.say(7, cmd)
		if !strings.Contains(tb.api.lastText(), "Silakan login terlebih dahulu") {
			t.Fatalf("%s without session: %q", cmd, tb.api.lastText())
		}
	}
}

func TestBot_LoginFailureKeepsEmail(t *testing.T) {
	tb := newTestBot(t)
	tb.say(1, "/register")
	tb.say(1, "user@example.com")
	tb.say(1, "secret1")
	tb.say(1, "secret1")

	tb.say(1, "user@example.com")
	tb.say(1, "wrong-password")
	if !strings.Contains(tb.api.lastText(), "Password salah") {
		t.Fatalf("expected wrong password message, got %q", tb.api.lastText())
	}
	state := tb.getConversation(1)
	if state == nil || state.stage != stageLoginPassword || state.email != "user@example.com" || state.password != "" {
		t.Fatalf("unexpected dialog state: %+v", state)
	}

	tb.say(1, "secret1")
	if tb.workspace(1) == nil {
		t.Fatalf("retry with the right password must sign in")
	}
}

func TestBot_TaskLifecycle(t *testing.T) {
	tb := newTestBot(t)
	const chat = 42
	tb.signUpAndLogin(t, chat, "alice@example.com")
	if !tb.api.sawText("Belum Ada Tugas") {
		t.Fatalf("empty home not shown")
	}

	tb.say(chat, "/newcategory Kuliah")
	ws := tb.workspace(chat)
	categories := ws.mirror.Categories.Snapshot()
	if len(categories) != 1 || categories[0].Name != "Kuliah" {
		t.Fatalf("categories = %+v", categories)
	}

	tb.say(chat, "/newtask")
	tb.say(chat, "Laporan praktikum")
	tb.tap(chat, cbPickPrefix+categories[0].ID)
	tb.say(chat, "2025-03-12 17:00")
	if !tb.api.sawText("tersimpan") {
		t.Fatalf("task not saved: %q", tb.api.texts())
	}

	tasks := ws.mirror.Tasks.Snapshot()
	if len(tasks) != 1 || tasks[0].Status != model.StatusPending || tasks[0].CategoryName != "Kuliah" {
		t.Fatalf("mirror tasks = %+v", tasks)
	}
	if !tb.api.sawText("Laporan praktikum belum selesai, segera kerjakan!") {
		t.Fatalf("deadline notification missing: %q", tb.api.texts())
	}

	tb.say(chat, "/tasks 2025-03-12")
	if !strings.Contains(tb.api.lastText(), "Laporan praktikum") {
		t.Fatalf("day view misses the task: %q", tb.api.lastText())
	}

	tb.tap(chat, actionData(model.ActionStart, tasks[0].ID))
	if got := tb.api.toasts[len(tb.api.toasts)-1]; got != "Progress: Status berhasil diperbarui" {
		t.Fatalf("toast = %q", got)
	}
	stored, err := tb.tasks.FindByID(context.Background(), ws.ownerID, tasks[0].ID)
	if err != nil || stored.Status != model.StatusInProgress {
		t.Fatalf("stored = %+v, %v", stored, err)
	}

	tb.tap(chat, actionData(model.ActionDelete, tasks[0].ID))
	if got := tb.api.toasts[len(tb.api.toasts)-1]; got != "Gagal: Tugas tidak berhasil dihapus" {
		t.Fatalf("delete from progress toast = %q", got)
	}

	tb.say(chat, "/profile")
	if !strings.Contains(tb.api.lastText(), "Belum Selesai: <b>1</b>") {
		t.Fatalf("profile = %q", tb.api.lastText())
	}

	tb.tap(chat, cbLogout)
	if tb.workspace(chat) != nil {
		t.Fatalf("workspace still mounted after logout")
	}
	if _, ok := tb.sessions.CurrentUser(chat); ok {
		t.Fatalf("session still bound after logout")
	}
}

func TestBot_NewTaskValidation(t *testing.T) {
	tb := newTestBot(t)
	const chat = 5
	tb.signUpAndLogin(t, chat, "bob@example.com")

	tb.say(chat, "/newtask")
	tb.say(chat, "Belanja")
	if !strings.Contains(tb.api.lastText(), "Belum ada kategori") {
		t.Fatalf("expected missing category hint, got %q", tb.api.lastText())
	}
	if tb.hasConversation(chat) {
		t.Fatalf("dialog must end without categories")
	}

	tb.say(chat, "/newcategory   ")
	tb.say(chat, "   ")
	if n := len(tb.workspace(chat).mirror.Categories.Snapshot()); n != 0 {
		t.Fatalf("blank category written, have %d", n)
	}
}

func TestBot_ScheduleNeedsSignedInChat(t *testing.T) {
	tb := newTestBot(t)
	if err := tb.Schedule(context.Background(), "nobody", "t", "b"); err == nil {
		t.Fatalf("expected error for user without chat")
	}
}

func TestBot_StatusTabRejectsUnknownValues(t *testing.T) {
	tb := newTestBot(t)
	const chat = 6
	tb.signUpAndLogin(t, chat, "carol@example.com")

	tb.tap(chat, cbStatusPrefix+strconv.Itoa(int(model.StatusDone)))
	if got := tb.workspace(chat).home.Status; got != model.StatusDone {
		t.Fatalf("status tab = %v, want Done", got)
	}

	// 258 would wrap to InProgress as a uint8
	for _, bad := range []string{"258", "0", "-1", "x"} {
		tb.tap(chat, cbStatusPrefix+bad)
		if got := tb.workspace(chat).home.Status; got != model.StatusDone {
			t.Fatalf("payload %q changed the tab to %v", bad, got)
		}
	}
}
