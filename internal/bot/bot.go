package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/logger"
	"taskboard/internal/model"
	"taskboard/internal/service"
	"taskboard/internal/session"
	"taskboard/internal/store"
)

// API is the part of the Telegram client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// UserFinder loads accounts for the profile screen.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Deps are the services the screens run on.
type Deps struct {
	Sessions   *session.Provider
	Auth       *service.AuthService
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Reminders  *service.ReminderService
	Users      UserFinder
	Source     store.Source
	Location   *time.Location
	Logger     *logger.Logger
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api         API
	sessions    *session.Provider
	authSvc     *service.AuthService
	taskSvc     *service.TaskService
	categorySvc *service.CategoryService
	reminderSvc *service.ReminderService
	users       UserFinder
	source      store.Source
	loc         *time.Location
	log         *logger.Logger
	now         func() time.Time

	mu            sync.Mutex
	conversations map[int64]*conversationState
	workspaces    map[int64]*workspace
	watched       map[int64]func()
}

// NewAPI connects to Telegram with the bot token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return api, nil
}

func New(api API, deps Deps) *Bot {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:           api,
		sessions:      deps.Sessions,
		authSvc:       deps.Auth,
		taskSvc:       deps.Tasks,
		categorySvc:   deps.Categories,
		reminderSvc:   deps.Reminders,
		users:         deps.Users,
		source:        deps.Source,
		loc:           loc,
		log:           deps.Logger.WithComponent("bot"),
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		workspaces:    make(map[int64]*workspace),
		watched:       make(map[int64]func()),
	}
}

// Start begins polling updates until ctx is cancelled. Updates are handled
// one at a time.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	// restored sessions get their workspace before the first update
	for _, chatID := range b.sessions.Chats() {
		b.watch(chatID)
	}

	b.log.Infow("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	b.shutdown()
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.log.Warnw("handle callback", "error", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.WithChat(update.Message.Chat.ID).Warnw("handle message", "error", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID
	b.watch(chatID)

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(chatID)
		return b.sendText(chatID, "⏪ Dibatalkan.")
	}

	if msg.IsCommand() {
		b.log.WithChat(chatID).Debugw("command", "command", msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(chatID) {
		return b.handleConversation(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(chatID, "Pesan tidak dikenali. Ketik /help untuk daftar perintah.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		return b.handleHelp(chatID)
	case "register":
		return b.startRegister(chatID)
	case "login":
		return b.startLogin(chatID)
	case "logout":
		return b.logout(ctx, chatID)
	case "home":
		return b.showHome(chatID)
	case "newtask":
		return b.startNewTask(chatID)
	case "newcategory":
		return b.newCategory(ctx, chatID, msg.CommandArguments())
	case "tasks":
		return b.showTasks(chatID, msg.CommandArguments())
	case "profile":
		return b.showProfile(ctx, chatID)
	case "cancel":
		b.clearConversation(chatID)
		return b.sendText(chatID, "⏪ Dibatalkan.")
	default:
		return b.sendText(chatID, "Perintah tidak dikenal. Lihat /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	chatID := msg.Chat.ID
	switch strings.TrimSpace(msg.Text) {
	case menuLabelHome:
		return true, b.showHome(chatID)
	case menuLabelTasks:
		return true, b.showTasks(chatID, "")
	case menuLabelNewTask:
		return true, b.startNewTask(chatID)
	case menuLabelProfile:
		return true, b.showProfile(ctx, chatID)
	default:
		return false, nil
	}
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "👋 <b>Taskboard</b>: catat tugas, pantau progres, dan dapatkan pengingat deadline.\n\n" +
		"• /register: daftar akun baru\n" +
		"• /login: masuk ke akun\n" +
		"• /home: daftar tugas per status dan kategori\n" +
		"• /newtask: tambah tugas\n" +
		"• /newcategory &lt;nama&gt;: tambah kategori\n" +
		"• /tasks [YYYY-MM-DD]: kalender dan tugas per tanggal\n" +
		"• /profile: statistik mingguan dan logout\n" +
		"• /cancel: batalkan input"
	return b.sendText(chatID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	b.watch(chatID)

	prefix, payload := splitCallback(cb.Data)
	var toast string
	var err error
	switch prefix {
	case cbStatusPrefix:
		err = b.selectStatus(chatID, messageID, payload)
	case cbCategoryPrefix:
		err = b.selectCategory(chatID, messageID, payload)
	case cbDayPrefix:
		err = b.selectDay(chatID, messageID, payload)
	case cbActionPrefix:
		toast, err = b.applyAction(ctx, chatID, messageID, payload)
	case cbPickPrefix:
		err = b.pickCategory(chatID, payload)
	case cbDuePrefix:
		err = b.pickDue(ctx, chatID, payload)
	case cbLogout:
		err = b.logout(ctx, chatID)
	}

	if _, ackErr := b.api.Request(tgbotapi.NewCallback(cb.ID, toast)); ackErr != nil {
		b.log.Debugw("callback ack", "error", ackErr)
	}
	return err
}

// Schedule delivers a deadline notification to the chat the owner is signed
// in on.
func (b *Bot) Schedule(_ context.Context, ownerID, title, body string) error {
	chatID, ok := b.sessions.ChatFor(ownerID)
	if !ok {
		return fmt.Errorf("notify %s: %w", ownerID, store.ErrNoSession)
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("<b>%s</b>\n%s", escape(title), escape(body)))
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendScreen(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	_, err := b.api.Send(msg)
	return err
}

// editScreen redraws a screen in place after a selection changes.
func (b *Bot) editScreen(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if len(markup.InlineKeyboard) > 0 {
		edit.ReplyMarkup = &markup
	}
	_, err := b.api.Send(edit)
	return err
}

// deleteMessage removes a chat message, used to hide typed passwords.
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.WithChat(chatID).Debugw("delete message", "error", err)
	}
}

func (b *Bot) sendNoSession(chatID int64) error {
	return b.sendText(chatID, "Silakan login terlebih dahulu.\n/login atau /register")
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
