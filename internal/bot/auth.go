package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/service"
)

func (b *Bot) startRegister(chatID int64) error {
	if b.workspace(chatID) != nil {
		return b.sendText(chatID, "Kamu sudah login. Gunakan /profile untuk logout.")
	}
	b.setConversation(chatID, &conversationState{stage: stageRegisterEmail})
	return b.sendWithReplyMarkup(chatID, "📝 <b>Daftar akun baru</b>\nMasukkan email:", cancelKeyboard())
}

func (b *Bot) startLogin(chatID int64) error {
	if b.workspace(chatID) != nil {
		return b.sendText(chatID, "Kamu sudah login. Gunakan /profile untuk logout.")
	}
	b.setConversation(chatID, &conversationState{stage: stageLoginEmail})
	return b.sendWithReplyMarkup(chatID, "🔑 <b>Login</b>\nMasukkan email:", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	state := b.getConversation(chatID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageRegisterEmail:
		state.email = text
		state.stage = stageRegisterPassword
		return b.sendWithReplyMarkup(chatID, "Masukkan password (minimal 6 karakter):", cancelKeyboard())
	case stageRegisterPassword:
		b.deleteMessage(chatID, msg.MessageID)
		state.password = msg.Text
		state.stage = stageRegisterConfirm
		return b.sendWithReplyMarkup(chatID, "Ulangi password:", cancelKeyboard())
	case stageRegisterConfirm:
		b.deleteMessage(chatID, msg.MessageID)
		return b.finishRegister(ctx, chatID, state, msg.Text)
	case stageLoginEmail:
		state.email = text
		state.stage = stageLoginPassword
		return b.sendWithReplyMarkup(chatID, "Masukkan password:", cancelKeyboard())
	case stageLoginPassword:
		b.deleteMessage(chatID, msg.MessageID)
		return b.finishLogin(ctx, chatID, state, msg.Text)
	case stageTaskTitle:
		return b.taskTitleEntered(chatID, state, text)
	case stageTaskCategory:
		return b.taskCategoryTyped(chatID, state, text)
	case stageTaskDue:
		return b.taskDueTyped(ctx, chatID, state, text)
	case stageCategoryName:
		b.clearConversation(chatID)
		return b.createCategory(ctx, chatID, text)
	default:
		b.clearConversation(chatID)
		return b.sendText(chatID, "Dialog direset. Coba lagi.")
	}
}

func (b *Bot) finishRegister(ctx context.Context, chatID int64, state *conversationState, confirm string) error {
	user, err := b.authSvc.Register(ctx, state.email, state.password, confirm)
	if err != nil {
		b.clearConversation(chatID)
		return b.sendText(chatID, fmt.Sprintf("❌ Gagal: %s\nCoba lagi dengan /register.", escape(authMessage(service.OpRegister, err))))
	}

	b.log.WithChat(chatID).WithUserID(user.ID).Infow("account registered")
	b.setConversation(chatID, &conversationState{stage: stageLoginEmail})
	return b.sendWithReplyMarkup(chatID, "✅ Sukses: Akun berhasil dibuat.\n\n🔑 <b>Login</b>\nMasukkan email:", cancelKeyboard())
}

// finishLogin signs the chat in. On failure the password is dropped and the
// email kept, so the user only retypes the password.
func (b *Bot) finishLogin(ctx context.Context, chatID int64, state *conversationState, password string) error {
	user, err := b.authSvc.Login(ctx, state.email, password)
	if err != nil {
		state.password = ""
		return b.sendWithReplyMarkup(chatID,
			fmt.Sprintf("❌ Gagal: %s\nMasukkan password lagi untuk <b>%s</b> atau ketik /cancel.", escape(authMessage(service.OpLogin, err)), escape(state.email)),
			cancelKeyboard())
	}

	if err := b.sessions.SignIn(ctx, chatID, user.ID); err != nil {
		b.clearConversation(chatID)
		b.log.WithChat(chatID).Errorw("sign in", "error", err)
		return b.sendText(chatID, "❌ Gagal: "+service.MessageFor(service.OpLogin, service.CodeNetworkFailed))
	}
	b.clearConversation(chatID)

	if err := b.sendText(chatID, "✅ Mantap! Berhasil Login"); err != nil {
		return err
	}
	return b.showHome(chatID)
}

// logout ends the session; the auth listener unmounts the workspace.
func (b *Bot) logout(ctx context.Context, chatID int64) error {
	if b.workspace(chatID) == nil {
		return b.sendNoSession(chatID)
	}
	if err := b.sessions.SignOut(ctx, chatID); err != nil {
		b.log.WithChat(chatID).Errorw("logout", "error", err)
		return b.sendText(chatID, "❌ Logout gagal, coba lagi.")
	}
	return b.sendText(chatID, "👋 Kamu sudah logout. /login untuk masuk lagi.")
}

func authMessage(op string, err error) string {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message()
	}
	return service.MessageFor(op, "")
}
