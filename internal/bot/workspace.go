package bot

import (
	"context"
	"time"

	"taskboard/internal/dates"
	"taskboard/internal/model"
	"taskboard/internal/store"
	"taskboard/internal/view"
)

// workspace is the mounted screen tree of one signed-in chat: the live
// mirror plus each screen's selection state. Selections reset on remount.
type workspace struct {
	chatID   int64
	ownerID  string
	mirror   *store.Mirror
	home     view.HomeSelector
	day      time.Time
	stopScan func()
}

type conversationStage int

const (
	stageNone conversationStage = iota
	stageRegisterEmail
	stageRegisterPassword
	stageRegisterConfirm
	stageLoginEmail
	stageLoginPassword
	stageTaskTitle
	stageTaskCategory
	stageTaskDue
	stageCategoryName
)

type conversationState struct {
	stage      conversationStage
	email      string
	password   string
	title      string
	categoryID string
}

// watch follows the chat's auth state once. The listener fires right away,
// which mounts the workspace of a restored session.
func (b *Bot) watch(chatID int64) {
	b.mu.Lock()
	if _, ok := b.watched[chatID]; ok {
		b.mu.Unlock()
		return
	}
	b.watched[chatID] = func() {}
	b.mu.Unlock()

	cancel := b.sessions.OnAuthStateChange(chatID, func(userID string) {
		b.unmount(chatID)
		if userID != "" {
			b.mount(chatID, userID)
		}
	})

	b.mu.Lock()
	b.watched[chatID] = cancel
	b.mu.Unlock()
}

func (b *Bot) mount(chatID int64, ownerID string) {
	mirror, err := store.Attach(context.Background(), b.source, ownerID, b.log)
	if err != nil {
		b.log.WithChat(chatID).Warnw("mount workspace", "error", err)
		return
	}
	ws := &workspace{
		chatID:  chatID,
		ownerID: ownerID,
		mirror:  mirror,
		home:    view.DefaultHomeSelector(),
		day:     dates.StartOfDay(b.now(), b.loc),
	}
	ws.stopScan = mirror.Tasks.Subscribe(func(tasks []model.Task) {
		b.scanDeadlines(ownerID, tasks)
	})

	b.mu.Lock()
	b.workspaces[chatID] = ws
	b.mu.Unlock()

	// the first snapshot arrived while attaching
	if mirror.Tasks.Loaded() {
		b.scanDeadlines(ownerID, mirror.Tasks.Snapshot())
	}
	b.log.WithChat(chatID).WithUserID(ownerID).Infow("workspace mounted")
}

func (b *Bot) unmount(chatID int64) {
	b.mu.Lock()
	ws, ok := b.workspaces[chatID]
	delete(b.workspaces, chatID)
	delete(b.conversations, chatID)
	b.mu.Unlock()
	if !ok {
		return
	}
	ws.stopScan()
	ws.mirror.Close()
	b.log.WithChat(chatID).WithUserID(ws.ownerID).Infow("workspace unmounted")
}

func (b *Bot) shutdown() {
	b.mu.Lock()
	cancels := make([]func(), 0, len(b.watched))
	chats := make([]int64, 0, len(b.workspaces))
	for _, cancel := range b.watched {
		cancels = append(cancels, cancel)
	}
	for chatID := range b.workspaces {
		chats = append(chats, chatID)
	}
	b.watched = make(map[int64]func())
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	for _, chatID := range chats {
		b.unmount(chatID)
	}
}

func (b *Bot) workspace(chatID int64) *workspace {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.workspaces[chatID]
}

func (b *Bot) scanDeadlines(ownerID string, tasks []model.Task) {
	if b.reminderSvc == nil || len(tasks) == 0 {
		return
	}
	n, err := b.reminderSvc.Scan(context.Background(), ownerID, tasks, b.now().In(b.loc))
	if err != nil {
		b.log.Warnw("deadline scan", "user_id", ownerID, "error", err)
		return
	}
	if n > 0 {
		b.log.Infow("deadline notifications scheduled", "user_id", ownerID, "count", n)
	}
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) hasConversation(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[chatID]
	return ok
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}
