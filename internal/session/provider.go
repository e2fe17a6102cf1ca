// Package session tracks which user is signed in on which chat and tells
// listeners when that changes.
package session

import (
	"context"
	"fmt"
	"sync"

	"taskboard/internal/logger"
	"taskboard/internal/model"
)

// Bindings persists chat sessions.
type Bindings interface {
	BindChat(ctx context.Context, userID string, chatID int64) error
	UnbindChat(ctx context.Context, chatID int64) error
	ListBound(ctx context.Context) ([]model.User, error)
}

// Listener receives the current user id of a chat, empty when signed out.
type Listener func(userID string)

type change struct {
	chatID int64
	userID string
}

// Provider maps chats to signed-in users. A user is signed in on at most
// one chat and a chat holds at most one user.
type Provider struct {
	store Bindings
	log   *logger.Logger

	mu        sync.Mutex
	sessions  map[int64]string
	listeners map[int64]map[uint64]Listener
	nextID    uint64
}

func NewProvider(store Bindings, log *logger.Logger) *Provider {
	return &Provider{
		store:     store,
		log:       log.WithComponent("session"),
		sessions:  make(map[int64]string),
		listeners: make(map[int64]map[uint64]Listener),
	}
}

// Restore loads persisted sessions. Listeners of restored chats are
// notified.
func (p *Provider) Restore(ctx context.Context) error {
	users, err := p.store.ListBound(ctx)
	if err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}

	var changes []change
	p.mu.Lock()
	for _, u := range users {
		if u.TelegramChatID == 0 {
			continue
		}
		changes = append(changes, p.setLocked(u.TelegramChatID, u.ID)...)
	}
	p.mu.Unlock()

	p.notify(changes)
	p.log.Infow("sessions restored", "count", len(users))
	return nil
}

// CurrentUser returns the user signed in on the chat.
func (p *Provider) CurrentUser(chatID int64) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	userID, ok := p.sessions[chatID]
	return userID, ok
}

// ChatFor returns the chat a user is signed in on.
func (p *Provider) ChatFor(userID string) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for chatID, uid := range p.sessions {
		if uid == userID {
			return chatID, true
		}
	}
	return 0, false
}

// Chats lists every chat with a signed-in user.
func (p *Provider) Chats() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	chats := make([]int64, 0, len(p.sessions))
	for chatID := range p.sessions {
		chats = append(chats, chatID)
	}
	return chats
}

// OnAuthStateChange calls fn right away with the chat's current user and
// again after every sign in or sign out on that chat.
func (p *Provider) OnAuthStateChange(chatID int64, fn Listener) (cancel func()) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	if p.listeners[chatID] == nil {
		p.listeners[chatID] = make(map[uint64]Listener)
	}
	p.listeners[chatID][id] = fn
	current := p.sessions[chatID]
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.listeners[chatID], id)
			if len(p.listeners[chatID]) == 0 {
				delete(p.listeners, chatID)
			}
		})
	}
}

// SignIn binds the user to the chat. Any previous session of the user on
// another chat, and of another user on this chat, ends.
func (p *Provider) SignIn(ctx context.Context, chatID int64, userID string) error {
	if userID == "" {
		return fmt.Errorf("sign in: empty user id")
	}
	if err := p.store.BindChat(ctx, userID, chatID); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	p.mu.Lock()
	changes := p.setLocked(chatID, userID)
	p.mu.Unlock()

	p.notify(changes)
	p.log.WithUserID(userID).Infow("signed in", "chat_id", chatID)
	return nil
}

// SignOut ends the chat's session. Signing out a chat without a session is
// a no-op.
func (p *Provider) SignOut(ctx context.Context, chatID int64) error {
	if err := p.store.UnbindChat(ctx, chatID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	p.mu.Lock()
	userID, ok := p.sessions[chatID]
	delete(p.sessions, chatID)
	p.mu.Unlock()

	if ok {
		p.notify([]change{{chatID: chatID}})
		p.log.WithUserID(userID).Infow("signed out", "chat_id", chatID)
	}
	return nil
}

func (p *Provider) setLocked(chatID int64, userID string) []change {
	var changes []change
	for other, uid := range p.sessions {
		if uid == userID && other != chatID {
			delete(p.sessions, other)
			changes = append(changes, change{chatID: other})
		}
	}
	if p.sessions[chatID] != userID {
		p.sessions[chatID] = userID
		changes = append(changes, change{chatID: chatID, userID: userID})
	}
	return changes
}

// notify runs listeners outside the lock so they may call back into the
// provider.
func (p *Provider) notify(changes []change) {
	for _, c := range changes {
		p.mu.Lock()
		fns := make([]Listener, 0, len(p.listeners[c.chatID]))
		for _, fn := range p.listeners[c.chatID] {
			fns = append(fns, fn)
		}
		p.mu.Unlock()

		for _, fn := range fns {
			fn(c.userID)
		}
	}
}
