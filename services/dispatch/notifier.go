package dispatch

import (
	"context"
	"log"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	previewLimit   = 120
	tokenCacheSize = 1024
)

// UserSource resolves users for device-token lookup.
type UserSource interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
}

// Notifier is the best-effort push/email collaborator. Every method swallows
// and logs failures; a broken gateway must never fail the mutation that
// triggered the alert.
type Notifier struct {
	push   PushSender
	mail   MailSender
	users  UserSource
	tokens *lru.Cache[string, []string]
}

func NewNotifier(push PushSender, mail MailSender, users UserSource) *Notifier {
	cache, err := lru.New[string, []string](tokenCacheSize)
	if err != nil {
		// Only possible with a non-positive size.
		panic(err)
	}
	return &Notifier{push: push, mail: mail, users: users, tokens: cache}
}

// Push sends a text alert to the recipients' devices. Long texts are cut to a
// preview before leaving the process.
func (n *Notifier) Push(ctx context.Context, scopeHint, text string, recipients []primitive.ObjectID) {
	receivers := n.resolveReceivers(ctx, recipients)
	if len(receivers) == 0 {
		return
	}

	if err := n.push.Dispatch(ctx, scopeHint, preview(text), receivers); err != nil {
		log.Printf("Notifier: push dispatch failed: %v", err)
	}
}

// Mail sends an email alert.
func (n *Notifier) Mail(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := n.mail.SendMail(ctx, to, subject, body); err != nil {
		log.Printf("Notifier: mail to %s failed: %v", to, err)
	}
}

// resolveReceivers maps user ids to device tokens, serving from the LRU and
// batch-fetching only the misses. Users without tokens are cached too so they
// do not trigger a lookup on every alert.
func (n *Notifier) resolveReceivers(ctx context.Context, recipients []primitive.ObjectID) []Receiver {
	receivers := make([]Receiver, 0, len(recipients))
	var misses []primitive.ObjectID

	for _, id := range recipients {
		if tokens, ok := n.tokens.Get(id.Hex()); ok {
			if len(tokens) > 0 {
				receivers = append(receivers, Receiver{ID: id.Hex(), DeviceTokens: tokens})
			}
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return receivers
	}

	users, err := n.users.FindByIDs(ctx, misses)
	if err != nil {
		log.Printf("Notifier: failed to resolve device tokens: %v", err)
		return receivers
	}

	found := make(map[string]bool, len(users))
	for _, user := range users {
		hex := user.ID.Hex()
		found[hex] = true
		n.tokens.Add(hex, user.DeviceTokens)
		if len(user.DeviceTokens) > 0 {
			receivers = append(receivers, Receiver{ID: hex, DeviceTokens: user.DeviceTokens})
		}
	}
	for _, id := range misses {
		if !found[id.Hex()] {
			n.tokens.Add(id.Hex(), nil)
		}
	}

	return receivers
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLimit]) + "…"
}
