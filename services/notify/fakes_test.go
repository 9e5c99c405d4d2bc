package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory stand-ins for the store, cache and dispatcher seams. They mirror
// the targeted-update semantics of the real mongo services, including the
// unique chat index.

type fakeNotificationStore struct {
	mu       sync.Mutex
	docs     map[primitive.ObjectID]*models.Notification
	bookings *fakeBookingStore
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{docs: make(map[primitive.ObjectID]*models.Notification)}
}

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n.Kind == models.NotificationKindChat {
		for _, existing := range f.docs {
			if existing.Kind == models.NotificationKindChat &&
				existing.CommunityID == n.CommunityID &&
				existing.ChatKey == n.ChatKey {
				return duplicateKeyError()
			}
		}
	}

	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	f.docs[n.ID] = n
	return nil
}

func (f *fakeNotificationStore) CreateWithBooking(ctx context.Context, n *models.Notification, b *models.Booking) error {
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	id := b.ID
	n.BookingID = &id
	if err := f.Create(ctx, n); err != nil {
		return err
	}
	// The real store inserts the booking alongside the notification.
	f.bookings.add(b)
	return nil
}

func (f *fakeNotificationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}
	return n, nil
}

func (f *fakeNotificationStore) FindChat(ctx context.Context, communityID, userA, userB primitive.ObjectID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := models.ChatKey(userA, userB)
	for _, n := range f.docs {
		if n.Kind == models.NotificationKindChat && n.CommunityID == communityID && n.ChatKey == key {
			return n, nil
		}
	}
	return nil, nil
}

func (f *fakeNotificationStore) AppendMessage(ctx context.Context, id, messageID, recipientID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}
	n.Messages = append(n.Messages, messageID)
	n.IsRead[recipientID.Hex()] = false
	n.UpdatedAt = time.Now()
	return nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, viewerID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}
	n.IsRead[viewerID.Hex()] = true
	return nil
}

func (f *fakeNotificationStore) ReplaceReadState(ctx context.Context, id primitive.ObjectID, isRead map[string]bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}
	n.IsRead = isRead
	n.UpdatedAt = time.Now()
	return nil
}

func (f *fakeNotificationStore) ListByParticipant(ctx context.Context, communityID, userID primitive.ObjectID) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Notification
	for _, n := range f.docs {
		if n.CommunityID != communityID {
			continue
		}
		if n.HasParticipant(userID) {
			result = append(result, n)
		}
	}
	// updatedAt descending, like the store's sort option.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].UpdatedAt.After(result[i].UpdatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (f *fakeNotificationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakeMessageStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{docs: make(map[primitive.ObjectID]*models.Message)}
}

func (f *fakeMessageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func (f *fakeMessageStore) Create(ctx context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	f.docs[m.ID] = m
	return nil
}

func (f *fakeMessageStore) ListByNotification(ctx context.Context, notificationID primitive.ObjectID) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Message
	for _, m := range f.docs {
		if m.NotificationID == notificationID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMessageStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Message
	for _, id := range ids {
		if m, ok := f.docs[id]; ok {
			result = append(result, m)
		}
	}
	return result, nil
}

type fakeBookingStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*models.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{docs: make(map[primitive.ObjectID]*models.Booking)}
}

func (f *fakeBookingStore) add(b *models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[b.ID] = b
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id.Hex(), models.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBookingStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus, modifiedBy primitive.ObjectID) (*models.Booking, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("booking status %d is not a valid transition target: %w", status, models.ErrValidation)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id.Hex(), models.ErrNotFound)
	}
	if b.Status != models.BookingStatusPending {
		return nil, fmt.Errorf("booking %s already resolved with status %d: %w", id.Hex(), b.Status, models.ErrValidation)
	}
	b.Status = status
	b.LastModifiedBy = modifiedBy
	b.UpdatedAt = time.Now()
	return b, nil
}

type fakeUserStore struct {
	mu           sync.Mutex
	docs         map[primitive.ObjectID]*models.User
	findByIDsErr error
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{docs: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		f.docs[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), models.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findByIDsErr != nil {
		return nil, f.findByIDsErr
	}
	var result []*models.User
	for _, id := range ids {
		if u, ok := f.docs[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

type fakePostStore struct {
	docs map[primitive.ObjectID]*models.Post
}

func newFakePostStore(posts ...*models.Post) *fakePostStore {
	f := &fakePostStore{docs: make(map[primitive.ObjectID]*models.Post)}
	for _, p := range posts {
		f.docs[p.ID] = p
	}
	return f
}

func (f *fakePostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), models.ErrNotFound)
	}
	return p, nil
}

type fakeUnreadIndex struct {
	mu    sync.Mutex
	flags map[string]map[string]bool
}

func newFakeUnreadIndex() *fakeUnreadIndex {
	return &fakeUnreadIndex{flags: make(map[string]map[string]bool)}
}

func (f *fakeUnreadIndex) Set(ctx context.Context, userID, communityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flags[userID] == nil {
		f.flags[userID] = make(map[string]bool)
	}
	f.flags[userID][communityID] = true
	return nil
}

func (f *fakeUnreadIndex) Get(ctx context.Context, userID, communityID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[userID][communityID], nil
}

func (f *fakeUnreadIndex) Clear(ctx context.Context, userID, communityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.flags[userID], communityID)
	return nil
}

type pushRecord struct {
	Scope      string
	Text       string
	Recipients []primitive.ObjectID
}

type mailRecord struct {
	To      string
	Subject string
	Body    string
}

type fakeAlerter struct {
	mu     sync.Mutex
	pushes []pushRecord
	mails  []mailRecord
}

func (f *fakeAlerter) Push(ctx context.Context, scopeHint, text string, recipients []primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, pushRecord{Scope: scopeHint, Text: text, Recipients: recipients})
}

func (f *fakeAlerter) Mail(ctx context.Context, to, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mails = append(f.mails, mailRecord{To: to, Subject: subject, Body: body})
}
