package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sharehood/sharehoodback/middleware"
	dataloader "github.com/sharehood/sharehoodback/middleware/loaders"
	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/notify"
	"github.com/sharehood/sharehoodback/services/s3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler bundles the dependencies the HTTP layer needs. It plays the role
// the resolver struct plays in a schema-first server: one injection point.
type Handler struct {
	Notify *notify.Service
	Images *s3.S3Service
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("api: failed to encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Printf("api: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, models.ErrValidation
	}
	return id, nil
}

type bookingInputJSON struct {
	PostID     string     `json:"postId"`
	DateType   int        `json:"dateType"`
	DateNeed   *time.Time `json:"dateNeed,omitempty"`
	DateReturn *time.Time `json:"dateReturn,omitempty"`
}

type createNotificationJSON struct {
	Kind        int               `json:"kind"`
	CommunityID string            `json:"communityId"`
	RecipientID string            `json:"recipientId"`
	Booking     *bookingInputJSON `json:"booking,omitempty"`
	PostID      *string           `json:"postId,omitempty"`
}

// POST /notifications
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var body createNotificationJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, models.ErrValidation)
		return
	}

	communityID, err := parseID(body.CommunityID)
	if err != nil {
		writeError(w, err)
		return
	}
	recipientID, err := parseID(body.RecipientID)
	if err != nil {
		writeError(w, err)
		return
	}

	input := notify.CreateNotificationInput{
		Kind:        models.NotificationKind(body.Kind),
		CommunityID: communityID,
		RecipientID: recipientID,
	}
	if body.Booking != nil {
		postID, err := parseID(body.Booking.PostID)
		if err != nil {
			writeError(w, err)
			return
		}
		input.Booking = &notify.BookingInput{
			PostID:     postID,
			DateType:   models.BookingDateType(body.Booking.DateType),
			DateNeed:   body.Booking.DateNeed,
			DateReturn: body.Booking.DateReturn,
		}
	}
	if body.PostID != nil {
		postID, err := parseID(*body.PostID)
		if err != nil {
			writeError(w, err)
			return
		}
		input.PostID = &postID
	}

	view, err := h.Notify.CreateNotification(r.Context(), viewerID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

type createMessageJSON struct {
	NotificationID string `json:"notificationId"`
	Text           string `json:"text"`
}

// POST /messages
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	senderID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var body createMessageJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, models.ErrValidation)
		return
	}

	notificationID, err := parseID(body.NotificationID)
	if err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.Notify.CreateMessage(r.Context(), senderID, notify.CreateMessageInput{
		NotificationID: notificationID,
		Text:           body.Text,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

type updateBookingJSON struct {
	NotificationID string `json:"notificationId"`
	Status         int    `json:"status"`
	NotifyText     string `json:"notifyText"`
}

// PUT /bookings/{id}
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	bookingID, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var body updateBookingJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, models.ErrValidation)
		return
	}

	notificationID, err := parseID(body.NotificationID)
	if err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.Notify.UpdateBooking(r.Context(), actorID, notify.UpdateBookingInput{
		BookingID:      bookingID,
		NotificationID: notificationID,
		Status:         models.BookingStatus(body.Status),
		NotifyText:     body.NotifyText,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// GET /notifications/{id}
func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.Notify.GetNotification(r.Context(), viewerID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	// The referenced post is joined here through the per-request batch loader.
	loaders := dataloader.For(r.Context())
	switch {
	case view.Booking != nil:
		post, err := loaders.LoadPost(r.Context(), view.Booking.PostID)
		if err != nil {
			writeError(w, err)
			return
		}
		view.Post = post
	case view.Notification.PostID != nil:
		post, err := loaders.LoadPost(r.Context(), *view.Notification.PostID)
		if err != nil {
			writeError(w, err)
			return
		}
		view.Post = post
	}
	writeJSON(w, http.StatusOK, view)
}

type notificationListItem struct {
	Notification *models.Notification `json:"notification"`
	Latest       *models.Message      `json:"latestMessage,omitempty"`
	Users        []*models.User       `json:"users"`
}

// GET /notifications?communityId=
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	communityID, err := parseID(r.URL.Query().Get("communityId"))
	if err != nil {
		writeError(w, err)
		return
	}

	previews, err := h.Notify.ListNotifications(r.Context(), viewerID, communityID)
	if err != nil {
		writeError(w, err)
		return
	}

	// One batched lookup for every participant in the page.
	seen := make(map[primitive.ObjectID]bool)
	var participantIDs []primitive.ObjectID
	for _, p := range previews {
		for _, id := range p.Notification.Participants {
			if !seen[id] {
				seen[id] = true
				participantIDs = append(participantIDs, id)
			}
		}
	}
	users, err := dataloader.For(r.Context()).LoadUsers(r.Context(), participantIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	items := make([]*notificationListItem, 0, len(previews))
	for _, p := range previews {
		item := &notificationListItem{Notification: p.Notification, Latest: p.Latest}
		for _, id := range p.Notification.Participants {
			if u := byID[id]; u != nil {
				item.Users = append(item.Users, u)
			}
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// GET /notifications/chat?recipientId=&communityId=
func (h *Handler) FindChatNotification(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	recipientID, err := parseID(r.URL.Query().Get("recipientId"))
	if err != nil {
		writeError(w, err)
		return
	}
	communityID, err := parseID(r.URL.Query().Get("communityId"))
	if err != nil {
		writeError(w, err)
		return
	}

	notif, err := h.Notify.FindChatNotification(r.Context(), viewerID, communityID, recipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	if notif == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, notif)
}

// GET /notifications/unread?communityId=
func (h *Handler) HasUnread(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	communityID, err := parseID(r.URL.Query().Get("communityId"))
	if err != nil {
		writeError(w, err)
		return
	}

	unread, err := h.Notify.HasUnread(r.Context(), viewerID, communityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasUnread": unread})
}

const maxImageBytes = 10 << 20

// POST /images
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.CurrentUserID(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if h.Images == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "image storage is not configured"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil || len(data) == 0 {
		writeError(w, models.ErrValidation)
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	url, err := h.Images.UploadImage(r.Context(), data, contentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// DELETE /images/{key...}
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.CurrentUserID(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if h.Images == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "image storage is not configured"})
		return
	}

	key := r.PathValue("key")
	if key == "" {
		writeError(w, models.ErrValidation)
		return
	}

	if err := h.Images.DeleteImage(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
