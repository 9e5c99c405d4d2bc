package redis

import (
	"context"
	"fmt"
	"log"
)

// UnreadIndex is the per-user "has unread activity" hint: one hash per user,
// field = community id, value = "true" while unread, field deleted when
// cleared. It is eventually consistent with the notification store and is
// never treated as a source of truth.
type UnreadIndex struct {
	client RedisClient
}

func NewUnreadIndex(client RedisClient) *UnreadIndex {
	return &UnreadIndex{client: client}
}

func unreadKey(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

func (u *UnreadIndex) Set(ctx context.Context, userID, communityID string) error {
	err := u.client.HSet(ctx, unreadKey(userID), communityID, "true")
	if err != nil {
		log.Printf("UnreadIndex: failed to set flag for user %s community %s: %v", userID, communityID, err)
		return err
	}
	return nil
}

func (u *UnreadIndex) Get(ctx context.Context, userID, communityID string) (bool, error) {
	value, err := u.client.HGet(ctx, unreadKey(userID), communityID)
	if err != nil {
		if IsNil(err) {
			return false, nil
		}
		return false, err
	}
	return value == "true", nil
}

func (u *UnreadIndex) Clear(ctx context.Context, userID, communityID string) error {
	err := u.client.HDel(ctx, unreadKey(userID), communityID)
	if err != nil {
		log.Printf("UnreadIndex: failed to clear flag for user %s community %s: %v", userID, communityID, err)
		return err
	}
	return nil
}
