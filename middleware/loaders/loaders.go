package dataloader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"
	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSource and PostSource are the batch lookups the loaders resolve through.
type UserSource interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
}

type PostSource interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error)
}

// Loaders batches the per-request user and post lookups the response shaping
// needs; one list response asks for many participants at once.
type Loaders struct {
	UserLoader *dataloader.Loader
	PostLoader *dataloader.Loader
}

func NewLoaders(users UserSource, posts PostSource) *Loaders {
	return &Loaders{
		UserLoader: newUserLoader(users),
		PostLoader: newPostLoader(posts),
	}
}

func newUserLoader(source UserSource) *dataloader.Loader {
	return dataloader.NewBatchedLoader(func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]primitive.ObjectID, len(keys))
		for i, key := range keys {
			id, err := primitive.ObjectIDFromHex(key.String())
			if err != nil {
				return resultsWithError(len(keys), fmt.Errorf("invalid user ID: %s", key.String()))
			}
			ids[i] = id
		}

		users, err := source.FindByIDs(ctx, ids)
		if err != nil {
			return resultsWithError(len(keys), err)
		}

		userMap := make(map[primitive.ObjectID]*models.User)
		for _, user := range users {
			userMap[user.ID] = user
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if user, exists := userMap[id]; exists {
				results[i] = &dataloader.Result{Data: user}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("user %s: %w", id.Hex(), models.ErrNotFound)}
			}
		}
		return results
	}, dataloader.WithWait(2*time.Millisecond))
}

func newPostLoader(source PostSource) *dataloader.Loader {
	return dataloader.NewBatchedLoader(func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]primitive.ObjectID, len(keys))
		for i, key := range keys {
			id, err := primitive.ObjectIDFromHex(key.String())
			if err != nil {
				return resultsWithError(len(keys), fmt.Errorf("invalid post ID: %s", key.String()))
			}
			ids[i] = id
		}

		posts, err := source.FindByIDs(ctx, ids)
		if err != nil {
			return resultsWithError(len(keys), err)
		}

		postMap := make(map[primitive.ObjectID]*models.Post)
		for _, post := range posts {
			postMap[post.ID] = post
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if post, exists := postMap[id]; exists {
				results[i] = &dataloader.Result{Data: post}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("post %s: %w", id.Hex(), models.ErrNotFound)}
			}
		}
		return results
	}, dataloader.WithWait(2*time.Millisecond))
}

// LoadUsers resolves many users through the batch loader.
func (l *Loaders) LoadUsers(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = ObjectIDKey(id)
	}
	thunk := l.UserLoader.LoadMany(ctx, keys)
	data, errs := thunk()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	users := make([]*models.User, len(data))
	for i, d := range data {
		users[i] = d.(*models.User)
	}
	return users, nil
}

// LoadPost resolves one post through the batch loader.
func (l *Loaders) LoadPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	thunk := l.PostLoader.Load(ctx, ObjectIDKey(id))
	data, err := thunk()
	if err != nil {
		return nil, err
	}
	return data.(*models.Post), nil
}

func resultsWithError(count int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, count)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}

type ctxKey string

const loadersKey ctxKey = "dataloaders"

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware injects fresh per-request loaders, so batching and caching never
// cross request boundaries.
func Middleware(users UserSource, posts PostSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(users, posts))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ObjectIDKey builds a dataloader key from an ObjectID.
func ObjectIDKey(id primitive.ObjectID) dataloader.Key {
	return dataloader.StringKey(id.Hex())
}
