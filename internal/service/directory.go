package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/logger"
	"github.com/gradeboard-dev/gradeboard/internal/storage"
)

// Mutation retry bounds. One conflict round means another writer won; the
// loser reloads and reapplies, so a handful of attempts is plenty even
// under contention.
const (
	mutateAttempts = 5
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// Directory owns all access to the stored user directory. Reads work on a
// fresh snapshot per call; writes go through Mutate, the single write path,
// so every writer inherits the conditional-save/retry discipline.
type Directory struct {
	store storage.DirectoryStore
}

func NewDirectory(store storage.DirectoryStore) *Directory {
	return &Directory{store: store}
}

// Find loads the current directory and looks up the identity,
// case-insensitively.
func (d *Directory) Find(ctx context.Context, email string) (domain.User, bool, error) {
	dir, _, err := d.store.Load(ctx)
	if err != nil {
		return domain.User{}, false, err
	}
	user, ok := dir.Find(email)
	return user, ok, nil
}

// List returns the safe public view of every record, never the hashes.
func (d *Directory) List(ctx context.Context) ([]domain.PublicUser, error) {
	dir, _, err := d.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]domain.PublicUser, 0, len(dir.Users))
	for _, u := range dir.Users {
		users = append(users, u.Public())
	}
	return users, nil
}

// Mutate applies fn to a fresh snapshot and saves it conditionally. On
// ErrConflict the snapshot is reloaded and fn reapplied against the fresh
// state; blind overwrite is never an option. Transient store failures are
// retried with backoff; attempts are bounded, after which the error
// surfaces as transient to the caller.
//
// fn must be safe to call multiple times and returns an error to abort the
// mutation (nothing is written in that case).
func (d *Directory) Mutate(ctx context.Context, fn func(dir *domain.Directory) error) error {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= mutateAttempts; attempt++ {
		dir, version, err := d.store.Load(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrTransient) {
				lastErr = err
				if err := sleep(ctx, &backoff); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if err := fn(&dir); err != nil {
			return err
		}

		_, err = d.store.Save(ctx, dir, version)
		if err == nil {
			return nil
		}
		lastErr = err

		switch {
		case errors.Is(err, storage.ErrConflict):
			logger.Log.Warn("directory write conflict, retrying", "attempt", attempt)
		case errors.Is(err, storage.ErrTransient):
			if err := sleep(ctx, &backoff); err != nil {
				return err
			}
		default:
			return err
		}
	}

	return fmt.Errorf("directory mutation not applied after %d attempts: %w: %v",
		mutateAttempts, storage.ErrTransient, lastErr)
}

func sleep(ctx context.Context, backoff *time.Duration) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", storage.ErrTransient, ctx.Err())
	case <-time.After(*backoff):
	}
	*backoff *= 2
	if *backoff > maxBackoff {
		*backoff = maxBackoff
	}
	return nil
}
