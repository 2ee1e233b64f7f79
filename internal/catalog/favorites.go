package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/toast"
)

// FavoritesAPI is the remote favorites surface.
type FavoritesAPI interface {
	FetchFavorites(ctx context.Context) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error
}

// Favorites toggles are optimistic: the heart flips instantly and the full
// previous list comes back verbatim if the backend refuses.
type Favorites struct {
	mu     sync.Mutex
	api    FavoritesAPI
	toasts toast.Toaster
	list   []domain.Favorite
	count  int
}

func NewFavorites(api FavoritesAPI, toasts toast.Toaster) *Favorites {
	if toasts == nil {
		toasts = toast.Nop
	}
	return &Favorites{api: api, toasts: toasts}
}

func (f *Favorites) Refresh(ctx context.Context) error {
	list, err := f.api.FetchFavorites(ctx)
	if err != nil {
		return fmt.Errorf("refresh favorites: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = list
	f.count = len(list)
	return nil
}

func (f *Favorites) List() []domain.Favorite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Favorite, len(f.list))
	copy(out, f.list)
	return out
}

func (f *Favorites) Has(productID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexLocked(productID) >= 0
}

// Toggle flips the favorite state for productID optimistically.
func (f *Favorites) Toggle(ctx context.Context, productID string) error {
	f.mu.Lock()
	previous := make([]domain.Favorite, len(f.list))
	copy(previous, f.list)

	idx := f.indexLocked(productID)
	adding := idx < 0
	if adding {
		f.list = append(f.list, domain.Favorite{ProductID: productID})
	} else {
		f.list = append(f.list[:idx:idx], f.list[idx+1:]...)
	}
	f.count = len(f.list)
	f.mu.Unlock()

	var err error
	if adding {
		err = f.api.AddFavorite(ctx, productID)
	} else {
		err = f.api.RemoveFavorite(ctx, productID)
	}
	if err != nil {
		f.mu.Lock()
		f.list = previous
		f.count = len(previous)
		f.mu.Unlock()
		f.toasts.Toast(toast.LevelError, "Could not update favorites")
		return fmt.Errorf("toggle favorite: %w", err)
	}
	return nil
}

// SetCount applies a pushed favorite count without a refetch.
func (f *Favorites) SetCount(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count = count
}

func (f *Favorites) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func (f *Favorites) indexLocked(productID string) int {
	for i := range f.list {
		if f.list[i].ProductID == productID {
			return i
		}
	}
	return -1
}
