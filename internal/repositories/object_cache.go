package repositories

import (
	"fmt"

	"github.com/desertthunder/rdx/internal/models"
)

// ObjectCacheAdapter implements tasks.ObjectCacher using ObjectRepository.
//
// Objects already cached with the same key are refreshed in place.
type ObjectCacheAdapter struct {
	repo *ObjectRepository
}

// NewObjectCacheAdapter creates a new ObjectCacheAdapter with the given repository
func NewObjectCacheAdapter(repo *ObjectRepository) *ObjectCacheAdapter {
	return &ObjectCacheAdapter{repo: repo}
}

// CacheObjects stores every object, stopping at the first failure.
func (a *ObjectCacheAdapter) CacheObjects(objects ...models.Object) error {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if _, err := a.repo.Save(obj); err != nil {
			return fmt.Errorf("failed to cache %s: %w", obj.ObjectKey(), err)
		}
	}
	return nil
}

// Lookup returns the cached object for key, decoded.
func (a *ObjectCacheAdapter) Lookup(key string) (models.Object, error) {
	cached, err := a.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	return cached.Decode()
}
