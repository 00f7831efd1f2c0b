package store

import (
	"context"

	"github.com/proposalhub/search-sync/internal/record"
)

// PreCreateHook runs strictly before a create is persisted and may mutate the
// pending draft. A returned error aborts the write.
type PreCreateHook func(ctx context.Context, draft *record.Draft) error

// PreUpdateHook runs strictly before an update is persisted. current is the
// stored record the update targets (nil if it could not be loaded). A
// returned error aborts the write.
type PreUpdateHook func(ctx context.Context, draft *record.Draft, current *record.SourceRecord) error

// PostSaveHook runs after a create or update has committed, with the
// persisted record re-read from the store. Post hooks cannot fail the write.
type PostSaveHook func(ctx context.Context, rec *record.SourceRecord)

// PostDeleteHook runs after a delete has committed, with the record as it was
// before deletion.
type PostDeleteHook func(ctx context.Context, rec *record.SourceRecord)

// hooks is the store's lifecycle subscription registry. Hooks run
// synchronously, in registration order, on the goroutine performing the
// mutation.
type hooks struct {
	preCreate  []PreCreateHook
	preUpdate  []PreUpdateHook
	postCreate []PostSaveHook
	postUpdate []PostSaveHook
	postDelete []PostDeleteHook
}

// OnPreCreate subscribes a hook to run before every create.
func (s *Store) OnPreCreate(h PreCreateHook) {
	s.hooks.preCreate = append(s.hooks.preCreate, h)
}

// OnPreUpdate subscribes a hook to run before every update.
func (s *Store) OnPreUpdate(h PreUpdateHook) {
	s.hooks.preUpdate = append(s.hooks.preUpdate, h)
}

// OnPostCreate subscribes a hook to run after every committed create.
func (s *Store) OnPostCreate(h PostSaveHook) {
	s.hooks.postCreate = append(s.hooks.postCreate, h)
}

// OnPostUpdate subscribes a hook to run after every committed update.
func (s *Store) OnPostUpdate(h PostSaveHook) {
	s.hooks.postUpdate = append(s.hooks.postUpdate, h)
}

// OnPostDelete subscribes a hook to run after every committed delete.
func (s *Store) OnPostDelete(h PostDeleteHook) {
	s.hooks.postDelete = append(s.hooks.postDelete, h)
}
