package reminder

import (
	"context"
	"encoding/json"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/storage"
)

// loadCollection reads and decodes the JSON array stored under key. A
// missing key is an empty collection.
func loadCollection[T any](ctx context.Context, a storage.Adapter, key string) ([]T, error) {
	raw, ok, err := a.Get(ctx, key)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Key: key, Err: err}
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return items, nil
}

func saveCollection[T any](ctx context.Context, a storage.Adapter, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := a.Set(ctx, key, string(data)); err != nil {
		return &PersistenceError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// mutateCollection rewrites the whole persisted collection under key with
// the result of fn. Nothing is written if the read fails.
func mutateCollection[T any](ctx context.Context, a storage.Adapter, key string, fn func([]T) []T) error {
	items, err := loadCollection[T](ctx, a, key)
	if err != nil {
		return err
	}
	return saveCollection(ctx, a, key, fn(items))
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

// upsert replaces the item with the same id, or appends it.
func upsert[T any](items []T, item T, idOf func(T) string) []T {
	if i := indexOf(items, idOf(item), idOf); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}

func remove[T any](items []T, id string, idOf func(T) string) []T {
	out := items[:0]
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

// visible filters items down to those the user may see.
func visible[T any](items []T, user *model.User, ownerOf func(T) string) []T {
	var out []T
	for _, item := range items {
		if user.CanSee(ownerOf(item)) {
			out = append(out, item)
		}
	}
	return out
}

func reminderID(r model.Reminder) string { return r.ID }

func reminderOwner(r model.Reminder) string { return r.ElderlyID }

func medicationID(m model.Medication) string { return m.ID }

func medicationOwner(m model.Medication) string { return m.ElderlyID }

func appointmentID(a model.Appointment) string { return a.ID }

func appointmentOwner(a model.Appointment) string { return a.ElderlyID }
