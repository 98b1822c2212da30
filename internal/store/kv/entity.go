package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"

	"github.com/recipebox/recipebox-server/internal/store"
)

// Entity provides generic CRUD operations over one key prefix.
//
// Layout:
//
//	<prefix>id:<id>           -> JSON record{seq, value}
//	<prefix>order:<seq %020d> -> <id>
//
// The order keys sort lexically in creation order, so List is a single
// prefix scan with no in-memory sort.
type Entity[T any] struct {
	db     *badger.DB
	prefix string
	seq    *badger.Sequence
}

type record[T any] struct {
	Seq   uint64 `json:"seq"`
	Value *T     `json:"value"`
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](db *badger.DB, prefix string, seq *badger.Sequence) *Entity[T] {
	return &Entity[T]{db: db, prefix: prefix, seq: seq}
}

func (e *Entity[T]) idKey(id string) []byte {
	return []byte(e.prefix + "id:" + id)
}

func (e *Entity[T]) orderPrefix() []byte {
	return []byte(e.prefix + "order:")
}

func (e *Entity[T]) orderKey(seq uint64) []byte {
	return fmt.Appendf(e.orderPrefix(), "%020d", seq)
}

// Create stores a new entity under id.
// Returns store.ErrAlreadyExists if an entity with this ID already exists.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seq, err := e.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	data, err := json.Marshal(record[T]{Seq: seq, Value: entity})
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(e.idKey(id))
		if err == nil {
			return store.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := txn.Set(e.idKey(id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		if err := txn.Set(e.orderKey(seq), []byte(id)); err != nil {
			return fmt.Errorf("failed to set order key: %w", err)
		}
		return nil
	})
}

// Get retrieves an entity by ID.
// Returns store.ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec record[T]
	err := e.db.View(func(txn *badger.Txn) error {
		return e.read(txn, id, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

// Delete removes an entity and its order key.
// Returns store.ErrNotFound if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.db.Update(func(txn *badger.Txn) error {
		var rec record[T]
		if err := e.read(txn, id, &rec); err != nil {
			return err
		}

		if err := txn.Delete(e.orderKey(rec.Seq)); err != nil {
			return fmt.Errorf("failed to delete order key: %w", err)
		}
		if err := txn.Delete(e.idKey(id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all entities in creation order.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		err := e.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = e.orderPrefix()

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				id, err := it.Item().ValueCopy(nil)
				if err != nil {
					return fmt.Errorf("failed to read order key: %w", err)
				}

				var rec record[T]
				if err := e.read(txn, string(id), &rec); err != nil {
					return err
				}

				if !yield(rec.Value, nil) {
					return errStop
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(nil, err)
		}
	}
}

// Count returns the number of stored entities without decoding values.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = e.orderPrefix()
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (e *Entity[T]) read(txn *badger.Txn, id string, rec *record[T]) error {
	item, err := txn.Get(e.idKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}

	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, rec); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
}

// errStop signals that the consumer of List stopped early.
var errStop = errors.New("iteration stopped")
