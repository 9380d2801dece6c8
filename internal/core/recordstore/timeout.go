package recordstore

import (
	"context"
	"time"
)

// timeoutStore bounds every call of the wrapped Store.
type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps store so each call gets its own deadline. Deadline expiry is
// reported as a KindTimeout *RemoteError whatever the adapter returned.
func WithTimeout(store Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return store
	}
	return &timeoutStore{next: store, timeout: timeout}
}

func (t *timeoutStore) bound(ctx context.Context, op, collection string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded && KindOf(err) != KindRejection {
		return Timeout(op, collection, err)
	}
	return Classify(op, collection, err)
}

func (t *timeoutStore) Insert(ctx context.Context, collection string, record Record) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	id, err := t.next.Insert(ctx, collection, record)
	return id, t.bound(ctx, "insert", collection, err)
}

func (t *timeoutStore) Update(ctx context.Context, collection string, filter Filter, patch Record) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	n, err := t.next.Update(ctx, collection, filter, patch)
	return n, t.bound(ctx, "update", collection, err)
}

func (t *timeoutStore) Select(ctx context.Context, collection string, filter Filter, order Order) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	recs, err := t.next.Select(ctx, collection, filter, order)
	return recs, t.bound(ctx, "select", collection, err)
}

func (t *timeoutStore) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	n, err := t.next.Delete(ctx, collection, filter)
	return n, t.bound(ctx, "delete", collection, err)
}

func (t *timeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.bound(ctx, "ping", "", t.next.Ping(ctx))
}

func (t *timeoutStore) Close() error {
	return t.next.Close()
}
