package recordstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRemoteError_IsByKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "Timeout", err: Timeout("select", CollectionCartons, context.DeadlineExceeded), want: ErrTimeout},
		{name: "Connectivity", err: Connectivity("insert", CollectionSessions, errors.New("dial tcp: refused")), want: ErrConnectivity},
		{name: "Rejection", err: Rejection("update", CollectionReports, "409", "conflict"), want: ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("mirror: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.want))
			for _, other := range []error{ErrTimeout, ErrConnectivity, ErrRejected} {
				if other != tt.want {
					assert.False(t, errors.Is(wrapped, other))
				}
			}
		})
	}
}

func TestRemoteError_Message(t *testing.T) {
	assert.Equal(t,
		"update compliance_reports: rejected (409): conflict",
		Rejection("update", CollectionReports, "409", "conflict").Error())
	assert.Contains(t, Timeout("select", CollectionCartons, context.DeadlineExceeded).Error(), "timeout")
	assert.Contains(t, Connectivity("insert", CollectionSessions, nil).Error(), "connectivity failure")
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify("op", "c", nil))
	assert.Equal(t, KindTimeout, KindOf(Classify("op", "c", fmt.Errorf("wrapped: %w", context.DeadlineExceeded))))
	assert.Equal(t, KindConnectivity, KindOf(Classify("op", "c", errors.New("broken pipe"))))

	original := Rejection("op", "c", "X", "nope")
	assert.Same(t, original, Classify("op", "c", original))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestClassifyPostgres(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantCode string
	}{
		{name: "UniqueViolation", err: &pgconn.PgError{Code: "23505", Message: "duplicate key", Detail: "Key (id)=(x) exists"}, wantKind: KindRejection, wantCode: CodeDuplicateID},
		{name: "UndefinedTable", err: &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}, wantKind: KindRejection, wantCode: "42P01"},
		{name: "ConnectionFailure", err: &pgconn.PgError{Code: "08006", Message: "connection failure"}, wantKind: KindConnectivity},
		{name: "AdminShutdown", err: &pgconn.PgError{Code: "57P01", Message: "terminating connection"}, wantKind: KindConnectivity},
		{name: "QueryCanceled", err: &pgconn.PgError{Code: "57014", Message: "canceling statement"}, wantKind: KindTimeout},
		{name: "GormDuplicate", err: gorm.ErrDuplicatedKey, wantKind: KindRejection, wantCode: CodeDuplicateID},
		{name: "Deadline", err: context.DeadlineExceeded, wantKind: KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyPostgres("insert", CollectionCartons, tt.err)
			var remote *RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, tt.wantKind, remote.Kind)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, remote.Code)
			}
		})
	}
}

func TestRowRoundTrip(t *testing.T) {
	row, err := toRow(CollectionCartons, Record{"carton_id": "A", "load_sequence": 3})
	require.NoError(t, err)
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, CollectionCartons, row.Collection)

	rec, err := fromRow(row)
	require.NoError(t, err)
	assert.Equal(t, row.ID, rec.String(IDField))
	assert.Equal(t, "A", rec.String("carton_id"))
	assert.Equal(t, 3, rec.Int("load_sequence"))

	_, err = fromRow(recordRow{ID: "x", Collection: "c", Data: "{broken"})
	assert.Error(t, err)
}

// slowStore blocks until its context is done.
type slowStore struct {
	*MemoryStore
}

func (s *slowStore) Select(ctx context.Context, collection string, filter Filter, order Order) ([]Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	store := WithTimeout(&slowStore{MemoryStore: NewMemoryStore()}, 20*time.Millisecond)

	start := time.Now()
	_, err := store.Select(context.Background(), CollectionCartons, Filter{}, Order{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Less(t, time.Since(start), time.Second)

	// Calls that finish in time pass through.
	id, err := store.Insert(context.Background(), CollectionCartons, Record{"carton_id": "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestWithTimeout_ZeroReturnsStore(t *testing.T) {
	mem := NewMemoryStore()
	assert.Same(t, Store(mem), WithTimeout(mem, 0))
}

func TestSortRecords_MissingField(t *testing.T) {
	recs := []Record{{"n": 2}, {}, {"n": 1}}

	SortRecords(recs, Order{Field: "n"})
	assert.Nil(t, recs[0]["n"])
	assert.Equal(t, 1, recs[1]["n"])

	SortRecords(recs, Order{Field: "n", Desc: true})
	assert.Equal(t, 2, recs[0]["n"])
	assert.Nil(t, recs[2]["n"])
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, IsDuplicate(Rejection("insert", "c", CodeDuplicateID, "taken")))
	assert.True(t, IsDuplicate(fmt.Errorf("save: %w", Rejection("insert", "c", "23505", "taken"))))
	assert.False(t, IsDuplicate(Rejection("insert", "c", "401", "nope")))
	assert.False(t, IsDuplicate(Timeout("insert", "c", nil)))
	assert.False(t, IsDuplicate(errors.New("plain")))
}
