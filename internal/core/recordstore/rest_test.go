package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordAPI serves the generic record protocol on top of a MemoryStore.
func recordAPI(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	backend := NewMemoryStore()

	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
	fail := func(w http.ResponseWriter, err error) {
		var remote *RemoteError
		if errors.As(err, &remote) && remote.Kind == KindRejection {
			writeJSON(w, http.StatusConflict, restErrorResponse{Code: remote.Code, Message: remote.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, restErrorResponse{Message: err.Error()})
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey != "" && r.Header.Get("Authorization") != "Bearer "+apiKey {
			writeJSON(w, http.StatusUnauthorized, restErrorResponse{Message: "invalid api key"})
			return
		}
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "collections" || parts[2] != "records" {
			http.NotFound(w, r)
			return
		}
		collection := parts[1]

		filter := Filter{}
		if raw := r.URL.Query().Get("filter"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &filter); err != nil {
				writeJSON(w, http.StatusBadRequest, restErrorResponse{Message: err.Error()})
				return
			}
		}
		ctx := r.Context()

		switch r.Method {
		case http.MethodPost:
			var rec Record
			if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
				writeJSON(w, http.StatusBadRequest, restErrorResponse{Message: err.Error()})
				return
			}
			id, err := backend.Insert(ctx, collection, rec)
			if err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, restIDResponse{ID: id})
		case http.MethodPatch:
			var patch Record
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeJSON(w, http.StatusBadRequest, restErrorResponse{Message: err.Error()})
				return
			}
			n, err := backend.Update(ctx, collection, filter, patch)
			if err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, restCountResponse{Count: n})
		case http.MethodGet:
			order := Order{Field: r.URL.Query().Get("order"), Desc: r.URL.Query().Get("desc") == "true"}
			recs, err := backend.Select(ctx, collection, filter, order)
			if err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, restRecordsResponse{Records: recs})
		case http.MethodDelete:
			n, err := backend.Delete(ctx, collection, filter)
			if err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, restCountResponse{Count: n})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func TestRESTStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		server := recordAPI(t, "key_test")
		t.Cleanup(server.Close)
		return NewRESTStore(server.URL+"/", "key_test", time.Second)
	})
}

func TestRESTStore_Unauthorized(t *testing.T) {
	server := recordAPI(t, "key_test")
	defer server.Close()

	store := NewRESTStore(server.URL, "wrong", time.Second)

	_, err := store.Insert(context.Background(), CollectionCartons, Record{"carton_id": "A"})
	require.Error(t, err)
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, KindRejection, remote.Kind)
	assert.Equal(t, "401", remote.Code)
	assert.Equal(t, "invalid api key", remote.Message)

	assert.True(t, errors.Is(store.Ping(context.Background()), ErrRejected))
}

func TestRESTStore_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := NewRESTStore(server.URL, "", 50*time.Millisecond)

	_, err := store.Select(context.Background(), CollectionCartons, Filter{}, Order{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestRESTStore_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	store := NewRESTStore(url, "", time.Second)

	_, err := store.Delete(context.Background(), CollectionCartons, Filter{"carton_id": "A"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectivity), "got %v", err)
}

func TestRESTStore_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	store := NewRESTStore(server.URL, "", time.Second)

	_, err := store.Update(context.Background(), CollectionCartons, Filter{}, Record{"scanned": true})
	require.Error(t, err)
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "DECODE_ERROR", remote.Code)
}
