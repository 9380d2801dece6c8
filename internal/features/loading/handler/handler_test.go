package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dockload/internal/core/recordstore"
	"dockload/internal/core/server"
	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/ports"
	"dockload/internal/features/manifest/parser"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLoadingService is a mock implementation of ports.LoadingService
type MockLoadingService struct {
	mock.Mock
}

func (m *MockLoadingService) Open(ctx context.Context, discipline, operator string) (*ports.Progress, error) {
	args := m.Called(ctx, discipline, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Progress), args.Error(1)
}

func (m *MockLoadingService) Input(ctx context.Context, sessionID, text string) (*ports.Feedback, error) {
	args := m.Called(ctx, sessionID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Feedback), args.Error(1)
}

func (m *MockLoadingService) Keys(ctx context.Context, sessionID string, events []ports.KeyEvent, submit bool) (*ports.Feedback, error) {
	args := m.Called(ctx, sessionID, events, submit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Feedback), args.Error(1)
}

func (m *MockLoadingService) Progress(ctx context.Context, sessionID string) (*ports.Progress, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Progress), args.Error(1)
}

func (m *MockLoadingService) Reset(ctx context.Context, sessionID string) (*ports.Progress, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Progress), args.Error(1)
}

func (m *MockLoadingService) RegisterStops(ctx context.Context, shipmentID string, stops []domain.DeliveryStopCarton) error {
	return m.Called(ctx, shipmentID, stops).Error(0)
}

func setupApp(service *MockLoadingService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	handler := NewLoadingHandler(service)
	app.Post("/sessions", handler.OpenSession)
	app.Get("/sessions/:id", handler.GetProgress)
	app.Post("/sessions/:id/input", handler.SubmitInput)
	app.Post("/sessions/:id/keys", handler.SubmitKeys)
	app.Post("/sessions/:id/reset", handler.ResetSession)
	app.Put("/shipments/:id/stops", handler.RegisterStops)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) server.ErrorResponse {
	t.Helper()
	var body server.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLoadingHandler_OpenSession(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLoadingService)
		app := setupApp(mockService)

		progress := &ports.Progress{SessionID: "sess-1", Stage: domain.StageManifestPending, Discipline: domain.DisciplineStrict}
		mockService.On("Open", mock.Anything, "strict", "op-7").Return(progress, nil).Once()

		resp, err := app.Test(jsonRequest("POST", "/sessions", `{"discipline":"strict","operator":"op-7"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got ports.Progress
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "sess-1", got.SessionID)
		assert.Equal(t, domain.DisciplineStrict, got.Discipline)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyBodyUsesDefaults", func(t *testing.T) {
		mockService := new(MockLoadingService)
		app := setupApp(mockService)

		mockService.On("Open", mock.Anything, "", "").Return(&ports.Progress{SessionID: "sess-2"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest("POST", "/sessions", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidDiscipline", func(t *testing.T) {
		mockService := new(MockLoadingService)
		app := setupApp(mockService)

		err := fmt.Errorf("%w: %q", domain.ErrInvalidDiscipline, "sideways")
		mockService.On("Open", mock.Anything, "sideways", "").Return(nil, err).Once()

		resp, err := app.Test(jsonRequest("POST", "/sessions", `{"discipline":"sideways"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "test-ray-id", decodeError(t, resp).RayID)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		mockService := new(MockLoadingService)
		app := setupApp(mockService)

		resp, err := app.Test(jsonRequest("POST", "/sessions", `{"discipline":`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockService.AssertNotCalled(t, "Open", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoadingHandler_SubmitInput(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		mockService := new(MockLoadingService)
		app := setupApp(mockService)

		feedback := &ports.Feedback{
			SessionID: "sess-1",
			Stage:     domain.StageScanningInProgress,
			Outcome:   &domain.Outcome{Kind: domain.OutcomeAccepted, CartonID: "A", Position: 1},
			Message:   "Carton A loaded at position 1",
		}
		mockService.On("Input", mock.Anything, "sess-1", "A").Return(feedback, nil).Once()

		resp, err := app.Test(jsonRequest("POST", "/sessions/sess-1/input", `{"text":"A"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got ports.Feedback
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.NotNil(t, got.Outcome)
		assert.Equal(t, 1, got.Outcome.Position)
		mockService.AssertExpectations(t)
	})

	tests := []struct {
		name     string
		err      error
		status   int
		kind     string
		expected string
		actual   string
	}{
		{
			name: "SequenceViolation",
			err: &domain.ValidationError{
				Kind:     domain.ValidationSequenceViolation,
				Message:  "Out of sequence",
				Expected: "A (position 1)",
				Actual:   "B (position 3)",
			},
			status:   http.StatusUnprocessableEntity,
			kind:     "SEQUENCE_VIOLATION",
			expected: "A (position 1)",
			actual:   "B (position 3)",
		},
		{
			name:   "ParseError",
			err:    &parser.ParseError{Sample: "!!!", Reason: "unrecognized manifest encoding"},
			status: http.StatusUnprocessableEntity,
			kind:   KindInvalidManifest,
			actual: "!!!",
		},
		{
			name:   "WrongStage",
			err:    &domain.StateError{Stage: domain.StageCompleted, Operation: "accept input"},
			status: http.StatusConflict,
		},
		{name: "NotFound", err: domain.ErrSessionNotFound, status: http.StatusNotFound},
		{
			name:   "StoreTimeout",
			err:    fmt.Errorf("service: failed to save manifest: %w", recordstore.Timeout("insert", recordstore.CollectionShipments, nil)),
			status: http.StatusGatewayTimeout,
		},
		{
			name:   "StoreUnreachable",
			err:    recordstore.Connectivity("update", recordstore.CollectionSessions, nil),
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "StoreRejected",
			err:    recordstore.Rejection("insert", recordstore.CollectionCartons, "409", "conflict"),
			status: http.StatusBadGateway,
		},
		{name: "Internal", err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockLoadingService)
			app := setupApp(mockService)

			mockService.On("Input", mock.Anything, "sess-1", "B").Return(&ports.Feedback{SessionID: "sess-1"}, tt.err).Once()

			resp, err := app.Test(jsonRequest("POST", "/sessions/sess-1/input", `{"text":"B"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decodeError(t, resp)
			assert.Equal(t, "test-ray-id", body.RayID)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, tt.kind, body.Kind)
			assert.Equal(t, tt.expected, body.Expected)
			assert.Equal(t, tt.actual, body.Actual)
		})
	}
}

func TestLoadingHandler_SubmitKeys(t *testing.T) {
	mockService := new(MockLoadingService)
	app := setupApp(mockService)

	events := []ports.KeyEvent{
		{Key: "A", At: "2026-03-02T08:00:00.000Z"},
		{Key: "B", At: "2026-03-02T08:00:00.010Z"},
	}
	feedback := &ports.Feedback{SessionID: "sess-1", Stage: domain.StageManifestPending, Message: "Input buffered"}
	mockService.On("Keys", mock.Anything, "sess-1", events, false).Return(feedback, nil).Once()

	resp, err := app.Test(jsonRequest("POST", "/sessions/sess-1/keys",
		`{"events":[{"key":"A","at":"2026-03-02T08:00:00.000Z"},{"key":"B","at":"2026-03-02T08:00:00.010Z"}]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockService.AssertExpectations(t)

	mockService.On("Keys", mock.Anything, "sess-1", []ports.KeyEvent{{Key: "A", At: "soon"}}, true).
		Return(nil, fmt.Errorf("%w: event 0", domain.ErrInvalidKeyEvent)).Once()

	resp, err = app.Test(jsonRequest("POST", "/sessions/sess-1/keys", `{"events":[{"key":"A","at":"soon"}],"submit":true}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoadingHandler_ProgressAndReset(t *testing.T) {
	mockService := new(MockLoadingService)
	app := setupApp(mockService)

	progress := &ports.Progress{
		SessionID:     "sess-1",
		Stage:         domain.StageScanningInProgress,
		TotalExpected: 3,
		TotalScanned:  1,
		NextExpected:  &domain.ExpectedSlot{CartonID: "C", ExpectedPosition: 2, StopSequenceNumber: 2},
	}
	mockService.On("Progress", mock.Anything, "sess-1").Return(progress, nil).Once()
	mockService.On("Progress", mock.Anything, "missing").Return(nil, domain.ErrSessionNotFound).Once()
	mockService.On("Reset", mock.Anything, "sess-1").Return(&ports.Progress{SessionID: "sess-1", Stage: domain.StageManifestPending}, nil).Once()

	resp, err := app.Test(httptest.NewRequest("GET", "/sessions/sess-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got ports.Progress
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.NextExpected)
	assert.Equal(t, "C", got.NextExpected.CartonID)

	resp, err = app.Test(httptest.NewRequest("GET", "/sessions/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/sessions/sess-1/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, domain.StageManifestPending, got.Stage)

	mockService.AssertExpectations(t)
}

func TestLoadingHandler_RegisterStops(t *testing.T) {
	mockService := new(MockLoadingService)
	app := setupApp(mockService)

	stops := []domain.DeliveryStopCarton{
		{CartonID: "A", StopSequenceNumber: 3, CustomerName: "Acme", Address: "Av. Amazonas 100"},
		{CartonID: "B", StopSequenceNumber: 1, CustomerName: "Acme", Address: "Calle 10"},
	}
	mockService.On("RegisterStops", mock.Anything, "SHP-1", stops).Return(nil).Once()

	body := `{"stops":[
		{"carton_id":"A","stop_sequence_number":3,"customer_name":"Acme","address":"Av. Amazonas 100"},
		{"carton_id":"B","stop_sequence_number":1,"customer_name":"Acme","address":"Calle 10"}]}`
	resp, err := app.Test(jsonRequest("PUT", "/shipments/SHP-1/stops", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	mockService.On("RegisterStops", mock.Anything, "SHP-2", []domain.DeliveryStopCarton(nil)).
		Return(&domain.ValidationError{Kind: domain.ValidationEmptyInput, Message: "at least one delivery stop is required"}).Once()

	resp, err = app.Test(jsonRequest("PUT", "/shipments/SHP-2/stops", `{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "EMPTY_INPUT", decodeError(t, resp).Kind)

	mockService.AssertExpectations(t)
}
