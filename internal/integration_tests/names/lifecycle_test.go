// Package names exercises the full verified-name stack in process: HTTP
// transport, JWT auth, service, config cache, and the reconciliation handlers
// over a shared in-memory store.
package names

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "nameaffirm/internal/jwt_token"
	"nameaffirm/internal/tasks"
	httptransport "nameaffirm/internal/transport/http"
	"nameaffirm/internal/verifiedname"
	"nameaffirm/internal/verifiedname/configcache"
	"nameaffirm/internal/verifiedname/service"
	"nameaffirm/internal/verifiedname/store"
)

type stack struct {
	store    *store.InMemoryStore
	svc      *service.Service
	handlers *tasks.Handlers
	router   http.Handler
	jwt      *jwttoken.JWTService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := store.NewInMemoryStore()
	certs := configcache.New(nil, st, time.Minute, nil, nil)
	svc := service.New(st, certs, logger)
	jwtService := jwttoken.NewJWTService("integration-signing-key", "nameaffirm", "nameaffirm-api")

	handler := httptransport.New(svc, logger, nil, jwtService)
	return &stack{
		store:    st,
		svc:      svc,
		handlers: tasks.NewHandlers(svc, logger),
		router:   httptransport.NewRouter(handler),
		jwt:      jwtService,
	}
}

func (s *stack) request(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := s.jwt.GenerateAccessToken(userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeRecord(t *testing.T, rr *httptest.ResponseRecorder) httptransport.VerifiedNameResponse {
	t.Helper()
	var out httptransport.VerifiedNameResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func TestNameLifecycle(t *testing.T) {
	s := newStack(t)

	// submit a name
	rr := s.request(t, http.MethodPost, "/v1/names", "jondoe", map[string]string{
		"verified_name": "Jonathan Doe",
		"profile_name":  "Jon Doe",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decodeRecord(t, rr)
	assert.Equal(t, "pending", created.Status)

	// the IDV system later confirms that name
	err := s.handlers.IDVUpdateVerifiedName(context.Background(), tasks.IDVEvent{
		AttemptID:   123,
		UserID:      "jondoe",
		Status:      verifiedname.StatusApproved,
		PhotoIDName: "Jonathan Doe",
		FullName:    "Jon Doe",
	})
	require.NoError(t, err)

	// the approved record is now the current verified name
	rr = s.request(t, http.MethodGet, "/v1/names/current?verified=true", "jondoe", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	current := decodeRecord(t, rr)
	assert.Equal(t, created.ID, current.ID)
	assert.Equal(t, "approved", current.Status)
	require.NotNil(t, current.VerificationAttemptID)
	assert.Equal(t, int64(123), *current.VerificationAttemptID)

	// history has exactly the one record
	rr = s.request(t, http.MethodGet, "/v1/names/history", "jondoe", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []httptransport.VerifiedNameResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&history))
	assert.Len(t, history, 1)
}

func TestProctoringFlowThroughAPI(t *testing.T) {
	s := newStack(t)

	// a proctoring attempt arrives for a user with no prior names
	err := s.handlers.ProctoringUpdateVerifiedName(context.Background(), tasks.ProctoringEvent{
		AttemptID:   456,
		UserID:      "jondoe",
		Status:      verifiedname.StatusPending,
		FullName:    "Jonathan Doe",
		ProfileName: "Jon Doe",
	})
	require.NoError(t, err)

	// the exam completes and the status moves through the API
	proctoringID := int64(456)
	rr := s.request(t, http.MethodPost, "/v1/names/status", "jondoe", httptransport.UpdateStatusRequest{
		Status:                 "submitted",
		ProctoredExamAttemptID: &proctoringID,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeRecord(t, rr)
	assert.Equal(t, "submitted", updated.Status)

	// a later approved IDV event for a different name leaves the record alone
	err = s.handlers.IDVUpdateVerifiedName(context.Background(), tasks.IDVEvent{
		AttemptID:   123,
		UserID:      "jondoe",
		Status:      verifiedname.StatusApproved,
		PhotoIDName: "Completely Different",
		FullName:    "Jon Doe",
	})
	require.NoError(t, err)

	rr = s.request(t, http.MethodGet, "/v1/names/history", "jondoe", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []httptransport.VerifiedNameResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&history))
	require.Len(t, history, 2, "the mismatched IDV event creates its own record")
}

func TestCertificateConfigFlow(t *testing.T) {
	s := newStack(t)

	// default is off
	rr := s.request(t, http.MethodGet, "/v1/config/certificates", "jondoe", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var flag map[string]bool
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&flag))
	assert.False(t, flag["use_verified_name_for_certs"])

	// opt in
	enabled := true
	rr = s.request(t, http.MethodPost, "/v1/config", "jondoe", httptransport.CreateConfigRequest{
		UseVerifiedNameForCerts: &enabled,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.request(t, http.MethodGet, "/v1/config/certificates", "jondoe", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&flag))
	assert.True(t, flag["use_verified_name_for_certs"])

	// an empty config write carries the previous value forward
	rr = s.request(t, http.MethodPost, "/v1/config", "jondoe", httptransport.CreateConfigRequest{})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.request(t, http.MethodGet, "/v1/config/certificates", "jondoe", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&flag))
	assert.True(t, flag["use_verified_name_for_certs"])

	// other users are unaffected
	rr = s.request(t, http.MethodGet, "/v1/config/certificates", "janedoe", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&flag))
	assert.False(t, flag["use_verified_name_for_certs"])
}

func TestValidationErrorScenarios(t *testing.T) {
	s := newStack(t)

	tests := []struct {
		name           string
		method         string
		path           string
		userID         string
		body           any
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "unauthenticated request",
			method:         http.MethodGet,
			path:           "/v1/names/current",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "empty verified name",
			method: http.MethodPost,
			path:   "/v1/names",
			userID: "jondoe",
			body: map[string]string{
				"verified_name": "",
				"profile_name":  "Jon Doe",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "empty_string",
		},
		{
			name:   "both attempt ids",
			method: http.MethodPost,
			path:   "/v1/names",
			userID: "jondoe",
			body: map[string]any{
				"verified_name":             "Jonathan Doe",
				"profile_name":              "Jon Doe",
				"verification_attempt_id":   123,
				"proctored_exam_attempt_id": 456,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "multiple_attempt_ids",
		},
		{
			name:   "status update without attempt id",
			method: http.MethodPost,
			path:   "/v1/names/status",
			userID: "jondoe",
			body: map[string]string{
				"status": "approved",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "attempt_id_not_given",
		},
		{
			name:           "current name for user with no records",
			method:         http.MethodGet,
			path:           "/v1/names/current",
			userID:         "nobody",
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.request(t, tt.method, tt.path, tt.userID, tt.body)
			require.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedError != "" {
				var body map[string]any
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}
