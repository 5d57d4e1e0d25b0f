package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	identityHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
)

type identityBody struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	UID        string `json:"uid"`
	Onboarded  bool   `json:"onboarded"`
}

func newRouter(t *testing.T, setup func(m *identity.MockRepository)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := identity.NewMockRepository(ctrl)

	if setup != nil {
		setup(repo)
	}

	r := chi.NewRouter()
	r.Route("/identity", identityHandler.NewHandler(identity.NewService(repo)).Routes)

	return r
}

func TestHandler_GetBeforeOnboarding(t *testing.T) {
	router := newRouter(t, func(m *identity.MockRepository) {
		m.EXPECT().GetIdentity(gomock.Any()).Return(nil, identity.ErrNotFound)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/identity", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got identityBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "User (General Worker)", got.UID)
	assert.False(t, got.Onboarded)
}

func TestHandler_Update(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *identity.MockRepository)
		wantStatus int
		wantUID    string
	}{
		{
			name: "Saved",
			body: `{"name":" Asha ","occupation":"Tailor"}`,
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().
					SaveIdentity(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, id *identity.Identity) error {
						id.UpdatedAt = time.Now()
						return nil
					})
			},
			wantStatus: http.StatusOK,
			wantUID:    "Asha (Tailor)",
		},
		{
			name: "BlankFieldsFallBack",
			body: `{}`,
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().SaveIdentity(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantUID:    "User (General Worker)",
		},
		{
			name:       "TooLong",
			body:       `{"name":"` + strings.Repeat("a", 101) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidJSON",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.setupMock)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/identity", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantUID == "" {
				return
			}

			var got identityBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

			assert.Equal(t, tt.wantUID, got.UID)
			assert.True(t, got.Onboarded)
		})
	}
}
