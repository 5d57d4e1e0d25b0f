package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
)

func TestService_Get(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *identity.MockRepository)
		want      identity.Identity
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "NotOnboarded",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().GetIdentity(gomock.Any()).Return(nil, identity.ErrNotFound)
			},
			want: identity.Identity{Name: "User", Occupation: "General Worker"},
		},
		{
			name: "Saved",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().GetIdentity(gomock.Any()).Return(&identity.Identity{Name: "Asha", Occupation: "Tailor"}, nil)
			},
			want: identity.Identity{Name: "Asha", Occupation: "Tailor", Onboarded: true},
		},
		{
			name: "RepoError",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().GetIdentity(gomock.Any()).Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := identity.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := identity.NewService(repo).Get(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := identity.NewMockRepository(ctrl)
	repo.EXPECT().
		SaveIdentity(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id *identity.Identity) error {
			assert.Equal(t, "Asha", id.Name)
			assert.Equal(t, identity.DefaultOccupation, id.Occupation)
			return nil
		})

	got, err := identity.NewService(repo).Update(context.Background(), identity.UpdateParams{
		Name:       "  Asha ",
		Occupation: " ",
	})
	require.NoError(t, err)
	assert.True(t, got.Onboarded)
	assert.Equal(t, "Asha (General Worker)", got.UID())
}
