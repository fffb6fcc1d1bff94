package credentials

import (
	"context"
	"errors"
	"testing"

	"cinema-server/internal/mocks"
	"cinema-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapSystem map[string]string

func (m mapSystem) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok && v != ""
}

type mapEnv map[string]string

func (m mapEnv) EnvValue(key string) string { return m[key] }

func strPtr(s string) *string { return &s }

func TestResolver_Precedence(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	tests := []struct {
		name       string
		system     mapSystem
		userKeys   *models.UserAIKeys
		userErr    error
		env        mapEnv
		wantValue  string
		wantSource Source
		wantErr    error
	}{
		{
			name:       "система важнее пользователя и окружения",
			system:     mapSystem{KeyOpenAI: "sys"},
			userKeys:   &models.UserAIKeys{OpenAIAPIKey: strPtr("usr")},
			env:        mapEnv{KeyOpenAI: "env"},
			wantValue:  "sys",
			wantSource: SourceSystem,
		},
		{
			name:       "пустое системное значение пропускается",
			system:     mapSystem{KeyOpenAI: ""},
			userKeys:   &models.UserAIKeys{OpenAIAPIKey: strPtr("usr")},
			env:        mapEnv{KeyOpenAI: "env"},
			wantValue:  "usr",
			wantSource: SourceUser,
		},
		{
			name:       "пробелы у пользователя считаются пустым значением",
			userKeys:   &models.UserAIKeys{OpenAIAPIKey: strPtr("   ")},
			env:        mapEnv{KeyOpenAI: "env"},
			wantValue:  "env",
			wantSource: SourceEnv,
		},
		{
			name:       "пользователь не найден",
			userErr:    models.ErrNotFound,
			env:        mapEnv{KeyOpenAI: "env"},
			wantValue:  "env",
			wantSource: SourceEnv,
		},
		{
			name:       "ошибка БД не мешает окружению",
			userErr:    errors.New("connection reset"),
			env:        mapEnv{KeyOpenAI: "env"},
			wantValue:  "env",
			wantSource: SourceEnv,
		},
		{
			name:     "нигде нет",
			userKeys: &models.UserAIKeys{},
			env:      mapEnv{},
			wantErr:  ErrCredentialMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := mocks.NewMockUserAIKeysRepository(t)
			if tt.system[KeyOpenAI] == "" {
				users.On("GetAIKeys", mock.Anything, userID).Return(tt.userKeys, tt.userErr).Once()
			}

			r := NewResolver(tt.system, users, tt.env, zap.NewNop())
			cred, err := r.Resolve(ctx, userID, KeyOpenAI)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, cred.Value)
			assert.Equal(t, tt.wantSource, cred.Source)
			users.AssertExpectations(t)
		})
	}
}

func TestResolver_AnonymousSkipsUserLookup(t *testing.T) {
	users := mocks.NewMockUserAIKeysRepository(t)
	r := NewResolver(mapSystem{}, users, mapEnv{KeyRunway: "rw"}, zap.NewNop())

	cred, err := r.Resolve(context.Background(), uuid.Nil, KeyRunway)
	require.NoError(t, err)
	assert.Equal(t, SourceEnv, cred.Source)
	users.AssertNotCalled(t, "GetAIKeys", mock.Anything, mock.Anything)
}
