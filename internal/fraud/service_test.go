package fraud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSignalRepository is a mock implementation of SignalRepository
type MockSignalRepository struct {
	mock.Mock
}

func (m *MockSignalRepository) CountRecentByIP(ctx context.Context, ip string, window time.Duration) (int, error) {
	args := m.Called(ctx, ip, window)
	return args.Int(0), args.Error(1)
}

func (m *MockSignalRepository) CountRecentByUser(ctx context.Context, userID uuid.UUID, window time.Duration) (int, error) {
	args := m.Called(ctx, userID, window)
	return args.Int(0), args.Error(1)
}

func (m *MockSignalRepository) GetAccountProfile(ctx context.Context, userID uuid.UUID) (*AccountProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccountProfile), args.Error(1)
}

func establishedProfile() *AccountProfile {
	return &AccountProfile{
		AccountAge:       90 * 24 * time.Hour,
		IdentityVerified: false,
	}
}

func TestService_Assess(t *testing.T) {
	userID := uuid.New()

	t.Run("combines signals into a score", func(t *testing.T) {
		repo := new(MockSignalRepository)
		svc := NewService(repo)

		repo.On("CountRecentByIP", mock.Anything, "203.0.113.7", time.Hour).Return(3, nil)
		repo.On("CountRecentByUser", mock.Anything, userID, time.Hour).Return(0, nil)
		repo.On("GetAccountProfile", mock.Anything, userID).Return(establishedProfile(), nil)

		got, err := svc.Assess(context.Background(), userID, "203.0.113.7", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, 18, got.FraudScore)
		assert.Equal(t, RiskLow, got.RiskLevel)
	})

	t.Run("failed count lookups degrade to zero", func(t *testing.T) {
		repo := new(MockSignalRepository)
		svc := NewService(repo)

		repo.On("CountRecentByIP", mock.Anything, mock.Anything, mock.Anything).
			Return(0, errors.New("timeout"))
		repo.On("CountRecentByUser", mock.Anything, userID, mock.Anything).
			Return(0, errors.New("timeout"))
		repo.On("GetAccountProfile", mock.Anything, userID).Return(establishedProfile(), nil)

		got, err := svc.Assess(context.Background(), userID, "203.0.113.7", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, 0, got.FraudScore)
	})

	t.Run("missing account profile fails the assessment", func(t *testing.T) {
		repo := new(MockSignalRepository)
		svc := NewService(repo)

		repo.On("CountRecentByIP", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
		repo.On("CountRecentByUser", mock.Anything, userID, mock.Anything).Return(0, nil)
		repo.On("GetAccountProfile", mock.Anything, userID).
			Return(nil, errors.New("user not found"))

		_, err := svc.Assess(context.Background(), userID, "", time.Minute)

		require.Error(t, err)
	})

	t.Run("instant completion from a fresh account is flagged", func(t *testing.T) {
		repo := new(MockSignalRepository)
		svc := NewService(repo)

		repo.On("CountRecentByIP", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
		repo.On("CountRecentByUser", mock.Anything, userID, mock.Anything).Return(0, nil)
		repo.On("GetAccountProfile", mock.Anything, userID).
			Return(&AccountProfile{AccountAge: 2 * time.Hour}, nil)

		got, err := svc.Assess(context.Background(), userID, "", 2*time.Second)

		require.NoError(t, err)
		assert.Equal(t, 80, got.FraudScore)
		assert.Equal(t, RiskHigh, got.RiskLevel)
		assert.Equal(t, VerificationFlagged, got.VerificationStatus)
		assert.True(t, got.NeedsReview)
	})
}
