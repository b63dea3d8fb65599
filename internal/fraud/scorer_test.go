package fraud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_CompletionSpeed(t *testing.T) {
	tests := []struct {
		name      string
		duration  time.Duration
		wantScore int
		wantLevel RiskLevel
	}{
		{
			name:      "two second completion is treated as automation",
			duration:  2 * time.Second,
			wantScore: 60,
			wantLevel: RiskHigh,
		},
		{
			name:      "ten second completion is rushed",
			duration:  10 * time.Second,
			wantScore: 25,
			wantLevel: RiskMedium,
		},
		{
			name:      "sixty second completion is clean",
			duration:  60 * time.Second,
			wantScore: 0,
			wantLevel: RiskLow,
		},
		{
			name:      "unknown completion time is not penalized",
			duration:  0,
			wantScore: 0,
			wantLevel: RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(Signals{CompletionTime: tt.duration})

			assert.Equal(t, tt.wantScore, got.FraudScore)
			assert.Equal(t, tt.wantLevel, got.RiskLevel)
		})
	}
}

func TestScore_AutomationForcesReview(t *testing.T) {
	got := Score(Signals{CompletionTime: 2 * time.Second})

	assert.Greater(t, got.FraudScore, HighRiskMin)
	assert.Equal(t, RiskHigh, got.RiskLevel)
	assert.Equal(t, VerificationFlagged, got.VerificationStatus)
	assert.True(t, got.NeedsReview)
}

func TestScore_CleanSubmissionAutoApprovable(t *testing.T) {
	got := Score(Signals{
		CompletionTime: time.Minute,
		AccountAge:     30 * 24 * time.Hour,
	})

	assert.Equal(t, 0, got.FraudScore)
	assert.Equal(t, RiskLow, got.RiskLevel)
	assert.Equal(t, VerificationUnverified, got.VerificationStatus)
	assert.False(t, got.NeedsReview)
}

func TestScore_SharedIPCapped(t *testing.T) {
	t.Run("each recent submission from the IP adds weight", func(t *testing.T) {
		got := Score(Signals{RecentSameIP: 3})
		assert.Equal(t, 18, got.FraudScore)
	})

	t.Run("IP weight is capped", func(t *testing.T) {
		got := Score(Signals{RecentSameIP: 50})
		assert.Equal(t, 30, got.FraudScore)
	})
}

func TestScore_AccountAge(t *testing.T) {
	t.Run("brand new account", func(t *testing.T) {
		got := Score(Signals{AccountAge: 6 * time.Hour})
		assert.Equal(t, 20, got.FraudScore)
		assert.Equal(t, RiskMedium, got.RiskLevel)
	})

	t.Run("account under a week old", func(t *testing.T) {
		got := Score(Signals{AccountAge: 3 * 24 * time.Hour})
		assert.Equal(t, 10, got.FraudScore)
		assert.Equal(t, RiskLow, got.RiskLevel)
	})

	t.Run("established account", func(t *testing.T) {
		got := Score(Signals{AccountAge: 90 * 24 * time.Hour})
		assert.Equal(t, 0, got.FraudScore)
	})
}

func TestScore_BurstActivity(t *testing.T) {
	t.Run("below the threshold adds nothing", func(t *testing.T) {
		got := Score(Signals{RecentSameAccount: 10})
		assert.Equal(t, 0, got.FraudScore)
	})

	t.Run("above the threshold adds weight", func(t *testing.T) {
		got := Score(Signals{RecentSameAccount: 11})
		assert.Equal(t, 10, got.FraudScore)
	})
}

func TestScore_IdentityCredit(t *testing.T) {
	t.Run("verified identity lowers the score", func(t *testing.T) {
		unverified := Score(Signals{RecentSameIP: 5})
		verified := Score(Signals{RecentSameIP: 5, IdentityVerified: true})

		assert.Equal(t, unverified.FraudScore-15, verified.FraudScore)
	})

	t.Run("score never goes negative", func(t *testing.T) {
		got := Score(Signals{IdentityVerified: true})
		assert.Equal(t, 0, got.FraudScore)
	})
}

func TestScore_ClampedAt100(t *testing.T) {
	got := Score(Signals{
		CompletionTime:    time.Second,
		RecentSameIP:      100,
		RecentSameAccount: 100,
		AccountAge:        time.Hour,
	})

	assert.Equal(t, 100, got.FraudScore)
	assert.Equal(t, RiskHigh, got.RiskLevel)
	assert.True(t, got.NeedsReview)
}

func TestScore_MediumBandBoundaries(t *testing.T) {
	t.Run("score at the low boundary is medium", func(t *testing.T) {
		// New account alone lands exactly on the boundary.
		got := Score(Signals{AccountAge: time.Hour})
		assert.Equal(t, LowRiskMax, got.FraudScore)
		assert.Equal(t, RiskMedium, got.RiskLevel)
		assert.False(t, got.NeedsReview)
	})

	t.Run("score at the high boundary is still medium", func(t *testing.T) {
		// Capped IP weight plus new account: 30 + 20 = 50.
		got := Score(Signals{RecentSameIP: 50, AccountAge: time.Hour})
		assert.Equal(t, HighRiskMin, got.FraudScore)
		assert.Equal(t, RiskMedium, got.RiskLevel)
		assert.False(t, got.NeedsReview)
	})

	t.Run("score just above the high boundary is high", func(t *testing.T) {
		// Rushed completion plus capped IP weight: 25 + 30 = 55.
		got := Score(Signals{CompletionTime: 10 * time.Second, RecentSameIP: 50})
		assert.Greater(t, got.FraudScore, HighRiskMin)
		assert.Equal(t, RiskHigh, got.RiskLevel)
		assert.True(t, got.NeedsReview)
	})
}
