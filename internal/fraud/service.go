package fraud

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/logger"
)

// signalWindow is the lookback used for recent-completion counts.
const signalWindow = time.Hour

// Service gathers signals for a submission and applies the scorer
type Service struct {
	repo SignalRepository
}

// NewService creates a new fraud service
func NewService(repo SignalRepository) *Service {
	return &Service{repo: repo}
}

// Assess scores a completion submission. Signal lookups that fail degrade to
// zero rather than blocking the submission; the scorer itself never errors.
func (s *Service) Assess(ctx context.Context, userID uuid.UUID, submittedIP string, completionTime time.Duration) (Assessment, error) {
	signals := Signals{CompletionTime: completionTime}

	if count, err := s.repo.CountRecentByIP(ctx, submittedIP, signalWindow); err != nil {
		logger.Warn("fraud: ip signal lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
	} else {
		signals.RecentSameIP = count
	}

	if count, err := s.repo.CountRecentByUser(ctx, userID, signalWindow); err != nil {
		logger.Warn("fraud: account signal lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
	} else {
		signals.RecentSameAccount = count
	}

	profile, err := s.repo.GetAccountProfile(ctx, userID)
	if err != nil {
		return Assessment{}, err
	}
	signals.AccountAge = profile.AccountAge
	signals.IdentityVerified = profile.IdentityVerified

	return Score(signals), nil
}
