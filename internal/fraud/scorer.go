package fraud

import (
	"time"
)

// Score thresholds. Scores below LowRiskMax are low risk, scores above
// HighRiskMin are high risk, everything between is medium.
const (
	LowRiskMax  = 20
	HighRiskMin = 50
)

const (
	// Completions faster than this are treated as automated regardless of
	// every other signal.
	automationCutoff = 5 * time.Second

	// Completions faster than this are suspicious but not conclusive.
	rushedCutoff = 30 * time.Second

	newAccountCutoff   = 24 * time.Hour
	youngAccountCutoff = 7 * 24 * time.Hour
)

// Weights applied per signal. Additive, clamped to [0,100].
const (
	automationWeight      = 60
	rushedWeight          = 25
	sameIPWeight          = 6
	sameIPCap             = 30
	burstAccountWeight    = 10
	burstAccountThreshold = 10
	newAccountWeight      = 20
	youngAccountWeight    = 10
	identityCredit        = 15
)

// Score computes a fraud assessment from behavioral signals. It is a pure
// function so the policy can be tested in isolation.
func Score(signals Signals) Assessment {
	score := 0

	// Completion speed (0-60 points)
	if signals.CompletionTime > 0 && signals.CompletionTime < automationCutoff {
		score += automationWeight
	} else if signals.CompletionTime > 0 && signals.CompletionTime < rushedCutoff {
		score += rushedWeight
	}

	// Shared-IP activity (0-30 points)
	ipScore := signals.RecentSameIP * sameIPWeight
	if ipScore > sameIPCap {
		ipScore = sameIPCap
	}
	score += ipScore

	// Burst activity on one account (10 points)
	if signals.RecentSameAccount > burstAccountThreshold {
		score += burstAccountWeight
	}

	// Account age (0-20 points)
	if signals.AccountAge > 0 && signals.AccountAge < newAccountCutoff {
		score += newAccountWeight
	} else if signals.AccountAge > 0 && signals.AccountAge < youngAccountCutoff {
		score += youngAccountWeight
	}

	// Verified identity linkage lowers the score
	if signals.IdentityVerified {
		score -= identityCredit
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	level := riskLevelFor(score)

	assessment := Assessment{
		FraudScore:         score,
		RiskLevel:          level,
		VerificationStatus: VerificationUnverified,
	}

	if level == RiskHigh {
		assessment.VerificationStatus = VerificationFlagged
	}
	assessment.NeedsReview = assessment.VerificationStatus == VerificationFlagged || score > HighRiskMin

	return assessment
}

func riskLevelFor(score int) RiskLevel {
	switch {
	case score > HighRiskMin:
		return RiskHigh
	case score >= LowRiskMax:
		return RiskMedium
	default:
		return RiskLow
	}
}
