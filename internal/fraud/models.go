package fraud

import (
	"time"
)

// VerificationStatus tracks how far a completion has been verified
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationFlagged    VerificationStatus = "flagged"
	VerificationRejected   VerificationStatus = "rejected"
)

// RiskLevel buckets a fraud score
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Signals are the behavioral inputs to the scorer
type Signals struct {
	// CompletionTime is how long the user took from the task becoming
	// available to submitting the completion.
	CompletionTime time.Duration

	// RecentSameIP counts completions submitted from the same IP in the
	// lookback window.
	RecentSameIP int

	// RecentSameAccount counts completions submitted by the same account in
	// the lookback window.
	RecentSameAccount int

	// AccountAge is how old the submitting account is.
	AccountAge time.Duration

	// IdentityVerified reports whether the account has a verified identity
	// linkage (e.g. a verified wallet).
	IdentityVerified bool
}

// Assessment is the scorer's verdict on a single completion
type Assessment struct {
	FraudScore         int                `json:"fraud_score"`
	RiskLevel          RiskLevel          `json:"risk_level"`
	NeedsReview        bool               `json:"needs_review"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

// AccountProfile holds the per-user signal inputs fetched from storage
type AccountProfile struct {
	AccountAge       time.Duration
	IdentityVerified bool
}
