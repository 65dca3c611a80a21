package event

// Risk levels attached to flagged links by the (external) link scanner.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// BonusNerf is the payload for bonus.nerf.detected: a casino quietly reduced
// the value of an advertised bonus or free-spin offer.
type BonusNerf struct {
	Casino      string  `json:"casino"`
	Offer       string  `json:"offer,omitempty"`
	PercentDrop float64 `json:"percentDrop"` // 0.0 - 1.0
}

// LinkFlagged is the payload for link.flagged. Casino is set when the scanner
// could attribute the hosting domain to a known casino.
type LinkFlagged struct {
	Domain    string `json:"domain"`
	URL       string `json:"url,omitempty"`
	Casino    string `json:"casino,omitempty"`
	RiskLevel string `json:"riskLevel"`
}

// TiltDetected is the payload for tilt.detected; the subject user is carried
// on the envelope's UserID. Severity runs 1 (mild) to 5 (meltdown).
type TiltDetected struct {
	Severity  int    `json:"severity"`
	Indicator string `json:"indicator,omitempty"`
}

// CooldownViolated is the payload for cooldown.violated.
type CooldownViolated struct {
	MinutesEarly int `json:"minutesEarly,omitempty"`
}

// TipCompleted is the payload for tip.completed.
type TipCompleted struct {
	FromUserID string  `json:"fromUserId"`
	ToUserID   string  `json:"toUserId,omitempty"`
	Amount     float64 `json:"amount"`
}

// ScamReport is the payload for scam.reported. Exactly one of AccusedID,
// Casino, or Domain names the accused subject. A report marked FalseReport
// penalizes the reporter instead.
type ScamReport struct {
	AccusedID   string `json:"accusedId,omitempty"`
	Casino      string `json:"casino,omitempty"`
	Domain      string `json:"domain,omitempty"`
	ReporterID  string `json:"reporterId,omitempty"`
	Verified    bool   `json:"verified"`
	FalseReport bool   `json:"falseReport,omitempty"`
	Details     string `json:"details,omitempty"`
}

// AccountabilitySuccess is the payload for accountability.success: the user
// completed a self-imposed limit or buddy-check period.
type AccountabilitySuccess struct {
	Streak int `json:"streak,omitempty"`
}

// ScoreUpdated is the payload for the trust.*.updated events republished by
// the scoring engines after every applied adjustment.
type ScoreUpdated struct {
	Entity        string  `json:"entity"`
	PreviousScore int     `json:"previousScore"`
	NewScore      int     `json:"newScore"`
	Delta         float64 `json:"delta"`
	Severity      int     `json:"severity"`
	Reason        string  `json:"reason"`
	Source        string  `json:"source"`
}
