package models

import "time"

// FactorScores holds the four component scores, each in [-100, 100].
// One instance exists per evaluation cycle.
type FactorScores struct {
	Pattern   float64 `json:"pattern"`
	Indicator float64 `json:"indicator"`
	Sentiment float64 `json:"sentiment"`
	Volume    float64 `json:"volume"`
}

// Signal is the authoritative output of signal fusion for one ticker.
// It is immutable once produced; the risk overlay returns a new copy when it
// downgrades or resizes a decision.
type Signal struct {
	Ticker            string         `json:"ticker"`
	Decision          Action         `json:"decision"`
	Confidence        int            `json:"confidence"` // 0-100
	Escalate          bool           `json:"escalate"`
	CompositeScore    float64        `json:"composite_score"`
	Scores            FactorScores   `json:"scores"`
	SuggestedQuantity int            `json:"suggested_quantity"`
	Reasoning         string         `json:"reasoning"`
	Patterns          []PatternMatch `json:"patterns"`
	Timestamp         time.Time      `json:"timestamp"`
}

// FinalDecision is what the execution/ledger collaborator applies after the
// quant overlay has had its say.
type FinalDecision struct {
	Ticker    string    `json:"ticker"`
	Action    Action    `json:"action"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Reasoning string    `json:"reasoning"`
	Timestamp time.Time `json:"timestamp"`
}

// ArbitrationResult is the external AI collaborator's verdict on an escalated
// signal. On collaborator failure the algorithmic signal stands unchanged.
type ArbitrationResult struct {
	Decision          Action `json:"decision"`
	Confidence        int    `json:"confidence"`
	Reasoning         string `json:"reasoning"`
	SuggestedQuantity int    `json:"suggested_quantity"`
	OverrideAlgorithm bool   `json:"override_algorithm"`
	Model             string `json:"model,omitempty"`
}

// EvalState tracks one ticker evaluation through the pipeline. States advance
// strictly forward; no state is retried.
type EvalState string

const (
	StateNoSignal     EvalState = "no_signal"
	StatePatternScan  EvalState = "pattern_scan"
	StateFused        EvalState = "fused"
	StateEscalated    EvalState = "escalated"
	StateArbitrated   EvalState = "arbitrated"
	StateRiskAdjusted EvalState = "risk_adjusted"
	StateFinal        EvalState = "final"
)

// Evaluation is the full result of one evaluation cycle.
type Evaluation struct {
	Ticker     string        `json:"ticker"`
	State      EvalState     `json:"state"`
	Signal     Signal        `json:"signal"`
	Final      FinalDecision `json:"final"`
	Arbitrated bool          `json:"arbitrated"`
	// ArbitrationFailed is set when escalation was requested but the
	// collaborator could not fulfil it; the algorithmic signal stands.
	ArbitrationFailed bool     `json:"arbitration_failed,omitempty"`
	Vetoes            []string `json:"vetoes,omitempty"`
}
