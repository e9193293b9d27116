package engine

import "fmt"

// ErrorKind classifies a rejected action.
type ErrorKind string

const (
	KindNotYourTurn        ErrorKind = "not-your-turn"
	KindActionAlreadyUsed  ErrorKind = "action-already-used"
	KindPieceNotFound      ErrorKind = "piece-not-found"
	KindNotYourPiece       ErrorKind = "not-your-piece"
	KindPieceDisabled      ErrorKind = "piece-disabled"
	KindSkillNotFound      ErrorKind = "skill-not-found"
	KindSkillUnavailable   ErrorKind = "skill-unavailable"
	KindPlayerNotFound     ErrorKind = "player-not-found"
	KindInvalidTarget      ErrorKind = "invalid-target"
	KindInvalidMove        ErrorKind = "invalid-move"
	KindInsufficientCharge ErrorKind = "insufficient-charge"
	KindOutOfBounds        ErrorKind = "out-of-bounds"
	KindNotWalkable        ErrorKind = "not-walkable"
	KindOccupied           ErrorKind = "occupied"
	KindNotOnBoard         ErrorKind = "not-on-board"
	KindWrongPhase         ErrorKind = "wrong-phase"
	KindInvalidAction      ErrorKind = "invalid-action"
)

// RuleError rejects an illegal action. The battle is left unchanged.
type RuleError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *RuleError) Error() string {
	return e.Message
}

func ruleErr(kind ErrorKind, format string, args ...any) *RuleError {
	return &RuleError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// TargetSelectionError asks the caller to pick a target and resubmit the
// same action with it.
type TargetSelectionError struct {
	NeedsTargetSelection bool   `json:"needsTargetSelection"`
	SkillID              string `json:"skillId"`
	TargetType           string `json:"targetType"`
	Range                int    `json:"range"`
	Filter               string `json:"filter"`
}

func (e *TargetSelectionError) Error() string {
	return fmt.Sprintf("skill %s needs a %s target (%s, range %d)", e.SkillID, e.TargetType, e.Filter, e.Range)
}
