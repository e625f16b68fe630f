package game

import "errors"

// Code is a stable, machine-readable error identifier mirrored onto the
// wire as evt.error{code}. These are returned only to the issuing socket,
// never broadcast, and never mutate state.
type Code string

const (
	CodeNotYourTurn      Code = "not_your_turn"
	CodeWrongPhase       Code = "wrong_phase"
	CodeInvalidMeld      Code = "invalid_meld"
	CodeCardNotInHand    Code = "card_not_in_hand"
	CodeGameNotActive    Code = "game_not_active"
	CodeNotInGame        Code = "not_in_game"
	CodeFinalTurnPhase   Code = "final_turn_phase"
	CodeCannotExtendMeld Code = "cannot_extend_meld"
	CodeCannotGoOut      Code = "cannot_go_out"
	CodeNotFound         Code = "not_found"
	CodeServerRetry      Code = "server_retry"
	CodeUnknownType      Code = "unknown_type"
)

// RuleError is the typed error every GameState mutator returns on failure.
// A RuleError always leaves state unchanged (methods are transactional at
// the call boundary: validation happens before any mutation).
type RuleError struct {
	Code Code
	msg  string
}

func (e *RuleError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.Code)
}

func illegalState(code Code, msg string) error {
	return &RuleError{Code: code, msg: msg}
}

func notFound(msg string) error {
	return &RuleError{Code: CodeNotFound, msg: msg}
}

// NewRuleError builds a RuleError for callers outside this package, such
// as the hub's command dispatch, that need to surface the same
// evt.error{code} shape.
func NewRuleError(code Code, msg string) error {
	return &RuleError{Code: code, msg: msg}
}

// AsRuleError extracts the RuleError (and its Code) from err, if any.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
