// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Battle errors
	CodeBattleNotFound           Code = "BATTLE_NOT_FOUND"
	CodeBattleUnitNotFound       Code = "BATTLE_UNIT_NOT_FOUND"
	CodeBattleSpellUnknown       Code = "BATTLE_SPELL_UNKNOWN"
	CodeBattleSpellNotApplicable Code = "BATTLE_SPELL_NOT_APPLICABLE"
	CodeBattleCasterCannotCast   Code = "BATTLE_CASTER_CANNOT_CAST"
	CodeBattleInsufficientMana   Code = "BATTLE_INSUFFICIENT_MANA"
	CodeBattleAttackImpossible   Code = "BATTLE_ATTACK_IMPOSSIBLE"
	CodeBattleUnitCannotAct      Code = "BATTLE_UNIT_CANNOT_ACT"
	CodeBattleSubmitFailed       Code = "BATTLE_SUBMIT_FAILED"

	// Action errors
	CodeActionTypeUnknown    Code = "ACTION_TYPE_UNKNOWN"
	CodeActionPayloadInvalid Code = "ACTION_PAYLOAD_INVALID"
	CodeActionActorRequired  Code = "ACTION_ACTOR_REQUIRED"

	// Journal errors
	CodeJournalSequenceGap  Code = "JOURNAL_SEQUENCE_GAP"
	CodeJournalChainBroken  Code = "JOURNAL_CHAIN_BROKEN"
	CodeJournalSignatureBad Code = "JOURNAL_SIGNATURE_INVALID"

	// Dice/mechanics errors
	CodeDiceMissing     Code = "DICE_MISSING"
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"

	// Random/seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeBattleSpellUnknown,
		CodeActionTypeUnknown,
		CodeActionPayloadInvalid,
		CodeActionActorRequired,
		CodeDiceMissing,
		CodeDiceInvalidSpec,
		CodeSeedOutOfRange:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeBattleSpellNotApplicable,
		CodeBattleCasterCannotCast,
		CodeBattleInsufficientMana,
		CodeBattleAttackImpossible,
		CodeBattleUnitCannotAct:
		return codes.FailedPrecondition

	// NotFound
	case CodeBattleNotFound,
		CodeBattleUnitNotFound:
		return codes.NotFound

	// DataLoss - journal integrity
	case CodeJournalSequenceGap,
		CodeJournalChainBroken,
		CodeJournalSignatureBad:
		return codes.DataLoss

	// Aborted - the state was left untouched and the action may be retried
	case CodeBattleSubmitFailed:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
