// Package replay rebuilds battle state from its journal and verifies the
// journal's hash chain along the way.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrBattleIDRequired indicates a missing battle id.
	ErrBattleIDRequired = errors.New("battle id is required")
	// ErrInitialStateRequired indicates a missing starting state.
	ErrInitialStateRequired = errors.New("initial state is required")
)

// EventStore lists events for replay.
type EventStore interface {
	ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// Verifier checks chain hash signatures.
type Verifier interface {
	VerifyChainHash(battleID, chainHash, signature, keyID string) error
}

// Options configures replay behavior.
type Options struct {
	// AfterSeq is the sequence the initial state already reflects.
	AfterSeq uint64
	// UntilSeq stops the replay after this sequence when non-zero.
	UntilSeq uint64
	PageSize int
	// Verifier, when set, requires every event to carry a valid signature.
	Verifier Verifier
}

// Result captures replay outcomes.
type Result struct {
	State   *battle.State
	LastSeq uint64
	Applied int
}

// Replay folds the journaled events of battleID into a copy of initial.
// Sequence gaps, hash mismatches, broken links and bad signatures stop the
// replay; the result then holds the state up to the last good event.
func Replay(ctx context.Context, store EventStore, battleID string, initial *battle.State, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrEventStoreRequired
	}
	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return Result{}, ErrBattleIDRequired
	}
	if initial == nil {
		return Result{}, ErrInitialStateRequired
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{State: initial.Clone(), LastSeq: options.AfterSeq}
	prevChain := ""
	linked := options.AfterSeq == 0
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		events, err := store.ListEvents(ctx, battleID, result.LastSeq, pageSize)
		if err != nil {
			return result, fmt.Errorf("list events: %w", err)
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, apperrors.WithMetadata(apperrors.CodeJournalSequenceGap,
					fmt.Sprintf("event sequence gap: expected %d got %d", expectedSeq, evt.Seq),
					map[string]string{"Expected": strconv.FormatUint(expectedSeq, 10), "Got": strconv.FormatUint(evt.Seq, 10)})
			}
			if err := verify(evt, prevChain, linked, options.Verifier); err != nil {
				return result, err
			}
			next := result.State.Clone()
			if err := battle.Fold(next, evt); err != nil {
				return result, fmt.Errorf("fold event %d: %w", evt.Seq, err)
			}
			result.State = next
			result.LastSeq = evt.Seq
			result.Applied++
			prevChain = evt.ChainHash
			linked = true
		}
	}
}

// verify checks evt's own hashes and, once a predecessor is known, its link.
func verify(evt event.Event, prevChain string, linked bool, verifier Verifier) error {
	hash, err := event.EventHash(evt)
	if err != nil {
		return fmt.Errorf("event %d hash: %w", evt.Seq, err)
	}
	if hash != evt.Hash {
		return chainBroken(evt, "content hash mismatch")
	}
	if linked && evt.PrevHash != prevChain {
		return chainBroken(evt, "previous hash mismatch")
	}
	chainHash, err := event.ChainHash(evt, evt.PrevHash)
	if err != nil {
		return fmt.Errorf("event %d chain hash: %w", evt.Seq, err)
	}
	if chainHash != evt.ChainHash {
		return chainBroken(evt, "chain hash mismatch")
	}
	if verifier == nil {
		return nil
	}
	if evt.Signature == "" {
		return signatureBad(evt, errors.New("event is not signed"))
	}
	if err := verifier.VerifyChainHash(evt.BattleID, evt.ChainHash, evt.Signature, evt.SignatureKeyID); err != nil {
		return signatureBad(evt, err)
	}
	return nil
}

func chainBroken(evt event.Event, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeJournalChainBroken,
		fmt.Sprintf("event %d: %s", evt.Seq, reason),
		map[string]string{"Seq": strconv.FormatUint(evt.Seq, 10)})
}

func signatureBad(evt event.Event, cause error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeJournalSignatureBad,
		fmt.Sprintf("event %d: verify signature: %v", evt.Seq, cause),
		map[string]string{"Seq": strconv.FormatUint(evt.Seq, 10)}, cause)
}
