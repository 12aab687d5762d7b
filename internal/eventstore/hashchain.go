package eventstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/lerianstudio/eventledger/internal/domain"
)

// ChainHash computes the hash-chain value for an event given the previous
// event's chain value (empty string for the first event ever appended).
// This is a testable integrity property, not a cryptographic guarantee:
// it lets a verifier detect that the log was reordered or tampered with
// after the fact, nothing more.
func ChainHash(previous string, e domain.Event) (string, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return "", fmt.Errorf("eventstore: marshal payload for hash chain: %w", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d|%s|%d", previous, e.AggregateType, e.AggregateID, e.Type, e.AggregateVersion, payload, e.Timestamp)

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChain walks a Sequence-ordered slice of events and reports the
// first index whose HashChain does not match the recomputed value, or -1
// if the chain is intact.
func VerifyChain(events []domain.Event) (int, error) {
	previous := ""

	for i, e := range events {
		want, err := ChainHash(previous, e)
		if err != nil {
			return i, err
		}

		if e.HashChain != want {
			return i, nil
		}

		previous = e.HashChain
	}

	return -1, nil
}
