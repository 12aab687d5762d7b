package domain

import "encoding/json"

// payloadEntry pairs a zero-value constructor with a dereferencer that
// turns the decoded pointer back into the plain value type callers'
// type switches expect.
type payloadEntry struct {
	construct   func() any
	dereference func(any) any
}

// payloadConstructors maps an Event.Type to its payload's decode
// machinery. A store that persists payloads as JSON (rather than
// keeping the original Go value in memory) must decode through this
// registry so that rehydrate's type switches see the concrete payload
// types instead of a generic map[string]any. Packages outside domain
// that define their own payload types (e.g. audit.DecisionPayload)
// register themselves via RegisterPayloadType from an init func.
var payloadConstructors = map[string]payloadEntry{}

func register[T any](eventType string) {
	payloadConstructors[eventType] = payloadEntry{
		construct:   func() any { return new(T) },
		dereference: func(p any) any { return *p.(*T) },
	}
}

// RegisterPayloadType registers a payload type for eventType, so that
// DecodePayload can decode a raw JSON payload into it. T is the plain
// (non-pointer) payload struct type, inferred from the zero value
// passed in; the zero value itself is discarded.
func RegisterPayloadType[T any](eventType string, _ T) {
	register[T](eventType)
}

func init() {
	register[EntityCreatedPayload](EventEntityCreated)
	register[EntityRenamedPayload](EventEntityRenamed)

	register[AgreementProposedPayload](EventAgreementProposed)
	register[PartyConsentedPayload](EventPartyConsented)
	register[PartyRejectedPayload](EventPartyRejected)
	register[AgreementActivatedPayload](EventAgreementActivated)
	register[AgreementTerminatedPayload](EventAgreementTerminated)
	register[DisputeOpenedPayload](EventDisputeOpened)
	register[DisputeResolvedPayload](EventDisputeResolved)

	register[AssetRegisteredPayload](EventAssetRegistered)
	register[AssetStatusChangedPayload](EventAssetStatusChanged)

	register[ContainerCreatedPayload](EventContainerCreated)
	register[ContainerItemDepositedPayload](EventContainerItemDeposited)
	register[ContainerItemWithdrawnPayload](EventContainerItemWithdrawn)
	register[DepositAttemptedPayload](EventDepositAttempted)
	register[TransferFailedPayload](EventTransferFailed)

	register[ApiKeyCreatedPayload](EventApiKeyCreated)
	register[ApiKeyRevokedPayload](EventApiKeyRevoked)
}

// DecodePayload unmarshals raw JSON into the concrete payload type
// registered for eventType, dereferenced to a value (not a pointer) so
// callers' type switches match the same variants used when a Candidate
// is built in-process. An unrecognized eventType decodes into a generic
// map[string]any rather than failing, so forward-compatible/unknown
// event types (e.g. from a newer writer) can still be stored and
// inspected.
func DecodePayload(eventType string, raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	entry, ok := payloadConstructors[eventType]
	if !ok {
		var generic map[string]any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, err
		}

		return generic, nil
	}

	payload := entry.construct()
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, err
	}

	return entry.dereference(payload), nil
}
