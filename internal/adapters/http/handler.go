// Package http is the Fiber-based transport for the Intent Dispatcher
// and Subscription Hub, grounded on the teacher's common/net/http (the
// correlation-id/logging middleware shapes) but with the OpenTelemetry
// and gRPC-adjacent pieces the teacher's package also carries left out:
// this spec's scope has no gRPC surface.
package http

import (
	"encoding/json"
	"reflect"

	"github.com/gofiber/fiber/v2"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/intent"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// intentRequestBody is the wire shape of spec.md §6.1's POST /intent
// body.
type intentRequestBody struct {
	Intent         string          `json:"intent"`
	Realm          *string         `json:"realm,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Payload        json.RawMessage `json:"payload"`
}

// handleIntent decodes the request body, resolves its payload type from
// the registry, and dispatches it as the authenticated actor. Payload
// decoding has to happen here rather than inside Dispatch: Definition
// carries only a zero-value marker of the payload's concrete type, not a
// decoder, since the dispatcher itself is transport-agnostic.
func handleIntent(registry *intent.Registry, dispatcher *intent.Dispatcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body intentRequestBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, apperr.ValidationFailed("malformed request body"))
		}

		def, ok := registry.Lookup(body.Intent)
		if !ok {
			return writeError(c, apperr.IntentNotFound(body.Intent))
		}

		payload, err := decodePayload(def.PayloadType, body.Payload)
		if err != nil {
			return writeError(c, apperr.ValidationFailed("payload does not match "+body.Intent+"'s schema: "+err.Error()))
		}

		actor, _ := c.Locals(localActor).(domain.Actor)

		var realm *id.ID

		if body.Realm != nil {
			r := id.ID(*body.Realm)
			realm = &r
		}

		result, err := dispatcher.Dispatch(c.UserContext(), intent.Request{
			Intent:         body.Intent,
			Realm:          realm,
			Actor:          actor,
			Timestamp:      0,
			IdempotencyKey: body.IdempotencyKey,
			Payload:        payload,
		})
		if err != nil {
			return writeError(c, err)
		}

		status := fiber.StatusOK
		if !result.Success {
			status = statusForResult(result)
		}

		return c.Status(status).JSON(result)
	}
}

// decodePayload unmarshals raw into a fresh value of zero's concrete
// type, returning it dereferenced so handlers' type switches match
// regardless of whether the request body supplied every field.
func decodePayload(zero any, raw json.RawMessage) (any, error) {
	if zero == nil {
		return nil, nil
	}

	target := reflect.New(reflect.TypeOf(zero))

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, target.Interface()); err != nil {
			return nil, err
		}
	}

	return target.Elem().Interface(), nil
}

func statusForResult(result intent.Result) int {
	if len(result.Errors) == 0 {
		return fiber.StatusInternalServerError
	}

	switch result.Errors[0].Code {
	case "INTENT_NOT_FOUND", "NOT_FOUND":
		return fiber.StatusNotFound
	case "VALIDATION_FAILED":
		return fiber.StatusBadRequest
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "UNAUTHENTICATED":
		return fiber.StatusUnauthorized
	case "CONCURRENCY_CONFLICT", "ALREADY_EXISTS", "PHYSICS_VIOLATION", "AGREEMENT_LIFECYCLE_INVALID":
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	appErr, ok := apperr.As(err)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"errors":  []fiber.Map{{"code": "STORAGE_ERROR", "message": err.Error()}},
		})
	}

	status := statusForResult(intent.Result{Errors: []intent.ErrorDetail{{Code: string(appErr.Code)}}})

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"errors": []fiber.Map{{
			"code":    appErr.Code,
			"message": appErr.Message,
			"field":   appErr.Field,
		}},
	})
}

func handleHealth(c *fiber.Ctx) error {
	return c.SendString("healthy")
}
