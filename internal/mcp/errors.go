package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/domain/queue"
)

// Codes for failures that don't come from the queue.
const (
	CodeEmpireNotFound = "EMPIRE_NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var queueHints = map[queue.Code]string{
	queue.CodeNotFound:              "Check the queue ID with list_queue",
	queue.CodeNotOwner:              "Use a coordinate from get_empire colonies",
	queue.CodeInvalidRequest:        "Check item_key against starbase://catalog",
	queue.CodeTechRequirements:      "Research the listed technologies first",
	queue.CodeInsufficientResources: "Wait for payouts or build energy producers",
	queue.CodeNoCapacity:            "Build the facility that provides this capacity",
	queue.CodeAlreadyInProgress:     "Wait for the running item to complete",
	queue.CodeQueueError:            "Retry shortly",
	queue.CodeCreditError:           "Retry shortly",
}

// MapError maps domain errors to MCP error codes. Unknown errors become INTERNAL_ERROR.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var qe *queue.Error
	if errors.As(err, &qe) {
		msg := qe.Message
		if msg == "" {
			msg = string(qe.Code)
		}
		api := &APIError{Code: string(qe.Code), Message: msg, RecoveryHint: queueHints[qe.Code]}
		if len(qe.Details) > 0 {
			api.Details = qe.Details
		}
		return api
	}

	switch {
	case errors.Is(err, empire.ErrEmpireNotFound), errors.Is(err, ledger.ErrAccountNotFound):
		return &APIError{Code: CodeEmpireNotFound, Message: "empire not found", RecoveryHint: "Check empire_id spelling"}
	case errors.Is(err, empire.ErrNotOwner):
		return &APIError{Code: string(queue.CodeNotOwner), Message: "coordinate not owned by empire", RecoveryHint: queueHints[queue.CodeNotOwner]}
	case errors.Is(err, empire.ErrInvalidCoordinate):
		return &APIError{Code: string(queue.CodeInvalidRequest), Message: err.Error(), RecoveryHint: "Coordinates look like A01:02:03:04"}
	case errors.Is(err, empire.ErrInvalidInput), errors.Is(err, fleet.ErrInvalidInput), errors.Is(err, ledger.ErrInvalidAmount):
		return &APIError{Code: string(queue.CodeInvalidRequest), Message: err.Error()}
	case errors.Is(err, ledger.ErrInsufficientCredits):
		return &APIError{Code: string(queue.CodeInsufficientResources), Message: "insufficient credits", RecoveryHint: queueHints[queue.CodeInsufficientResources]}
	default:
		return &APIError{Code: CodeInternal, Message: "internal error"}
	}
}
