package services

import (
	"fmt"
	"strings"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

var (
	// ErrDocumentState indicates the document's current status does not allow
	// the requested transition.
	ErrDocumentState = fmt.Errorf("%w: document status does not allow this transition", apperrors.ErrConflict)
	// ErrTotalMismatch indicates a document total that does not equal its net
	// item lines plus tax.
	ErrTotalMismatch = fmt.Errorf("%w: document total does not equal net plus tax", apperrors.ErrValidation)
	// ErrVoidReasonTooShort indicates a void reason below the minimum length.
	ErrVoidReasonTooShort = fmt.Errorf("%w: void reason must be at least %d characters", apperrors.ErrValidation, domain.MinVoidReasonLen)
	// ErrNotCreator indicates a submit attempt by someone other than the user
	// who drafted the document.
	ErrNotCreator = fmt.Errorf("%w: only the document creator may submit it", apperrors.ErrForbidden)
)

// assertCreator enforces that only the drafting user submits a document.
func assertCreator(createdBy, userID string) error {
	if createdBy != userID {
		return fmt.Errorf("drafted by %s: %w", createdBy, ErrNotCreator)
	}
	return nil
}

// assertTransition checks the shared document lifecycle before a status change.
func assertTransition(current, next domain.DocumentStatus) error {
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("cannot move %s to %s: %w", current, next, ErrDocumentState)
	}
	return nil
}

// validateVoidReason enforces the minimum void reason length after trimming.
func validateVoidReason(reason string) error {
	if len(strings.TrimSpace(reason)) < domain.MinVoidReasonLen {
		return ErrVoidReasonTooShort
	}
	return nil
}
