package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrRFQNotFound         = errors.New("rfq not found")
	ErrQuotationNotFound   = errors.New("quotation not found")
	ErrRequisitionNotFound = errors.New("requisition not found")

	ErrAlreadyImported = errors.New("requisition has already been imported into an rfq")
	ErrAlreadyAwarded  = errors.New("rfq has already been awarded")

	ErrInvalidSelection        = errors.New("selected quotations don't belong to the rfq or aren't pending")
	ErrInvalidStatusTransition = errors.New("status transition isn't allowed")
	ErrQuotationNotEditable    = errors.New("quotation can no longer be edited")
	ErrNoVendorsInvited        = errors.New("rfq has no invited vendors")
	ErrNoLines                 = errors.New("rfq has no lines")
)

// ValidationError carries a reason that is safe to show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DuplicateQuotationError is returned when a vendor submits a second quotation
// for the same RFQ. ExistingId points at the quotation that already exists.
type DuplicateQuotationError struct {
	ExistingId uuid.UUID
}

func (e *DuplicateQuotationError) Error() string {
	return fmt.Sprintf("vendor already submitted quotation %s for this rfq", e.ExistingId)
}
