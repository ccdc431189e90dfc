package pgdb

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a postgres unique-index violation.
// The unique indexes on rfq.requisition_id and (quotation.rfq_id, vendor_id)
// back the concurrent import and submission guards.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}

	return false
}

// uniqueConstraint names the violated unique constraint, or returns "" when
// err is not a unique-index violation. Tables with more than one unique index
// use it to tell the conflicts apart.
func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return pqErr.Constraint
	}

	return ""
}
