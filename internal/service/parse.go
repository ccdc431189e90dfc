package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, newValidationError("%s must be a date in the form %s", field, dateLayout)
	}

	return t, nil
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, newValidationError("%s must be a valid uuid", field)
	}

	return id, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, newValidationError("%s must be a decimal number", field)
	}

	return d, nil
}
