package pgdb

import (
	"context"
	"fmt"
	"procurement-api/pkg/postgres"
)

type NumberingRepo struct {
	*postgres.Postgres
}

func NewNumberingRepo(pgdb *postgres.Postgres) *NumberingRepo {
	return &NumberingRepo{pgdb}
}

// NextNumber hands out the next document number for a kind, e.g. "RFQ-0007".
// The upsert increments atomically, so two concurrent callers never share a
// number. Callers treat the result as an opaque unique string.
func (r *NumberingRepo) NextNumber(ctx context.Context, kind string) (string, error) {
	nextNumberReq, args, _ := r.SqlBuilder.
		Insert("numbering").
		Columns("kind", "last_value").
		Values(kind, 1).
		Suffix("ON CONFLICT (kind) DO UPDATE SET last_value = numbering.last_value + 1 RETURNING last_value").
		ToSql()

	var lastValue int64
	err := r.Database.QueryRowContext(ctx, nextNumberReq, args...).Scan(&lastValue)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%04d", kind, lastValue), nil
}
