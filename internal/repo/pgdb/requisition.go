package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"procurement-api/internal/repo/repo_errors"
	"procurement-api/pkg/postgres"
	"time"

	"github.com/google/uuid"
)

type RequisitionRepo struct {
	*postgres.Postgres
}

func NewRequisitionRepo(pgdb *postgres.Postgres) *RequisitionRepo {
	return &RequisitionRepo{pgdb}
}

func (r *RequisitionRepo) GetRequisitionById(ctx context.Context, id string) (*entity.Requisition, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getRequisitionReq, args, _ := r.SqlBuilder.
		Select("id, requisition_number, status, created_at").
		From("requisition").
		Where("id = ?", uuidForm).
		ToSql()

	var requisition entity.Requisition
	var createdAt time.Time
	err = r.Database.QueryRowContext(ctx, getRequisitionReq, args...).
		Scan(&requisition.Id, &requisition.RequisitionNumber, &requisition.Status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	requisition.CreatedAt = createdAt.Format(time.RFC3339)

	getLinesReq, args, _ := r.SqlBuilder.
		Select("id, requisition_id, product_id, product_code, product_name, quantity, requested_delivery_date, estimated_unit_price").
		From("requisition_line").
		Where("requisition_id = ?", uuidForm).
		OrderBy("created_at ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getLinesReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requisition.Lines = make([]entity.RequisitionLine, 0)
	for rows.Next() {
		var line entity.RequisitionLine
		if err := rows.Scan(&line.Id, &line.RequisitionId, &line.ProductId, &line.ProductCode,
			&line.ProductName, &line.Quantity, &line.RequestedDeliveryDate, &line.EstimatedUnitPrice); err != nil {
			return nil, err
		}
		requisition.Lines = append(requisition.Lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &requisition, nil
}

func (r *RequisitionRepo) MarkRequisitionConverted(ctx context.Context, id uuid.UUID) error {
	updateStatusSql, args, _ := r.SqlBuilder.
		Update("requisition").
		Set("status", common.Converted).
		Where("id = ?", id).
		ToSql()

	res, err := r.Database.ExecContext(ctx, updateStatusSql, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}
