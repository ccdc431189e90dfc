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

type RFQRepo struct {
	*postgres.Postgres
}

func NewRFQRepo(pgdb *postgres.Postgres) *RFQRepo {
	return &RFQRepo{pgdb}
}

func (r *RFQRepo) CreateRFQ(ctx context.Context, rfq *entity.RFQ) (uuid.UUID, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}

	createRfqReq, args, _ := r.SqlBuilder.
		Insert("rfq").
		Columns("rfq_number", "requisition_id", "issue_date", "due_date", "status", "created_by").
		Values(rfq.RfqNumber, rfq.RequisitionId, rfq.IssueDate, rfq.DueDate, rfq.Status, rfq.CreatedById).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	var rfqId uuid.UUID
	err = tx.QueryRowContext(ctx, createRfqReq, args...).Scan(&rfqId)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}
		if isUniqueViolation(err) {
			return uuid.Nil, repo_errors.ErrConflict
		}

		return uuid.Nil, err
	}

	for _, line := range rfq.Lines {
		createLineReq, args, _ := r.SqlBuilder.
			Insert("rfq_line").
			Columns("rfq_id", "product_id", "product_code", "product_name", "quantity", "delivery_date", "target_price").
			Values(rfqId, line.ProductId, line.ProductCode, line.ProductName, line.Quantity, line.DeliveryDate, line.TargetPrice).
			RunWith(tx).
			ToSql()

		if _, err = tx.ExecContext(ctx, createLineReq, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return uuid.Nil, e
			}

			return uuid.Nil, err
		}
	}

	for _, vendorId := range rfq.VendorIds {
		createVendorReq, args, _ := r.SqlBuilder.
			Insert("rfq_vendor").
			Columns("rfq_id", "vendor_id").
			Values(rfqId, vendorId).
			RunWith(tx).
			ToSql()

		if _, err = tx.ExecContext(ctx, createVendorReq, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return uuid.Nil, e
			}

			return uuid.Nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	return rfqId, nil
}

func (r *RFQRepo) GetRFQById(ctx context.Context, id string) (*entity.RFQ, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getRfqReq, args, _ := r.SqlBuilder.
		Select("id, rfq_number, requisition_id, issue_date, due_date, status, created_by, created_at").
		From("rfq").
		Where("id = ?", uuidForm).
		ToSql()

	var rfq entity.RFQ
	var createdAt time.Time
	err = r.Database.QueryRowContext(ctx, getRfqReq, args...).Scan(&rfq.Id, &rfq.RfqNumber,
		&rfq.RequisitionId, &rfq.IssueDate, &rfq.DueDate, &rfq.Status, &rfq.CreatedById, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	rfq.CreatedAt = createdAt.Format(time.RFC3339)

	rfq.Lines, err = r.getLines(ctx, uuidForm)
	if err != nil {
		return nil, err
	}

	rfq.VendorIds, err = r.getVendorIds(ctx, uuidForm)
	if err != nil {
		return nil, err
	}

	return &rfq, nil
}

func (r *RFQRepo) getLines(ctx context.Context, rfqId uuid.UUID) ([]entity.RFQLine, error) {
	getLinesReq, args, _ := r.SqlBuilder.
		Select("id, rfq_id, product_id, product_code, product_name, quantity, delivery_date, target_price").
		From("rfq_line").
		Where("rfq_id = ?", rfqId).
		OrderBy("created_at ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getLinesReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]entity.RFQLine, 0)
	for rows.Next() {
		var line entity.RFQLine
		if err := rows.Scan(&line.Id, &line.RfqId, &line.ProductId, &line.ProductCode,
			&line.ProductName, &line.Quantity, &line.DeliveryDate, &line.TargetPrice); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *RFQRepo) getVendorIds(ctx context.Context, rfqId uuid.UUID) ([]uuid.UUID, error) {
	getVendorsReq, args, _ := r.SqlBuilder.
		Select("vendor_id").
		From("rfq_vendor").
		Where("rfq_id = ?", rfqId).
		OrderBy("vendor_id ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getVendorsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendorIds := make([]uuid.UUID, 0)
	for rows.Next() {
		var vendorId uuid.UUID
		if err := rows.Scan(&vendorId); err != nil {
			return nil, err
		}
		vendorIds = append(vendorIds, vendorId)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return vendorIds, nil
}

func (r *RFQRepo) GetRFQs(ctx context.Context, status string, pg *entity.PaginationInput) ([]entity.RFQ, error) {
	builder := r.SqlBuilder.
		Select("id, rfq_number, requisition_id, issue_date, due_date, status, created_by, created_at").
		From("rfq").
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit))

	if status != "" {
		builder = builder.Where("status = ?", status)
	}

	getRfqsReq, args, _ := builder.ToSql()

	rows, err := r.Database.QueryContext(ctx, getRfqsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rfqs := make([]entity.RFQ, 0)
	for rows.Next() {
		var rfq entity.RFQ
		var createdAt time.Time
		if err := rows.Scan(&rfq.Id, &rfq.RfqNumber, &rfq.RequisitionId, &rfq.IssueDate,
			&rfq.DueDate, &rfq.Status, &rfq.CreatedById, &createdAt); err != nil {
			return nil, err
		}
		rfq.CreatedAt = createdAt.Format(time.RFC3339)
		rfqs = append(rfqs, rfq)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return rfqs, nil
}

func (r *RFQRepo) GetRFQIdByRequisitionId(ctx context.Context, requisitionId uuid.UUID) (uuid.UUID, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("id").
		From("rfq").
		Where("requisition_id = ?", requisitionId).
		ToSql()

	var rfqId uuid.UUID
	err := r.Database.QueryRowContext(ctx, sqlReq, args...).Scan(&rfqId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, repo_errors.ErrNotFound
		}

		return uuid.Nil, err
	}

	return rfqId, nil
}

// UpdateRFQStatusById moves the RFQ from currentStatus to newStatus. Zero
// rows updated means the status changed underneath the caller, so a stale
// transition never overwrites a concurrent award.
func (r *RFQRepo) UpdateRFQStatusById(ctx context.Context, id string, currentStatus string, newStatus string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	updateStatusSql, args, _ := r.SqlBuilder.
		Update("rfq").
		Set("status", newStatus).
		Where("id = ?", uuidForm).
		Where("status = ?", currentStatus).
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
		return repo_errors.ErrConflict
	}

	return nil
}

// ImportLines appends imported lines to a Draft RFQ and links the source
// requisition, all under a row lock on the RFQ. A lone placeholder line with
// no product identity is replaced by the first import instead of kept. The
// unique index on rfq.requisition_id turns a concurrent import of the same
// requisition into ErrConflict.
func (r *RFQRepo) ImportLines(ctx context.Context, rfqId uuid.UUID, requisitionId uuid.UUID, lines []entity.RFQLine) error {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	lockRfqReq, args, _ := r.SqlBuilder.
		Select("status, requisition_id").
		From("rfq").
		Where("id = ?", rfqId).
		Suffix("FOR UPDATE").
		RunWith(tx).
		ToSql()

	var status string
	var linkedRequisitionId *uuid.UUID
	err = tx.QueryRowContext(ctx, lockRfqReq, args...).Scan(&status, &linkedRequisitionId)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		if errors.Is(err, sql.ErrNoRows) {
			return repo_errors.ErrNotFound
		}

		return err
	}

	if status != common.Draft {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrConflict
	}

	if linkedRequisitionId != nil && *linkedRequisitionId != requisitionId {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrConflict
	}

	if linkedRequisitionId == nil {
		linkReq, args, _ := r.SqlBuilder.
			Update("rfq").
			Set("requisition_id", requisitionId).
			Where("id = ?", rfqId).
			RunWith(tx).
			ToSql()

		if _, err = tx.ExecContext(ctx, linkReq, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}
			if isUniqueViolation(err) {
				return repo_errors.ErrConflict
			}

			return err
		}

		// First import into this RFQ: drop the lone placeholder empty line if
		// that is all the RFQ holds.
		deletePlaceholderReq, args, _ := r.SqlBuilder.
			Delete("rfq_line").
			Where("rfq_id = ?", rfqId).
			Where("product_id IS NULL").
			Where("product_code = ''").
			Where("product_name = ''").
			Where(`(SELECT count(*) FROM rfq_line WHERE rfq_id = ?) = 1`, rfqId).
			RunWith(tx).
			ToSql()

		if _, err = tx.ExecContext(ctx, deletePlaceholderReq, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return err
		}
	}

	for _, line := range lines {
		createLineReq, args, _ := r.SqlBuilder.
			Insert("rfq_line").
			Columns("rfq_id", "product_id", "product_code", "product_name", "quantity", "delivery_date", "target_price").
			Values(rfqId, line.ProductId, line.ProductCode, line.ProductName, line.Quantity, line.DeliveryDate, line.TargetPrice).
			RunWith(tx).
			ToSql()

		if _, err = tx.ExecContext(ctx, createLineReq, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return nil
}
