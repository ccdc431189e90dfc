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

type QuotationRepo struct {
	*postgres.Postgres
}

func NewQuotationRepo(pgdb *postgres.Postgres) *QuotationRepo {
	return &QuotationRepo{pgdb}
}

func (r *QuotationRepo) CreateQuotation(ctx context.Context, q *entity.Quotation) (uuid.UUID, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}

	createQuotationReq, args, _ := r.SqlBuilder.
		Insert("quotation").
		Columns("quotation_number", "rfq_id", "vendor_id", "quotation_date", "valid_until",
			"tax_included", "delivery_terms", "payment_terms", "header_discount_percent",
			"shipping_cost", "total_amount", "status").
		Values(q.QuotationNumber, q.RfqId, q.VendorId, q.QuotationDate, q.ValidUntil,
			q.TaxIncluded, q.DeliveryTerms, q.PaymentTerms, q.HeaderDiscountPercent,
			q.ShippingCost, q.TotalAmount, q.Status).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	var quotationId uuid.UUID
	err = tx.QueryRowContext(ctx, createQuotationReq, args...).Scan(&quotationId)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}
		// two unique indexes on this table: (rfq_id, vendor_id) guards against
		// duplicate submissions, quotation_number against a taken number
		if uniqueConstraint(err) == "quotation_number_unique" {
			return uuid.Nil, repo_errors.ErrDuplicateNumber
		}
		if isUniqueViolation(err) {
			return uuid.Nil, repo_errors.ErrConflict
		}

		return uuid.Nil, err
	}

	if err = r.insertLines(ctx, tx, quotationId, q.Lines); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	return quotationId, nil
}

func (r *QuotationRepo) insertLines(ctx context.Context, tx *sql.Tx, quotationId uuid.UUID, lines []entity.QuotationLine) error {
	for _, line := range lines {
		createLineReq, args, _ := r.SqlBuilder.
			Insert("quotation_line").
			Columns("quotation_id", "rfq_line_id", "product_id", "quantity", "unit_price",
				"discount_percent", "tax_rate_percent", "remark").
			Values(quotationId, line.RfqLineId, line.ProductId, line.Quantity, line.UnitPrice,
				line.DiscountPercent, line.TaxRatePercent, line.Remark).
			RunWith(tx).
			ToSql()

		if _, err := tx.ExecContext(ctx, createLineReq, args...); err != nil {
			return err
		}
	}

	return nil
}

const quotationColumns = "id, quotation_number, rfq_id, vendor_id, quotation_date, valid_until, " +
	"tax_included, delivery_terms, payment_terms, header_discount_percent, shipping_cost, " +
	"total_amount, status, approver_id, approved_at, coalesce(reject_reason, ''), created_at"

func (r *QuotationRepo) scanQuotation(row interface {
	Scan(dest ...interface{}) error
}) (*entity.Quotation, error) {
	var q entity.Quotation
	var createdAt time.Time
	err := row.Scan(&q.Id, &q.QuotationNumber, &q.RfqId, &q.VendorId, &q.QuotationDate,
		&q.ValidUntil, &q.TaxIncluded, &q.DeliveryTerms, &q.PaymentTerms,
		&q.HeaderDiscountPercent, &q.ShippingCost, &q.TotalAmount, &q.Status,
		&q.ApproverId, &q.ApprovedAt, &q.RejectReason, &createdAt)
	if err != nil {
		return nil, err
	}
	q.CreatedAt = createdAt.Format(time.RFC3339)

	return &q, nil
}

func (r *QuotationRepo) GetQuotationById(ctx context.Context, id string) (*entity.Quotation, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getQuotationReq, args, _ := r.SqlBuilder.
		Select(quotationColumns).
		From("quotation").
		Where("id = ?", uuidForm).
		ToSql()

	q, err := r.scanQuotation(r.Database.QueryRowContext(ctx, getQuotationReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	q.Lines, err = r.getLines(ctx, q.Id)
	if err != nil {
		return nil, err
	}

	return q, nil
}

func (r *QuotationRepo) getLines(ctx context.Context, quotationId uuid.UUID) ([]entity.QuotationLine, error) {
	getLinesReq, args, _ := r.SqlBuilder.
		Select("id, quotation_id, rfq_line_id, product_id, quantity, unit_price, discount_percent, tax_rate_percent, coalesce(remark, '')").
		From("quotation_line").
		Where("quotation_id = ?", quotationId).
		OrderBy("created_at ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getLinesReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]entity.QuotationLine, 0)
	for rows.Next() {
		var line entity.QuotationLine
		if err := rows.Scan(&line.Id, &line.QuotationId, &line.RfqLineId, &line.ProductId,
			&line.Quantity, &line.UnitPrice, &line.DiscountPercent, &line.TaxRatePercent, &line.Remark); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *QuotationRepo) GetQuotationsByRfqId(ctx context.Context, rfqId uuid.UUID) ([]entity.Quotation, error) {
	getQuotationsReq, args, _ := r.SqlBuilder.
		Select(quotationColumns).
		From("quotation").
		Where("rfq_id = ?", rfqId).
		OrderBy("created_at ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getQuotationsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotations := make([]entity.Quotation, 0)
	for rows.Next() {
		q, err := r.scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, *q)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range quotations {
		quotations[i].Lines, err = r.getLines(ctx, quotations[i].Id)
		if err != nil {
			return nil, err
		}
	}

	return quotations, nil
}

func (r *QuotationRepo) GetQuotationByRfqAndVendor(ctx context.Context, rfqId uuid.UUID, vendorId uuid.UUID) (*entity.Quotation, error) {
	getQuotationReq, args, _ := r.SqlBuilder.
		Select(quotationColumns).
		From("quotation").
		Where("rfq_id = ?", rfqId).
		Where("vendor_id = ?", vendorId).
		ToSql()

	q, err := r.scanQuotation(r.Database.QueryRowContext(ctx, getQuotationReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return q, nil
}

// EditQuotationById rewrites a Pending quotation's header and lines. The
// service has already recomputed TotalAmount from the new lines.
func (r *QuotationRepo) EditQuotationById(ctx context.Context, q *entity.Quotation) error {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	updateQuotationReq, args, _ := r.SqlBuilder.
		Update("quotation").
		Set("quotation_date", q.QuotationDate).
		Set("valid_until", q.ValidUntil).
		Set("tax_included", q.TaxIncluded).
		Set("delivery_terms", q.DeliveryTerms).
		Set("payment_terms", q.PaymentTerms).
		Set("header_discount_percent", q.HeaderDiscountPercent).
		Set("shipping_cost", q.ShippingCost).
		Set("total_amount", q.TotalAmount).
		Where("id = ?", q.Id).
		Where("status = ?", common.Pending).
		RunWith(tx).
		ToSql()

	res, err := tx.ExecContext(ctx, updateQuotationReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}
	if affected == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrConflict
	}

	deleteLinesReq, args, _ := r.SqlBuilder.
		Delete("quotation_line").
		Where("quotation_id = ?", q.Id).
		RunWith(tx).
		ToSql()

	if _, err = tx.ExecContext(ctx, deleteLinesReq, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	if err = r.insertLines(ctx, tx, q.Id, q.Lines); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return nil
}

// AwardQuotation runs the atomic award core: approve the winner, reject every
// other Pending quotation of the RFQ and close the RFQ, all in one
// transaction holding a row lock on the RFQ. An RFQ already out of an
// awardable status, or a winner no longer Pending, aborts with ErrConflict so
// the caller can distinguish a lost race from success.
func (r *QuotationRepo) AwardQuotation(ctx context.Context, rfqId uuid.UUID, winnerId uuid.UUID, approverId uuid.UUID, reason string) error {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	lockRfqReq, args, _ := r.SqlBuilder.
		Select("status").
		From("rfq").
		Where("id = ?", rfqId).
		Suffix("FOR UPDATE").
		RunWith(tx).
		ToSql()

	var rfqStatus string
	err = tx.QueryRowContext(ctx, lockRfqReq, args...).Scan(&rfqStatus)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		if errors.Is(err, sql.ErrNoRows) {
			return repo_errors.ErrNotFound
		}

		return err
	}

	if rfqStatus == common.Closed || rfqStatus == common.Cancelled {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrConflict
	}

	approveWinnerReq, args, _ := r.SqlBuilder.
		Update("quotation").
		Set("status", common.Approved).
		Set("approver_id", approverId).
		Set("approved_at", time.Now().UTC()).
		Where("id = ?", winnerId).
		Where("rfq_id = ?", rfqId).
		Where("status = ?", common.Pending).
		RunWith(tx).
		ToSql()

	res, err := tx.ExecContext(ctx, approveWinnerReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	approved, err := res.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}
	if approved == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrConflict
	}

	rejectOthersReq, args, _ := r.SqlBuilder.
		Update("quotation").
		Set("status", common.Rejected).
		Set("reject_reason", reason).
		Where("rfq_id = ?", rfqId).
		Where("id <> ?", winnerId).
		Where("status = ?", common.Pending).
		RunWith(tx).
		ToSql()

	if _, err = tx.ExecContext(ctx, rejectOthersReq, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	closeRfqReq, args, _ := r.SqlBuilder.
		Update("rfq").
		Set("status", common.Closed).
		Where("id = ?", rfqId).
		RunWith(tx).
		ToSql()

	if _, err = tx.ExecContext(ctx, closeRfqReq, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return nil
}
