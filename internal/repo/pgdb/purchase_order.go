package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"procurement-api/internal/common"
	"procurement-api/internal/repo/repo_errors"
	"procurement-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderRepo is the default PurchaseOrderBridge: it materializes a
// draft purchase order from an awarded quotation, copying the quoted lines.
type PurchaseOrderRepo struct {
	*postgres.Postgres
	numbering *NumberingRepo
}

func NewPurchaseOrderRepo(pgdb *postgres.Postgres, numbering *NumberingRepo) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{pgdb, numbering}
}

func (r *PurchaseOrderRepo) CreateFromQuotation(ctx context.Context, quotationId uuid.UUID) (uuid.UUID, error) {
	poNumber, err := r.numbering.NextNumber(ctx, common.NumberKindPurchaseOrder)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}

	getQuotationReq, args, _ := r.SqlBuilder.
		Select("rfq_id, vendor_id, total_amount").
		From("quotation").
		Where("id = ?", quotationId).
		RunWith(tx).
		ToSql()

	var rfqId, vendorId uuid.UUID
	var totalAmount decimal.Decimal
	err = tx.QueryRowContext(ctx, getQuotationReq, args...).Scan(&rfqId, &vendorId, &totalAmount)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, repo_errors.ErrNotFound
		}

		return uuid.Nil, err
	}

	createPoReq, args, _ := r.SqlBuilder.
		Insert("purchase_order").
		Columns("po_number", "quotation_id", "rfq_id", "vendor_id", "status", "total_amount").
		Values(poNumber, quotationId, rfqId, vendorId, "Draft", totalAmount).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	var poId uuid.UUID
	err = tx.QueryRowContext(ctx, createPoReq, args...).Scan(&poId)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	copyLinesReq := `
		INSERT INTO purchase_order_line (po_id, product_id, quantity, unit_price, discount_percent, tax_rate_percent)
		SELECT $1, ql.product_id, ql.quantity, ql.unit_price, ql.discount_percent, ql.tax_rate_percent
		FROM quotation_line ql
		WHERE ql.quotation_id = $2`

	if _, err = tx.ExecContext(ctx, copyLinesReq, poId, quotationId); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	return poId, nil
}

func (r *PurchaseOrderRepo) GetPurchaseOrderIdByQuotationId(ctx context.Context, quotationId uuid.UUID) (uuid.UUID, error) {
	getPoReq, args, _ := r.SqlBuilder.
		Select("id").
		From("purchase_order").
		Where("quotation_id = ?", quotationId).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()

	var poId uuid.UUID
	err := r.Database.QueryRowContext(ctx, getPoReq, args...).Scan(&poId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, repo_errors.ErrNotFound
		}

		return uuid.Nil, err
	}

	return poId, nil
}
