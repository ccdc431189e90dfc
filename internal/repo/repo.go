package repo

import (
	"context"
	"procurement-api/internal/entity"
	"procurement-api/internal/repo/pgdb"
	"procurement-api/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

type Product interface {
	GetProductById(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetProductByCode(ctx context.Context, code string) (*entity.Product, error)
	GetProductByName(ctx context.Context, name string) (*entity.Product, error)
}

type Requisition interface {
	GetRequisitionById(ctx context.Context, id string) (*entity.Requisition, error)
	MarkRequisitionConverted(ctx context.Context, id uuid.UUID) error
}

type RFQ interface {
	CreateRFQ(ctx context.Context, rfq *entity.RFQ) (uuid.UUID, error)
	GetRFQById(ctx context.Context, id string) (*entity.RFQ, error)
	GetRFQs(ctx context.Context, status string, pg *entity.PaginationInput) ([]entity.RFQ, error)
	GetRFQIdByRequisitionId(ctx context.Context, requisitionId uuid.UUID) (uuid.UUID, error)
	UpdateRFQStatusById(ctx context.Context, id string, currentStatus string, newStatus string) error
	ImportLines(ctx context.Context, rfqId uuid.UUID, requisitionId uuid.UUID, lines []entity.RFQLine) error
}

type Quotation interface {
	CreateQuotation(ctx context.Context, q *entity.Quotation) (uuid.UUID, error)
	GetQuotationById(ctx context.Context, id string) (*entity.Quotation, error)
	GetQuotationsByRfqId(ctx context.Context, rfqId uuid.UUID) ([]entity.Quotation, error)
	GetQuotationByRfqAndVendor(ctx context.Context, rfqId uuid.UUID, vendorId uuid.UUID) (*entity.Quotation, error)
	EditQuotationById(ctx context.Context, q *entity.Quotation) error
	AwardQuotation(ctx context.Context, rfqId uuid.UUID, winnerId uuid.UUID, approverId uuid.UUID, reason string) error
}

type Numbering interface {
	NextNumber(ctx context.Context, kind string) (string, error)
}

type PurchaseOrder interface {
	CreateFromQuotation(ctx context.Context, quotationId uuid.UUID) (uuid.UUID, error)
	GetPurchaseOrderIdByQuotationId(ctx context.Context, quotationId uuid.UUID) (uuid.UUID, error)
}

type Repositories struct {
	Diagnostics
	Product
	Requisition
	RFQ
	Quotation
	Numbering
	PurchaseOrder
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	numbering := pgdb.NewNumberingRepo(p)

	return &Repositories{
		Diagnostics:   pgdb.NewDiagnosticsRepo(p),
		Product:       pgdb.NewProductRepo(p),
		Requisition:   pgdb.NewRequisitionRepo(p),
		RFQ:           pgdb.NewRFQRepo(p),
		Quotation:     pgdb.NewQuotationRepo(p),
		Numbering:     numbering,
		PurchaseOrder: pgdb.NewPurchaseOrderRepo(p, numbering),
	}
}
