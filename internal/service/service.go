package service

import (
	"context"
	"procurement-api/internal/entity"
	"procurement-api/internal/repo"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

type RFQ interface {
	CreateRFQ(ctx context.Context, input *entity.CreateRFQInput) (*entity.RFQOutputModel, error)
	GetRFQById(ctx context.Context, rfqId string) (*entity.RFQOutputModel, error)
	GetRFQs(ctx context.Context, status string, pg *entity.PaginationInput) ([]entity.RFQOutputModel, error)

	UpdateRFQStatusById(ctx context.Context, rfqId string, newStatus string) (*entity.RFQOutputModel, error)

	ImportFromRequisition(ctx context.Context, rfqId string, requisitionId string) (*entity.ImportOutputModel, error)
}

type Quotation interface {
	SubmitQuotation(ctx context.Context, input *entity.SubmitQuotationInput) (*entity.QuotationOutputModel, error)
	GetQuotationById(ctx context.Context, quotationId string) (*entity.QuotationOutputModel, error)
	EditQuotationById(ctx context.Context, quotationId string, input *entity.SubmitQuotationInput) (*entity.QuotationOutputModel, error)

	CalculateTotals(ctx context.Context, input *entity.CalculateTotalsInput) (*entity.TotalsOutputModel, error)
}

type Award interface {
	AwardRFQ(ctx context.Context, input *entity.AwardInput) (*entity.AwardResult, error)
	GetComparisonView(ctx context.Context, rfqId string) (*entity.ComparisonOutputModel, error)
}

// PurchaseOrderBridge hands an awarded quotation over to purchasing. The
// default implementation writes a draft purchase order, other deployments may
// plug in their own.
type PurchaseOrderBridge interface {
	CreateFromQuotation(ctx context.Context, quotationId uuid.UUID) (uuid.UUID, error)
	GetPurchaseOrderIdByQuotationId(ctx context.Context, quotationId uuid.UUID) (uuid.UUID, error)
}

type Services struct {
	Diagnostics Diagnostics
	RFQ         RFQ
	Quotation   Quotation
	Award       Award
}

func NewServices(repos *repo.Repositories) *Services {
	return &Services{
		Diagnostics: NewDiagnosticsService(repos),
		RFQ:         NewRFQService(repos),
		Quotation:   NewQuotationService(repos),
		Award:       NewAwardService(repos, repos.PurchaseOrder),
	}
}
