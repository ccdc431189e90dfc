package service

import (
	"context"
	"errors"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"procurement-api/internal/pricing"
	"procurement-api/internal/repo"
	"procurement-api/internal/repo/repo_errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuotationService struct {
	quotationRepo repo.Quotation
	rfqRepo       repo.RFQ
	numberingRepo repo.Numbering
}

func NewQuotationService(repos *repo.Repositories) *QuotationService {
	return &QuotationService{
		quotationRepo: repos.Quotation,
		rfqRepo:       repos.RFQ,
		numberingRepo: repos.Numbering,
	}
}

// SubmitQuotation records a vendor's offer against a published RFQ. One
// quotation per (rfq, vendor): a second submission fails with
// DuplicateQuotationError no matter what it contains.
func (s *QuotationService) SubmitQuotation(ctx context.Context, input *entity.SubmitQuotationInput) (*entity.QuotationOutputModel, error) {
	rfqId, err := parseUUID("rfqId", input.RfqId)
	if err != nil {
		return nil, err
	}

	vendorId, err := parseUUID("vendorId", input.VendorId)
	if err != nil {
		return nil, err
	}

	rfq, err := s.rfqRepo.GetRFQById(ctx, input.RfqId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRFQNotFound
		}

		return nil, err
	}

	if rfq.Status != common.Published {
		return nil, newValidationError("quotations can only be submitted against a published rfq")
	}

	if !vendorInvited(rfq, vendorId) {
		return nil, newValidationError("vendor is not invited to this rfq")
	}

	existing, err := s.quotationRepo.GetQuotationByRfqAndVendor(ctx, rfqId, vendorId)
	if err == nil {
		return nil, &DuplicateQuotationError{ExistingId: existing.Id}
	}
	if !errors.Is(err, repo_errors.ErrNotFound) {
		return nil, err
	}

	quotation, breakdown, err := s.buildQuotation(ctx, rfq, input)
	if err != nil {
		return nil, err
	}
	quotation.RfqId = rfqId
	quotation.VendorId = vendorId
	quotation.Status = common.Pending

	if quotation.QuotationNumber == "" {
		quotation.QuotationNumber, err = s.numberingRepo.NextNumber(ctx, common.NumberKindQuotation)
		if err != nil {
			return nil, err
		}
	}

	id, err := s.quotationRepo.CreateQuotation(ctx, quotation)
	if err != nil {
		if errors.Is(err, repo_errors.ErrDuplicateNumber) {
			return nil, newValidationError("quotation number %s is already taken", quotation.QuotationNumber)
		}
		if errors.Is(err, repo_errors.ErrConflict) {
			// lost the race against a concurrent submission by the same vendor
			existing, e := s.quotationRepo.GetQuotationByRfqAndVendor(ctx, rfqId, vendorId)
			if e != nil {
				return nil, err
			}

			return nil, &DuplicateQuotationError{ExistingId: existing.Id}
		}

		return nil, err
	}

	created, err := s.quotationRepo.GetQuotationById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	out := mapQuotation(created)
	out.Totals = mapTotals(breakdown)

	return out, nil
}

// buildQuotation validates the submitted header and lines against the RFQ and
// prices them. Quantities always come from the quoted RFQ lines.
func (s *QuotationService) buildQuotation(ctx context.Context, rfq *entity.RFQ, input *entity.SubmitQuotationInput) (*entity.Quotation, *pricing.Breakdown, error) {
	quotationDate, err := parseDate("quotationDate", input.QuotationDate)
	if err != nil {
		return nil, nil, err
	}

	validUntil, err := parseDate("validUntil", input.ValidUntil)
	if err != nil {
		return nil, nil, err
	}

	if validUntil.Before(quotationDate) {
		return nil, nil, newValidationError("validUntil must not be before quotationDate")
	}

	headerDiscount, err := parseDecimal("headerDiscountPercent", input.HeaderDiscountPercent)
	if err != nil {
		return nil, nil, err
	}

	shippingCost, err := parseDecimal("shippingCost", input.ShippingCost)
	if err != nil {
		return nil, nil, err
	}

	// FOB terms put shipping on the buyer, a quoted cost would be double-counted
	if fobTerms(input.DeliveryTerms) {
		shippingCost = decimal.Zero
	}

	if len(input.Lines) == 0 {
		return nil, nil, newValidationError("quotation must have at least one line")
	}

	rfqLines := make(map[uuid.UUID]*entity.RFQLine, len(rfq.Lines))
	for i := range rfq.Lines {
		rfqLines[rfq.Lines[i].Id] = &rfq.Lines[i]
	}

	lines := make([]entity.QuotationLine, 0, len(input.Lines))
	quoted := make(map[uuid.UUID]struct{}, len(input.Lines))
	for i, l := range input.Lines {
		rfqLineId, err := parseUUID("lines.rfqLineId", l.RfqLineId)
		if err != nil {
			return nil, nil, err
		}

		rfqLine, ok := rfqLines[rfqLineId]
		if !ok {
			return nil, nil, newValidationError("line %d: rfq line %s does not belong to the rfq", i+1, rfqLineId)
		}
		if _, ok := quoted[rfqLineId]; ok {
			return nil, nil, newValidationError("line %d: rfq line %s is quoted twice", i+1, rfqLineId)
		}
		quoted[rfqLineId] = struct{}{}

		unitPrice, err := parseDecimal("lines.unitPrice", l.UnitPrice)
		if err != nil {
			return nil, nil, err
		}

		discountPercent, err := parseDecimal("lines.discountPercent", l.DiscountPercent)
		if err != nil {
			return nil, nil, err
		}

		taxRatePercent, err := parseDecimal("lines.taxRatePercent", l.TaxRatePercent)
		if err != nil {
			return nil, nil, err
		}

		lines = append(lines, entity.QuotationLine{
			RfqLineId:       rfqLineId,
			ProductId:       rfqLine.ProductId,
			Quantity:        rfqLine.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: discountPercent,
			TaxRatePercent:  taxRatePercent,
			Remark:          l.Remark,
		})
	}

	breakdown, err := priceLines(lines, headerDiscount, shippingCost, input.TaxIncluded)
	if err != nil {
		return nil, nil, err
	}

	return &entity.Quotation{
		QuotationNumber:       input.QuotationNumber,
		QuotationDate:         quotationDate,
		ValidUntil:            validUntil,
		TaxIncluded:           input.TaxIncluded,
		DeliveryTerms:         input.DeliveryTerms,
		PaymentTerms:          input.PaymentTerms,
		HeaderDiscountPercent: headerDiscount,
		ShippingCost:          shippingCost,
		TotalAmount:           breakdown.GrandTotal,
		Lines:                 lines,
	}, breakdown, nil
}

func (s *QuotationService) GetQuotationById(ctx context.Context, quotationId string) (*entity.QuotationOutputModel, error) {
	quotation, err := s.quotationRepo.GetQuotationById(ctx, quotationId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrQuotationNotFound
		}

		return nil, err
	}

	out := mapQuotation(quotation)

	breakdown, err := priceLines(quotation.Lines, quotation.HeaderDiscountPercent, quotation.ShippingCost, quotation.TaxIncluded)
	if err == nil {
		out.Totals = mapTotals(breakdown)
	}

	return out, nil
}

// EditQuotationById replaces the header and lines of a pending quotation and
// reprices it. Approved and rejected quotations are frozen.
func (s *QuotationService) EditQuotationById(ctx context.Context, quotationId string, input *entity.SubmitQuotationInput) (*entity.QuotationOutputModel, error) {
	quotation, err := s.quotationRepo.GetQuotationById(ctx, quotationId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrQuotationNotFound
		}

		return nil, err
	}

	if quotation.Status != common.Pending {
		return nil, ErrQuotationNotEditable
	}

	rfq, err := s.rfqRepo.GetRFQById(ctx, quotation.RfqId.String())
	if err != nil {
		return nil, err
	}

	if rfq.Status != common.Published {
		return nil, ErrQuotationNotEditable
	}

	edited, breakdown, err := s.buildQuotation(ctx, rfq, input)
	if err != nil {
		return nil, err
	}
	edited.Id = quotation.Id
	edited.QuotationNumber = quotation.QuotationNumber
	edited.RfqId = quotation.RfqId
	edited.VendorId = quotation.VendorId
	edited.Status = common.Pending

	if err = s.quotationRepo.EditQuotationById(ctx, edited); err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrQuotationNotEditable
		}

		return nil, err
	}

	quotation, err = s.quotationRepo.GetQuotationById(ctx, quotationId)
	if err != nil {
		return nil, err
	}

	out := mapQuotation(quotation)
	out.Totals = mapTotals(breakdown)

	return out, nil
}

// CalculateTotals prices ad-hoc lines without touching stored data.
func (s *QuotationService) CalculateTotals(ctx context.Context, input *entity.CalculateTotalsInput) (*entity.TotalsOutputModel, error) {
	headerDiscount, err := parseDecimal("headerDiscountPercent", input.HeaderDiscountPercent)
	if err != nil {
		return nil, err
	}

	shippingCost, err := parseDecimal("shippingCost", input.ShippingCost)
	if err != nil {
		return nil, err
	}

	if fobTerms(input.DeliveryTerms) {
		shippingCost = decimal.Zero
	}

	in := pricing.Input{
		Lines:                 make([]pricing.Line, 0, len(input.Lines)),
		HeaderDiscountPercent: headerDiscount,
		ShippingCost:          shippingCost,
		TaxIncluded:           input.TaxIncluded,
	}

	for _, l := range input.Lines {
		quantity, err := parseDecimal("lines.quantity", l.Quantity)
		if err != nil {
			return nil, err
		}

		unitPrice, err := parseDecimal("lines.unitPrice", l.UnitPrice)
		if err != nil {
			return nil, err
		}

		discountPercent, err := parseDecimal("lines.discountPercent", l.DiscountPercent)
		if err != nil {
			return nil, err
		}

		taxRatePercent, err := parseDecimal("lines.taxRatePercent", l.TaxRatePercent)
		if err != nil {
			return nil, err
		}

		in.Lines = append(in.Lines, pricing.Line{
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: discountPercent,
			TaxRatePercent:  taxRatePercent,
		})
	}

	breakdown, err := pricing.Calculate(in)
	if err != nil {
		return nil, err
	}

	return mapTotals(breakdown), nil
}

func priceLines(lines []entity.QuotationLine, headerDiscount, shippingCost decimal.Decimal, taxIncluded bool) (*pricing.Breakdown, error) {
	in := pricing.Input{
		Lines:                 make([]pricing.Line, 0, len(lines)),
		HeaderDiscountPercent: headerDiscount,
		ShippingCost:          shippingCost,
		TaxIncluded:           taxIncluded,
	}

	for _, l := range lines {
		in.Lines = append(in.Lines, pricing.Line{
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxRatePercent:  l.TaxRatePercent,
		})
	}

	return pricing.Calculate(in)
}

func vendorInvited(rfq *entity.RFQ, vendorId uuid.UUID) bool {
	for _, v := range rfq.VendorIds {
		if v == vendorId {
			return true
		}
	}

	return false
}

func fobTerms(deliveryTerms string) bool {
	return strings.Contains(strings.ToLower(deliveryTerms), "fob")
}
