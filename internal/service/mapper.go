package service

import (
	"procurement-api/internal/entity"
	"procurement-api/internal/pricing"
)

const dateLayout = "2006-01-02"

func mapRFQ(r *entity.RFQ) *entity.RFQOutputModel {
	out := &entity.RFQOutputModel{
		Id:        r.Id.String(),
		RfqNumber: r.RfqNumber,
		IssueDate: r.IssueDate.Format(dateLayout),
		DueDate:   r.DueDate.Format(dateLayout),
		Status:    r.Status,
		VendorIds: make([]string, 0, len(r.VendorIds)),
		Lines:     mapRFQLines(r.Lines),
		CreatedAt: r.CreatedAt,
	}

	if r.RequisitionId != nil {
		out.RequisitionId = r.RequisitionId.String()
	}

	for _, v := range r.VendorIds {
		out.VendorIds = append(out.VendorIds, v.String())
	}

	return out
}

func mapRFQs(rfqs []entity.RFQ) []entity.RFQOutputModel {
	s := make([]entity.RFQOutputModel, 0)
	for _, r := range rfqs {
		s = append(s, *mapRFQ(&r))
	}

	return s
}

func mapRFQLine(l *entity.RFQLine) *entity.RFQLineOutputModel {
	out := &entity.RFQLineOutputModel{
		Id:          l.Id.String(),
		ProductCode: l.ProductCode,
		ProductName: l.ProductName,
		Quantity:    l.Quantity.String(),
		TargetPrice: l.TargetPrice.String(),
	}

	if l.ProductId != nil {
		out.ProductId = l.ProductId.String()
	}
	if l.DeliveryDate != nil {
		out.DeliveryDate = l.DeliveryDate.Format(dateLayout)
	}

	return out
}

func mapRFQLines(lines []entity.RFQLine) []entity.RFQLineOutputModel {
	s := make([]entity.RFQLineOutputModel, 0)
	for _, l := range lines {
		s = append(s, *mapRFQLine(&l))
	}

	return s
}

func mapQuotation(q *entity.Quotation) *entity.QuotationOutputModel {
	return &entity.QuotationOutputModel{
		Id:                    q.Id.String(),
		QuotationNumber:       q.QuotationNumber,
		RfqId:                 q.RfqId.String(),
		VendorId:              q.VendorId.String(),
		QuotationDate:         q.QuotationDate.Format(dateLayout),
		ValidUntil:            q.ValidUntil.Format(dateLayout),
		LeadTimeDays:          leadTimeDays(q),
		TaxIncluded:           q.TaxIncluded,
		DeliveryTerms:         q.DeliveryTerms,
		PaymentTerms:          q.PaymentTerms,
		HeaderDiscountPercent: q.HeaderDiscountPercent.String(),
		ShippingCost:          q.ShippingCost.String(),
		TotalAmount:           q.TotalAmount.String(),
		Status:                q.Status,
		RejectReason:          q.RejectReason,
		Lines:                 mapQuotationLines(q.Lines),
		CreatedAt:             q.CreatedAt,
	}
}

func mapQuotationLine(l *entity.QuotationLine) *entity.QuotationLineOutputModel {
	out := &entity.QuotationLineOutputModel{
		Id:              l.Id.String(),
		RfqLineId:       l.RfqLineId.String(),
		Quantity:        l.Quantity.String(),
		UnitPrice:       l.UnitPrice.String(),
		DiscountPercent: l.DiscountPercent.String(),
		TaxRatePercent:  l.TaxRatePercent.String(),
		Remark:          l.Remark,
	}

	if l.ProductId != nil {
		out.ProductId = l.ProductId.String()
	}

	return out
}

func mapQuotationLines(lines []entity.QuotationLine) []entity.QuotationLineOutputModel {
	s := make([]entity.QuotationLineOutputModel, 0)
	for _, l := range lines {
		s = append(s, *mapQuotationLine(&l))
	}

	return s
}

func mapTotals(b *pricing.Breakdown) *entity.TotalsOutputModel {
	return &entity.TotalsOutputModel{
		Subtotal:                b.Subtotal.StringFixed(2),
		TotalLineDiscount:       b.TotalLineDiscount.StringFixed(2),
		TotalAfterLineDiscount:  b.TotalAfterLineDiscount.StringFixed(2),
		HeaderDiscountAmount:    b.HeaderDiscountAmount.StringFixed(2),
		AmountAfterAllDiscounts: b.AmountAfterAllDiscounts.StringFixed(2),
		TotalTax:                b.TotalTax.StringFixed(2),
		ShippingCost:            b.ShippingCost.StringFixed(2),
		GrandTotal:              b.GrandTotal.StringFixed(2),
	}
}

func mapQuotationSummary(q *entity.Quotation) *entity.QuotationSummaryOutModel {
	return &entity.QuotationSummaryOutModel{
		Id:              q.Id.String(),
		QuotationNumber: q.QuotationNumber,
		VendorId:        q.VendorId.String(),
		QuotationDate:   q.QuotationDate.Format(dateLayout),
		LeadTimeDays:    leadTimeDays(q),
		Status:          q.Status,
		TotalAmount:     q.TotalAmount.StringFixed(2),
	}
}

func mapUnmatchedLine(l *entity.RequisitionLine, reason string) *entity.RequisitionLineOutputModel {
	return &entity.RequisitionLineOutputModel{
		Id:          l.Id.String(),
		ProductCode: l.ProductCode,
		ProductName: l.ProductName,
		Quantity:    l.Quantity.String(),
		Reason:      reason,
	}
}

// leadTimeDays is the whole number of days a vendor keeps the offer open.
func leadTimeDays(q *entity.Quotation) int {
	return int(q.ValidUntil.Sub(q.QuotationDate).Hours() / 24)
}
