package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Quotation struct {
	Id                    uuid.UUID       `json:"id" db:"id"`
	QuotationNumber       string          `json:"quotationNumber" db:"quotation_number"`
	RfqId                 uuid.UUID       `json:"rfqId" db:"rfq_id"`
	VendorId              uuid.UUID       `json:"vendorId" db:"vendor_id"`
	QuotationDate         time.Time       `json:"quotationDate" db:"quotation_date"`
	ValidUntil            time.Time       `json:"validUntil" db:"valid_until"`
	TaxIncluded           bool            `json:"isTaxIncluded" db:"tax_included"`
	DeliveryTerms         string          `json:"deliveryTerms" db:"delivery_terms"`
	PaymentTerms          string          `json:"paymentTerms" db:"payment_terms"`
	HeaderDiscountPercent decimal.Decimal `json:"headerDiscountPercent" db:"header_discount_percent"`
	ShippingCost          decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	TotalAmount           decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status                string          `json:"status" db:"status"`
	ApproverId            *uuid.UUID      `json:"approverId" db:"approver_id"`
	ApprovedAt            *time.Time      `json:"approvedAt" db:"approved_at"`
	RejectReason          string          `json:"rejectReason" db:"reject_reason"`
	Lines                 []QuotationLine `json:"lines"`
	CreatedAt             string          `json:"createdAt" db:"created_at"`
}

// db model; quantity is copied from the quoted RFQ line, never edited on its own
type QuotationLine struct {
	Id              uuid.UUID       `json:"id" db:"id"`
	QuotationId     uuid.UUID       `json:"quotationId" db:"quotation_id"`
	RfqLineId       uuid.UUID       `json:"rfqLineId" db:"rfq_line_id"`
	ProductId       *uuid.UUID      `json:"productId" db:"product_id"`
	Quantity        decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice" db:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discountPercent" db:"discount_percent"`
	TaxRatePercent  decimal.Decimal `json:"taxRatePercent" db:"tax_rate_percent"`
	Remark          string          `json:"remark" db:"remark"`
}

// service + repo input model
type SubmitQuotationInput struct {
	QuotationNumber       string // generated when empty
	RfqId                 string // given
	VendorId              string // given
	QuotationDate         string // given, 2006-01-02
	ValidUntil            string // given, 2006-01-02, >= QuotationDate
	TaxIncluded           bool
	DeliveryTerms         string
	PaymentTerms          string
	HeaderDiscountPercent string
	ShippingCost          string
	Lines                 []SubmitQuotationLineInput
	CreatedById           string
}

type SubmitQuotationLineInput struct {
	RfqLineId       string // given, must belong to the RFQ
	UnitPrice       string // given, > 0
	DiscountPercent string
	TaxRatePercent  string
	Remark          string
}

// controller model
type QuotationOutputModel struct {
	Id                    string                     `json:"id"`
	QuotationNumber       string                     `json:"quotationNumber"`
	RfqId                 string                     `json:"rfqId"`
	VendorId              string                     `json:"vendorId"`
	QuotationDate         string                     `json:"quotationDate"`
	ValidUntil            string                     `json:"validUntil"`
	LeadTimeDays          int                        `json:"leadTimeDays"`
	TaxIncluded           bool                       `json:"isTaxIncluded"`
	DeliveryTerms         string                     `json:"deliveryTerms"`
	PaymentTerms          string                     `json:"paymentTerms"`
	HeaderDiscountPercent string                     `json:"headerDiscountPercent"`
	ShippingCost          string                     `json:"shippingCost"`
	TotalAmount           string                     `json:"totalAmount"`
	Status                string                     `json:"status"`
	RejectReason          string                     `json:"rejectReason,omitempty"`
	Lines                 []QuotationLineOutputModel `json:"lines"`
	Totals                *TotalsOutputModel         `json:"totals,omitempty"`
	CreatedAt             string                     `json:"createdAt"`
}

type QuotationLineOutputModel struct {
	Id              string `json:"id"`
	RfqLineId       string `json:"rfqLineId"`
	ProductId       string `json:"productId,omitempty"`
	Quantity        string `json:"quantity"`
	UnitPrice       string `json:"unitPrice"`
	DiscountPercent string `json:"discountPercent"`
	TaxRatePercent  string `json:"taxRatePercent"`
	Remark          string `json:"remark,omitempty"`
}
