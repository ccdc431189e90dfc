package entity

// service input model
type AwardInput struct {
	RfqId                string
	SelectedQuotationIds []string
	ApproverId           string
}

// controller model; Warnings carries follow-up failures that did not undo the award
type AwardResult struct {
	RfqId              string   `json:"rfqId"`
	WinningQuotationId string   `json:"winningQuotationId"`
	RequisitionId      string   `json:"requisitionId,omitempty"`
	PurchaseOrderId    string   `json:"purchaseOrderId,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

// controller model
type ComparisonOutputModel struct {
	Rfq        RFQOutputModel             `json:"rfq"`
	Quotations []QuotationSummaryOutModel `json:"quotations"`
}

type QuotationSummaryOutModel struct {
	Id              string `json:"id"`
	QuotationNumber string `json:"quotationNumber"`
	VendorId        string `json:"vendorId"`
	QuotationDate   string `json:"quotationDate"`
	LeadTimeDays    int    `json:"leadTimeDays"`
	Status          string `json:"status"`
	TotalAmount     string `json:"totalAmount"`
	IsBest          bool   `json:"isBest"`
}
