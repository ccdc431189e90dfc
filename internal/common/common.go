package common

// RFQ statuses
const (
	Draft     = "Draft"
	Published = "Published"
	Closed    = "Closed"
	Cancelled = "Cancelled"
)

// Quotation statuses
const (
	Pending  = "Pending"
	Approved = "Approved"
	Rejected = "Rejected"
)

// Requisition statuses
const (
	ApprovedRequisition = "Approved"
	Converted           = "Converted"
)

// Reason written onto quotations rejected as a side effect of awarding another one.
const RejectedOtherSelected = "another quotation was selected"

// Document kinds for the numbering sequence.
const (
	NumberKindRFQ           = "RFQ"
	NumberKindQuotation     = "QT"
	NumberKindPurchaseOrder = "PO"
)
