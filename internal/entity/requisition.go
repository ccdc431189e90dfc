package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Requisition struct {
	Id                uuid.UUID         `json:"id" db:"id"`
	RequisitionNumber string            `json:"requisitionNumber" db:"requisition_number"`
	Status            string            `json:"status" db:"status"`
	Lines             []RequisitionLine `json:"lines"`
	CreatedAt         string            `json:"createdAt" db:"created_at"`
}

// db model; read-only once imported
type RequisitionLine struct {
	Id                    uuid.UUID       `json:"id" db:"id"`
	RequisitionId         uuid.UUID       `json:"requisitionId" db:"requisition_id"`
	ProductId             *uuid.UUID      `json:"productId" db:"product_id"`
	ProductCode           string          `json:"productCode" db:"product_code"`
	ProductName           string          `json:"productName" db:"product_name"`
	Quantity              decimal.Decimal `json:"quantity" db:"quantity"`
	RequestedDeliveryDate *time.Time      `json:"requestedDeliveryDate" db:"requested_delivery_date"`
	EstimatedUnitPrice    decimal.Decimal `json:"estimatedUnitPrice" db:"estimated_unit_price"`
}

// controller model for the import result
type ImportOutputModel struct {
	RfqId     string                       `json:"rfqId"`
	Lines     []RFQLineOutputModel         `json:"lines"`
	Unmatched []RequisitionLineOutputModel `json:"unmatched"`
}

type RequisitionLineOutputModel struct {
	Id          string `json:"id"`
	ProductCode string `json:"productCode"`
	ProductName string `json:"productName"`
	Quantity    string `json:"quantity"`
	Reason      string `json:"reason"`
}
