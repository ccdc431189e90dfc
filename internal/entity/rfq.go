package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type RFQ struct {
	Id            uuid.UUID   `json:"id" db:"id"`
	RfqNumber     string      `json:"rfqNumber" db:"rfq_number"`
	RequisitionId *uuid.UUID  `json:"requisitionId" db:"requisition_id"`
	IssueDate     time.Time   `json:"issueDate" db:"issue_date"`
	DueDate       time.Time   `json:"dueDate" db:"due_date"`
	Status        string      `json:"status" db:"status"`
	VendorIds     []uuid.UUID `json:"vendorIds"`
	Lines         []RFQLine   `json:"lines"`
	CreatedById   uuid.UUID   `json:"createdById" db:"created_by"`
	CreatedAt     string      `json:"createdAt" db:"created_at"`
}

// db model; quantity and product identity are frozen once the RFQ leaves Draft
type RFQLine struct {
	Id           uuid.UUID       `json:"id" db:"id"`
	RfqId        uuid.UUID       `json:"rfqId" db:"rfq_id"`
	ProductId    *uuid.UUID      `json:"productId" db:"product_id"`
	ProductCode  string          `json:"productCode" db:"product_code"`
	ProductName  string          `json:"productName" db:"product_name"`
	Quantity     decimal.Decimal `json:"quantity" db:"quantity"`
	DeliveryDate *time.Time      `json:"deliveryDate" db:"delivery_date"`
	TargetPrice  decimal.Decimal `json:"targetPrice" db:"target_price"`
}

// service + repo input model
type CreateRFQInput struct {
	RfqNumber   string // generated when empty
	IssueDate   string // given, 2006-01-02
	DueDate     string // given, 2006-01-02, >= IssueDate
	VendorIds   []string
	Lines       []CreateRFQLineInput
	CreatedById string
	Status      string // should be set: "Draft"
}

type CreateRFQLineInput struct {
	ProductId    string
	ProductCode  string
	ProductName  string
	Quantity     string
	DeliveryDate string
	TargetPrice  string
}

// controller model
type RFQOutputModel struct {
	Id            string               `json:"id"`
	RfqNumber     string               `json:"rfqNumber"`
	RequisitionId string               `json:"requisitionId,omitempty"`
	IssueDate     string               `json:"issueDate"`
	DueDate       string               `json:"dueDate"`
	Status        string               `json:"status"`
	VendorIds     []string             `json:"vendorIds"`
	Lines         []RFQLineOutputModel `json:"lines"`
	CreatedAt     string               `json:"createdAt"`
}

type RFQLineOutputModel struct {
	Id           string `json:"id"`
	ProductId    string `json:"productId,omitempty"`
	ProductCode  string `json:"productCode"`
	ProductName  string `json:"productName"`
	Quantity     string `json:"quantity"`
	DeliveryDate string `json:"deliveryDate,omitempty"`
	TargetPrice  string `json:"targetPrice"`
}
