package entity

// service input model for the standalone calculator; unlike a submission it
// carries its own quantities and never touches stored data
type CalculateTotalsInput struct {
	TaxIncluded           bool
	DeliveryTerms         string
	HeaderDiscountPercent string
	ShippingCost          string
	Lines                 []CalculateTotalsLineInput
}

type CalculateTotalsLineInput struct {
	Quantity        string
	UnitPrice       string
	DiscountPercent string
	TaxRatePercent  string
}

// controller model for the pricing breakdown
type TotalsOutputModel struct {
	Subtotal                string `json:"subtotal"`
	TotalLineDiscount       string `json:"totalLineDiscount"`
	TotalAfterLineDiscount  string `json:"totalAfterLineDiscount"`
	HeaderDiscountAmount    string `json:"headerDiscountAmount"`
	AmountAfterAllDiscounts string `json:"amountAfterAllDiscounts"`
	TotalTax                string `json:"totalTax"`
	ShippingCost            string `json:"shippingCost"`
	GrandTotal              string `json:"grandTotal"`
}
