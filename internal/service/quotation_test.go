package service

import (
	"context"
	"errors"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"procurement-api/internal/pricing"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func submitInput(rfq *entity.RFQ, vendorId uuid.UUID, unitPrice string) *entity.SubmitQuotationInput {
	input := &entity.SubmitQuotationInput{
		RfqId:         rfq.Id.String(),
		VendorId:      vendorId.String(),
		QuotationDate: "2026-03-05",
		ValidUntil:    "2026-03-20",
	}
	for _, l := range rfq.Lines {
		input.Lines = append(input.Lines, entity.SubmitQuotationLineInput{
			RfqLineId: l.Id.String(),
			UnitPrice: unitPrice,
		})
	}

	return input
}

func TestSubmitQuotationComputesTotals(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)
	rfq.Lines[0].Quantity = decimal.NewFromInt(1)

	input := submitInput(rfq, vendor, "1000")
	input.Lines[0].DiscountPercent = "10"
	input.Lines[0].TaxRatePercent = "10"
	input.ShippingCost = "50"

	quotation, err := svc.SubmitQuotation(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	if quotation.Status != common.Pending {
		t.Errorf("status = %s, want Pending", quotation.Status)
	}
	if quotation.QuotationNumber == "" {
		t.Error("expected a generated quotation number")
	}
	if quotation.TotalAmount != "1040" {
		t.Errorf("total = %s, want 1040", quotation.TotalAmount)
	}
	if quotation.Totals == nil || quotation.Totals.GrandTotal != "1040.00" {
		t.Errorf("unexpected totals: %+v", quotation.Totals)
	}
	if quotation.LeadTimeDays != 15 {
		t.Errorf("lead time = %d, want 15", quotation.LeadTimeDays)
	}
}

func TestSubmitQuotationCopiesQuantityFromRFQLine(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)
	rfq.Lines[0].Quantity = decimal.NewFromInt(10)

	quotation, err := svc.SubmitQuotation(context.Background(), submitInput(rfq, vendor, "640"))
	if err != nil {
		t.Fatal(err)
	}

	if quotation.Lines[0].Quantity != "10" {
		t.Errorf("quantity = %s, want 10 from the rfq line", quotation.Lines[0].Quantity)
	}
	if quotation.TotalAmount != "6400" {
		t.Errorf("total = %s, want 6400", quotation.TotalAmount)
	}
}

func TestSubmitQuotationDuplicate(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)

	first, err := svc.SubmitQuotation(context.Background(), submitInput(rfq, vendor, "100"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.SubmitQuotation(context.Background(), submitInput(rfq, vendor, "90"))
	var duplicateErr *DuplicateQuotationError
	if !errors.As(err, &duplicateErr) {
		t.Fatalf("expected DuplicateQuotationError, got %v", err)
	}
	if duplicateErr.ExistingId.String() != first.Id {
		t.Errorf("existing id = %s, want %s", duplicateErr.ExistingId, first.Id)
	}
}

func TestSubmitQuotationRejectsTakenNumber(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendorA, vendorB := uuid.New(), uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendorA, vendorB}, 1)

	input := submitInput(rfq, vendorA, "100")
	input.QuotationNumber = "QT-TAKEN"
	if _, err := svc.SubmitQuotation(context.Background(), input); err != nil {
		t.Fatal(err)
	}

	second := submitInput(rfq, vendorB, "90")
	second.QuotationNumber = "QT-TAKEN"
	_, err := svc.SubmitQuotation(context.Background(), second)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for a taken quotation number, got %v", err)
	}
	var duplicateErr *DuplicateQuotationError
	if errors.As(err, &duplicateErr) {
		t.Error("a taken number from another vendor is not a duplicate submission")
	}
}

func TestSubmitQuotationRequiresPublishedRFQAndInvitedVendor(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()

	draft := seedRFQ(env, common.Draft, []uuid.UUID{vendor}, 1)
	_, err := svc.SubmitQuotation(context.Background(), submitInput(draft, vendor, "100"))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("draft rfq: expected validation error, got %v", err)
	}

	published := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)
	stranger := uuid.New()
	_, err = svc.SubmitQuotation(context.Background(), submitInput(published, stranger, "100"))
	if !errors.As(err, &validationErr) {
		t.Fatalf("uninvited vendor: expected validation error, got %v", err)
	}
}

func TestSubmitQuotationFOBZeroesShipping(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)
	rfq.Lines[0].Quantity = decimal.NewFromInt(1)

	input := submitInput(rfq, vendor, "100")
	input.DeliveryTerms = "FOB Shanghai"
	input.ShippingCost = "25"

	quotation, err := svc.SubmitQuotation(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	if quotation.ShippingCost != "0" {
		t.Errorf("shipping = %s, want 0 under FOB terms", quotation.ShippingCost)
	}
	if quotation.TotalAmount != "100" {
		t.Errorf("total = %s, want 100", quotation.TotalAmount)
	}
}

func TestSubmitQuotationRejectsValidUntilBeforeQuotationDate(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)

	input := submitInput(rfq, vendor, "100")
	input.ValidUntil = "2026-03-01"

	_, err := svc.SubmitQuotation(context.Background(), input)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitQuotationRejectsForeignRFQLine(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)

	input := submitInput(rfq, vendor, "100")
	input.Lines[0].RfqLineId = uuid.NewString()

	_, err := svc.SubmitQuotation(context.Background(), input)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitQuotationRejectsBadPrice(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)

	_, err := svc.SubmitQuotation(context.Background(), submitInput(rfq, vendor, "0"))
	if !errors.Is(err, pricing.ErrValidation) {
		t.Fatalf("expected pricing validation error, got %v", err)
	}
}

func TestEditQuotationRecomputesTotals(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)
	rfq.Lines[0].Quantity = decimal.NewFromInt(2)

	created, err := svc.SubmitQuotation(context.Background(), submitInput(rfq, vendor, "100"))
	if err != nil {
		t.Fatal(err)
	}
	if created.TotalAmount != "200" {
		t.Fatalf("total = %s, want 200", created.TotalAmount)
	}

	edit := submitInput(rfq, vendor, "90")
	edited, err := svc.EditQuotationById(context.Background(), created.Id, edit)
	if err != nil {
		t.Fatal(err)
	}

	if edited.TotalAmount != "180" {
		t.Errorf("total = %s, want 180 after edit", edited.TotalAmount)
	}
	if edited.QuotationNumber != created.QuotationNumber {
		t.Errorf("quotation number changed on edit: %s -> %s", created.QuotationNumber, edited.QuotationNumber)
	}
}

func TestEditQuotationOnlyWhilePending(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)
	vendor := uuid.New()
	rfq := seedRFQ(env, common.Published, []uuid.UUID{vendor}, 1)

	created, err := svc.SubmitQuotation(context.Background(), submitInput(rfq, vendor, "100"))
	if err != nil {
		t.Fatal(err)
	}

	quotationId, _ := uuid.Parse(created.Id)
	env.quotations.quotations[quotationId].Status = common.Approved

	_, err = svc.EditQuotationById(context.Background(), created.Id, submitInput(rfq, vendor, "90"))
	if err != ErrQuotationNotEditable {
		t.Fatalf("expected ErrQuotationNotEditable, got %v", err)
	}
}

func TestCalculateTotalsStandalone(t *testing.T) {
	env := newTestEnv()
	svc := NewQuotationService(env.repos)

	totals, err := svc.CalculateTotals(context.Background(), &entity.CalculateTotalsInput{
		ShippingCost: "50",
		Lines: []entity.CalculateTotalsLineInput{
			{Quantity: "1", UnitPrice: "1000", DiscountPercent: "10", TaxRatePercent: "10"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if totals.GrandTotal != "1040.00" {
		t.Errorf("grand total = %s, want 1040.00", totals.GrandTotal)
	}
	if totals.TotalTax != "90.00" {
		t.Errorf("tax = %s, want 90.00", totals.TotalTax)
	}
}
