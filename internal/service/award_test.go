package service

import (
	"context"
	"errors"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedQuotation(env *testEnv, rfq *entity.RFQ, total int64, quotationDate time.Time) *entity.Quotation {
	q := &entity.Quotation{
		Id:              uuid.New(),
		QuotationNumber: "QT-" + uuid.NewString()[:8],
		RfqId:           rfq.Id,
		VendorId:        uuid.New(),
		QuotationDate:   quotationDate,
		ValidUntil:      quotationDate.AddDate(0, 0, 14),
		TotalAmount:     decimal.NewFromInt(total),
		Status:          common.Pending,
	}
	env.quotations.quotations[q.Id] = q

	return q
}

func awardDate() time.Time {
	return time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
}

func TestAwardPicksCheapestRegardlessOfOrder(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)

	expensive := seedQuotation(env, rfq, 900, awardDate())
	cheapest := seedQuotation(env, rfq, 700, awardDate())
	middle := seedQuotation(env, rfq, 800, awardDate())

	result, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId: rfq.Id.String(),
		SelectedQuotationIds: []string{
			expensive.Id.String(), middle.Id.String(), cheapest.Id.String(),
		},
		ApproverId: uuid.NewString(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.WinningQuotationId != cheapest.Id.String() {
		t.Errorf("winner = %s, want cheapest %s", result.WinningQuotationId, cheapest.Id)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	if env.quotations.quotations[cheapest.Id].Status != common.Approved {
		t.Error("winner should be approved")
	}
	for _, loser := range []*entity.Quotation{expensive, middle} {
		q := env.quotations.quotations[loser.Id]
		if q.Status != common.Rejected {
			t.Errorf("loser %s status = %s, want Rejected", loser.Id, q.Status)
		}
		if q.RejectReason != common.RejectedOtherSelected {
			t.Errorf("loser reject reason = %q", q.RejectReason)
		}
	}
	if env.rfqs.rfqs[rfq.Id].Status != common.Closed {
		t.Error("rfq should be closed after award")
	}
	if result.PurchaseOrderId == "" {
		t.Error("expected a purchase order id")
	}
	if len(env.bridge.created) != 1 || env.bridge.created[0] != cheapest.Id {
		t.Errorf("purchase order should come from the winner, got %v", env.bridge.created)
	}
}

func TestAwardTieBreaksOnEarliestQuotationDate(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)

	later := seedQuotation(env, rfq, 500, awardDate().AddDate(0, 0, 2))
	earlier := seedQuotation(env, rfq, 500, awardDate())

	result, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{later.Id.String(), earlier.Id.String()},
		ApproverId:           uuid.NewString(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.WinningQuotationId != earlier.Id.String() {
		t.Errorf("winner = %s, want earlier submission %s", result.WinningQuotationId, earlier.Id)
	}
}

func TestAwardRepeatWithSameWinnerIsIdempotent(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)
	winner := seedQuotation(env, rfq, 700, awardDate())
	seedQuotation(env, rfq, 900, awardDate())

	input := &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{winner.Id.String()},
		ApproverId:           uuid.NewString(),
	}

	first, err := svc.AwardRFQ(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	repeat, err := svc.AwardRFQ(context.Background(), input)
	if err != nil {
		t.Fatalf("repeat award of same winner: %v", err)
	}
	if repeat.WinningQuotationId != winner.Id.String() {
		t.Errorf("repeat winner = %s, want %s", repeat.WinningQuotationId, winner.Id)
	}
	if len(env.bridge.created) != 1 {
		t.Errorf("repeat award should not create another purchase order, got %d", len(env.bridge.created))
	}
	if repeat.PurchaseOrderId == "" || repeat.PurchaseOrderId != first.PurchaseOrderId {
		t.Errorf("repeat purchase order id = %q, want the original %q", repeat.PurchaseOrderId, first.PurchaseOrderId)
	}
}

func TestAwardDifferentSelectionAfterCloseFails(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)
	winner := seedQuotation(env, rfq, 700, awardDate())
	loser := seedQuotation(env, rfq, 900, awardDate())

	if _, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{winner.Id.String()},
		ApproverId:           uuid.NewString(),
	}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{loser.Id.String()},
		ApproverId:           uuid.NewString(),
	})
	if err != ErrAlreadyAwarded {
		t.Fatalf("expected ErrAlreadyAwarded, got %v", err)
	}
}

func TestAwardInvalidSelection(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)
	seedQuotation(env, rfq, 700, awardDate())

	other := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)
	foreign := seedQuotation(env, other, 500, awardDate())

	_, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{foreign.Id.String()},
		ApproverId:           uuid.NewString(),
	})
	if err != ErrInvalidSelection {
		t.Fatalf("foreign quotation: expected ErrInvalidSelection, got %v", err)
	}

	rejected := seedQuotation(env, rfq, 600, awardDate())
	rejected.Status = common.Rejected
	_, err = svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{rejected.Id.String()},
		ApproverId:           uuid.NewString(),
	})
	if err != ErrInvalidSelection {
		t.Fatalf("rejected quotation: expected ErrInvalidSelection, got %v", err)
	}
}

func TestAwardCancelledRFQ(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)
	rfq := seedRFQ(env, common.Cancelled, []uuid.UUID{uuid.New()}, 1)
	q := seedQuotation(env, rfq, 700, awardDate())

	_, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{q.Id.String()},
		ApproverId:           uuid.NewString(),
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAwardFollowUpFailuresBecomeWarnings(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)

	requisition := seedRequisition(env, common.ApprovedRequisition, nil)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)
	rfq.RequisitionId = &requisition.Id
	winner := seedQuotation(env, rfq, 700, awardDate())

	env.requisitions.markErr = errBoom
	env.bridge.err = errBoom

	result, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{winner.Id.String()},
		ApproverId:           uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("follow-up failures must not undo the award: %v", err)
	}

	if len(result.Warnings) != 2 {
		t.Fatalf("warnings = %d, want 2: %v", len(result.Warnings), result.Warnings)
	}
	if env.quotations.quotations[winner.Id].Status != common.Approved {
		t.Error("winner should stay approved despite warnings")
	}
	if env.rfqs.rfqs[rfq.Id].Status != common.Closed {
		t.Error("rfq should stay closed despite warnings")
	}
	if result.PurchaseOrderId != "" {
		t.Error("no purchase order id should be reported when the bridge fails")
	}
}

func TestAwardMarksRequisitionConverted(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)

	requisition := seedRequisition(env, common.ApprovedRequisition, nil)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)
	rfq.RequisitionId = &requisition.Id
	winner := seedQuotation(env, rfq, 700, awardDate())

	result, err := svc.AwardRFQ(context.Background(), &entity.AwardInput{
		RfqId:                rfq.Id.String(),
		SelectedQuotationIds: []string{winner.Id.String()},
		ApproverId:           uuid.NewString(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.RequisitionId != requisition.Id.String() {
		t.Errorf("requisition id = %s, want %s", result.RequisitionId, requisition.Id)
	}
	if env.requisitions.requisitions[requisition.Id].Status != common.Converted {
		t.Error("requisition should be marked converted")
	}
}

func TestComparisonViewMarksBest(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)
	rfq := seedRFQ(env, common.Published, []uuid.UUID{uuid.New()}, 1)

	cheapButRejected := seedQuotation(env, rfq, 100, awardDate())
	cheapButRejected.Status = common.Rejected
	best := seedQuotation(env, rfq, 500, awardDate())
	seedQuotation(env, rfq, 800, awardDate())

	view, err := svc.GetComparisonView(context.Background(), rfq.Id.String())
	if err != nil {
		t.Fatal(err)
	}

	if len(view.Quotations) != 3 {
		t.Fatalf("quotations = %d, want 3", len(view.Quotations))
	}

	bestCount := 0
	for _, q := range view.Quotations {
		if q.IsBest {
			bestCount++
			if q.Id != best.Id.String() {
				t.Errorf("isBest on %s, want %s", q.Id, best.Id)
			}
		}
		if q.Id == cheapButRejected.Id.String() && q.IsBest {
			t.Error("rejected quotation must not be marked best")
		}
	}
	if bestCount != 1 {
		t.Errorf("exactly one quotation should be best, got %d", bestCount)
	}
}

func TestComparisonViewRFQNotFound(t *testing.T) {
	env := newTestEnv()
	svc := NewAwardService(env.repos, env.bridge)

	if _, err := svc.GetComparisonView(context.Background(), uuid.NewString()); err != ErrRFQNotFound {
		t.Fatalf("expected ErrRFQNotFound, got %v", err)
	}
}
