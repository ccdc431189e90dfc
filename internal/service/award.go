package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"procurement-api/internal/repo"
	"procurement-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

type AwardService struct {
	rfqRepo         repo.RFQ
	quotationRepo   repo.Quotation
	requisitionRepo repo.Requisition
	poBridge        PurchaseOrderBridge
}

func NewAwardService(repos *repo.Repositories, poBridge PurchaseOrderBridge) *AwardService {
	return &AwardService{
		rfqRepo:         repos.RFQ,
		quotationRepo:   repos.Quotation,
		requisitionRepo: repos.Requisition,
		poBridge:        poBridge,
	}
}

// AwardRFQ approves the cheapest selected quotation, rejects the other pending
// ones and closes the RFQ, all in one transaction. Marking the source
// requisition converted and drafting the purchase order happen afterwards and
// only produce warnings when they fail; the award itself stands.
func (s *AwardService) AwardRFQ(ctx context.Context, input *entity.AwardInput) (*entity.AwardResult, error) {
	rfqId, err := parseUUID("rfqId", input.RfqId)
	if err != nil {
		return nil, err
	}

	approverId, err := parseUUID("approverId", input.ApproverId)
	if err != nil {
		return nil, err
	}

	if len(input.SelectedQuotationIds) == 0 {
		return nil, newValidationError("at least one quotation must be selected")
	}

	selected := make(map[uuid.UUID]struct{}, len(input.SelectedQuotationIds))
	for _, raw := range input.SelectedQuotationIds {
		id, err := parseUUID("selectedQuotationIds", raw)
		if err != nil {
			return nil, err
		}
		selected[id] = struct{}{}
	}

	rfq, err := s.rfqRepo.GetRFQById(ctx, input.RfqId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRFQNotFound
		}

		return nil, err
	}

	switch rfq.Status {
	case common.Published:
	case common.Closed:
		return s.resolveRepeatedAward(ctx, rfq, selected)
	default:
		return nil, newValidationError("rfq in status %s cannot be awarded", rfq.Status)
	}

	quotations, err := s.quotationRepo.GetQuotationsByRfqId(ctx, rfqId)
	if err != nil {
		return nil, err
	}

	candidates := make([]entity.Quotation, 0, len(selected))
	for _, q := range quotations {
		if _, ok := selected[q.Id]; !ok {
			continue
		}
		if q.Status != common.Pending {
			return nil, ErrInvalidSelection
		}

		candidates = append(candidates, q)
	}

	if len(candidates) != len(selected) {
		return nil, ErrInvalidSelection
	}

	winner := pickWinner(candidates)

	err = s.quotationRepo.AwardQuotation(ctx, rfqId, winner.Id, approverId, common.RejectedOtherSelected)
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			// lost the race; whoever won decides whether this call is a repeat
			rfq, e := s.rfqRepo.GetRFQById(ctx, input.RfqId)
			if e != nil {
				return nil, e
			}

			return s.resolveRepeatedAward(ctx, rfq, selected)
		}

		return nil, err
	}

	result := &entity.AwardResult{
		RfqId:              rfq.Id.String(),
		WinningQuotationId: winner.Id.String(),
	}

	s.runFollowUps(ctx, rfq, winner.Id, result)

	return result, nil
}

// resolveRepeatedAward decides what a second award call against a closed RFQ
// means. Selecting the quotation that already won is an idempotent repeat,
// anything else is a real conflict.
func (s *AwardService) resolveRepeatedAward(ctx context.Context, rfq *entity.RFQ, selected map[uuid.UUID]struct{}) (*entity.AwardResult, error) {
	if rfq.Status != common.Closed {
		return nil, ErrAlreadyAwarded
	}

	quotations, err := s.quotationRepo.GetQuotationsByRfqId(ctx, rfq.Id)
	if err != nil {
		return nil, err
	}

	for _, q := range quotations {
		if q.Status != common.Approved {
			continue
		}
		if _, ok := selected[q.Id]; ok {
			result := &entity.AwardResult{
				RfqId:              rfq.Id.String(),
				WinningQuotationId: q.Id.String(),
			}
			if rfq.RequisitionId != nil {
				result.RequisitionId = rfq.RequisitionId.String()
			}

			// report the purchase order the first award drafted; absent when
			// the bridge failed back then
			poId, err := s.poBridge.GetPurchaseOrderIdByQuotationId(ctx, q.Id)
			if err == nil {
				result.PurchaseOrderId = poId.String()
			} else if !errors.Is(err, repo_errors.ErrNotFound) {
				return nil, err
			}

			return result, nil
		}
	}

	return nil, ErrAlreadyAwarded
}

func (s *AwardService) runFollowUps(ctx context.Context, rfq *entity.RFQ, winnerId uuid.UUID, result *entity.AwardResult) {
	if rfq.RequisitionId != nil {
		result.RequisitionId = rfq.RequisitionId.String()
		if err := s.requisitionRepo.MarkRequisitionConverted(ctx, *rfq.RequisitionId); err != nil {
			log.Printf("award rfq %s: mark requisition %s converted: %v", rfq.Id, rfq.RequisitionId, err)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("requisition %s could not be marked converted", rfq.RequisitionId))
		}
	}

	poId, err := s.poBridge.CreateFromQuotation(ctx, winnerId)
	if err != nil {
		log.Printf("award rfq %s: create purchase order from quotation %s: %v", rfq.Id, winnerId, err)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("purchase order could not be created from quotation %s", winnerId))

		return
	}

	result.PurchaseOrderId = poId.String()
}

// pickWinner takes the cheapest candidate. Ties go to the earliest quotation
// date, then the smallest id, so the outcome never depends on input order.
func pickWinner(candidates []entity.Quotation) *entity.Quotation {
	winner := &candidates[0]
	for i := 1; i < len(candidates); i++ {
		c := &candidates[i]
		switch {
		case c.TotalAmount.LessThan(winner.TotalAmount):
			winner = c
		case c.TotalAmount.Equal(winner.TotalAmount):
			if c.QuotationDate.Before(winner.QuotationDate) ||
				(c.QuotationDate.Equal(winner.QuotationDate) && c.Id.String() < winner.Id.String()) {
				winner = c
			}
		}
	}

	return winner
}

// GetComparisonView lists all quotations of an RFQ side by side. IsBest marks
// the cheapest offer still in the running.
func (s *AwardService) GetComparisonView(ctx context.Context, rfqId string) (*entity.ComparisonOutputModel, error) {
	rfq, err := s.rfqRepo.GetRFQById(ctx, rfqId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRFQNotFound
		}

		return nil, err
	}

	quotations, err := s.quotationRepo.GetQuotationsByRfqId(ctx, rfq.Id)
	if err != nil {
		return nil, err
	}

	candidates := make([]entity.Quotation, 0, len(quotations))
	for _, q := range quotations {
		if q.Status == common.Pending || q.Status == common.Approved {
			candidates = append(candidates, q)
		}
	}

	var bestId uuid.UUID
	if len(candidates) > 0 {
		bestId = pickWinner(candidates).Id
	}

	out := &entity.ComparisonOutputModel{
		Rfq:        *mapRFQ(rfq),
		Quotations: make([]entity.QuotationSummaryOutModel, 0, len(quotations)),
	}

	for _, q := range quotations {
		summary := mapQuotationSummary(&q)
		summary.IsBest = q.Id == bestId
		out.Quotations = append(out.Quotations, *summary)
	}

	return out, nil
}
