package service

import (
	"context"
	"errors"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"procurement-api/internal/repo"
	"procurement-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

// Closed is reachable only through the award workflow, so it never appears
// as a target here.
var allowedRFQTransitions = map[string][]string{
	common.Draft:     {common.Published, common.Cancelled},
	common.Published: {common.Cancelled},
	common.Closed:    {},
	common.Cancelled: {},
}

type RFQService struct {
	rfqRepo         repo.RFQ
	requisitionRepo repo.Requisition
	productRepo     repo.Product
	numberingRepo   repo.Numbering
}

func NewRFQService(repos *repo.Repositories) *RFQService {
	return &RFQService{
		rfqRepo:         repos.RFQ,
		requisitionRepo: repos.Requisition,
		productRepo:     repos.Product,
		numberingRepo:   repos.Numbering,
	}
}

func (s *RFQService) CreateRFQ(ctx context.Context, input *entity.CreateRFQInput) (*entity.RFQOutputModel, error) {
	rfq, err := s.buildRFQ(ctx, input)
	if err != nil {
		return nil, err
	}

	id, err := s.rfqRepo.CreateRFQ(ctx, rfq)
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, newValidationError("rfq number %s is already taken", rfq.RfqNumber)
		}

		return nil, err
	}

	created, err := s.rfqRepo.GetRFQById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	return mapRFQ(created), nil
}

func (s *RFQService) buildRFQ(ctx context.Context, input *entity.CreateRFQInput) (*entity.RFQ, error) {
	issueDate, err := parseDate("issueDate", input.IssueDate)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseDate("dueDate", input.DueDate)
	if err != nil {
		return nil, err
	}

	if dueDate.Before(issueDate) {
		return nil, newValidationError("dueDate must not be before issueDate")
	}

	createdById, err := parseUUID("createdById", input.CreatedById)
	if err != nil {
		return nil, err
	}

	vendorIds, err := dedupeVendorIds(input.VendorIds)
	if err != nil {
		return nil, err
	}

	lines := make([]entity.RFQLine, 0, len(input.Lines))
	for i, l := range input.Lines {
		line, err := buildRFQLine(i, l)
		if err != nil {
			return nil, err
		}

		lines = append(lines, *line)
	}

	rfqNumber := input.RfqNumber
	if rfqNumber == "" {
		rfqNumber, err = s.numberingRepo.NextNumber(ctx, common.NumberKindRFQ)
		if err != nil {
			return nil, err
		}
	}

	return &entity.RFQ{
		RfqNumber:   rfqNumber,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		Status:      common.Draft,
		VendorIds:   vendorIds,
		Lines:       lines,
		CreatedById: createdById,
	}, nil
}

func buildRFQLine(i int, input entity.CreateRFQLineInput) (*entity.RFQLine, error) {
	line := &entity.RFQLine{
		ProductCode: input.ProductCode,
		ProductName: input.ProductName,
	}

	if input.ProductId != "" {
		productId, err := parseUUID("lines.productId", input.ProductId)
		if err != nil {
			return nil, err
		}
		line.ProductId = &productId
	}

	quantity, err := parseDecimal("lines.quantity", input.Quantity)
	if err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, newValidationError("line %d: quantity must be positive", i+1)
	}
	line.Quantity = quantity

	if input.DeliveryDate != "" {
		deliveryDate, err := parseDate("lines.deliveryDate", input.DeliveryDate)
		if err != nil {
			return nil, err
		}
		line.DeliveryDate = &deliveryDate
	}

	targetPrice, err := parseDecimal("lines.targetPrice", input.TargetPrice)
	if err != nil {
		return nil, err
	}
	if targetPrice.IsNegative() {
		return nil, newValidationError("line %d: targetPrice must not be negative", i+1)
	}
	line.TargetPrice = targetPrice

	return line, nil
}

func dedupeVendorIds(raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(raw))
	vendorIds := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		vendorId, err := parseUUID("vendorIds", v)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[vendorId]; ok {
			continue
		}

		seen[vendorId] = struct{}{}
		vendorIds = append(vendorIds, vendorId)
	}

	return vendorIds, nil
}

func (s *RFQService) GetRFQById(ctx context.Context, rfqId string) (*entity.RFQOutputModel, error) {
	rfq, err := s.rfqRepo.GetRFQById(ctx, rfqId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRFQNotFound
		}

		return nil, err
	}

	return mapRFQ(rfq), nil
}

func (s *RFQService) GetRFQs(ctx context.Context, status string, pg *entity.PaginationInput) ([]entity.RFQOutputModel, error) {
	rfqs, err := s.rfqRepo.GetRFQs(ctx, status, pg)
	if err != nil {
		return nil, err
	}

	return mapRFQs(rfqs), nil
}

func (s *RFQService) UpdateRFQStatusById(ctx context.Context, rfqId string, newStatus string) (*entity.RFQOutputModel, error) {
	rfq, err := s.rfqRepo.GetRFQById(ctx, rfqId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRFQNotFound
		}

		return nil, err
	}

	if !transitionAllowed(rfq.Status, newStatus) {
		return nil, ErrInvalidStatusTransition
	}

	if newStatus == common.Published {
		if len(rfq.VendorIds) == 0 {
			return nil, ErrNoVendorsInvited
		}
		if len(rfq.Lines) == 0 {
			return nil, ErrNoLines
		}
	}

	if err = s.rfqRepo.UpdateRFQStatusById(ctx, rfqId, rfq.Status, newStatus); err != nil {
		// the status moved between the read and the write, e.g. a concurrent
		// award closed the rfq
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrInvalidStatusTransition
		}

		return nil, err
	}

	rfq, err = s.rfqRepo.GetRFQById(ctx, rfqId)
	if err != nil {
		return nil, err
	}

	return mapRFQ(rfq), nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedRFQTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// ImportFromRequisition copies the lines of an approved requisition into a
// draft RFQ. A requisition converts into exactly one RFQ: re-importing it into
// that same draft RFQ appends, importing it anywhere else fails.
func (s *RFQService) ImportFromRequisition(ctx context.Context, rfqId string, requisitionId string) (*entity.ImportOutputModel, error) {
	rfq, err := s.rfqRepo.GetRFQById(ctx, rfqId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRFQNotFound
		}

		return nil, err
	}

	if rfq.Status != common.Draft {
		return nil, newValidationError("requisition lines can only be imported into a draft rfq")
	}

	reqId, err := parseUUID("requisitionId", requisitionId)
	if err != nil {
		return nil, err
	}

	// importing the same requisition into the same Draft RFQ again appends;
	// any other requisition is a conflict
	if rfq.RequisitionId != nil && *rfq.RequisitionId != reqId {
		return nil, ErrAlreadyImported
	}

	requisition, err := s.requisitionRepo.GetRequisitionById(ctx, requisitionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRequisitionNotFound
		}

		return nil, err
	}

	if requisition.Status == common.Converted {
		return nil, ErrAlreadyImported
	}
	if requisition.Status != common.ApprovedRequisition {
		return nil, newValidationError("requisition must be approved before import")
	}

	if linkedRfqId, err := s.rfqRepo.GetRFQIdByRequisitionId(ctx, reqId); err == nil {
		if linkedRfqId != rfq.Id {
			return nil, ErrAlreadyImported
		}
	} else if !errors.Is(err, repo_errors.ErrNotFound) {
		return nil, err
	}

	lines, unmatched, err := s.matchRequisitionLines(ctx, requisition.Lines)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, newValidationError("no requisition line matched a catalog product")
	}

	if err = s.rfqRepo.ImportLines(ctx, rfq.Id, reqId, lines); err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrAlreadyImported
		}

		return nil, err
	}

	rfq, err = s.rfqRepo.GetRFQById(ctx, rfqId)
	if err != nil {
		return nil, err
	}

	return &entity.ImportOutputModel{
		RfqId:     rfq.Id.String(),
		Lines:     mapRFQLines(rfq.Lines),
		Unmatched: unmatched,
	}, nil
}

func (s *RFQService) matchRequisitionLines(ctx context.Context, reqLines []entity.RequisitionLine) ([]entity.RFQLine, []entity.RequisitionLineOutputModel, error) {
	lines := make([]entity.RFQLine, 0, len(reqLines))
	unmatched := make([]entity.RequisitionLineOutputModel, 0)

	for _, rl := range reqLines {
		product, reason, err := s.resolveProduct(ctx, &rl)
		if err != nil {
			return nil, nil, err
		}
		if product == nil {
			unmatched = append(unmatched, *mapUnmatchedLine(&rl, reason))
			continue
		}

		productId := product.Id
		lines = append(lines, entity.RFQLine{
			ProductId:    &productId,
			ProductCode:  product.Code,
			ProductName:  product.Name,
			Quantity:     rl.Quantity,
			DeliveryDate: rl.RequestedDeliveryDate,
			TargetPrice:  rl.EstimatedUnitPrice,
		})
	}

	return lines, unmatched, nil
}

// resolveProduct tries the requisition line's product id, then its code, then
// its name. A lookup that finds nothing, or more than one candidate, falls
// through to the next key. A nil product with an empty error means unmatched.
func (s *RFQService) resolveProduct(ctx context.Context, rl *entity.RequisitionLine) (*entity.Product, string, error) {
	if rl.ProductId != nil {
		product, err := s.productRepo.GetProductById(ctx, *rl.ProductId)
		if err == nil {
			return product, "", nil
		}
		if !errors.Is(err, repo_errors.ErrNotFound) {
			return nil, "", err
		}
	}

	if rl.ProductCode != "" {
		product, err := s.productRepo.GetProductByCode(ctx, rl.ProductCode)
		if err == nil {
			return product, "", nil
		}
		if !errors.Is(err, repo_errors.ErrNotFound) && !errors.Is(err, repo_errors.ErrAmbiguous) {
			return nil, "", err
		}
	}

	if rl.ProductName != "" {
		product, err := s.productRepo.GetProductByName(ctx, rl.ProductName)
		if err == nil {
			return product, "", nil
		}
		if errors.Is(err, repo_errors.ErrAmbiguous) {
			return nil, "more than one product matches the name", nil
		}
		if !errors.Is(err, repo_errors.ErrNotFound) {
			return nil, "", err
		}
	}

	return nil, "no catalog product matches the line", nil
}
