package service

import (
	"context"
	"errors"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"procurement-api/internal/repo"
	"procurement-api/internal/repo/repo_errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type fakeRFQRepo struct {
	rfqs map[uuid.UUID]*entity.RFQ
	// runs between the caller's read and the status write, like a
	// concurrent transition would
	beforeStatusUpdate func()
}

func newFakeRFQRepo() *fakeRFQRepo {
	return &fakeRFQRepo{rfqs: make(map[uuid.UUID]*entity.RFQ)}
}

func (f *fakeRFQRepo) CreateRFQ(_ context.Context, rfq *entity.RFQ) (uuid.UUID, error) {
	for _, existing := range f.rfqs {
		if existing.RfqNumber == rfq.RfqNumber {
			return uuid.Nil, repo_errors.ErrConflict
		}
	}

	stored := *rfq
	stored.Id = uuid.New()
	for i := range stored.Lines {
		stored.Lines[i].Id = uuid.New()
		stored.Lines[i].RfqId = stored.Id
	}
	f.rfqs[stored.Id] = &stored

	return stored.Id, nil
}

func (f *fakeRFQRepo) GetRFQById(_ context.Context, id string) (*entity.RFQ, error) {
	rfqId, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *rfq
	copied.Lines = append([]entity.RFQLine(nil), rfq.Lines...)
	copied.VendorIds = append([]uuid.UUID(nil), rfq.VendorIds...)

	return &copied, nil
}

func (f *fakeRFQRepo) GetRFQs(_ context.Context, status string, _ *entity.PaginationInput) ([]entity.RFQ, error) {
	out := make([]entity.RFQ, 0)
	for _, rfq := range f.rfqs {
		if status == "" || rfq.Status == status {
			out = append(out, *rfq)
		}
	}

	return out, nil
}

func (f *fakeRFQRepo) GetRFQIdByRequisitionId(_ context.Context, requisitionId uuid.UUID) (uuid.UUID, error) {
	for _, rfq := range f.rfqs {
		if rfq.RequisitionId != nil && *rfq.RequisitionId == requisitionId {
			return rfq.Id, nil
		}
	}

	return uuid.Nil, repo_errors.ErrNotFound
}

func (f *fakeRFQRepo) UpdateRFQStatusById(_ context.Context, id string, currentStatus string, newStatus string) error {
	rfqId, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return repo_errors.ErrNotFound
	}

	if f.beforeStatusUpdate != nil {
		f.beforeStatusUpdate()
	}
	if rfq.Status != currentStatus {
		return repo_errors.ErrConflict
	}
	rfq.Status = newStatus

	return nil
}

func (f *fakeRFQRepo) ImportLines(_ context.Context, rfqId uuid.UUID, requisitionId uuid.UUID, lines []entity.RFQLine) error {
	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if rfq.Status != common.Draft {
		return repo_errors.ErrConflict
	}
	if rfq.RequisitionId != nil && *rfq.RequisitionId != requisitionId {
		return repo_errors.ErrConflict
	}
	for _, other := range f.rfqs {
		if other.Id != rfqId && other.RequisitionId != nil && *other.RequisitionId == requisitionId {
			return repo_errors.ErrConflict
		}
	}

	// first import drops the lone placeholder empty line, like the repo does
	if rfq.RequisitionId == nil && len(rfq.Lines) == 1 {
		l := rfq.Lines[0]
		if l.ProductId == nil && l.ProductCode == "" && l.ProductName == "" {
			rfq.Lines = rfq.Lines[:0]
		}
	}

	rfq.RequisitionId = &requisitionId
	for _, l := range lines {
		l.Id = uuid.New()
		l.RfqId = rfqId
		rfq.Lines = append(rfq.Lines, l)
	}

	return nil
}

type fakeQuotationRepo struct {
	quotations map[uuid.UUID]*entity.Quotation
	rfqRepo    *fakeRFQRepo
	awardErr   error
}

func newFakeQuotationRepo(rfqRepo *fakeRFQRepo) *fakeQuotationRepo {
	return &fakeQuotationRepo{quotations: make(map[uuid.UUID]*entity.Quotation), rfqRepo: rfqRepo}
}

func (f *fakeQuotationRepo) CreateQuotation(_ context.Context, q *entity.Quotation) (uuid.UUID, error) {
	for _, existing := range f.quotations {
		if existing.RfqId == q.RfqId && existing.VendorId == q.VendorId {
			return uuid.Nil, repo_errors.ErrConflict
		}
		if q.QuotationNumber != "" && existing.QuotationNumber == q.QuotationNumber {
			return uuid.Nil, repo_errors.ErrDuplicateNumber
		}
	}

	stored := *q
	stored.Id = uuid.New()
	for i := range stored.Lines {
		stored.Lines[i].Id = uuid.New()
		stored.Lines[i].QuotationId = stored.Id
	}
	f.quotations[stored.Id] = &stored

	return stored.Id, nil
}

func (f *fakeQuotationRepo) GetQuotationById(_ context.Context, id string) (*entity.Quotation, error) {
	quotationId, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	q, ok := f.quotations[quotationId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *q
	copied.Lines = append([]entity.QuotationLine(nil), q.Lines...)

	return &copied, nil
}

func (f *fakeQuotationRepo) GetQuotationsByRfqId(_ context.Context, rfqId uuid.UUID) ([]entity.Quotation, error) {
	out := make([]entity.Quotation, 0)
	for _, q := range f.quotations {
		if q.RfqId == rfqId {
			out = append(out, *q)
		}
	}

	return out, nil
}

func (f *fakeQuotationRepo) GetQuotationByRfqAndVendor(_ context.Context, rfqId uuid.UUID, vendorId uuid.UUID) (*entity.Quotation, error) {
	for _, q := range f.quotations {
		if q.RfqId == rfqId && q.VendorId == vendorId {
			copied := *q
			return &copied, nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (f *fakeQuotationRepo) EditQuotationById(_ context.Context, q *entity.Quotation) error {
	existing, ok := f.quotations[q.Id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if existing.Status != common.Pending {
		return repo_errors.ErrConflict
	}

	updated := *q
	updated.CreatedAt = existing.CreatedAt
	f.quotations[q.Id] = &updated

	return nil
}

func (f *fakeQuotationRepo) AwardQuotation(_ context.Context, rfqId uuid.UUID, winnerId uuid.UUID, approverId uuid.UUID, reason string) error {
	if f.awardErr != nil {
		return f.awardErr
	}

	rfq, ok := f.rfqRepo.rfqs[rfqId]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if rfq.Status != common.Published {
		return repo_errors.ErrConflict
	}

	winner, ok := f.quotations[winnerId]
	if !ok || winner.RfqId != rfqId || winner.Status != common.Pending {
		return repo_errors.ErrConflict
	}

	now := time.Now()
	winner.Status = common.Approved
	winner.ApproverId = &approverId
	winner.ApprovedAt = &now

	for _, q := range f.quotations {
		if q.RfqId == rfqId && q.Id != winnerId && q.Status == common.Pending {
			q.Status = common.Rejected
			q.RejectReason = reason
		}
	}

	rfq.Status = common.Closed

	return nil
}

type fakeRequisitionRepo struct {
	requisitions map[uuid.UUID]*entity.Requisition
	markErr      error
}

func newFakeRequisitionRepo() *fakeRequisitionRepo {
	return &fakeRequisitionRepo{requisitions: make(map[uuid.UUID]*entity.Requisition)}
}

func (f *fakeRequisitionRepo) GetRequisitionById(_ context.Context, id string) (*entity.Requisition, error) {
	requisitionId, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r, ok := f.requisitions[requisitionId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *r
	copied.Lines = append([]entity.RequisitionLine(nil), r.Lines...)

	return &copied, nil
}

func (f *fakeRequisitionRepo) MarkRequisitionConverted(_ context.Context, id uuid.UUID) error {
	if f.markErr != nil {
		return f.markErr
	}

	r, ok := f.requisitions[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	r.Status = common.Converted

	return nil
}

type fakeProductRepo struct {
	products []entity.Product
}

func (f *fakeProductRepo) GetProductById(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	for i := range f.products {
		if f.products[i].Id == id {
			return &f.products[i], nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (f *fakeProductRepo) GetProductByCode(_ context.Context, code string) (*entity.Product, error) {
	return f.findBy(code, func(p *entity.Product) string { return p.Code })
}

func (f *fakeProductRepo) GetProductByName(_ context.Context, name string) (*entity.Product, error) {
	return f.findBy(name, func(p *entity.Product) string { return p.Name })
}

func (f *fakeProductRepo) findBy(value string, key func(*entity.Product) string) (*entity.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(value))
	var found *entity.Product
	for i := range f.products {
		if strings.ToLower(strings.TrimSpace(key(&f.products[i]))) == needle {
			if found != nil {
				return nil, repo_errors.ErrAmbiguous
			}
			found = &f.products[i]
		}
	}

	if found == nil {
		return nil, repo_errors.ErrNotFound
	}

	return found, nil
}

type fakeNumbering struct {
	counters map[string]int
}

func (f *fakeNumbering) NextNumber(_ context.Context, kind string) (string, error) {
	if f.counters == nil {
		f.counters = make(map[string]int)
	}
	f.counters[kind]++

	return kind + "-" + uuid.NewString()[:8], nil
}

type fakeBridge struct {
	poId    uuid.UUID
	err     error
	created []uuid.UUID
}

func (f *fakeBridge) CreateFromQuotation(_ context.Context, quotationId uuid.UUID) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}

	f.created = append(f.created, quotationId)
	if f.poId == uuid.Nil {
		f.poId = uuid.New()
	}

	return f.poId, nil
}

func (f *fakeBridge) GetPurchaseOrderIdByQuotationId(_ context.Context, quotationId uuid.UUID) (uuid.UUID, error) {
	for _, created := range f.created {
		if created == quotationId {
			return f.poId, nil
		}
	}

	return uuid.Nil, repo_errors.ErrNotFound
}

type fakeDiagnostics struct{}

func (fakeDiagnostics) Ping() error { return nil }

type testEnv struct {
	repos        *repo.Repositories
	rfqs         *fakeRFQRepo
	quotations   *fakeQuotationRepo
	requisitions *fakeRequisitionRepo
	products     *fakeProductRepo
	bridge       *fakeBridge
}

func newTestEnv() *testEnv {
	rfqs := newFakeRFQRepo()
	quotations := newFakeQuotationRepo(rfqs)
	requisitions := newFakeRequisitionRepo()
	products := &fakeProductRepo{}
	bridge := &fakeBridge{}

	return &testEnv{
		repos: &repo.Repositories{
			Diagnostics: fakeDiagnostics{},
			Product:     products,
			Requisition: requisitions,
			RFQ:         rfqs,
			Quotation:   quotations,
			Numbering:   &fakeNumbering{},
		},
		rfqs:         rfqs,
		quotations:   quotations,
		requisitions: requisitions,
		products:     products,
		bridge:       bridge,
	}
}

var errBoom = errors.New("boom")
