package controller

import (
	"errors"
	"net/http"
	"procurement-api/internal/entity"
	"procurement-api/internal/pricing"
	"procurement-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type quotationRoutesHandler struct {
	quotationService service.Quotation
	validate         *validator.Validate
}

func newQuotationRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *quotationRoutesHandler {
	h := &quotationRoutesHandler{quotationService: services.Quotation, validate: v}

	outer.POST("/quotations/new", h.PostQuotation)
	outer.GET("/quotations/:quotationId", h.GetQuotation)
	outer.PATCH("/quotations/:quotationId/edit", h.EditQuotation)
	outer.POST("/quotations/calculate", h.CalculateTotals)

	return h
}

type quotationLineInput struct {
	RfqLineId       string `json:"rfqLineId" validate:"required,uuid"`
	UnitPrice       string `json:"unitPrice" validate:"required"`
	DiscountPercent string `json:"discountPercent"`
	TaxRatePercent  string `json:"taxRatePercent"`
	Remark          string `json:"remark" validate:"max=500"`
}

type postQuotationInput struct {
	QuotationNumber       string               `json:"quotationNumber" validate:"max=50"`
	RfqId                 string               `json:"rfqId" validate:"required,uuid"`
	VendorId              string               `json:"vendorId" validate:"required,uuid"`
	QuotationDate         string               `json:"quotationDate" validate:"required,max=10"`
	ValidUntil            string               `json:"validUntil" validate:"required,max=10"`
	TaxIncluded           bool                 `json:"isTaxIncluded"`
	DeliveryTerms         string               `json:"deliveryTerms" validate:"max=200"`
	PaymentTerms          string               `json:"paymentTerms" validate:"max=200"`
	HeaderDiscountPercent string               `json:"headerDiscountPercent"`
	ShippingCost          string               `json:"shippingCost"`
	Lines                 []quotationLineInput `json:"lines" validate:"required,min=1,dive"`
}

func (input *postQuotationInput) toModel() *entity.SubmitQuotationInput {
	model := &entity.SubmitQuotationInput{
		QuotationNumber:       input.QuotationNumber,
		RfqId:                 input.RfqId,
		VendorId:              input.VendorId,
		QuotationDate:         input.QuotationDate,
		ValidUntil:            input.ValidUntil,
		TaxIncluded:           input.TaxIncluded,
		DeliveryTerms:         input.DeliveryTerms,
		PaymentTerms:          input.PaymentTerms,
		HeaderDiscountPercent: input.HeaderDiscountPercent,
		ShippingCost:          input.ShippingCost,
	}
	for _, l := range input.Lines {
		model.Lines = append(model.Lines, entity.SubmitQuotationLineInput{
			RfqLineId: l.RfqLineId, UnitPrice: l.UnitPrice,
			DiscountPercent: l.DiscountPercent, TaxRatePercent: l.TaxRatePercent, Remark: l.Remark,
		})
	}

	return model
}

// /quotations/new
func (h *quotationRoutesHandler) PostQuotation(c echo.Context) error {
	var input postQuotationInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quotation, err := h.quotationService.SubmitQuotation(c.Request().Context(), input.toModel())
	if err == nil {
		if e := c.JSON(http.StatusOK, quotation); e != nil {
			return e
		}

		return nil
	}

	if e := h.respondQuotationError(c, err); e != nil {
		return e
	}

	return err
}

// /quotations/:quotationId
func (h *quotationRoutesHandler) GetQuotation(c echo.Context) error {
	quotation, err := h.quotationService.GetQuotationById(c.Request().Context(), c.Param("quotationId"))
	if err == nil {
		if e := c.JSON(http.StatusOK, quotation); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrQuotationNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no quotation with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

// rfqId and vendorId are frozen once submitted, an edit carries neither
type editQuotationInput struct {
	QuotationDate         string               `json:"quotationDate" validate:"required,max=10"`
	ValidUntil            string               `json:"validUntil" validate:"required,max=10"`
	TaxIncluded           bool                 `json:"isTaxIncluded"`
	DeliveryTerms         string               `json:"deliveryTerms" validate:"max=200"`
	PaymentTerms          string               `json:"paymentTerms" validate:"max=200"`
	HeaderDiscountPercent string               `json:"headerDiscountPercent"`
	ShippingCost          string               `json:"shippingCost"`
	Lines                 []quotationLineInput `json:"lines" validate:"required,min=1,dive"`
}

func (input *editQuotationInput) toModel() *entity.SubmitQuotationInput {
	model := &entity.SubmitQuotationInput{
		QuotationDate:         input.QuotationDate,
		ValidUntil:            input.ValidUntil,
		TaxIncluded:           input.TaxIncluded,
		DeliveryTerms:         input.DeliveryTerms,
		PaymentTerms:          input.PaymentTerms,
		HeaderDiscountPercent: input.HeaderDiscountPercent,
		ShippingCost:          input.ShippingCost,
	}
	for _, l := range input.Lines {
		model.Lines = append(model.Lines, entity.SubmitQuotationLineInput{
			RfqLineId: l.RfqLineId, UnitPrice: l.UnitPrice,
			DiscountPercent: l.DiscountPercent, TaxRatePercent: l.TaxRatePercent, Remark: l.Remark,
		})
	}

	return model
}

// /quotations/:quotationId/edit
func (h *quotationRoutesHandler) EditQuotation(c echo.Context) error {
	var input editQuotationInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quotation, err := h.quotationService.EditQuotationById(c.Request().Context(), c.Param("quotationId"), input.toModel())
	if err == nil {
		if e := c.JSON(http.StatusOK, quotation); e != nil {
			return e
		}

		return nil
	}

	if e := h.respondQuotationError(c, err); e != nil {
		return e
	}

	return err
}

type calculateLineInput struct {
	Quantity        string `json:"quantity" validate:"required"`
	UnitPrice       string `json:"unitPrice" validate:"required"`
	DiscountPercent string `json:"discountPercent"`
	TaxRatePercent  string `json:"taxRatePercent"`
}

type calculateTotalsInput struct {
	TaxIncluded           bool                 `json:"isTaxIncluded"`
	DeliveryTerms         string               `json:"deliveryTerms" validate:"max=200"`
	HeaderDiscountPercent string               `json:"headerDiscountPercent"`
	ShippingCost          string               `json:"shippingCost"`
	Lines                 []calculateLineInput `json:"lines" validate:"required,min=1,dive"`
}

// /quotations/calculate
func (h *quotationRoutesHandler) CalculateTotals(c echo.Context) error {
	var input calculateTotalsInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	model := &entity.CalculateTotalsInput{
		TaxIncluded:           input.TaxIncluded,
		DeliveryTerms:         input.DeliveryTerms,
		HeaderDiscountPercent: input.HeaderDiscountPercent,
		ShippingCost:          input.ShippingCost,
	}
	for _, l := range input.Lines {
		model.Lines = append(model.Lines, entity.CalculateTotalsLineInput{
			Quantity: l.Quantity, UnitPrice: l.UnitPrice,
			DiscountPercent: l.DiscountPercent, TaxRatePercent: l.TaxRatePercent,
		})
	}

	totals, err := h.quotationService.CalculateTotals(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, totals); e != nil {
			return e
		}

		return nil
	}

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		if e := c.JSON(http.StatusBadRequest, errorResponse{validationErr.Reason}); e != nil {
			return e
		}
	case errors.Is(err, pricing.ErrValidation):
		if e := c.JSON(http.StatusBadRequest, errorResponse{err.Error()}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

func (h *quotationRoutesHandler) respondQuotationError(c echo.Context, err error) error {
	var validationErr *service.ValidationError
	var duplicateErr *service.DuplicateQuotationError
	switch {
	case err == service.ErrRFQNotFound:
		return c.JSON(http.StatusNotFound, errorResponse{"There is no rfq with given id"})
	case err == service.ErrQuotationNotFound:
		return c.JSON(http.StatusNotFound, errorResponse{"There is no quotation with given id"})
	case err == service.ErrQuotationNotEditable:
		return c.JSON(http.StatusConflict, errorResponse{"The quotation can no longer be edited"})
	case errors.As(err, &duplicateErr):
		return c.JSON(http.StatusConflict, duplicateQuotationResponse{
			Reason:              "The vendor already submitted a quotation for this rfq",
			ExistingQuotationId: duplicateErr.ExistingId.String(),
		})
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, errorResponse{validationErr.Reason})
	case errors.Is(err, pricing.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{"Error"})
	}
}
