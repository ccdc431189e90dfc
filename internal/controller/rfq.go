package controller

import (
	"errors"
	"net/http"
	"procurement-api/internal/common"
	"procurement-api/internal/entity"
	"procurement-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type rfqRoutesHandler struct {
	rfqService   service.RFQ
	awardService service.Award
	validate     *validator.Validate
}

func newRFQRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *rfqRoutesHandler {
	h := &rfqRoutesHandler{rfqService: services.RFQ, awardService: services.Award, validate: v}

	outer.GET("/rfqs", h.GetRFQs)
	outer.POST("/rfqs/new", h.PostRFQ)
	outer.GET("/rfqs/:rfqId", h.GetRFQ)
	outer.PUT("/rfqs/:rfqId/status", h.UpdateRFQStatus)
	outer.POST("/rfqs/:rfqId/import/:requisitionId", h.ImportRequisition)
	outer.GET("/rfqs/:rfqId/comparison", h.GetComparison)
	outer.POST("/rfqs/:rfqId/award", h.AwardRFQ)

	return h
}

type getRFQsInput struct {
	Limit  int32  `query:"limit" validate:"gte=0,lte=50"`
	Offset int32  `query:"offset" validate:"gte=0"`
	Status string `query:"status" validate:"omitempty,oneof=Draft Published Closed Cancelled"`
}

func newGetRFQsInput() getRFQsInput {
	return getRFQsInput{Limit: defaultLimit, Offset: defaultOffset}
}

// /rfqs
func (h *rfqRoutesHandler) GetRFQs(c echo.Context) error {
	var input = newGetRFQsInput()
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

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	rfqs, err := h.rfqService.GetRFQs(c.Request().Context(), input.Status, pg)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{err.Error()}); e != nil {
			return e
		}

		return err
	}
	if e := c.JSON(http.StatusOK, rfqs); e != nil {
		return e
	}

	return nil
}

type postRFQLineInput struct {
	ProductId    string `json:"productId" validate:"omitempty,uuid"`
	ProductCode  string `json:"productCode" validate:"max=100"`
	ProductName  string `json:"productName" validate:"max=200"`
	Quantity     string `json:"quantity" validate:"required"`
	DeliveryDate string `json:"deliveryDate" validate:"max=10"`
	TargetPrice  string `json:"targetPrice"`
}

type postRFQInput struct {
	RfqNumber   string            `json:"rfqNumber" validate:"max=50"`
	IssueDate   string            `json:"issueDate" validate:"required,max=10"`
	DueDate     string            `json:"dueDate" validate:"required,max=10"`
	VendorIds   []string          `json:"vendorIds" validate:"dive,uuid"`
	Lines       []postRFQLineInput `json:"lines" validate:"dive"`
	CreatedById string            `json:"createdById" validate:"required,uuid"`
}

// /rfqs/new
func (h *rfqRoutesHandler) PostRFQ(c echo.Context) error {
	var input postRFQInput
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

	model := &entity.CreateRFQInput{
		RfqNumber:   input.RfqNumber,
		IssueDate:   input.IssueDate,
		DueDate:     input.DueDate,
		VendorIds:   input.VendorIds,
		CreatedById: input.CreatedById,
		Status:      common.Draft,
	}
	for _, l := range input.Lines {
		model.Lines = append(model.Lines, entity.CreateRFQLineInput{
			ProductId: l.ProductId, ProductCode: l.ProductCode, ProductName: l.ProductName,
			Quantity: l.Quantity, DeliveryDate: l.DeliveryDate, TargetPrice: l.TargetPrice,
		})
	}

	rfq, err := h.rfqService.CreateRFQ(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, rfq); e != nil {
			return e
		}

		return nil
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		if e := c.JSON(http.StatusBadRequest, errorResponse{validationErr.Reason}); e != nil {
			return e
		}

		return err
	}
	if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
		return e
	}

	return err
}

// /rfqs/:rfqId
func (h *rfqRoutesHandler) GetRFQ(c echo.Context) error {
	rfq, err := h.rfqService.GetRFQById(c.Request().Context(), c.Param("rfqId"))
	if err == nil {
		if e := c.JSON(http.StatusOK, rfq); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrRFQNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no rfq with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type updateRFQStatusInput struct {
	RfqId  string `param:"rfqId" validate:"required,max=100"`
	Status string `query:"status" validate:"required,oneof=Published Cancelled"`
}

// /rfqs/:rfqId/status
func (h *rfqRoutesHandler) UpdateRFQStatus(c echo.Context) error {
	var input updateRFQStatusInput
	input.RfqId, input.Status = c.Param("rfqId"), c.QueryParam("status")
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	rfq, err := h.rfqService.UpdateRFQStatusById(c.Request().Context(), input.RfqId, input.Status)
	if err == nil {
		if e := c.JSON(http.StatusOK, rfq); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrRFQNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no rfq with given id"}); e != nil {
			return e
		}
	case service.ErrInvalidStatusTransition:
		if e := c.JSON(http.StatusConflict, errorResponse{"The rfq status can't change this way"}); e != nil {
			return e
		}
	case service.ErrNoVendorsInvited:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"An rfq needs at least one invited vendor before publishing"}); e != nil {
			return e
		}
	case service.ErrNoLines:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"An rfq needs at least one line before publishing"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

// /rfqs/:rfqId/import/:requisitionId
func (h *rfqRoutesHandler) ImportRequisition(c echo.Context) error {
	result, err := h.rfqService.ImportFromRequisition(c.Request().Context(), c.Param("rfqId"), c.Param("requisitionId"))
	if err == nil {
		if e := c.JSON(http.StatusOK, result); e != nil {
			return e
		}

		return nil
	}

	var validationErr *service.ValidationError
	switch {
	case err == service.ErrRFQNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no rfq with given id"}); e != nil {
			return e
		}
	case err == service.ErrRequisitionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no requisition with given id"}); e != nil {
			return e
		}
	case err == service.ErrAlreadyImported:
		if e := c.JSON(http.StatusConflict, errorResponse{"The requisition has already been imported into an rfq"}); e != nil {
			return e
		}
	case errors.As(err, &validationErr):
		if e := c.JSON(http.StatusBadRequest, errorResponse{validationErr.Reason}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

// /rfqs/:rfqId/comparison
func (h *rfqRoutesHandler) GetComparison(c echo.Context) error {
	view, err := h.awardService.GetComparisonView(c.Request().Context(), c.Param("rfqId"))
	if err == nil {
		if e := c.JSON(http.StatusOK, view); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrRFQNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no rfq with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type awardRFQInput struct {
	RfqId                string   `param:"rfqId" validate:"required,max=100"`
	SelectedQuotationIds []string `json:"selectedQuotationIds" validate:"required,min=1,dive,uuid"`
	ApproverId           string   `json:"approverId" validate:"required,uuid"`
}

// /rfqs/:rfqId/award
func (h *rfqRoutesHandler) AwardRFQ(c echo.Context) error {
	var input awardRFQInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	input.RfqId = c.Param("rfqId")
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	model := &entity.AwardInput{
		RfqId:                input.RfqId,
		SelectedQuotationIds: input.SelectedQuotationIds,
		ApproverId:           input.ApproverId,
	}

	result, err := h.awardService.AwardRFQ(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, result); e != nil {
			return e
		}

		return nil
	}

	var validationErr *service.ValidationError
	switch {
	case err == service.ErrRFQNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no rfq with given id"}); e != nil {
			return e
		}
	case err == service.ErrAlreadyAwarded:
		if e := c.JSON(http.StatusConflict, errorResponse{"The rfq has already been awarded"}); e != nil {
			return e
		}
	case err == service.ErrInvalidSelection:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Selected quotations must belong to the rfq and still be pending"}); e != nil {
			return e
		}
	case errors.As(err, &validationErr):
		if e := c.JSON(http.StatusBadRequest, errorResponse{validationErr.Reason}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}
