package orders

import (
	"context"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/dto/requests"
	"labbridge-service/internal/pkg/exceptions"
	"labbridge-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type OrderController struct {
	Log            *zap.Logger
	OrderUsecase   OrderUsecase
	InternalConfig *config.InternalConfig
}

func NewOrderController(logger *zap.Logger, orderUsecase OrderUsecase, internalConfig *config.InternalConfig) *OrderController {
	return &OrderController{
		Log:            logger,
		OrderUsecase:   orderUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	request := new(requests.CreateOrder)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := ctrl.OrderUsecase.CreateOrder(ctx, request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateOrderSuccessMessage, result)
}

func (ctrl *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := ctrl.OrderUsecase.GetOrderByID(ctx, orderID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetOrderSuccessMessage, result)
}

func (ctrl *OrderController) ConfirmPreview(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	request := new(requests.ConfirmPreview)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := ctrl.OrderUsecase.ConfirmPreview(ctx, orderID, request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ConfirmPreviewSuccessMessage, result)
}

func (ctrl *OrderController) RejectPreview(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	request := new(requests.RejectPreview)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := ctrl.OrderUsecase.RejectPreview(ctx, orderID, request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.RejectPreviewSuccessMessage, result)
}
