package orders

import (
	"context"
	"fmt"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/dto/requests"
	"labbridge-service/internal/pkg/dto/responses"
	"labbridge-service/internal/pkg/exceptions"
	"labbridge-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type orderUsecase struct {
	OrderRepository contracts.OrderRepository
	InternalConfig  *config.InternalConfig
	Log             *zap.Logger
}

func NewOrderUsecase(
	orderRepository contracts.OrderRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) OrderUsecase {
	return &orderUsecase{
		OrderRepository: orderRepository,
		InternalConfig:  internalConfig,
		Log:             logger,
	}
}

func (uc *orderUsecase) CreateOrder(ctx context.Context, request *requests.CreateOrder) (*responses.CreateOrder, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if request.Portal != uc.InternalConfig.Portal.Name {
		return nil, exceptions.ErrInputValidation(fmt.Errorf("unsupported portal: %s", request.Portal))
	}

	order := &models.Order{
		CorrelationID: request.CorrelationID,
		Portal:        request.Portal,
		Status:        models.OrderStatusPending,
		Request:       buildOrderRequest(request),
	}

	orderID, err := uc.OrderRepository.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("order accepted",
		zap.String("order_id", orderID),
		zap.String("correlation_id", request.CorrelationID),
		zap.String("portal", request.Portal),
		zap.Bool("preview", request.Preview),
	)

	return &responses.CreateOrder{
		OrderID:       orderID,
		CorrelationID: request.CorrelationID,
		Status:        string(models.OrderStatusPending),
	}, nil
}

func (uc *orderUsecase) GetOrderByID(ctx context.Context, orderID string) (*responses.GetOrder, error) {
	order, err := uc.OrderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrOrderNotFound(fmt.Errorf("order %s does not exist", orderID))
	}
	return buildGetOrderResponse(order), nil
}

// ConfirmPreview releases a parked preview order back to the pending queue.
// The worker will rerun navigation from the top and submit this time.
func (uc *orderUsecase) ConfirmPreview(ctx context.Context, orderID string, request *requests.ConfirmPreview) (*responses.GetOrder, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	order, err := uc.loadPreviewOrder(ctx, orderID, request.PreviewToken)
	if err != nil {
		return nil, err
	}

	if err := uc.OrderRepository.ApprovePreview(ctx, orderID); err != nil {
		return nil, err
	}

	uc.Log.Info("preview approved",
		zap.String("order_id", orderID),
		zap.String("correlation_id", order.CorrelationID),
	)

	order.Status = models.OrderStatusPending
	order.PreviewApproved = true
	return buildGetOrderResponse(order), nil
}

func (uc *orderUsecase) RejectPreview(ctx context.Context, orderID string, request *requests.RejectPreview) (*responses.GetOrder, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	order, err := uc.loadPreviewOrder(ctx, orderID, request.PreviewToken)
	if err != nil {
		return nil, err
	}

	reason := "preview rejected: " + request.Reason
	if err := uc.OrderRepository.MarkEscalated(ctx, orderID, false, reason); err != nil {
		return nil, err
	}

	uc.Log.Info("preview rejected",
		zap.String("order_id", orderID),
		zap.String("correlation_id", order.CorrelationID),
		zap.String("reason", request.Reason),
	)

	order.Status = models.OrderStatusNeedsManualReview
	order.FailureReason = reason
	return buildGetOrderResponse(order), nil
}

func (uc *orderUsecase) loadPreviewOrder(ctx context.Context, orderID, previewToken string) (*models.Order, error) {
	tokenOrderID, err := utils.ParsePreviewToken(previewToken, uc.InternalConfig.App.PreviewTokenSecret)
	if err != nil {
		return nil, exceptions.ErrPreviewTokenInvalid(err)
	}
	if tokenOrderID != orderID {
		return nil, exceptions.ErrPreviewTokenInvalid(fmt.Errorf("token was issued for a different order"))
	}

	order, err := uc.OrderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrOrderNotFound(fmt.Errorf("order %s does not exist", orderID))
	}
	if order.Status != models.OrderStatusPreview {
		return nil, exceptions.ErrOrderNotInPreview()
	}
	return order, nil
}

func buildOrderRequest(request *requests.CreateOrder) models.OrderRequest {
	tests := make([]models.TestEntry, len(request.Tests))
	for i, t := range request.Tests {
		tests[i] = models.TestEntry{Code: t.Code, Display: t.Display}
	}
	diagnoses := make([]models.Diagnosis, len(request.Diagnoses))
	for i, d := range request.Diagnoses {
		diagnoses[i] = models.Diagnosis{Code: d.Code, Display: d.Display}
	}

	return models.OrderRequest{
		CorrelationID: request.CorrelationID,
		Patient: models.Patient{
			FirstName:   request.Patient.FirstName,
			LastName:    request.Patient.LastName,
			DateOfBirth: request.Patient.DateOfBirth,
			Sex:         request.Patient.Sex,
			Phone:       request.Patient.Phone,
			Address: models.Address{
				Line1: request.Patient.Address.Line1,
				Line2: request.Patient.Address.Line2,
				City:  request.Patient.Address.City,
				State: request.Patient.Address.State,
				Zip:   request.Patient.Address.Zip,
			},
			PayerCode:     request.Patient.PayerCode,
			PayerMemberID: request.Patient.PayerMemberID,
			BillMethod:    request.Patient.BillMethod,
		},
		Tests:     tests,
		Diagnoses: diagnoses,
		Provider: models.Provider{
			FirstName: request.Provider.FirstName,
			LastName:  request.Provider.LastName,
			NPI:       request.Provider.NPI,
		},
		Options: models.OrderOptions{Preview: request.Preview},
	}
}

func buildGetOrderResponse(order *models.Order) *responses.GetOrder {
	return &responses.GetOrder{
		OrderID:        order.ID,
		CorrelationID:  order.CorrelationID,
		Portal:         order.Portal,
		Status:         string(order.Status),
		ConfirmationID: order.ConfirmationID,
		FailureReason:  order.FailureReason,
		Unverified:     order.Unverified,
		PreviewRef:     order.PreviewRef,
		AuditTrail:     order.AuditRefs,
	}
}
