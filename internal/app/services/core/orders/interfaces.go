package orders

import (
	"context"
	"labbridge-service/internal/pkg/dto/requests"
	"labbridge-service/internal/pkg/dto/responses"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, request *requests.CreateOrder) (*responses.CreateOrder, error)
	GetOrderByID(ctx context.Context, orderID string) (*responses.GetOrder, error)
	ConfirmPreview(ctx context.Context, orderID string, request *requests.ConfirmPreview) (*responses.GetOrder, error)
	RejectPreview(ctx context.Context, orderID string, request *requests.RejectPreview) (*responses.GetOrder, error)
}
