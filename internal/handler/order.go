package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-backend/internal/client"
	"storefront-backend/internal/dto"
	"storefront-backend/internal/model"
	"storefront-backend/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// FinalizeOrder turns a completed payment session into a durable order.
// Replays of the same session return the existing order.
func (h *OrderHandler) FinalizeOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.FinalizeOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	resp, err := h.orderService.FinalizeOrder(ctx, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ChangeStatus(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	var req dto.StatusChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	order, err := h.orderService.ChangeStatus(ctx, orderID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, statusBody(order))
}

// Dispatch is a convenience wrapper over a status change to "dispatched".
func (h *OrderHandler) Dispatch(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	var req dto.DispatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	order, err := h.orderService.ChangeStatus(ctx, orderID, dto.StatusChangeRequest{
		NewStatus:      string(model.StatusDispatched),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, statusBody(order))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListOrders(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, orders)
}

func statusBody(order *model.Order) map[string]interface{} {
	body := map[string]interface{}{
		"success":     true,
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
	}
	if order.TrackingNumber != "" {
		body["trackingNumber"] = order.TrackingNumber
	}
	return body
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrMissingTrackingNumber):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, client.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
}
