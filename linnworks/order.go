package linnworks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cheyinl/linnworks-soap/soap"
)

// OrderAPI wraps the order service.
type OrderAPI struct {
	*API
}

// NewOrderAPI connects to the order endpoint.
func NewOrderAPI(ctx context.Context, token string, opts ...Option) (*OrderAPI, error) {
	api, err := New(ctx, token, OrderEndpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &OrderAPI{API: api}, nil
}

// Audit is an order history entry. AuditTypeID is one of the generic
// service's audit types.
type Audit struct {
	HistoryNote string
	AuditTypeID int
	Timestamp   time.Time
	Tag         string
	UpdatedBy   string
}

func (a Audit) params() soap.Params {
	return soap.Params{
		{Name: "HistoryNote", Value: a.HistoryNote},
		{Name: "AuditTypeId", Value: a.AuditTypeID},
		{Name: "Timestamp", Value: a.Timestamp},
		{Name: "Tag", Value: a.Tag},
		{Name: "UpdatedBy", Value: a.UpdatedBy},
	}
}

// AddNewOrder creates an order and returns the created order summary.
func (o *OrderAPI) AddNewOrder(ctx context.Context, order soap.Params) (soap.Map, error) {
	const op = "AddNewOrder"
	result, err := o.Call(ctx, op, soap.Params{{Name: "order", Value: order}})
	if err != nil {
		return nil, err
	}
	raw, _ := result.Path("Orders", "OrderLite")
	summary := soap.AsMap(raw)
	if summary == nil {
		return nil, invalidResponse(op, "Orders.OrderLite missing")
	}
	return summary, nil
}

// AddOrderAudit appends an audit entry to an order item.
func (o *OrderAPI) AddOrderAudit(ctx context.Context, itemID uuid.UUID, audit Audit) error {
	_, err := o.Call(ctx, "AddOrderAudit", soap.Params{
		{Name: "pkOrderItemId", Value: itemID},
		{Name: "audit", Value: audit.params()},
	})
	return err
}

// GetFilteredOrders returns the raw result for filter.
func (o *OrderAPI) GetFilteredOrders(ctx context.Context, filter soap.Params) (soap.Map, error) {
	return o.Call(ctx, "GetFilteredOrders", soap.Params{{Name: "Filter", Value: filter}})
}

// GetOrderByID returns the order with the given number, or nil when there
// is none.
func (o *OrderAPI) GetOrderByID(ctx context.Context, orderID int) (soap.Map, error) {
	result, err := o.GetFilteredOrders(ctx, soap.Params{
		{Name: "OrderIdIsSet", Value: true},
		{Name: "OrderId", Value: orderID},
	})
	if err != nil {
		return nil, err
	}
	order, ok := result.Path("Orders", "Order")
	if soap.IsEmpty(result["Orders"]) || (ok && soap.IsEmpty(order)) {
		return nil, nil
	}

	orders := soap.Maps(order)
	if len(orders) == 0 {
		return nil, invalidResponse("GetFilteredOrders", "Orders holds no Order record")
	}
	return orders[0], nil
}

// UpdateOrder saves changes to an order. It reports true when the service
// accepted them.
func (o *OrderAPI) UpdateOrder(ctx context.Context, order soap.Params) (bool, error) {
	if _, err := o.Call(ctx, "UpdateOrder", soap.Params{{Name: "order", Value: order}}); err != nil {
		return false, err
	}
	return true, nil
}

// AddOrderAuditBatch is not implemented. It returns an UnsupportedError and sends nothing.
func (o *OrderAPI) AddOrderAuditBatch(ctx context.Context, audits soap.Params) (soap.Map, error) {
	return nil, unsupported("AddOrderAuditBatch")
}

// AddBatchReturns is not implemented. It returns an UnsupportedError and sends nothing.
func (o *OrderAPI) AddBatchReturns(ctx context.Context, returns soap.Params) (soap.Map, error) {
	return nil, unsupported("AddBatchReturns")
}

// DeleteOrder is not implemented. It returns an UnsupportedError and sends nothing.
func (o *OrderAPI) DeleteOrder(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("DeleteOrder")
}

// GetLiteOpenOrders is not implemented. It returns an UnsupportedError and sends nothing.
func (o *OrderAPI) GetLiteOpenOrders(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetLiteOpenOrders")
}

// PartShipOrders is not implemented. It returns an UnsupportedError and sends nothing.
func (o *OrderAPI) PartShipOrders(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("PartShipOrders")
}

// ProcessOrder is not implemented. It returns an UnsupportedError and sends nothing.
func (o *OrderAPI) ProcessOrder(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("ProcessOrder")
}
