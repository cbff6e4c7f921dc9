package linnworks

import (
	"context"

	"github.com/cheyinl/linnworks-soap/soap"
)

// PurchaseOrderAPI wraps the purchase order operations. None are
// implemented yet; every method returns an UnsupportedError.
type PurchaseOrderAPI struct {
	*API
}

// NewPurchaseOrderAPI connects to the purchase order endpoint.
func NewPurchaseOrderAPI(ctx context.Context, token string, opts ...Option) (*PurchaseOrderAPI, error) {
	api, err := New(ctx, token, PurchaseOrderEndpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderAPI{API: api}, nil
}

// ActionBatchPurchaseOrderItemDelivered is not implemented. It returns an UnsupportedError and sends nothing.
func (p *PurchaseOrderAPI) ActionBatchPurchaseOrderItemDelivered(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("ActionBatchPurchaseOrderItemDelivered")
}

// ActionPurchaseOrderItemDelivered is not implemented. It returns an UnsupportedError and sends nothing.
func (p *PurchaseOrderAPI) ActionPurchaseOrderItemDelivered(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("ActionPurchaseOrderItemDelivered")
}

// AddPurchaseOrderAuditTrail is not implemented. It returns an UnsupportedError and sends nothing.
func (p *PurchaseOrderAPI) AddPurchaseOrderAuditTrail(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("AddPurchaseOrderAuditTrail")
}

// GetFilteredPOList is not implemented. It returns an UnsupportedError and sends nothing.
func (p *PurchaseOrderAPI) GetFilteredPOList(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetFilteredPOList")
}

// GetPOList is not implemented. It returns an UnsupportedError and sends nothing.
func (p *PurchaseOrderAPI) GetPOList(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetPOList")
}

// GetPurchaseOrder is not implemented. It returns an UnsupportedError and sends nothing.
func (p *PurchaseOrderAPI) GetPurchaseOrder(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetPurchaseOrder")
}

// LockPurchaseOrder is not implemented. It returns an UnsupportedError and sends nothing.
func (p *PurchaseOrderAPI) LockPurchaseOrder(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("LockPurchaseOrder")
}
