package linnworks

import (
	"context"

	"github.com/cheyinl/linnworks-soap/soap"
)

// GenericAPI wraps the generic (settings and lookups) service. Only
// GetLocations is implemented.
type GenericAPI struct {
	*API
}

// NewGenericAPI connects to the generic endpoint.
func NewGenericAPI(ctx context.Context, token string, opts ...Option) (*GenericAPI, error) {
	api, err := New(ctx, token, GenericEndpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &GenericAPI{API: api}, nil
}

// GetLocations returns the stock locations of the account.
func (g *GenericAPI) GetLocations(ctx context.Context) ([]soap.Map, error) {
	result, err := g.Call(ctx, "GetLocations", nil)
	if err != nil {
		return nil, err
	}
	locations, _ := result.Path("DataObj", "StockItemLocation")
	return soap.Maps(locations), nil
}

// AddCountry is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) AddCountry(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("AddCountry")
}

// AddProductCountry is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) AddProductCountry(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("AddProductCountry")
}

// CheckToken is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) CheckToken(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("CheckToken")
}

// DeleteCountry is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) DeleteCountry(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("DeleteCountry")
}

// DeleteProductCategory is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) DeleteProductCategory(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("DeleteProductCategory")
}

// GenerateToken is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GenerateToken(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GenerateToken")
}

// GetAllAppSettings is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetAllAppSettings(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetAllAppSettings")
}

// GetAppSettings is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetAppSettings(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetAppSettings")
}

// GetAuditTypes is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetAuditTypes(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetAuditTypes")
}

// GetCategories is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetCategories(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetCategories")
}

// GetCountryList is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetCountryList(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetCountryList")
}

// GetExtendedPropertyTypes is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetExtendedPropertyTypes(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetExtendedPropertyTypes")
}

// GetOrderStatusTypes is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetOrderStatusTypes(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetOrderStatusTypes")
}

// GetPackagingGroups is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetPackagingGroups(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetPackagingGroups")
}

// GetPaymentMethods is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetPaymentMethods(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetPaymentMethods")
}

// GetPostalServices is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetPostalServices(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetPostalServices")
}

// GetPurchaseOrderAuditTypes is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetPurchaseOrderAuditTypes(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetPurchaseOrderAuditTypes")
}

// GetSuppliers is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) GetSuppliers(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("GetSuppliers")
}

// UpdateCountry is not implemented. It returns an UnsupportedError and sends nothing.
func (g *GenericAPI) UpdateCountry(ctx context.Context, params soap.Params) (soap.Map, error) {
	return nil, unsupported("UpdateCountry")
}
