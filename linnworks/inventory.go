package linnworks

import (
	"context"

	"github.com/google/uuid"

	"github.com/cheyinl/linnworks-soap/soap"
)

// InventoryAPI wraps the inventory service.
type InventoryAPI struct {
	*API
}

// NewInventoryAPI connects to the inventory endpoint.
func NewInventoryAPI(ctx context.Context, token string, opts ...Option) (*InventoryAPI, error) {
	api, err := New(ctx, token, InventoryEndpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &InventoryAPI{API: api}, nil
}

// Location is a stock location with an optional bin/rack.
type Location struct {
	ID      uuid.UUID
	Name    string
	BinRack string
}

func (l Location) params() soap.Params {
	return soap.Params{
		{Name: "LocationID", Value: l.ID},
		{Name: "LocationName", Value: l.Name},
		{Name: "BinRack", Value: l.BinRack},
	}
}

// StockLevelAddDeduct adjusts the level of the item matching skuOrBarcode by
// diff at locationID.
func (i *InventoryAPI) StockLevelAddDeduct(ctx context.Context, skuOrBarcode string, diff int, updateSource string, locationID uuid.UUID) (soap.Map, error) {
	return i.Call(ctx, "StockLevelAddDeduct", soap.Params{
		{Name: "SKUorBarcode", Value: skuOrBarcode},
		{Name: "diff", Value: diff},
		{Name: "updateSource", Value: updateSource},
		{Name: "pkLocationId", Value: locationID},
	})
}

// ChangeStockLevel sets the absolute stock level of an item at a location.
// Use "Default" when in doubt about the location.
func (i *InventoryAPI) ChangeStockLevel(ctx context.Context, itemID uuid.UUID, location string, level int) (soap.Map, error) {
	return i.Call(ctx, "ChangeStockLevel", soap.Params{
		{Name: "pkStockItemId", Value: itemID},
		{Name: "stocklevel", Value: soap.Params{
			{Name: "Level", Value: level},
			{Name: "IsSetLevel", Value: true},
			{Name: "Location", Value: location},
		}},
	})
}

// SaveStockItem creates or updates a stock item and returns its id.
func (i *InventoryAPI) SaveStockItem(ctx context.Context, item soap.Params) (uuid.UUID, error) {
	const op = "SaveStockItem"
	result, err := i.Call(ctx, op, soap.Params{{Name: "item", Value: item}})
	if err != nil {
		return uuid.Nil, err
	}

	raw, ok := result.Path("StockItems", "StockItem", "pkStockItemId")
	if !ok {
		return uuid.Nil, invalidResponse(op, "StockItems.StockItem.pkStockItemId missing")
	}
	text, _ := raw.(string)
	id, err := uuid.Parse(text)
	if err != nil {
		return uuid.Nil, invalidResponse(op, "pkStockItemId %q: %v", text, err)
	}
	return id, nil
}

// GetStockItem returns the raw result for filter.
func (i *InventoryAPI) GetStockItem(ctx context.Context, filter soap.Params) (soap.Map, error) {
	return i.Call(ctx, "GetStockItem", soap.Params{{Name: "filter", Value: filter}})
}

// GetStockItemBySKU returns the stock item with the given SKU, or nil when
// there is none.
func (i *InventoryAPI) GetStockItemBySKU(ctx context.Context, sku string) (soap.Map, error) {
	return i.findStockItem(ctx, soap.Params{
		{Name: "SKU", Value: sku},
		{Name: "IsSetSKU", Value: true},
	})
}

// GetStockItemByBarcode returns the stock item with the given barcode, or
// nil when there is none.
func (i *InventoryAPI) GetStockItemByBarcode(ctx context.Context, barcode string) (soap.Map, error) {
	return i.findStockItem(ctx, soap.Params{
		{Name: "BarcodeNumber", Value: barcode},
		{Name: "IsSetBarcodeNumber", Value: true},
	})
}

func (i *InventoryAPI) findStockItem(ctx context.Context, filter soap.Params) (soap.Map, error) {
	result, err := i.GetStockItem(ctx, filter)
	if err != nil {
		return nil, err
	}
	item, ok := result.Path("StockItems", "StockItem")
	if soap.IsEmpty(result["StockItems"]) || (ok && soap.IsEmpty(item)) {
		return nil, nil
	}

	items := soap.Maps(item)
	if len(items) == 0 {
		return nil, invalidResponse("GetStockItem", "StockItems holds no StockItem record")
	}
	return items[0], nil
}

// DeleteStockItem removes a stock item.
func (i *InventoryAPI) DeleteStockItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := i.Call(ctx, "DeleteStockItem", soap.Params{{Name: "pkStockItemId", Value: itemID}})
	return err
}

// UpdateStockItemLocation sets the bin/rack of an item at a location, or
// removes it when remove is true. It reports true when the service
// accepted the change.
func (i *InventoryAPI) UpdateStockItemLocation(ctx context.Context, itemID uuid.UUID, location Location, remove bool) (bool, error) {
	_, err := i.Call(ctx, "UpdateStockItemLocation", soap.Params{
		{Name: "pkStockItemId", Value: itemID},
		{Name: "location", Value: location.params()},
		{Name: "Delete", Value: remove},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
