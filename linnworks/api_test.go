package linnworks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cheyinl/linnworks-soap/soap"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name:   "valid config",
			config: &Config{Token: testToken, Endpoint: InventoryEndpoint},
		},
		{
			name:    "missing token",
			config:  &Config{Endpoint: InventoryEndpoint},
			wantErr: ErrMissingToken,
		},
		{
			name:    "missing wsdl",
			config:  &Config{Token: testToken, Endpoint: Endpoint{Name: "inventory"}},
			wantErr: ErrMissingWSDL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, defaultTimeout, tt.config.Timeout)
			}
		})
	}
}

func TestEndpoints(t *testing.T) {
	assert.Equal(t, "http://api.linnlive.com/inventory.asmx?wsdl", InventoryEndpoint.WSDL)
	assert.Equal(t, "http://api.linnlive.com/order.asmx?wsdl", OrderEndpoint.WSDL)
	assert.Equal(t, "http://api.linnlive.com/generic.asmx?wsdl", GenericEndpoint.WSDL)
	assert.Equal(t, OrderEndpoint.WSDL, PurchaseOrderEndpoint.WSDL)
}

// ---------------------------------------------------------------------------
// Construction Tests
// ---------------------------------------------------------------------------

func TestNew_MissingToken(t *testing.T) {
	m := &mockTransport{}
	_, err := New(context.Background(), "", InventoryEndpoint, WithTransport(m))
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNew_UnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewInventoryAPI(context.Background(), testToken, WithWSDL(url+"/inventory.asmx?wsdl"))
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, ErrEndpointUnreachable)
}

func TestNew_InvalidWSDL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	}))
	defer server.Close()

	_, err := NewOrderAPI(context.Background(), testToken, WithWSDL(server.URL+"/order.asmx?wsdl"))
	assert.ErrorIs(t, err, ErrEndpointUnreachable)
	assert.ErrorIs(t, err, soap.ErrInvalidWSDL)
}

// ---------------------------------------------------------------------------
// Call Tests
// ---------------------------------------------------------------------------

func TestCall_InjectsTokenFirst(t *testing.T) {
	m := &mockTransport{}
	m.respondWith("GetStockItem", soap.Map{"IsError": "false"})
	api := newTestAPI(t, m)

	_, err := api.Call(context.Background(), "GetStockItem", soap.Params{
		{Name: "filter", Value: "x"},
	})
	require.NoError(t, err)

	call := m.lastCall(t)
	assert.Equal(t, "GetStockItem", call.operation)
	require.Len(t, call.params, 2)
	assert.Equal(t, soap.Param{Name: TokenParam, Value: testToken}, call.params[0])
	assert.Equal(t, soap.Param{Name: "filter", Value: "x"}, call.params[1])
}

func TestCall_CallerCannotOverrideToken(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := &mockTransport{}
	m.respondWith("GetStockItem", soap.Map{})
	api, err := New(context.Background(), testToken, InventoryEndpoint,
		WithTransport(m), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = api.Call(context.Background(), "GetStockItem", soap.Params{
		{Name: TokenParam, Value: "forged"},
		{Name: "filter", Value: "x"},
	})
	require.NoError(t, err)

	call := m.lastCall(t)
	assert.Equal(t, soap.Params{
		{Name: TokenParam, Value: testToken},
		{Name: "filter", Value: "x"},
	}, call.params)
	assert.Equal(t, 1, logs.FilterMessage("caller token parameter ignored").Len())
}

func TestCall_ReturnsResultUnchanged(t *testing.T) {
	result := soap.Map{
		"IsError":    "false",
		"StockItems": soap.Map{"StockItem": soap.Map{"SKU": "ABC"}},
	}
	m := &mockTransport{}
	m.respondWith("GetStockItem", result)
	api := newTestAPI(t, m)

	got, err := api.Call(context.Background(), "GetStockItem", nil)
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestCall_RemoteError(t *testing.T) {
	tests := []struct {
		name    string
		isError interface{}
	}{
		{name: "text flag", isError: "true"},
		{name: "capitalised text flag", isError: "True"},
		{name: "bool flag", isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockTransport{}
			m.respondWith("ChangeStockLevel", soap.Map{"IsError": tt.isError, "Error": "X"})
			api := newTestAPI(t, m)

			got, err := api.Call(context.Background(), "ChangeStockLevel", nil)
			assert.Nil(t, got)

			var remoteErr *RemoteError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, "X", remoteErr.Message)
			assert.Equal(t, "ChangeStockLevel", remoteErr.Operation)
			assert.False(t, errors.Is(err, ErrInvalidResponse))
		})
	}
}

func TestCall_NotAnError(t *testing.T) {
	m := &mockTransport{}
	m.respondWith("ChangeStockLevel", soap.Map{"IsError": "false", "Error": "stale"})
	api := newTestAPI(t, m)

	got, err := api.Call(context.Background(), "ChangeStockLevel", nil)
	require.NoError(t, err)
	assert.Equal(t, "stale", got.String("Error"))
}

func TestCall_InvalidResponse(t *testing.T) {
	tests := []struct {
		name   string
		result *soap.CallResult
	}{
		{name: "no result", result: nil},
		{name: "text body", result: &soap.CallResult{Body: "oops"}},
		{name: "nil body", result: &soap.CallResult{}},
		{name: "result missing", result: &soap.CallResult{Body: soap.Map{"OtherResult": soap.Map{}}}},
		{name: "result is text", result: &soap.CallResult{Body: soap.Map{"GetStockItemResult": "nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockTransport{result: tt.result}
			api := newTestAPI(t, m)

			got, err := api.Call(context.Background(), "GetStockItem", nil)
			assert.Nil(t, got)

			var transportErr *TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, "GetStockItem", transportErr.Operation)
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.Contains(t, err.Error(), "invalid response from transport")
		})
	}
}

func TestCall_EmptyResultElement(t *testing.T) {
	m := &mockTransport{}
	m.respondWith("DeleteStockItem", "")
	api := newTestAPI(t, m)

	got, err := api.Call(context.Background(), "DeleteStockItem", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCall_TransportFailure(t *testing.T) {
	cause := errors.New("connection reset")
	m := &mockTransport{err: cause}
	api := newTestAPI(t, m)

	_, err := api.Call(context.Background(), "GetStockItem", nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidResponse)
}

func TestCall_HTTPFailure(t *testing.T) {
	m := &mockTransport{err: &soap.HTTPError{StatusCode: http.StatusBadGateway}}
	api := newTestAPI(t, m)

	_, err := api.Call(context.Background(), "GetStockItem", nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "GetStockItem", transportErr.Operation)

	var httpErr *soap.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.NotErrorIs(t, err, ErrInvalidResponse)
	assert.NotErrorIs(t, err, ErrEndpointUnreachable)
}

func TestCall_SOAPFault(t *testing.T) {
	m := &mockTransport{err: &soap.SOAPFault{Code: "soap:Server", String: "Token is invalid"}}
	api := newTestAPI(t, m)

	_, err := api.Call(context.Background(), "GetStockItem", nil)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "Token is invalid", remoteErr.Message)
}

func TestCall_Diagnostics(t *testing.T) {
	m := &mockTransport{}
	api := newTestAPI(t, m)

	assert.Nil(t, api.LastCall())
	assert.Empty(t, api.Request())
	assert.Empty(t, api.Response())
	assert.Empty(t, api.Debug())

	m.respondWith("GetStockItem", soap.Map{"IsError": "true", "Error": "boom"})
	_, err := api.Call(context.Background(), "GetStockItem", nil)
	require.Error(t, err)

	assert.Equal(t, "<request/>", api.Request())
	assert.Equal(t, "<response/>", api.Response())
	assert.Contains(t, api.Debug(), "operation: GetStockItem")
	assert.Same(t, m.result, api.LastCall())
}

// ---------------------------------------------------------------------------
// End-to-end over HTTP
// ---------------------------------------------------------------------------

const inventoryWSDL = `<?xml version="1.0" encoding="utf-8"?>
<wsdl:definitions xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/" xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/" targetNamespace="http://api.linnlive.com/inventory">
  <wsdl:binding name="InventorySoap" type="tns:InventorySoap">
    <wsdl:operation name="GetStockItem">
      <soap:operation soapAction="http://api.linnlive.com/inventory/GetStockItem" style="document" />
    </wsdl:operation>
  </wsdl:binding>
  <wsdl:service name="Inventory">
    <wsdl:port name="InventorySoap" binding="tns:InventorySoap">
      <soap:address location="%s/inventory.asmx" />
    </wsdl:port>
  </wsdl:service>
</wsdl:definitions>`

const stockItemResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetStockItemResponse xmlns="http://api.linnlive.com/inventory">
      <GetStockItemResult>
        <IsError>false</IsError>
        <StockItems>
          <StockItem>
            <pkStockItemId>6f1c2a54-1d2b-4d8e-9a11-3b1ac0f2e7d1</pkStockItemId>
            <SKU>ABC-1</SKU>
          </StockItem>
        </StockItems>
      </GetStockItemResult>
    </GetStockItemResponse>
  </soap:Body>
</soap:Envelope>`

// serveInventory starts a fake inventory service. The returned func reports
// the body of the last POST.
func serveInventory(t *testing.T) (*httptest.Server, func() string) {
	t.Helper()
	var (
		mu          sync.Mutex
		requestBody string
		server      *httptest.Server
	)
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = fmt.Fprintf(w, inventoryWSDL, server.URL)
			return
		}
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		requestBody = string(data)
		mu.Unlock()
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = io.WriteString(w, stockItemResponse)
	}))
	t.Cleanup(server.Close)

	return server, func() string {
		mu.Lock()
		defer mu.Unlock()
		return requestBody
	}
}

func TestInventoryAPI_OverHTTP(t *testing.T) {
	server, lastBody := serveInventory(t)

	inventory, err := NewInventoryAPI(context.Background(), testToken, WithWSDL(server.URL+"/inventory.asmx?wsdl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GetStockItem"}, inventory.Operations())

	item, err := inventory.GetStockItemBySKU(context.Background(), "ABC-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "ABC-1", item.String("SKU"))

	requestBody := lastBody()
	assert.Contains(t, requestBody, "<Token>"+testToken+"</Token><filter><SKU>ABC-1</SKU><IsSetSKU>true</IsSetSKU></filter>")
	assert.Equal(t, requestBody, inventory.Request())
	assert.Equal(t, stockItemResponse, inventory.Response())
	assert.Contains(t, inventory.Debug(), "status: 200")

	// not declared by the WSDL, so nothing is sent
	err = inventory.DeleteStockItem(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, soap.ErrUnknownOperation)
}

func TestInventoryAPI_SignedOverHTTP(t *testing.T) {
	server, lastBody := serveInventory(t)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	inventory, err := NewInventoryAPI(context.Background(), testToken,
		WithWSDL(server.URL+"/inventory.asmx?wsdl"),
		WithSOAPOptions(soap.WithWSSSigningKey(key, "Q0VSVA==")))
	require.NoError(t, err)

	item, err := inventory.GetStockItemBySKU(context.Background(), "ABC-1")
	require.NoError(t, err)
	require.NotNil(t, item)

	requestBody := lastBody()
	assert.Contains(t, requestBody, ">Q0VSVA==</wsse:BinarySecurityToken>")
	assert.Contains(t, requestBody, "<SignatureValue>")
	assert.Contains(t, requestBody, "<Token>"+testToken+"</Token>")
}
