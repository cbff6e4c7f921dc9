package linnworks

import (
	"errors"
	"time"
)

// Endpoint identifies the WSDL of one Linnworks service.
type Endpoint struct {
	Name string
	WSDL string
}

// Endpoints of the LinnLive SOAP API. Purchase orders are served from the
// order service.
var (
	InventoryEndpoint     = Endpoint{Name: "inventory", WSDL: "http://api.linnlive.com/inventory.asmx?wsdl"}
	OrderEndpoint         = Endpoint{Name: "order", WSDL: "http://api.linnlive.com/order.asmx?wsdl"}
	GenericEndpoint       = Endpoint{Name: "generic", WSDL: "http://api.linnlive.com/generic.asmx?wsdl"}
	PurchaseOrderEndpoint = Endpoint{Name: "purchaseorder", WSDL: "http://api.linnlive.com/order.asmx?wsdl"}
)

// TokenParam is the parameter the credential is sent under.
const TokenParam = "Token"

const defaultTimeout = 30 * time.Second

// Errors for client configuration
var (
	ErrMissingToken = errors.New("linnworks: token is required")
	ErrMissingWSDL  = errors.New("linnworks: endpoint WSDL is required")
)

// Config holds what a client needs before it can connect.
type Config struct {
	// Token is the Linnworks API token sent with every call
	Token string
	// Endpoint is the service the client is bound to
	Endpoint Endpoint
	// Timeout bounds each HTTP request, including the WSDL download
	Timeout time.Duration
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.Endpoint.WSDL == "" {
		return ErrMissingWSDL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}
