// Package linnworks is a client for the Linnworks (LinnLive) SOAP API.
//
// API holds the credential and the transport for one service endpoint and
// implements the shared call contract: the token is always sent first, the
// <Operation>Result element is unwrapped and results flagged with IsError
// become RemoteErrors. InventoryAPI, OrderAPI, GenericAPI and
// PurchaseOrderAPI add typed methods for each service on top of it.
package linnworks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cheyinl/linnworks-soap/soap"
)

// Transport invokes a remote operation. *soap.Client implements it.
type Transport interface {
	CallContext(ctx context.Context, operation string, params soap.Params) (*soap.CallResult, error)
}

var _ Transport = (*soap.Client)(nil)

type settings struct {
	transport Transport
	logger    *zap.Logger
	wsdl      string
	timeout   time.Duration
	soapOpts  []soap.Option
}

// An Option configures a client at construction.
type Option func(*settings)

// WithTransport replaces the SOAP client. No WSDL is fetched.
func WithTransport(t Transport) Option {
	return func(s *settings) {
		s.transport = t
	}
}

// WithLogger sets the logger for call tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithWSDL points the client at another copy of the endpoint's WSDL, such as
// a sandbox or a test server.
func WithWSDL(url string) Option {
	return func(s *settings) {
		s.wsdl = url
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithSOAPOptions passes options through to the SOAP client.
func WithSOAPOptions(opts ...soap.Option) Option {
	return func(s *settings) {
		s.soapOpts = append(s.soapOpts, opts...)
	}
}

// API is the client for one Linnworks endpoint. It is safe for concurrent use.
type API struct {
	token     string
	endpoint  Endpoint
	transport Transport
	logger    *zap.Logger

	mu   sync.RWMutex
	last *soap.CallResult
}

// New validates the configuration and connects to the endpoint. Unless a
// transport is supplied, the WSDL is downloaded now and a failure is
// returned as a TransportError matching ErrEndpointUnreachable.
func New(ctx context.Context, token string, endpoint Endpoint, opts ...Option) (*API, error) {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	if s.wsdl != "" {
		endpoint.WSDL = s.wsdl
	}

	cfg := Config{Token: token, Endpoint: endpoint, Timeout: s.timeout}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("endpoint", endpoint.Name))

	transport := s.transport
	if transport == nil {
		soapOpts := append([]soap.Option{
			soap.WithRequestTimeout(cfg.Timeout),
			soap.WithLogger(logger),
		}, s.soapOpts...)
		client, err := soap.NewClientFromWSDL(ctx, cfg.Endpoint.WSDL, soapOpts...)
		if err != nil {
			logger.Warn("cannot resolve endpoint", zap.String("wsdl", cfg.Endpoint.WSDL), zap.Error(err))
			return nil, &TransportError{
				Err: fmt.Errorf("%w: %s: %w", ErrEndpointUnreachable, cfg.Endpoint.WSDL, err),
			}
		}
		transport = client
	}

	return &API{
		token:     cfg.Token,
		endpoint:  cfg.Endpoint,
		transport: transport,
		logger:    logger,
	}, nil
}

// Endpoint returns the endpoint the client is bound to.
func (a *API) Endpoint() Endpoint {
	return a.endpoint
}

// Call sends operation with the token followed by params and returns the
// <operation>Result mapping. A Token entry in params is dropped.
func (a *API) Call(ctx context.Context, operation string, params soap.Params) (soap.Map, error) {
	if _, ok := params.Get(TokenParam); ok {
		a.logger.Warn("caller token parameter ignored", zap.String("operation", operation))
	}
	args := make(soap.Params, 0, len(params)+1)
	args = append(args, soap.Param{Name: TokenParam, Value: a.token})
	args = append(args, params.Without(TokenParam)...)

	start := time.Now()
	res, err := a.transport.CallContext(ctx, operation, args)
	if res != nil {
		a.mu.Lock()
		a.last = res
		a.mu.Unlock()
	}

	result, err := a.unwrap(operation, res, err)
	if err != nil {
		a.logger.Warn("linnworks call failed",
			zap.String("operation", operation),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	a.logger.Debug("linnworks call",
		zap.String("operation", operation),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (a *API) unwrap(operation string, res *soap.CallResult, err error) (soap.Map, error) {
	if err != nil {
		var fault *soap.SOAPFault
		if errors.As(err, &fault) {
			return nil, &RemoteError{Operation: operation, Message: fault.Error()}
		}
		return nil, &TransportError{Operation: operation, Err: err}
	}
	if res == nil {
		return nil, invalidResponse(operation, "no response")
	}

	body := soap.AsMap(res.Body)
	if body == nil {
		return nil, invalidResponse(operation, "response body is %T, not a mapping", res.Body)
	}
	raw, ok := body[operation+"Result"]
	if !ok {
		return nil, invalidResponse(operation, "%sResult missing", operation)
	}

	result := soap.AsMap(raw)
	if result == nil {
		// void operations answer with an empty result element
		if soap.IsEmpty(raw) {
			return soap.Map{}, nil
		}
		return nil, invalidResponse(operation, "%sResult is %T, not a mapping", operation, raw)
	}
	if result.Bool("IsError") {
		return nil, &RemoteError{Operation: operation, Message: result.String("Error")}
	}
	return result, nil
}

// LastCall returns the most recent exchange, or nil before the first call.
func (a *API) LastCall() *soap.CallResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Request returns the raw request envelope of the last call.
func (a *API) Request() string {
	if last := a.LastCall(); last != nil {
		return last.RequestContent.Body
	}
	return ""
}

// Response returns the raw response envelope of the last call.
func (a *API) Response() string {
	if last := a.LastCall(); last != nil {
		return last.ResponseContent.Body
	}
	return ""
}

// Debug returns the transport trace of the last call.
func (a *API) Debug() string {
	return a.LastCall().Trace()
}

// Operations lists the operations the endpoint's WSDL declares. It is empty
// when a custom transport was supplied.
func (a *API) Operations() []string {
	if lister, ok := a.transport.(interface{ Operations() []string }); ok {
		return lister.Operations()
	}
	return nil
}
