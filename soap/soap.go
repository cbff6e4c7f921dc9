package soap

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// const SOAPMIMEType = "application/soap+xml; charset=utf-8"
const SOAPMIMEType = "text/xml; charset=utf-8"

const (
	XmlNsSoapEnv string = "http://schemas.xmlsoap.org/soap/envelope/"
	XmlNsXsi     string = "http://www.w3.org/2001/XMLSchema-instance"
	XmlNsXsd     string = "http://www.w3.org/2001/XMLSchema"
)

// ErrUnknownOperation is returned when the loaded WSDL does not declare the
// requested operation. Nothing is sent in that case.
var ErrUnknownOperation = errors.New("soap: operation not declared by WSDL")

type SOAPEnvelope struct {
	XMLName xml.Name `xml:"SOAP-ENV:Envelope"`
	XmlNS   string   `xml:"xmlns:SOAP-ENV,attr"`
	XmlNSI  string   `xml:"xmlns:xsi,attr,omitempty"`
	XmlNSD  string   `xml:"xmlns:xsd,attr,omitempty"`

	Header *SOAPHeader
	Body   SOAPBody
}

type SOAPHeader struct {
	XMLName xml.Name `xml:"SOAP-ENV:Header"`

	Headers []interface{}
}

type SOAPBody struct {
	XMLName xml.Name `xml:"SOAP-ENV:Body"`

	// XmlNS re-declares the envelope prefix while the body is canonicalised
	// on its own for signing.
	XmlNS string `xml:"xmlns:SOAP-ENV,attr,omitempty"`
	// XMLNSWsu is the SOAP WS-Security utility namespace.
	XMLNSWsu string `xml:"xmlns:wsu,attr,omitempty"`
	// ID is a body ID used during WS-Security signing.
	ID string `xml:"wsu:Id,attr,omitempty"`

	Content interface{} `xml:",omitempty"`
}

// SOAPFault is a SOAP 1.1 or 1.2 fault returned in place of the body content.
type SOAPFault struct {
	Code   string
	String string
	Actor  string
	Detail interface{}
}

func (f *SOAPFault) Error() string {
	if f.String != "" {
		return f.String
	}
	return "soap fault: " + f.Code
}

// HTTPError is returned whenever the HTTP request to the server fails
type HTTPError struct {
	//StatusCode is the status code returned in the HTTP response
	StatusCode int
	//ResponseBody contains the body returned in the HTTP response
	ResponseBody []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP Status %d: %s", e.StatusCode, string(e.ResponseBody))
}

type basicAuth struct {
	Login    string
	Password string
}

type options struct {
	tlsCfg           *tls.Config
	auth             *basicAuth
	timeout          time.Duration
	contimeout       time.Duration
	tlshshaketimeout time.Duration
	client           HTTPClient
	userAgent        string
	httpHeaders      map[string]string
	namespace        string
	logger           *zap.Logger
	wssKey           *rsa.PrivateKey
	wssCertB64       string
}

var defaultOptions = options{
	timeout:          time.Duration(30 * time.Second),
	contimeout:       time.Duration(90 * time.Second),
	tlshshaketimeout: time.Duration(15 * time.Second),
	userAgent:        "linnworks-soap/0.1",
}

// A Option sets options such as credentials, tls, etc.
type Option func(*options)

// WithHTTPClient is an Option to set the HTTP client to use
// This cannot be used with WithTLSHandshakeTimeout, WithTLS,
// WithTimeout options
func WithHTTPClient(c HTTPClient) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithTLSHandshakeTimeout is an Option to set default tls handshake timeout
// This option cannot be used with WithHTTPClient
func WithTLSHandshakeTimeout(t time.Duration) Option {
	return func(o *options) {
		o.tlshshaketimeout = t
	}
}

// WithRequestTimeout is an Option to set default end-end connection timeout
// This option cannot be used with WithHTTPClient
func WithRequestTimeout(t time.Duration) Option {
	return func(o *options) {
		o.contimeout = t
	}
}

// WithBasicAuth is an Option to set BasicAuth
func WithBasicAuth(login, password string) Option {
	return func(o *options) {
		o.auth = &basicAuth{Login: login, Password: password}
	}
}

// WithTLS is an Option to set tls config
// This option cannot be used with WithHTTPClient
func WithTLS(tls *tls.Config) Option {
	return func(o *options) {
		o.tlsCfg = tls
	}
}

// WithTimeout is an Option to set default HTTP dial timeout
func WithTimeout(t time.Duration) Option {
	return func(o *options) {
		o.timeout = t
	}
}

// WithUserAgent is an Option to set User-Agent header value
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithHTTPHeaders is an Option to set global HTTP headers for all requests
func WithHTTPHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.httpHeaders = headers
	}
}

// WithNamespace sets the namespace of the operation element. It is only
// used when no WSDL supplies a target namespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithWSSSigningKey signs every request body with key and attaches the
// base64 DER certificate as a WS-Security BinarySecurityToken.
func WithWSSSigningKey(key *rsa.PrivateKey, certBlobBase64 string) Option {
	return func(o *options) {
		o.wssKey = key
		o.wssCertB64 = certBlobBase64
	}
}

// WithLogger is an Option to set the logger that receives call traces.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeDefaultClient(opts *options) HTTPClient {
	tr := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: opts.tlsCfg,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			d := net.Dialer{Timeout: opts.timeout}
			return d.DialContext(ctx, network, addr)
		},
		TLSHandshakeTimeout:   opts.tlshshaketimeout,
		ExpectContinueTimeout: time.Second * 2,
	}
	return &http.Client{
		Timeout:   opts.contimeout,
		Transport: tr,
	}
}

func buildOptions(opt []Option) *options {
	opts := defaultOptions
	for _, o := range opt {
		o(&opts)
	}
	if opts.client == nil {
		opts.client = makeDefaultClient(&opts)
	}
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
	return &opts
}

// Client is soap client
type Client struct {
	url       string
	namespace string
	opts      *options
	defs      *Definitions
	headers   []interface{}

	wssPrivateKey  *rsa.PrivateKey
	wssCertBlobB64 string
}

// HTTPClient is a client which can make HTTP requests
// An example implementation is net/http.Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient creates new SOAP client instance posting to the given endpoint
// address. Any operation name is accepted.
func NewClient(url string, opt ...Option) *Client {
	opts := buildOptions(opt)
	return &Client{
		url:            url,
		namespace:      opts.namespace,
		opts:           opts,
		wssPrivateKey:  opts.wssKey,
		wssCertBlobB64: opts.wssCertB64,
	}
}

// NewClientFromWSDL downloads and parses the WSDL at wsdlURL and returns a
// client bound to the service address it declares. Only operations declared
// by the WSDL can be called.
func NewClientFromWSDL(ctx context.Context, wsdlURL string, opt ...Option) (*Client, error) {
	opts := buildOptions(opt)
	defs, err := LoadWSDL(ctx, opts.client, wsdlURL)
	if err != nil {
		return nil, err
	}

	address := defs.Address()
	if address == "" {
		address = strings.SplitN(wsdlURL, "?", 2)[0]
	}
	namespace := defs.TargetNamespace
	if namespace == "" {
		namespace = opts.namespace
	}

	opts.logger.Debug("wsdl loaded",
		zap.String("wsdl", wsdlURL),
		zap.String("address", address),
		zap.Int("operations", len(defs.Operations)))

	return &Client{
		url:            address,
		namespace:      namespace,
		opts:           opts,
		defs:           defs,
		wssPrivateKey:  opts.wssKey,
		wssCertBlobB64: opts.wssCertB64,
	}, nil
}

// URL returns the address requests are posted to.
func (s *Client) URL() string {
	return s.url
}

// Operations lists the operations declared by the WSDL, or nil when the
// client was not built from one.
func (s *Client) Operations() []string {
	if s.defs == nil {
		return nil
	}
	names := make([]string, 0, len(s.defs.Operations))
	for _, op := range s.defs.Operations {
		names = append(names, op.Name)
	}
	return names
}

func (s *Client) SetWSSHeaderSigningKey(wssPrivateKey *rsa.PrivateKey, wssCertBlobBase64 string) {
	s.wssPrivateKey = wssPrivateKey
	s.wssCertBlobB64 = wssCertBlobBase64
}

// AddHeader adds envelope header
// For correct behavior, every header must contain a `XMLName` field.
func (s *Client) AddHeader(header interface{}) {
	s.headers = append(s.headers, header)
}

// SetHeaders sets envelope headers, overwriting any existing headers.
// For correct behavior, every header must contain a `XMLName` field.
func (s *Client) SetHeaders(headers ...interface{}) {
	s.headers = headers
}

// Call performs HTTP POST request.
func (s *Client) Call(operation string, params Params) (*CallResult, error) {
	return s.CallContext(context.Background(), operation, params)
}

// CallContext invokes operation with params and decodes the response body.
// The returned CallResult is non-nil whenever a request was sent, even on
// error, so the raw exchange can be inspected.
// Note that if the server returns a status code >= 400 without a SOAP fault,
// a HTTPError will be returned.
func (s *Client) CallContext(ctx context.Context, operation string, params Params) (*CallResult, error) {
	soapAction, err := s.soapAction(operation)
	if err != nil {
		return nil, err
	}

	envelope := SOAPEnvelope{
		XmlNS:  XmlNsSoapEnv,
		XmlNSI: XmlNsXsi,
		XmlNSD: XmlNsXsd,
	}
	envelope.Body.Content = &operationElement{
		name:      operation,
		namespace: s.namespace,
		params:    params,
	}

	soapHeaders := make([]interface{}, 0, 1+len(s.headers))
	if s.wssPrivateKey != nil {
		secHeader, err := s.makeWSSESecurityHeader(&envelope)
		if err != nil {
			return nil, fmt.Errorf("sign envelope failed: %w", err)
		}
		soapHeaders = append(soapHeaders, secHeader)
	}
	soapHeaders = append(soapHeaders, s.headers...)
	if len(soapHeaders) > 0 {
		envelope.Header = &SOAPHeader{
			Headers: soapHeaders,
		}
	}

	reqBody, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope failed: %w", err)
	}

	invokeResult := CallResult{
		Operation:  operation,
		RequestURL: s.url,
		RequestContent: CallContent{
			Body: string(reqBody),
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	if s.opts.auth != nil {
		req.SetBasicAuth(s.opts.auth.Login, s.opts.auth.Password)
	}

	req.Header.Add("Content-Type", SOAPMIMEType)
	req.Header.Add("SOAPAction", `"`+soapAction+`"`)
	req.Header.Set("User-Agent", s.opts.userAgent)
	req.Header.Set("Accept", "*/*")
	for k, v := range s.opts.httpHeaders {
		req.Header.Set(k, v)
	}
	req.Close = true
	invokeResult.RequestContent.Header = req.Header.Clone()

	logger := s.opts.logger.With(zap.String("operation", operation), zap.String("url", s.url))

	invokeResult.InvokeAt = time.Now()
	res, err := s.opts.client.Do(req)
	if err != nil {
		invokeResult.ReturnAt = time.Now()
		logger.Warn("soap request failed", zap.Error(err))
		return &invokeResult, err
	}
	defer res.Body.Close()
	respBody, err := io.ReadAll(res.Body)
	invokeResult.ReturnAt = time.Now()
	invokeResult.ResponseContent = CallContent{
		Header: res.Header.Clone(),
		Body:   string(respBody),
	}
	invokeResult.StatusCode = res.StatusCode
	if err != nil {
		return &invokeResult, fmt.Errorf("cannot read all content from http body: %w", err)
	}

	body, decodeErr := decodeEnvelope(respBody)
	if res.StatusCode >= 400 {
		// .asmx services report faults with status 500
		var fault *SOAPFault
		if errors.As(decodeErr, &fault) {
			logger.Warn("soap fault", zap.Int("status", res.StatusCode), zap.String("fault", fault.Error()))
			return &invokeResult, fault
		}
		logger.Warn("soap http error", zap.Int("status", res.StatusCode))
		return &invokeResult, &HTTPError{
			StatusCode:   res.StatusCode,
			ResponseBody: respBody,
		}
	}
	if decodeErr != nil {
		logger.Warn("soap response not decoded", zap.Error(decodeErr))
		return &invokeResult, decodeErr
	}
	invokeResult.Body = body
	invokeResult.DecodedAt = time.Now()

	logger.Debug("soap call",
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", invokeResult.ReturnAt.Sub(invokeResult.InvokeAt)))

	return &invokeResult, nil
}

func (s *Client) soapAction(operation string) (string, error) {
	if s.defs != nil {
		op, ok := s.defs.Operation(operation)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownOperation, operation)
		}
		if op.SOAPAction != "" {
			return op.SOAPAction, nil
		}
	}
	if s.namespace == "" || strings.HasSuffix(s.namespace, "/") {
		return s.namespace + operation, nil
	}
	return s.namespace + "/" + operation, nil
}
