package soap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/beevik/etree"
)

// ErrInvalidWSDL is returned when a fetched document is not a WSDL 1.1
// definitions element.
var ErrInvalidWSDL = errors.New("soap: document is not a WSDL definition")

// Definitions is the part of a WSDL document the client needs.
type Definitions struct {
	TargetNamespace string
	Services        []Service
	Operations      []Operation
}

type Service struct {
	Name  string
	Ports []Port
}

type Port struct {
	Name    string
	Binding string
	Address string
}

// Operation is a binding operation. Operations declared by several
// bindings (soap and soap12) are listed once, first binding wins.
type Operation struct {
	Name       string
	Binding    string
	SOAPAction string
}

// Operation looks an operation up by name.
func (d *Definitions) Operation(name string) (Operation, bool) {
	for _, op := range d.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Address returns the first port address declared by any service.
func (d *Definitions) Address() string {
	for _, svc := range d.Services {
		for _, port := range svc.Ports {
			if port.Address != "" {
				return port.Address
			}
		}
	}
	return ""
}

// LoadWSDL fetches and parses the WSDL at url.
func LoadWSDL(ctx context.Context, client HTTPClient, url string) (*Definitions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read wsdl: %w", err)
	}
	if res.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: res.StatusCode, ResponseBody: data}
	}
	return ParseWSDL(data)
}

// ParseWSDL parses a WSDL 1.1 document.
func ParseWSDL(data []byte) (*Definitions, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWSDL, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "definitions" {
		return nil, ErrInvalidWSDL
	}

	defs := &Definitions{
		TargetNamespace: root.SelectAttrValue("targetNamespace", ""),
	}
	seen := make(map[string]bool)
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "service":
			defs.Services = append(defs.Services, parseService(el))
		case "binding":
			binding := el.SelectAttrValue("name", "")
			for _, opEl := range el.ChildElements() {
				if opEl.Tag != "operation" {
					continue
				}
				name := opEl.SelectAttrValue("name", "")
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				op := Operation{Name: name, Binding: binding}
				if soapOp := childElement(opEl, "operation"); soapOp != nil {
					op.SOAPAction = soapOp.SelectAttrValue("soapAction", "")
				}
				defs.Operations = append(defs.Operations, op)
			}
		}
	}
	return defs, nil
}

func parseService(el *etree.Element) Service {
	svc := Service{Name: el.SelectAttrValue("name", "")}
	for _, portEl := range el.ChildElements() {
		if portEl.Tag != "port" {
			continue
		}
		port := Port{
			Name:    portEl.SelectAttrValue("name", ""),
			Binding: portEl.SelectAttrValue("binding", ""),
		}
		if addr := childElement(portEl, "address"); addr != nil {
			port.Address = addr.SelectAttrValue("location", "")
		}
		svc.Ports = append(svc.Ports, port)
	}
	return svc
}
