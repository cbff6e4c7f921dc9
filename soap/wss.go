package soap

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"

	"github.com/google/uuid"
	"github.com/ucarion/c14n"
)

const (
	// Predefined WSS namespaces to be used in
	WssNsWSSE           string = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	WssNsWSU            string = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
	WssNsType           string = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText"
	WssEncodeTypeBase64        = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-soap-message-security-1.0#Base64Binary"
	WssValueTypeX509v3         = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-x509-token-profile-1.0#X509v3"
	NsXMLDSig                  = "http://www.w3.org/2000/09/xmldsig#"
	NsXMLExcC14N               = "http://www.w3.org/2001/10/xml-exc-c14n#"
)

type WSSSecurityHeader struct {
	XMLName   xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ wsse:Security"`
	XmlNSWsse string   `xml:"xmlns:wsse,attr"`

	MustUnderstand string `xml:"mustUnderstand,attr,omitempty"`

	Token *WSSUsernameToken `xml:",omitempty"`
}

type WSSUsernameToken struct {
	XMLName   xml.Name `xml:"wsse:UsernameToken"`
	XmlNSWsu  string   `xml:"xmlns:wsu,attr"`
	XmlNSWsse string   `xml:"xmlns:wsse,attr"`

	Id string `xml:"wsu:Id,attr,omitempty"`

	Username *WSSUsername `xml:",omitempty"`
	Password *WSSPassword `xml:",omitempty"`
}

type WSSUsername struct {
	XMLName   xml.Name `xml:"wsse:Username"`
	XmlNSWsse string   `xml:"xmlns:wsse,attr"`

	Data string `xml:",chardata"`
}

type WSSPassword struct {
	XMLName   xml.Name `xml:"wsse:Password"`
	XmlNSWsse string   `xml:"xmlns:wsse,attr"`
	XmlNSType string   `xml:"Type,attr"`

	Data string `xml:",chardata"`
}

// NewWSSSecurityHeader creates WSSSecurityHeader instance
func NewWSSSecurityHeader(user, pass, tokenID, mustUnderstand string) *WSSSecurityHeader {
	hdr := &WSSSecurityHeader{XmlNSWsse: WssNsWSSE, MustUnderstand: mustUnderstand}
	hdr.Token = &WSSUsernameToken{XmlNSWsu: WssNsWSU, XmlNSWsse: WssNsWSSE, Id: tokenID}
	hdr.Token.Username = &WSSUsername{XmlNSWsse: WssNsWSSE, Data: user}
	hdr.Token.Password = &WSSPassword{XmlNSWsse: WssNsWSSE, XmlNSType: WssNsType, Data: pass}
	return hdr
}

type binarySecurityToken struct {
	XMLName xml.Name `xml:"wsse:BinarySecurityToken"`
	XMLNS   string   `xml:"xmlns:wsu,attr"`

	WsuID string `xml:"wsu:Id,attr"`

	EncodingType string `xml:"EncodingType,attr"`
	ValueType    string `xml:"ValueType,attr"`

	Value string `xml:",chardata"`
}

type inclusiveNamespaces struct {
	XMLName    xml.Name `xml:"http://www.w3.org/2001/10/xml-exc-c14n# InclusiveNamespaces"`
	PrefixList string   `xml:"PrefixList,attr"`
}

type canonicalizationMethod struct {
	XMLName             xml.Name `xml:"CanonicalizationMethod"`
	Algorithm           string   `xml:"Algorithm,attr"`
	InclusiveNamespaces inclusiveNamespaces
}

type algorithm struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type transforms struct {
	XMLName   xml.Name  `xml:"Transforms"`
	Transform algorithm `xml:"Transform"`
}

type signatureReference struct {
	XMLName xml.Name `xml:"Reference"`
	URI     string   `xml:"URI,attr"`

	Transforms   transforms
	DigestMethod algorithm `xml:"DigestMethod"`
	DigestValue  string    `xml:"DigestValue"`
}

type signedInfo struct {
	XMLName xml.Name `xml:"SignedInfo"`
	XMLNS   string   `xml:"xmlns,attr"`

	CanonicalizationMethod canonicalizationMethod
	SignatureMethod        algorithm `xml:"SignatureMethod"`
	Reference              signatureReference
}

type strReference struct {
	XMLName   xml.Name `xml:"wsse:Reference"`
	ValueType string   `xml:"ValueType,attr"`
	URI       string   `xml:"URI,attr"`
}

type securityTokenReference struct {
	XMLName xml.Name `xml:"wsse:SecurityTokenReference"`
	XMLNS   string   `xml:"xmlns:wsu,attr"`

	StrID string `xml:"wsu:Id,attr"`

	Reference strReference
}

type keyInfo struct {
	XMLName xml.Name `xml:"KeyInfo"`

	KeyInfoID string `xml:"Id,attr"`

	SecurityTokenReference securityTokenReference
}

type signature struct {
	XMLName xml.Name `xml:"Signature"`
	XMLNS   string   `xml:"xmlns,attr"`

	SignedInfo     signedInfo
	SignatureValue string `xml:"SignatureValue"`
	KeyInfo        keyInfo
}

type security struct {
	XMLName xml.Name `xml:"wsse:Security"`
	XMLNS   string   `xml:"xmlns:wsse,attr"`

	SOAPMustUnderstand int `xml:"SOAP-ENV:mustUnderstand,attr"`

	BinarySecurityToken binarySecurityToken
	Signature           signature
}

// makeSecureId returns an xml:id safe identifier; the prefix keeps it from
// starting with a digit.
func makeSecureId(prefixText string) string {
	return prefixText + uuid.NewString()
}

func canonicalize(v interface{}) ([]byte, error) {
	buf, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c14n.Canonicalize(xml.NewDecoder(bytes.NewReader(buf)))
}

func (s *Client) makeWSSESecurityHeader(envelope *SOAPEnvelope) (*security, error) {
	bodyWssRefId := makeSecureId("B-")
	envelope.Body.ID = bodyWssRefId
	envelope.Body.XMLNSWsu = WssNsWSU
	envelope.Body.XmlNS = XmlNsSoapEnv

	cout, err := canonicalize(&envelope.Body)
	if err != nil {
		return nil, err
	}
	contentDigest := sha256.Sum256(cout)

	info := signedInfo{
		XMLNS: NsXMLDSig,
		CanonicalizationMethod: canonicalizationMethod{
			Algorithm: NsXMLExcC14N,
			InclusiveNamespaces: inclusiveNamespaces{
				PrefixList: "SOAP-ENV",
			},
		},
		SignatureMethod: algorithm{Algorithm: "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"},
		Reference: signatureReference{
			URI:          "#" + bodyWssRefId,
			Transforms:   transforms{Transform: algorithm{Algorithm: NsXMLExcC14N}},
			DigestMethod: algorithm{Algorithm: "http://www.w3.org/2001/04/xmlenc#sha256"},
			DigestValue:  base64.StdEncoding.EncodeToString(contentDigest[:]),
		},
	}
	if cout, err = canonicalize(info); err != nil {
		return nil, err
	}
	signedInfoDigest := sha256.Sum256(cout)
	sigValue, err := rsa.SignPKCS1v15(rand.Reader, s.wssPrivateKey, crypto.SHA256, signedInfoDigest[:])
	if err != nil {
		return nil, err
	}

	secTokenWsuRefId := makeSecureId("X509CERT-")
	return &security{
		XMLNS:              WssNsWSSE,
		SOAPMustUnderstand: 1,
		BinarySecurityToken: binarySecurityToken{
			XMLNS:        WssNsWSU,
			WsuID:        secTokenWsuRefId,
			EncodingType: WssEncodeTypeBase64,
			ValueType:    WssValueTypeX509v3,
			Value:        s.wssCertBlobB64,
		},
		Signature: signature{
			XMLNS:          NsXMLDSig,
			SignedInfo:     info,
			SignatureValue: base64.StdEncoding.EncodeToString(sigValue),
			KeyInfo: keyInfo{
				KeyInfoID: makeSecureId("KINF-"),
				SecurityTokenReference: securityTokenReference{
					XMLNS: WssNsWSU,
					StrID: makeSecureId("SECTOK-"),
					Reference: strReference{
						ValueType: WssValueTypeX509v3,
						URI:       "#" + secTokenWsuRefId,
					},
				},
			},
		},
	}, nil
}
