package domain

import (
	"encoding/json"
	"strings"
)

// DocumentType is the kind of business document detected in the text.
type DocumentType string

const (
	DocumentTypePurchaseOrder DocumentType = "Purchase Order"
	DocumentTypeInvoice       DocumentType = "Invoice"
	DocumentTypeBill          DocumentType = "Bill"
	DocumentTypeUnknown       DocumentType = "Unknown"
)

// ParseDocumentType maps a free-form label to a DocumentType, defaulting to Unknown.
func ParseDocumentType(s string) DocumentType {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "purchase order", "purchaseorder", "po":
		return DocumentTypePurchaseOrder
	case "invoice", "tax invoice":
		return DocumentTypeInvoice
	case "bill":
		return DocumentTypeBill
	default:
		return DocumentTypeUnknown
	}
}

// Named tax components carried in a DocumentRecord's tax breakdown.
const (
	TaxCGST = "cgst"
	TaxSGST = "sgst"
	TaxIGST = "igst"
)

// TaxComponents lists the tax breakdown keys in serialization order.
var TaxComponents = []string{TaxCGST, TaxSGST, TaxIGST}

// PartyRecord holds the identity of one party on the document.
// Empty fields mean "not found".
type PartyRecord struct {
	CompanyName    string `json:"company_name"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	TaxID          string `json:"tax_id"`
	SecondaryTaxID string `json:"secondary_tax_id"`
}

// IsEmpty reports whether no field of the party was resolved.
func (p PartyRecord) IsEmpty() bool {
	return p == PartyRecord{}
}

// receiverJSON is the wire form of the receiver party, which has no secondary tax id.
type receiverJSON struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	TaxID       string `json:"tax_id"`
}

// LineItem is one row of the goods/services table.
type LineItem struct {
	ItemCode    string `json:"item_code"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

// DocumentRecord is the structured result of one extraction.
type DocumentRecord struct {
	DocumentType   DocumentType
	DocumentNumber string
	Date           string
	Issuer         PartyRecord
	Receiver       PartyRecord
	Items          []LineItem
	Subtotal       string
	TaxBreakdown   map[string]string
	TotalAmount    string
}

// NewDocumentRecord returns a record with every field at its empty default.
func NewDocumentRecord() DocumentRecord {
	return DocumentRecord{
		DocumentType: DocumentTypeUnknown,
		Items:        []LineItem{},
		TaxBreakdown: map[string]string{},
	}
}

// Tax returns the named tax component, or "" when it was not found.
func (d *DocumentRecord) Tax(name string) string {
	if d.TaxBreakdown == nil {
		return ""
	}
	return d.TaxBreakdown[name]
}

// SetTax stores a tax component. Empty values are not stored.
func (d *DocumentRecord) SetTax(name, amount string) {
	if amount == "" {
		return
	}
	if d.TaxBreakdown == nil {
		d.TaxBreakdown = map[string]string{}
	}
	d.TaxBreakdown[name] = amount
}

type documentJSON struct {
	DocumentType   DocumentType `json:"document_type"`
	DocumentNumber string       `json:"document_number"`
	Date           string       `json:"date"`
	Client         PartyRecord  `json:"client"`
	Receiver       receiverJSON `json:"receiver"`
	Items          []LineItem   `json:"items"`
	Subtotal       string       `json:"subtotal"`
	CGST           string       `json:"cgst"`
	SGST           string       `json:"sgst"`
	IGST           string       `json:"igst"`
	TotalAmount    string       `json:"total_amount"`
}

// MarshalJSON writes the flat wire form: every key present, empty strings for
// missing values, "client" for the issuer.
func (d DocumentRecord) MarshalJSON() ([]byte, error) {
	docType := d.DocumentType
	if docType == "" {
		docType = DocumentTypeUnknown
	}
	items := d.Items
	if items == nil {
		items = []LineItem{}
	}
	r := d.Receiver
	return json.Marshal(documentJSON{
		DocumentType:   docType,
		DocumentNumber: d.DocumentNumber,
		Date:           d.Date,
		Client:         d.Issuer,
		Receiver: receiverJSON{
			CompanyName: r.CompanyName,
			Address:     r.Address,
			City:        r.City,
			State:       r.State,
			PostalCode:  r.PostalCode,
			Country:     r.Country,
			Phone:       r.Phone,
			Email:       r.Email,
			TaxID:       r.TaxID,
		},
		Items:       items,
		Subtotal:    d.Subtotal,
		CGST:        d.Tax(TaxCGST),
		SGST:        d.Tax(TaxSGST),
		IGST:        d.Tax(TaxIGST),
		TotalAmount: d.TotalAmount,
	})
}

// UnmarshalJSON reads the wire form written by MarshalJSON. Missing or null
// values decode to the empty defaults.
func (d *DocumentRecord) UnmarshalJSON(data []byte) error {
	var w documentJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := NewDocumentRecord()
	if w.DocumentType != "" {
		out.DocumentType = w.DocumentType
	}
	out.DocumentNumber = w.DocumentNumber
	out.Date = w.Date
	out.Issuer = w.Client
	out.Receiver = PartyRecord{
		CompanyName: w.Receiver.CompanyName,
		Address:     w.Receiver.Address,
		City:        w.Receiver.City,
		State:       w.Receiver.State,
		PostalCode:  w.Receiver.PostalCode,
		Country:     w.Receiver.Country,
		Phone:       w.Receiver.Phone,
		Email:       w.Receiver.Email,
		TaxID:       w.Receiver.TaxID,
	}
	if w.Items != nil {
		out.Items = w.Items
	}
	out.Subtotal = w.Subtotal
	out.SetTax(TaxCGST, w.CGST)
	out.SetTax(TaxSGST, w.SGST)
	out.SetTax(TaxIGST, w.IGST)
	out.TotalAmount = w.TotalAmount
	*d = out
	return nil
}

// OCRToken is one recognized token from a layout-aware OCR pass.
type OCRToken struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	BBox       [4][2]float64 `json:"bbox"`
}
