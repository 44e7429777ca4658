package document_test

import (
	"docex/internal/domain"
	"docex/internal/validator/document"
)

// validDocument returns a record that passes every built-in rule.
func validDocument() *domain.DocumentRecord {
	d := domain.NewDocumentRecord()
	d.DocumentType = domain.DocumentTypeInvoice
	d.DocumentNumber = "INV-2025-001"
	d.Date = "15/03/2025"
	d.Issuer = domain.PartyRecord{
		CompanyName:    "ACME SUPPLIES PVT LTD",
		PostalCode:     "560001",
		Email:          "billing@acme.in",
		TaxID:          "29ABCDE1234F1Z5",
		SecondaryTaxID: "ABCDE1234F",
	}
	d.Receiver = domain.PartyRecord{
		CompanyName: "BETA TRADERS LIMITED",
		TaxID:       "29PQRST5678K1Z2",
	}
	d.Items = []domain.LineItem{
		{ItemCode: "1001", Description: "1001 Widget 600.00", Amount: "600.00"},
		{ItemCode: "1002", Description: "1002 Gadget 400.00", Amount: "400.00"},
	}
	d.Subtotal = "1,000.00"
	d.SetTax(domain.TaxCGST, "90.00")
	d.SetTax(domain.TaxSGST, "90.00")
	d.TotalAmount = "1,180.00"
	return &d
}

type rule interface {
	RuleKey() string
}

func find[T rule](vs []T, key string) T {
	for _, v := range vs {
		if v.RuleKey() == key {
			return v
		}
	}
	var zero T
	return zero
}

func builtin(key string) *document.BuiltinValidator {
	return find(document.AllBuiltinValidators(), key)
}
