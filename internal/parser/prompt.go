package parser

import "strings"

// BuildExtractionPrompt returns the instruction sent to an LLM provider along
// with the OCR text.
func BuildExtractionPrompt(documentType string) string {
	if strings.TrimSpace(documentType) == "" {
		documentType = "business document (invoice, purchase order or bill)"
	}
	return `You are a document data extraction assistant. The text below was produced by OCR from a ` + documentType + `. Extract its fields into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- Copy every value exactly as it appears in the text. Do not reformat dates, numbers or names and do not invent values.
- "client" is the party that issued the document; "receiver" is the bill-to party.
- "document_type" must be one of "Purchase Order", "Invoice", "Bill" or "Unknown".
- Every value is a string. Use "" for anything not present in the text.
- "items" lists every line item in the order it appears. Use [] when there are none.

Return ONLY valid JSON with no markdown formatting, no code fences and no explanation.

Return two top-level keys: "data" and "confidence".

The "data" object must follow this schema:
{
  "document_type": "", "document_number": "", "date": "",
  "client": {
    "company_name": "", "address": "", "city": "", "state": "", "postal_code": "",
    "country": "", "phone": "", "email": "", "tax_id": "", "secondary_tax_id": ""
  },
  "receiver": {
    "company_name": "", "address": "", "city": "", "state": "", "postal_code": "",
    "country": "", "phone": "", "email": "", "tax_id": ""
  },
  "items": [
    {"item_code": "", "description": "", "quantity": "", "unit": "", "rate": "", "amount": ""}
  ],
  "subtotal": "", "cgst": "", "sgst": "", "igst": "", "total_amount": ""
}

"confidence" is a single number between 0.0 and 1.0 for the whole extraction.`
}

// BuildUserContent joins the prompt and the OCR text into one message body.
func BuildUserContent(prompt, text string) string {
	return prompt + "\n\nOCR TEXT:\n<<<\n" + text + "\n>>>"
}
