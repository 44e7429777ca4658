package document

import (
	"context"
	"fmt"

	"docex/internal/domain"
)

// crossFieldValidator checks relationships between different fields.
type crossFieldValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*domain.DocumentRecord) []Result
}

func (v *crossFieldValidator) RuleKey() string                     { return v.ruleKey }
func (v *crossFieldValidator) RuleName() string                    { return v.ruleName }
func (v *crossFieldValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleCrossField }
func (v *crossFieldValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *crossFieldValidator) Validate(_ context.Context, data *domain.DocumentRecord) []Result {
	return v.validate(data)
}

// CrossFieldValidators returns all cross-field validators.
func CrossFieldValidators() []*crossFieldValidator {
	return []*crossFieldValidator{
		{
			ruleKey: "xf.client.gstin_pan", ruleName: "Cross-field: Client GSTIN-PAN Match",
			severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				return gstinPANCheck("client", d.Issuer.TaxID, d.Issuer.SecondaryTaxID)
			},
		},
		{
			ruleKey: "xf.parties.different_gstin", ruleName: "Cross-field: Different Party GSTINs",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				const name = "Cross-field: Different Party GSTINs"
				if d.Issuer.TaxID == "" || d.Receiver.TaxID == "" {
					return []Result{skipped("receiver.tax_id", name, "GSTINs missing")}
				}
				passed := d.Issuer.TaxID != d.Receiver.TaxID
				msg := name + ": client and receiver have different GSTINs"
				if !passed {
					msg = name + ": client and receiver have the same GSTIN"
				}
				return []Result{{
					Passed: passed, FieldPath: "receiver.tax_id",
					ExpectedValue: "client.tax_id != receiver.tax_id",
					ActualValue:   fmt.Sprintf("client=%s, receiver=%s", d.Issuer.TaxID, d.Receiver.TaxID),
					Message:       msg,
				}}
			},
		},
		{
			ruleKey: "xf.tax_type", ruleName: "Cross-field: Tax Type",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				const name = "Cross-field: Tax Type"
				igst := d.Tax(domain.TaxIGST)
				if igst == "" {
					return []Result{skipped("igst", name, "no IGST")}
				}
				intra := d.Tax(domain.TaxCGST) != "" || d.Tax(domain.TaxSGST) != ""
				msg := name + ": IGST used without CGST/SGST"
				if intra {
					msg = name + ": IGST and CGST/SGST both present"
				}
				return []Result{{
					Passed: !intra, FieldPath: "igst",
					ExpectedValue: "IGST xor CGST+SGST",
					ActualValue:   fmt.Sprintf("cgst=%s, sgst=%s, igst=%s", d.Tax(domain.TaxCGST), d.Tax(domain.TaxSGST), igst),
					Message:       msg,
				}}
			},
		},
		{
			ruleKey: "xf.receiver.gstin_state", ruleName: "Cross-field: Client and Receiver State Codes",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				return stateTaxCheck(d)
			},
		},
	}
}

// stateTaxCheck compares the GSTIN state prefixes of both parties with the
// tax components charged: same state uses CGST+SGST, different states IGST.
func stateTaxCheck(d *domain.DocumentRecord) []Result {
	const name = "Cross-field: Client and Receiver State Codes"
	if len(d.Issuer.TaxID) < 2 || len(d.Receiver.TaxID) < 2 {
		return []Result{skipped("receiver.tax_id", name, "GSTINs missing")}
	}
	hasIGST := d.Tax(domain.TaxIGST) != ""
	hasLocal := d.Tax(domain.TaxCGST) != "" || d.Tax(domain.TaxSGST) != ""
	if !hasIGST && !hasLocal {
		return []Result{skipped("receiver.tax_id", name, "no tax components")}
	}
	sameState := d.Issuer.TaxID[:2] == d.Receiver.TaxID[:2]
	passed := (sameState && hasLocal && !hasIGST) || (!sameState && hasIGST && !hasLocal)
	expected := "IGST for interstate supply"
	if sameState {
		expected = "CGST+SGST for intrastate supply"
	}
	msg := fmt.Sprintf("%s: tax components match state codes", name)
	if !passed {
		msg = fmt.Sprintf("%s: expected %s", name, expected)
	}
	return []Result{{
		Passed: passed, FieldPath: "receiver.tax_id",
		ExpectedValue: expected,
		ActualValue:   fmt.Sprintf("client=%s, receiver=%s", d.Issuer.TaxID[:2], d.Receiver.TaxID[:2]),
		Message:       msg,
	}}
}

func gstinPANCheck(party, gstin, pan string) []Result {
	fieldPath := fmt.Sprintf("%s.secondary_tax_id", party)
	if gstin == "" || pan == "" {
		return []Result{{
			Passed: true, FieldPath: fieldPath,
			Message: fmt.Sprintf("Cross-field: %s GSTIN-PAN Match: fields missing, skipping", party),
		}}
	}
	if len(gstin) < 12 {
		return []Result{{
			Passed: false, FieldPath: fieldPath,
			ExpectedValue: fmt.Sprintf("GSTIN[2:12] == %s", pan),
			ActualValue:   gstin,
			Message:       fmt.Sprintf("Cross-field: %s GSTIN-PAN Match: GSTIN too short", party),
		}}
	}
	gstinPAN := gstin[2:12]
	passed := gstinPAN == pan
	msg := fmt.Sprintf("Cross-field: %s GSTIN-PAN Match: GSTIN contains matching PAN", party)
	if !passed {
		msg = fmt.Sprintf("Cross-field: %s GSTIN-PAN Match: GSTIN[2:12] %s does not match PAN %s", party, gstinPAN, pan)
	}
	return []Result{{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: fmt.Sprintf("GSTIN[2:12] == %s", pan),
		ActualValue:   gstinPAN, Message: msg,
	}}
}
