package domain

// ExtractionStatus represents the lifecycle of a submitted extraction.
type ExtractionStatus string

const (
	ExtractionStatusQueued     ExtractionStatus = "queued"
	ExtractionStatusProcessing ExtractionStatus = "processing"
	ExtractionStatusCompleted  ExtractionStatus = "completed"
	ExtractionStatusFailed     ExtractionStatus = "failed"
)

// ExtractionSource records which surface submitted the text.
type ExtractionSource string

const (
	ExtractionSourceAPI ExtractionSource = "api"
	ExtractionSourceCLI ExtractionSource = "cli"
)

// ValidationStatus summarizes post-extraction validation.
type ValidationStatus string

const (
	ValidationStatusPending ValidationStatus = "pending"
	ValidationStatusValid   ValidationStatus = "valid"
	ValidationStatusWarning ValidationStatus = "warning"
	ValidationStatusInvalid ValidationStatus = "invalid"
)

// ValidationSeverity determines how a failed rule affects the validation status.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// ValidationRuleType groups validation rules by the kind of check they perform.
type ValidationRuleType string

const (
	ValidationRuleRequired   ValidationRuleType = "required"
	ValidationRuleRegex      ValidationRuleType = "regex"
	ValidationRuleSumCheck   ValidationRuleType = "sum_check"
	ValidationRuleCrossField ValidationRuleType = "cross_field"
	ValidationRuleCustom     ValidationRuleType = "custom"
)

// FieldValidationStatus is the per-field outcome derived from validation results.
type FieldValidationStatus string

const (
	FieldStatusValid   FieldValidationStatus = "valid"
	FieldStatusUnsure  FieldValidationStatus = "unsure"
	FieldStatusInvalid FieldValidationStatus = "invalid"
)

// ParserMode selects how the document parser chain is assembled.
type ParserMode string

const (
	ParserModeRules    ParserMode = "rules"
	ParserModeFallback ParserMode = "fallback"
	ParserModeMerge    ParserMode = "merge"
)
