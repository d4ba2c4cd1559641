package model

// RawRecord is a single row as read from an export, field name to raw
// string value. Row order in the input sequence is significant: duplicate
// deal ids are resolved in favor of the later row.
type RawRecord map[string]string

// Reason identifies why a raw row was rejected during normalization.
type Reason string

// Quarantine reason codes.
const (
	ReasonMissingRequiredField Reason = "missing_required_field"
	ReasonInvalidStage         Reason = "invalid_stage"
	ReasonInvalidDateOrder     Reason = "invalid_date_order"
	ReasonTypeCoercionFailure  Reason = "type_coercion_failure"
	ReasonDuplicateID          Reason = "duplicate_id"
	ReasonDanglingReference    Reason = "dangling_reference"
)

// QuarantinedRecord is a rejected raw row kept for reporting. Quarantined
// rows never participate in metric computation.
type QuarantinedRecord struct {
	Row    RawRecord
	Field  string // canonical field that failed, empty for row-level failures
	Reason Reason
}
