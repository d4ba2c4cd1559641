// Package normalize converts raw export rows into canonical deals and
// activities. Rows that fail validation are quarantined with a reason code
// and never abort the batch.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/internal/domain/schema"
)

// timeLayouts are tried in order when coercing date fields. Exports mix
// full timestamps and bare dates.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Result bundles the three outputs of a normalization pass. All three are
// always populated together, even when empty.
type Result struct {
	Deals      []model.Deal
	Activities []model.Activity
	Quarantine []model.QuarantinedRecord
}

// Normalizer owns canonical entity production for a run.
type Normalizer struct {
	cfg *schema.Resolved
}

// New creates a Normalizer bound to a resolved configuration.
func New(cfg *schema.Resolved) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Run normalizes deal rows and activity rows in file order. Duplicate deal
// ids resolve in favor of the later row; the earlier one is quarantined.
// Activities referencing unknown deal ids are quarantined as dangling.
func (n *Normalizer) Run(dealRows, activityRows []model.RawRecord) Result {
	res := Result{
		Deals:      make([]model.Deal, 0, len(dealRows)),
		Activities: make([]model.Activity, 0, len(activityRows)),
		Quarantine: make([]model.QuarantinedRecord, 0),
	}

	// position of a deal id within res.Deals, for later-row-wins dedupe
	byID := make(map[string]int, len(dealRows))
	rawByID := make(map[string]model.RawRecord, len(dealRows))

	for _, row := range dealRows {
		deal, q := n.normalizeDeal(row)
		if q != nil {
			res.Quarantine = append(res.Quarantine, *q)
			continue
		}
		if pos, dup := byID[deal.ID]; dup {
			res.Quarantine = append(res.Quarantine, model.QuarantinedRecord{
				Row:    rawByID[deal.ID],
				Field:  schema.FieldDealID,
				Reason: model.ReasonDuplicateID,
			})
			res.Deals[pos] = deal
			rawByID[deal.ID] = row
			continue
		}
		byID[deal.ID] = len(res.Deals)
		rawByID[deal.ID] = row
		res.Deals = append(res.Deals, deal)
	}

	for _, row := range activityRows {
		act, q := n.normalizeActivity(row)
		if q != nil {
			res.Quarantine = append(res.Quarantine, *q)
			continue
		}
		if _, known := byID[act.DealID]; !known {
			res.Quarantine = append(res.Quarantine, model.QuarantinedRecord{
				Row:    row,
				Field:  schema.FieldActivityDeal,
				Reason: model.ReasonDanglingReference,
			})
			continue
		}
		res.Activities = append(res.Activities, act)
	}

	return res
}

func (n *Normalizer) normalizeDeal(row model.RawRecord) (model.Deal, *model.QuarantinedRecord) {
	get := func(canonical string) string {
		return strings.TrimSpace(row[n.cfg.Column(canonical)])
	}
	quarantine := func(field string, reason model.Reason) (model.Deal, *model.QuarantinedRecord) {
		return model.Deal{}, &model.QuarantinedRecord{Row: row, Field: field, Reason: reason}
	}

	for _, field := range []string{
		schema.FieldDealID, schema.FieldStage, schema.FieldAmount,
		schema.FieldCreatedAt, schema.FieldUpdatedAt, schema.FieldOwner,
		schema.FieldStatus,
	} {
		if get(field) == "" {
			return quarantine(field, model.ReasonMissingRequiredField)
		}
	}

	amount, err := parseAmount(get(schema.FieldAmount))
	if err != nil {
		return quarantine(schema.FieldAmount, model.ReasonTypeCoercionFailure)
	}

	createdAt, err := parseTime(get(schema.FieldCreatedAt))
	if err != nil {
		return quarantine(schema.FieldCreatedAt, model.ReasonTypeCoercionFailure)
	}
	updatedAt, err := parseTime(get(schema.FieldUpdatedAt))
	if err != nil {
		return quarantine(schema.FieldUpdatedAt, model.ReasonTypeCoercionFailure)
	}
	if updatedAt.Before(createdAt) {
		return quarantine(schema.FieldUpdatedAt, model.ReasonInvalidDateOrder)
	}

	stage := get(schema.FieldStage)
	if _, ok := n.cfg.StageIndex(stage); !ok {
		return quarantine(schema.FieldStage, model.ReasonInvalidStage)
	}

	status, ok := model.ParseStatus(get(schema.FieldStatus))
	if !ok {
		return quarantine(schema.FieldStatus, model.ReasonTypeCoercionFailure)
	}

	var closedAt *time.Time
	if raw := get(schema.FieldClosedAt); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return quarantine(schema.FieldClosedAt, model.ReasonTypeCoercionFailure)
		}
		closedAt = &t
	}
	// Lifecycle invariant: terminal deals carry a close date at or after
	// creation, open deals carry none.
	switch {
	case status.Terminal() && closedAt == nil:
		return quarantine(schema.FieldClosedAt, model.ReasonMissingRequiredField)
	case status.Terminal() && closedAt.Before(createdAt):
		return quarantine(schema.FieldClosedAt, model.ReasonInvalidDateOrder)
	case !status.Terminal() && closedAt != nil:
		return quarantine(schema.FieldClosedAt, model.ReasonInvalidDateOrder)
	}

	return model.Deal{
		ID:         get(schema.FieldDealID),
		Name:       get(schema.FieldName),
		Stage:      stage,
		Amount:     amount,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		ClosedAt:   closedAt,
		Owner:      get(schema.FieldOwner),
		Status:     status,
		LeadSource: get(schema.FieldLeadSource),
		Email:      get(schema.FieldEmail),
		Phone:      get(schema.FieldPhone),
	}, nil
}

func (n *Normalizer) normalizeActivity(row model.RawRecord) (model.Activity, *model.QuarantinedRecord) {
	get := func(canonical string) string {
		return strings.TrimSpace(row[n.cfg.Column(canonical)])
	}

	dealID := get(schema.FieldActivityDeal)
	if dealID == "" {
		return model.Activity{}, &model.QuarantinedRecord{
			Row: row, Field: schema.FieldActivityDeal, Reason: model.ReasonMissingRequiredField,
		}
	}
	rawTS := get(schema.FieldActivityTS)
	if rawTS == "" {
		return model.Activity{}, &model.QuarantinedRecord{
			Row: row, Field: schema.FieldActivityTS, Reason: model.ReasonMissingRequiredField,
		}
	}
	ts, err := parseTime(rawTS)
	if err != nil {
		return model.Activity{}, &model.QuarantinedRecord{
			Row: row, Field: schema.FieldActivityTS, Reason: model.ReasonTypeCoercionFailure,
		}
	}

	return model.Activity{
		ID:         get(schema.FieldActivityID),
		DealID:     dealID,
		TS:         ts,
		Type:       model.ParseActivityType(get(schema.FieldActivityType)),
		Qualifying: parseBool(get(schema.FieldQualifying)),
	}, nil
}

// parseAmount coerces a money-ish string. Currency symbols and thousands
// separators show up in real exports.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func parseTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseBool is permissive: anything not recognizably true is false.
func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "t", "1", "yes", "y":
		return true
	default:
		return false
	}
}
