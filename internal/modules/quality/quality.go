// Package quality scores completeness, uniqueness, and formatting of the
// canonical records and enumerates every violating record.
package quality

import (
	"regexp"
	"sort"
	"strings"

	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/internal/domain/schema"
)

// Sub-score weights. Fixed by design so scores stay comparable between
// runs and datasets.
const (
	WeightCompleteness = 0.40
	WeightUniqueness   = 0.35
	WeightFormatting   = 0.25
)

// Issue codes attached to violating records.
const (
	CodeMissingField   = "missing_field"
	CodeDuplicateEmail = "duplicate_email"
	CodeDuplicatePhone = "duplicate_phone"
	CodeInvalidEmail   = "invalid_email_format"
	CodeInvalidPhone   = "invalid_phone_format"
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

const minPhoneDigits = 7

// Violation lists the distinct issue codes found on one record.
type Violation struct {
	DealID string
	Codes  []string // sorted, deduplicated across issue types
}

// Result is the immutable outcome of one scoring pass.
type Result struct {
	// Score is the weighted overall score, always in [0, 100].
	Score int

	// Sub-scores in [0, 1].
	Completeness float64
	Uniqueness   float64
	Formatting   float64

	// Violations is sorted by deal id.
	Violations []Violation

	// DuplicateCount is the number of records sharing a normalized email
	// or phone with an earlier record.
	DuplicateCount int
}

// Scorer checks data hygiene over canonical deals.
type Scorer struct {
	requiredFields  []string
	checkDuplicates bool
	checkFormatting bool
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithRequiredFields sets the canonical fields checked for completeness.
func WithRequiredFields(fields []string) Option {
	return func(s *Scorer) {
		if len(fields) > 0 {
			s.requiredFields = fields
		}
	}
}

// WithoutDuplicateCheck disables the uniqueness sub-score (it reports 1).
func WithoutDuplicateCheck() Option {
	return func(s *Scorer) {
		s.checkDuplicates = false
	}
}

// WithoutFormatCheck disables the formatting sub-score (it reports 1).
func WithoutFormatCheck() Option {
	return func(s *Scorer) {
		s.checkFormatting = false
	}
}

// New creates a Scorer with the given options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		requiredFields:  []string{schema.FieldName, schema.FieldOwner, schema.FieldAmount, schema.FieldEmail},
		checkDuplicates: true,
		checkFormatting: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check scores the dataset. A dataset with every required field populated,
// no duplicates, and all formats valid scores exactly 100; an empty dataset
// has nothing wrong with it and also scores 100.
func (s *Scorer) Check(deals []model.Deal) Result {
	codesByID := make(map[string]map[string]struct{})
	flag := func(id, code string) {
		if codesByID[id] == nil {
			codesByID[id] = make(map[string]struct{})
		}
		codesByID[id][code] = struct{}{}
	}

	res := Result{
		Completeness: s.completeness(deals, flag),
		Uniqueness:   1,
		Formatting:   1,
	}
	if s.checkDuplicates {
		res.Uniqueness, res.DuplicateCount = s.uniqueness(deals, flag)
	}
	if s.checkFormatting {
		res.Formatting = s.formatting(deals, flag)
	}

	weighted := WeightCompleteness*res.Completeness +
		WeightUniqueness*res.Uniqueness +
		WeightFormatting*res.Formatting
	res.Score = clampScore(int(weighted*100 + 0.5))

	res.Violations = make([]Violation, 0, len(codesByID))
	for id, codes := range codesByID {
		v := Violation{DealID: id, Codes: make([]string, 0, len(codes))}
		for code := range codes {
			v.Codes = append(v.Codes, code)
		}
		sort.Strings(v.Codes)
		res.Violations = append(res.Violations, v)
	}
	sort.Slice(res.Violations, func(i, j int) bool { return res.Violations[i].DealID < res.Violations[j].DealID })

	return res
}

// completeness is the fraction of (record, required field) pairs that are
// populated. Vacuously 1 when there is nothing to check.
func (s *Scorer) completeness(deals []model.Deal, flag func(id, code string)) float64 {
	total := len(deals) * len(s.requiredFields)
	if total == 0 {
		return 1
	}
	populated := 0
	for _, d := range deals {
		for _, field := range s.requiredFields {
			if fieldValue(d, field) != "" {
				populated++
			} else {
				flag(d.ID, CodeMissingField)
			}
		}
	}
	return float64(populated) / float64(total)
}

// uniqueness is 1 minus the duplicate rate over records carrying an email
// or phone. Identity matching is case- and whitespace-insensitive for
// email, digits-only for phone.
func (s *Scorer) uniqueness(deals []model.Deal, flag func(id, code string)) (float64, int) {
	withKey := 0
	dups := 0
	seenEmail := make(map[string]bool)
	seenPhone := make(map[string]bool)

	for _, d := range deals {
		email := normalizeEmail(d.Email)
		phone := normalizePhone(d.Phone)
		if email == "" && phone == "" {
			continue
		}
		withKey++
		dup := false
		if email != "" {
			if seenEmail[email] {
				flag(d.ID, CodeDuplicateEmail)
				dup = true
			}
			seenEmail[email] = true
		}
		if phone != "" {
			if seenPhone[phone] {
				flag(d.ID, CodeDuplicatePhone)
				dup = true
			}
			seenPhone[phone] = true
		}
		if dup {
			dups++
		}
	}

	if withKey == 0 {
		return 1, 0
	}
	return 1 - float64(dups)/float64(withKey), dups
}

// formatting is the fraction of populated email/phone fields matching the
// expected pattern. Vacuously 1 when none are populated.
func (s *Scorer) formatting(deals []model.Deal, flag func(id, code string)) float64 {
	checked, valid := 0, 0
	for _, d := range deals {
		if d.Email != "" {
			checked++
			if emailPattern.MatchString(strings.TrimSpace(d.Email)) {
				valid++
			} else {
				flag(d.ID, CodeInvalidEmail)
			}
		}
		if d.Phone != "" {
			checked++
			if len(normalizePhone(d.Phone)) >= minPhoneDigits {
				valid++
			} else {
				flag(d.ID, CodeInvalidPhone)
			}
		}
	}
	if checked == 0 {
		return 1
	}
	return float64(valid) / float64(checked)
}

func fieldValue(d model.Deal, canonical string) string {
	switch canonical {
	case schema.FieldDealID:
		return d.ID
	case schema.FieldName:
		return d.Name
	case schema.FieldStage:
		return d.Stage
	case schema.FieldAmount:
		// Zero is a valid amount. Normalization rejects rows without one,
		// so the field is always present on a canonical deal.
		return "set"
	case schema.FieldOwner:
		return d.Owner
	case schema.FieldStatus:
		return string(d.Status)
	case schema.FieldLeadSource:
		return d.LeadSource
	case schema.FieldEmail:
		return d.Email
	case schema.FieldPhone:
		return d.Phone
	default:
		return ""
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), ""))
}

func normalizePhone(raw string) string {
	return nonDigitPattern.ReplaceAllString(raw, "")
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
