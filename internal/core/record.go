package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

const (
	MaxDescriptionLen = 200
	MaxCategoryLen    = 100
)

type (
	// Kind selects the record variant and with it the backing table.
	Kind string

	// Record is a single income or expense entry.
	Record struct {
		ID          int64     `json:"id"`
		Kind        Kind      `json:"-"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		Category    string    `json:"category"`
		DateCreated time.Time `json:"date_created"`
	}

	// RecordPatch carries the mutable fields of an update.
	// A nil Category leaves the stored value untouched.
	RecordPatch struct {
		Description string
		Amount      float64
		Category    *string
	}
)

var (
	ErrUnknownKind        = errors.New("unknown record kind")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLen)
	ErrCategoryTooLong    = fmt.Errorf("category too long (max %d characters)", MaxCategoryLen)
	ErrInvalidAmount      = errors.New("invalid amount")
)

// Kinds returns every supported record kind.
func Kinds() []Kind {
	return []Kind{KindExpense, KindIncome}
}

// ParseKind maps a user supplied name ("expense", "incomes", ...) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses":
		return KindExpense, nil
	case "income", "incomes":
		return KindIncome, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindExpense, KindIncome:
		return true
	default:
		return false
	}
}

// DefaultCategory is stored when a record is created without a category.
func (k Kind) DefaultCategory() string {
	if k == KindIncome {
		return "Unknown source"
	}
	return "Uncategorized"
}

// Plural is used for table names and URL paths.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// ApplyDefaults fills the category fallback and the creation timestamp.
// DateCreated is always normalized to UTC.
func (r *Record) ApplyDefaults(now time.Time) {
	if strings.TrimSpace(r.Category) == "" {
		r.Category = r.Kind.DefaultCategory()
	}
	if r.DateCreated.IsZero() {
		r.DateCreated = now
	}
	r.DateCreated = r.DateCreated.UTC()
}

// Apply copies the patch onto r. ID, Kind and DateCreated are never touched.
func (r *Record) Apply(p RecordPatch) {
	r.Description = p.Description
	r.Amount = p.Amount
	if p.Category != nil {
		r.Category = *p.Category
	}
}

func (r Record) Validate() error {
	if !r.Kind.IsValid() {
		return ErrUnknownKind
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if len([]rune(r.Description)) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return ErrInvalidAmount
	}
	if len([]rune(r.Category)) > MaxCategoryLen {
		return ErrCategoryTooLong
	}
	return nil
}
