package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"expense", KindExpense, true},
		{"Expenses", KindExpense, true},
		{" income ", KindIncome, true},
		{"incomes", KindIncome, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrUnknownKind) {
			t.Fatalf("%q expected ErrUnknownKind, got %v", tc.in, err)
		}
	}
}

func TestKindDefaults(t *testing.T) {
	if KindExpense.DefaultCategory() == KindIncome.DefaultCategory() {
		t.Fatalf("expected distinct fallback categories")
	}
	if KindExpense.Plural() != "expenses" || KindIncome.Plural() != "incomes" {
		t.Fatalf("unexpected plurals: %s %s", KindExpense.Plural(), KindIncome.Plural())
	}
	if Kind("x").IsValid() {
		t.Fatalf("unexpected valid kind")
	}
}

func TestApplyDefaults(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	r := Record{Kind: KindIncome, Description: "Salary", Amount: 1200}
	r.ApplyDefaults(now)
	if r.Category != KindIncome.DefaultCategory() {
		t.Fatalf("expected fallback category, got %q", r.Category)
	}
	if !r.DateCreated.Equal(now) || r.DateCreated.Location() != time.UTC {
		t.Fatalf("expected %v in UTC, got %v", now, r.DateCreated)
	}

	given := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r = Record{Kind: KindExpense, Description: "Rent", Amount: 800, Category: "Home", DateCreated: given}
	r.ApplyDefaults(now)
	if r.Category != "Home" || !r.DateCreated.Equal(given) {
		t.Fatalf("defaults overwrote supplied values: %+v", r)
	}
}

func TestApplyPatch(t *testing.T) {
	created := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	r := Record{ID: 7, Kind: KindExpense, Description: "Coffee", Amount: 3.5, Category: "Food", DateCreated: created}

	r.Apply(RecordPatch{Description: "Tea", Amount: 4})
	if r.Description != "Tea" || r.Amount != 4 || r.Category != "Food" {
		t.Fatalf("unexpected record after patch without category: %+v", r)
	}

	cat := "Drinks"
	r.Apply(RecordPatch{Description: "Tea", Amount: 4, Category: &cat})
	if r.Category != "Drinks" {
		t.Fatalf("expected category Drinks, got %q", r.Category)
	}
	if r.ID != 7 || !r.DateCreated.Equal(created) {
		t.Fatalf("patch touched immutable fields: %+v", r)
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{Kind: KindExpense, Description: "ok", Amount: 1.5}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		r    Record
		want error
	}{
		{Record{Kind: "other", Description: "a", Amount: 1}, ErrUnknownKind},
		{Record{Kind: KindExpense, Description: "  ", Amount: 1}, ErrEmptyDescription},
		{Record{Kind: KindExpense, Description: strings.Repeat("a", 201), Amount: 1}, ErrDescriptionTooLong},
		{Record{Kind: KindExpense, Description: "a", Amount: math.NaN()}, ErrInvalidAmount},
		{Record{Kind: KindExpense, Description: "a", Amount: math.Inf(1)}, ErrInvalidAmount},
		{Record{Kind: KindIncome, Description: "a", Amount: 1, Category: strings.Repeat("c", 101)}, ErrCategoryTooLong},
	}
	for i, tc := range bads {
		if err := tc.r.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		3.5:     "3.50",
		4:       "4.00",
		12.346:  "12.35",
		-7.1:    "-7.10",
		1000.01: "1000.01",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Fatalf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
