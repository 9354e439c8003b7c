package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func decode(t *testing.T, body string) RecordInput {
	t.Helper()
	var in RecordInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return in
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "valid full", body: `{"description":"Coffee","amount":3.5,"category":"Food"}`},
		{name: "valid zero amount", body: `{"description":"Refund","amount":0}`},
		{name: "valid negative amount", body: `{"description":"Correction","amount":-2}`},
		{name: "missing description", body: `{"amount":3.5}`, wantFields: []string{"description"}},
		{name: "blank description", body: `{"description":"   ","amount":1}`, wantFields: []string{"description"}},
		{name: "missing amount", body: `{"description":"Coffee"}`, wantFields: []string{"amount"}},
		{name: "long description", body: `{"description":"` + strings.Repeat("a", 201) + `","amount":1}`, wantFields: []string{"description"}},
		{name: "long category", body: `{"description":"a","amount":1,"category":"` + strings.Repeat("c", 101) + `"}`, wantFields: []string{"category"}},
		{name: "everything wrong", body: `{"category":"` + strings.Repeat("c", 101) + `"}`, wantFields: []string{"description", "amount", "category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(decode(t, tt.body))
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("expected fields %v, got %+v", tt.wantFields, verr.Fields)
			}
			for i, f := range tt.wantFields {
				if verr.Fields[i].Field != f {
					t.Fatalf("field %d = %q, want %q", i, verr.Fields[i].Field, f)
				}
				if verr.Fields[i].Message == "" || verr.Fields[i].Type == "" {
					t.Fatalf("field %q missing message or type", f)
				}
			}
			if !strings.Contains(verr.Error(), tt.wantFields[0]) {
				t.Fatalf("error text %q does not name %q", verr.Error(), tt.wantFields[0])
			}
		})
	}
}

func TestCandidate(t *testing.T) {
	in := decode(t, `{"description":"  Coffee ","amount":3.5}`)
	r := in.Candidate(core.KindExpense)
	if r.Kind != core.KindExpense || r.Description != "Coffee" || r.Amount != 3.5 {
		t.Fatalf("unexpected candidate: %+v", r)
	}
	if r.Category != "" || !r.DateCreated.IsZero() || r.ID != 0 {
		t.Fatalf("candidate should leave defaults to the store: %+v", r)
	}

	in = decode(t, `{"description":"Salary","amount":2000,"category":"ACME","date_created":"2025-02-01T10:00:00+01:00"}`)
	r = in.Candidate(core.KindIncome)
	want := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	if r.Category != "ACME" || !r.DateCreated.Equal(want) || r.DateCreated.Location() != time.UTC {
		t.Fatalf("unexpected candidate: %+v", r)
	}
}

func TestPatchCategoryPresence(t *testing.T) {
	absent := decode(t, `{"description":"Tea","amount":4}`).Patch()
	if absent.Category != nil {
		t.Fatalf("absent category should stay nil")
	}

	null := decode(t, `{"description":"Tea","amount":4,"category":null}`).Patch()
	if null.Category != nil {
		t.Fatalf("null category should stay nil")
	}

	present := decode(t, `{"description":"Tea","amount":4,"category":" Drinks "}`).Patch()
	if present.Category == nil || *present.Category != "Drinks" {
		t.Fatalf("expected category Drinks, got %v", present.Category)
	}
	if present.Description != "Tea" || present.Amount != 4 {
		t.Fatalf("unexpected patch: %+v", present)
	}

	empty := decode(t, `{"description":"Tea","amount":4,"category":""}`).Patch()
	if empty.Category == nil || *empty.Category != "" {
		t.Fatalf("empty string is a present value")
	}
}
