package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func quietContext() context.Context {
	return log.IntoContext(context.Background(), log.New(log.Config{Output: io.Discard}))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "admin.db"),
	}
}

func TestRun_SeedThenList(t *testing.T) {
	ctx := quietContext()
	cfg := testConfig(t)

	var out bytes.Buffer
	if err := run(ctx, cfg, []string{"seed", "-kind", "income", "-n", "4", "-seed", "9"}, &out); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "created 4 incomes") {
		t.Errorf("seed output = %q", out.String())
	}

	out.Reset()
	if err := run(ctx, cfg, []string{"list", "-kind", "incomes"}, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "4 INCOMES") {
		t.Errorf("list output missing total row:\n%s", out.String())
	}

	out.Reset()
	if err := run(ctx, cfg, []string{"list", "-kind", "expense"}, &out); err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if !strings.Contains(out.String(), "0 EXPENSES") {
		t.Errorf("expense list should be empty:\n%s", out.String())
	}
}

func TestRun_MigrateUpAndDown(t *testing.T) {
	ctx := quietContext()
	cfg := testConfig(t)
	var out bytes.Buffer

	for _, dir := range []string{"up", "up", "down"} {
		if err := run(ctx, cfg, []string{"migrate", dir}, &out); err != nil {
			t.Fatalf("migrate %s: %v", dir, err)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	cfg := testConfig(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"export"}},
		{name: "bad migrate direction", args: []string{"migrate", "sideways"}},
		{name: "missing migrate direction", args: []string{"migrate"}},
		{name: "unknown kind", args: []string{"list", "-kind", "transfer"}},
		{name: "non positive count", args: []string{"seed", "-n", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(quietContext(), cfg, tt.args, &out); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}
}
