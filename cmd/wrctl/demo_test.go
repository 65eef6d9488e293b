package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/idgen"
	"go.uber.org/zap"
)

func TestRunDemo(t *testing.T) {
	st, seed := seededMemoryStore()
	numbers, err := idgen.New(1, "WR", "SHP")
	if err != nil {
		t.Fatal(err)
	}
	svc := app.NewAppService(st, numbers, nil, zap.NewNop())

	var out bytes.Buffer
	if err := runDemo(context.Background(), svc, seed, &core.Actor{ID: 1, Username: "demo"}, &out); err != nil {
		t.Fatalf("runDemo: %v\n%s", err, out.String())
	}
	for _, want := range []string{"== dispatch", `"status": "SHIPPED"`, "consolidated_into"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
	if n := len(st.Balances()); n != 0 {
		t.Errorf("balances after dispatch = %d, want 0", n)
	}
}
