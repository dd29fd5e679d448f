package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-bot/internal/job"
)

func TestStringFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pairs []StringField
		want  map[string]string
	}{
		{
			name:  "trims key and value",
			pairs: []StringField{{Key: "  portal ", Value: " linkedin "}},
			want:  map[string]string{"portal": "linkedin"},
		},
		{
			name:  "drops blank entries",
			pairs: []StringField{{Key: "company", Value: "  "}, {Key: " ", Value: "Acme"}, {Key: "title", Value: "SRE"}},
			want:  map[string]string{"title": "SRE"},
		},
		{name: "nothing given", want: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := StringFields(tt.pairs...)
			if len(fields) != len(tt.want) {
				t.Fatalf("got %d fields, want %d", len(fields), len(tt.want))
			}
			for _, f := range fields {
				if tt.want[f.Key] != f.String {
					t.Fatalf("field %q = %q, want %q", f.Key, f.String, tt.want[f.Key])
				}
			}
		})
	}
}

func TestWithCommonFields(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "gemini-2.5-flash").Info("generated")
	WithFields(zap.New(core), zap.String("portal", "linkedin")).Info("searched")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("unexpected common fields: %v", ctx)
	}
	if entries[1].ContextMap()["portal"] != "linkedin" {
		t.Fatalf("unexpected fields: %v", entries[1].ContextMap())
	}

	if len(CommonFields("", "")) != 0 {
		t.Fatal("expected empty provider and model to be skipped")
	}

	// nil loggers fall back to a no-op one
	WithCommonFields(nil, "gemini", "m").Info("dropped")
	WithFields(nil).Info("dropped")
}

func TestJobFields(t *testing.T) {
	t.Parallel()

	fields := JobFields(&job.Record{Portal: "linkedin", Company: "Acme", Status: " success "})
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(fields))
	}
	if fields[0].Key != FieldPortal || fields[1].String != "Acme" || fields[2].String != "success" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	if JobFields(nil) != nil {
		t.Fatal("expected no fields for a nil record")
	}
}
