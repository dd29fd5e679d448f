package utils

import "testing"

func TestTruncation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		forLog string
		plain  string
	}{
		{name: "no limit", input: "Senior Go Engineer", limit: 0, forLog: "", plain: ""},
		{name: "fits", input: "Acme", limit: 10, forLog: "Acme", plain: "Acme"},
		{name: "cut", input: "---JOB_APPLIED---", limit: 7, forLog: "---JOB_...", plain: "---JOB_"},
		{name: "multibyte runes", input: "Zürich Büro", limit: 2, forLog: "Zü...", plain: "Zü"},
		{name: "log form trims", input: "  status: success  ", limit: 6, forLog: "status...", plain: "  stat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TruncateForLog(tt.input, tt.limit); got != tt.forLog {
				t.Fatalf("TruncateForLog = %q, want %q", got, tt.forLog)
			}
			if got := Truncate(tt.input, tt.limit); got != tt.plain {
				t.Fatalf("Truncate = %q, want %q", got, tt.plain)
			}
		})
	}
}
