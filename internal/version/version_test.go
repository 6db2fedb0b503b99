package version

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "1.2.3", want: "1.2.3"},
		{name: "v prefix", raw: "v0.9.0", want: "0.9.0"},
		{name: "whitespace", raw: "  0.14.0\n", want: "0.14.0"},
		{name: "prerelease", raw: "1.0.0-next.2", want: "1.0.0-next.2"},
		{name: "empty", raw: "", wantErr: true},
		{name: "blank", raw: "   ", wantErr: true},
		{name: "partial", raw: "1.2", wantErr: true},
		{name: "garbage", raw: "not-a-version", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"0.8.0", "0.9.0", -1},
		{"0.9.0", "0.9.0", 0},
		{"0.14.0", "0.9.0", 1},
		{"1.0.0-next.1", "1.0.0", -1},
	}
	for _, tt := range tests {
		got, err := Compare(tt.a, tt.b)
		if err != nil {
			t.Fatalf("Compare(%q, %q): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Fatalf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompare_Invalid(t *testing.T) {
	if _, err := Compare("nope", "1.0.0"); err == nil {
		t.Fatal("expected error for invalid left operand")
	}
	if _, err := Compare("1.0.0", ""); err == nil {
		t.Fatal("expected error for empty right operand")
	}
}
