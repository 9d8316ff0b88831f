package money

import (
	"testing"
)

func TestFromMajor(t *testing.T) {
	tests := []struct {
		name       string
		asset      Asset
		major      string
		wantAtomic int64
		wantErr    bool
	}{
		{"USD 10.50", USD, "10.50", 1050, false},
		{"USD 0.01", USD, "0.01", 1, false},
		{"USD 150", USD, "150", 15000, false},

		{"SOL 0.5", SOL, "0.5", 500000000, false},
		{"SOL 1", SOL, "1", 1000000000, false},
		{"SOL 1.5", SOL, "1.5", 1500000000, false},
		{"SOL smallest", SOL, "0.000000001", 1, false},
		{"SOL floors sub-lamport digits", SOL, "0.0000000019", 1, false},
		{"SOL leading dot", SOL, ".25", 250000000, false},

		{"negative", SOL, "-0.5", -500000000, false},

		{"empty", SOL, "", 0, true},
		{"two dots", SOL, "1.2.3", 0, true},
		{"letters", SOL, "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromMajor(tt.asset, tt.major)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromMajor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Atomic != tt.wantAtomic {
				t.Errorf("FromMajor() atomic = %d, want %d", got.Atomic, tt.wantAtomic)
			}
		})
	}
}

func TestToMajor(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{"USD 10.50", Amount{USD, 1050}, "10.50"},
		{"USD zero", Amount{USD, 0}, "0.00"},
		{"SOL 0.5", Amount{SOL, 500000000}, "0.500000000"},
		{"SOL 1 lamport", Amount{SOL, 1}, "0.000000001"},
		{"negative", Amount{USD, -525}, "-5.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.ToMajor(); got != tt.want {
				t.Errorf("ToMajor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLamportsFromSOL(t *testing.T) {
	tests := []struct {
		input   string
		want    uint64
		wantErr bool
	}{
		{"1.5", 1500000000, false},
		{"0.01", 10000000, false},
		{"2", 2000000000, false},
		{"0.0000000005", 0, false}, // floors below one lamport
		{"-1", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := LamportsFromSOL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LamportsFromSOL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("LamportsFromSOL(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddSub(t *testing.T) {
	a := New(SOL, 1_000_000_000)
	b := New(SOL, 500_000_000)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if sum.Atomic != 1_500_000_000 {
		t.Errorf("Add = %d, want 1500000000", sum.Atomic)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub error: %v", err)
	}
	if diff.Atomic != 500_000_000 {
		t.Errorf("Sub = %d, want 500000000", diff.Atomic)
	}

	if _, err := a.Add(New(USD, 100)); err == nil {
		t.Error("expected asset mismatch error")
	}
}
