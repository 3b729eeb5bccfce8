package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   Params
		want Params
	}{
		{Params{}, Params{Limit: DefaultLimit}},
		{Params{Limit: 500, Offset: -3}, Params{Limit: MaxLimit}},
		{Params{Limit: 10, Offset: 40}, Params{Limit: 10, Offset: 40}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Fatalf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
