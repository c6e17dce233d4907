package extract

import "testing"

func TestCleanPageText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "doubled letters collapsed",
			in:   "AAccccoouunntt  SSttaatteemmeenntt",
			want: "Account Statement",
		},
		{
			name: "digits untouched",
			in:   "Balance 1100.00 on 2024-11-22",
			want: "Balance 1100.00 on 2024-11-22",
		},
		{
			name: "legitimate double letters halve",
			in:   "ballance",
			want: "balance",
		},
		{
			name: "whitespace runs collapse",
			in:   "one\t\ttwo \n three",
			want: "one two three",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPageText(tt.in); got != tt.want {
				t.Errorf("CleanPageText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
