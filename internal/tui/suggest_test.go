package tui

import "testing"

func TestClosestView(t *testing.T) {
	names := viewNames()
	cases := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"qeue", "queue", true},
		{"documnts", "documents", true},
		{"Clients ", "clients", true},
		{"analitics", "analytics", true},
		{"zzzzzz", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := closestView(tc.input, names)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("closestView(%q) = %q, %v, want %q, %v", tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}
