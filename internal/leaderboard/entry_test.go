package leaderboard

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bob", "bob"},
		{"  Alice ", "alice"},
		{"BOB", "bob"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTopUnique(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		n       int
		want    []Entry
	}{
		{
			name: "highest per player wins",
			entries: []Entry{
				{Name: "Bob", Score: 50},
				{Name: "bob", Score: 80},
				{Name: "Alice", Score: 60},
			},
			n: 10,
			want: []Entry{
				{Name: "bob", Score: 80},
				{Name: "Alice", Score: 60},
			},
		},
		{
			name: "whitespace and case collapse",
			entries: []Entry{
				{Name: " Carol", Score: 5},
				{Name: "CAROL ", Score: 7},
				{Name: "carol", Score: 6},
			},
			n:    10,
			want: []Entry{{Name: "CAROL ", Score: 7}},
		},
		{
			name: "truncated to n",
			entries: []Entry{
				{Name: "a", Score: 1},
				{Name: "b", Score: 2},
				{Name: "c", Score: 3},
			},
			n:    2,
			want: []Entry{{Name: "c", Score: 3}, {Name: "b", Score: 2}},
		},
		{
			name: "ties broken by earlier timestamp",
			entries: []Entry{
				{Name: "late", Score: 10, Timestamp: 200},
				{Name: "early", Score: 10, Timestamp: 100},
			},
			n: 10,
			want: []Entry{
				{Name: "early", Score: 10, Timestamp: 100},
				{Name: "late", Score: 10, Timestamp: 200},
			},
		},
		{
			name: "ties with equal timestamp keep input order",
			entries: []Entry{
				{Name: "x", Score: 10, Timestamp: 1},
				{Name: "y", Score: 10, Timestamp: 1},
			},
			n:    10,
			want: []Entry{{Name: "x", Score: 10, Timestamp: 1}, {Name: "y", Score: 10, Timestamp: 1}},
		},
		{
			name: "same player same score keeps earlier record",
			entries: []Entry{
				{ID: "second", Name: "dan", Score: 9, Timestamp: 20},
				{ID: "first", Name: "Dan", Score: 9, Timestamp: 10},
			},
			n:    10,
			want: []Entry{{ID: "first", Name: "Dan", Score: 9, Timestamp: 10}},
		},
		{
			name:    "empty input",
			entries: nil,
			n:       10,
			want:    []Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopUnique(tt.entries, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("TopUnique() = %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TopUnique()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
