package rotation

import "testing"

func TestSequenceIsPermutationStartingAtStart(t *testing.T) {
	for start := 1; start <= Holes; start++ {
		seq, err := Sequence(start)
		if err != nil {
			t.Fatalf("start %d: %v", start, err)
		}
		if len(seq) != Holes {
			t.Fatalf("start %d: expected %d holes, got %d", start, Holes, len(seq))
		}
		if seq[0] != start {
			t.Fatalf("start %d: sequence begins at %d", start, seq[0])
		}
		seen := make(map[int]bool, Holes)
		for _, hole := range seq {
			if !Valid(hole) {
				t.Fatalf("start %d: invalid hole %d", start, hole)
			}
			if seen[hole] {
				t.Fatalf("start %d: hole %d repeated", start, hole)
			}
			seen[hole] = true
		}
	}
}

func TestNextWalksWholeSequence(t *testing.T) {
	for start := 1; start <= Holes; start++ {
		seq, _ := Sequence(start)
		current := start
		visited := []int{current}
		for {
			next, ok, err := Next(start, current)
			if err != nil {
				t.Fatalf("start %d: %v", start, err)
			}
			if !ok {
				break
			}
			visited = append(visited, next)
			current = next
			if len(visited) > Holes {
				t.Fatalf("start %d: walked past %d holes", start, Holes)
			}
		}
		if len(visited) != Holes {
			t.Fatalf("start %d: visited %d holes", start, len(visited))
		}
		for i := range seq {
			if visited[i] != seq[i] {
				t.Fatalf("start %d: step %d expected %d, got %d", start, i, seq[i], visited[i])
			}
		}
		last, _ := Last(start)
		if current != last {
			t.Fatalf("start %d: completed on %d, expected %d", start, current, last)
		}
	}
}

func TestNextBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		start, hole int
		want        int
		wantOK      bool
	}{
		{"wraps after 18", 5, 18, 1, true},
		{"first hole advances", 5, 5, 6, true},
		{"hole before start completes", 5, 4, 0, false},
		{"start at 1 completes on 18", 1, 18, 0, false},
		{"start at 18 completes on 17", 18, 17, 0, false},
		{"start at 18 wraps", 18, 18, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Next(tt.start, tt.hole)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("expected (%d, %v), got (%d, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	pos, err := Position(5, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != Holes-1 {
		t.Fatalf("expected last position, got %d", pos)
	}
	pos, _ = Position(5, 1)
	if pos != 14 {
		t.Fatalf("expected 14, got %d", pos)
	}
}

func TestRejectsInvalidHoles(t *testing.T) {
	for _, hole := range []int{0, -1, 19} {
		if _, err := Sequence(hole); err == nil {
			t.Errorf("Sequence(%d): expected error", hole)
		}
		if _, _, err := Next(1, hole); err == nil {
			t.Errorf("Next(1, %d): expected error", hole)
		}
		if _, _, err := Next(hole, 1); err == nil {
			t.Errorf("Next(%d, 1): expected error", hole)
		}
	}
}
