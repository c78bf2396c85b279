package invariant

import "testing"

func TestComposeAdditive(t *testing.T) {
	schema := Schema{Names: []string{"Q", "SS"}, Kinds: []Kind{Additive, Additive}}
	a := New(1, 2)
	b := New(-1, 1)
	got := Compose(schema, a, b)
	want := New(0, 3)
	if got != want {
		t.Errorf("Compose() = %v, want %v", got, want)
	}
}

func TestComposeMultiplicative(t *testing.T) {
	schema := Schema{Names: []string{"P"}, Kinds: []Kind{Multiplicative}}
	for _, tc := range []struct {
		a, b, want int32
	}{
		{1, 1, 1},
		{1, -1, -1},
		{-1, -1, 1},
	} {
		got := Compose(schema, New(tc.a), New(tc.b))
		if got.At(0) != tc.want {
			t.Errorf("Compose(%d,%d) = %d, want %d", tc.a, tc.b, got.At(0), tc.want)
		}
	}
}

func TestLessLexicographic(t *testing.T) {
	cases := []struct {
		a, b Label
		want bool
	}{
		{New(0, 1), New(0, 2), true},
		{New(1, 0), New(0, 2), false},
		{New(0, 0), New(0, 0), false},
	}
	for _, c := range cases {
		if got := Less(c.a, c.b); got != c.want {
			t.Errorf("Less(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestSortedDeterministic(t *testing.T) {
	m := map[Label]int{
		New(2, 0): 1,
		New(0, 1): 2,
		New(1, 0): 3,
	}
	got := Sorted(m)
	want := []Label{New(0, 1), New(1, 0), New(2, 0)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLabelArityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("New() with too many components did not panic")
		}
	}()
	New(1, 2, 3, 4, 5, 6, 7)
}
