package word

import (
	"reflect"
	"testing"
)

func TestNew_CopiesInputSlice(t *testing.T) {
	src := []string{"a", "b", "c"}
	w := New(src...)

	src[0] = "z"
	if w.At(0) != "a" {
		t.Errorf("mutating the caller's slice changed the Word: At(0) = %q, want %q", w.At(0), "a")
	}
}

func TestNew_Empty(t *testing.T) {
	w := New[string]()
	if got := w.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestLen(t *testing.T) {
	tests := []struct {
		name string
		w    Word[int]
		want int
	}{
		{"empty", New[int](), 0},
		{"single", New(1), 1},
		{"several", New(1, 2, 3, 4), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Len(); got != tt.want {
				t.Errorf("Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAt(t *testing.T) {
	w := New("a", "b", "c")
	tests := []struct {
		i    int
		want string
	}{
		{0, "a"},
		{1, "b"},
		{2, "c"},
	}
	for _, tt := range tests {
		if got := w.At(tt.i); got != tt.want {
			t.Errorf("At(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
}

func TestAt_PanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At() out of range should panic")
		}
	}()
	New("a").At(1)
}

func TestSuffix(t *testing.T) {
	w := New("a", "b", "c")

	tests := []struct {
		name string
		from int
		want []string
	}{
		{"whole word", 0, []string{"a", "b", "c"}},
		{"middle", 1, []string{"b", "c"}},
		{"last symbol", 2, []string{"c"}},
		{"empty", 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.Suffix(tt.from)
			if got.Len() != len(tt.want) {
				t.Fatalf("Suffix(%d).Len() = %d, want %d", tt.from, got.Len(), len(tt.want))
			}
			for i, sym := range tt.want {
				if got.At(i) != sym {
					t.Errorf("Suffix(%d).At(%d) = %q, want %q", tt.from, i, got.At(i), sym)
				}
			}
		})
	}
}

func TestSlice(t *testing.T) {
	w := New(1, 2, 3)
	got := w.Slice()
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Slice() = %v, want %v", got, want)
	}
}

func TestSlice_SharesStorage(t *testing.T) {
	w := New(1, 2, 3)
	s := w.Slice()
	s[0] = 99
	if w.At(0) != 99 {
		t.Error("Slice() should share storage with the Word, mutation should be visible")
	}
}
