package zobrist

import "testing"

func TestHashVectorDeterministic(t *testing.T) {
	vec := []int{3, 0, 7, 12, 1}
	if HashVector(vec) != HashVector(vec) {
		t.Error("same vector hashed to different values")
	}
}

func TestHashVectorSlotSensitive(t *testing.T) {
	a := HashVector([]int{1, 2})
	b := HashVector([]int{2, 1})
	if a == b {
		t.Error("hash ignores element positions")
	}
}

func TestHashVectorValueSensitive(t *testing.T) {
	base := []int{4, 4, 4, 4}
	h := HashVector(base)
	for i := range base {
		changed := append([]int(nil), base...)
		changed[i]++
		if HashVector(changed) == h {
			t.Errorf("changing slot %d did not change the hash", i)
		}
	}
}

func TestKeyNeverZero(t *testing.T) {
	for s := 0; s < Slots; s += 7 {
		for v := 0; v < Values; v += 5 {
			if Key(s, v) == 0 {
				t.Fatalf("Key(%d, %d) = 0", s, v)
			}
		}
	}
}

func TestKeyFoldsOversizedValues(t *testing.T) {
	if Key(3, 5) != Key(3, 5+Values) {
		t.Error("oversized values do not fold back into the table")
	}
	if Key(2, 1) != Key(2+Slots, 1) {
		t.Error("oversized slots do not fold back into the table")
	}
}
