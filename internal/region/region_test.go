package region

import "testing"

func TestMatches_UnitedKingdom(t *testing.T) {
	if !Matches("London, UK", "united kingdom") {
		t.Fatal("expected London, UK to match united kingdom")
	}
	if Matches("Berlin, Germany", "united kingdom") {
		t.Fatal("expected Berlin, Germany not to match united kingdom")
	}
}

func TestMatches_UnknownRegion(t *testing.T) {
	if Matches("London, UK", "narnia") {
		t.Fatal("expected unknown region to never match")
	}
}

func TestLabels_Sorted(t *testing.T) {
	labels := Labels()
	for i := 1; i < len(labels); i++ {
		if labels[i-1] > labels[i] {
			t.Fatalf("expected sorted labels, got %v", labels)
		}
	}
}
