package raster

import (
	"math"
	"testing"

	"github.com/soft3d/raster/pkg/vecmath"
)

func TestBuildSpecularTableMonotonic(t *testing.T) {
	table := buildSpecularTable(32)
	for i := 1; i < len(table); i++ {
		if table[i] < table[i-1] {
			t.Fatalf("specular table not monotonic at %d: %v < %v", i, table[i], table[i-1])
		}
	}
	if math.Abs(table[len(table)-1]-1) > 1e-9 {
		t.Errorf("table[last] = %v, want 1 (x=1 is always in domain)", table[len(table)-1])
	}
}

func TestPowSpecularMatchesMathPowNearOne(t *testing.T) {
	exponent := 16
	table := buildSpecularTable(exponent)
	got := powSpecular(table, exponent, 1)
	want := math.Pow(1, float64(exponent))
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("powSpecular(1) = %v, want %v", got, want)
	}
}

func TestPowSpecularBelowDomainIsZero(t *testing.T) {
	exponent := 64
	table := buildSpecularTable(exponent)
	// The domain only reaches down to 1 - 8/64 = 0.875; anything below
	// that should read back as 0 rather than extrapolate.
	if got := powSpecular(table, exponent, 0.1); got != 0 {
		t.Errorf("powSpecular(0.1) = %v, want 0 (below table domain)", got)
	}
}

func TestPowTableForRebuildsOnExponentChange(t *testing.T) {
	c := NewContext(4, 4)
	c.SetMaterialSpecularExponent(8)
	first := c.powTableFor()

	c.SetMaterialSpecularExponent(64)
	second := c.powTableFor()

	if first == second {
		t.Error("powTableFor should rebuild when the exponent changes")
	}

	third := c.powTableFor()
	if second != third {
		t.Error("powTableFor should be stable across calls with no exponent change")
	}
}

func TestShadeClampsAboveOne(t *testing.T) {
	c := NewContext(4, 4)
	c.SetLight(vecmath.V3(0, 0, 1), RGB{2, 2, 2}, RGB{2, 2, 2}, RGB{2, 2, 2})
	c.SetMaterial(White(), 1, 1, 1, 1)

	col := c.shade(phongInput{diffuseDot: 1, specularDot: 1}, false)
	if col.R > 1 || col.G > 1 || col.B > 1 {
		t.Errorf("shade() = %v, want every channel clamped to [0,1]", col)
	}
}
