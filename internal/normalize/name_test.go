package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName_Lowercase(t *testing.T) {
	assert.Equal(t, "abc electric", Name("ABC Electric"))
}

func TestName_StripLLC(t *testing.T) {
	assert.Equal(t, "tri-state power & pump", Name("Tri-State Power & Pump LLC"))
	assert.Equal(t, "tri-state power & pump", Name("Tri-State Power & Pump, L.L.C."))
	assert.Equal(t, "tri-state power & pump", Name("Tri-State Power & Pump L L C"))
}

func TestName_StripIncCorpLtd(t *testing.T) {
	assert.Equal(t, "abc electric", Name("ABC Electric Inc"))
	assert.Equal(t, "abc electric", Name("ABC Electric Inc."))
	assert.Equal(t, "abc electric", Name("ABC Electric Incorporated"))
	assert.Equal(t, "abc electric", Name("ABC Electric Corp"))
	assert.Equal(t, "abc electric", Name("ABC Electric Corporation"))
	assert.Equal(t, "abc electric", Name("ABC Electric Ltd."))
	assert.Equal(t, "abc electric", Name("ABC Electric Limited"))
}

func TestName_StripCoCompany(t *testing.T) {
	assert.Equal(t, "smith heating", Name("Smith Heating Co."))
	assert.Equal(t, "smith heating", Name("Smith Heating Company"))
}

func TestName_NoSuffixInsideWord(t *testing.T) {
	// "co" must only strip as a standalone trailing token.
	assert.Equal(t, "texaco", Name("Texaco"))
}

func TestName_CollapseWhitespace(t *testing.T) {
	assert.Equal(t, "abc electric", Name("  ABC   Electric  "))
}

func TestName_Empty(t *testing.T) {
	assert.Equal(t, "", Name(""))
	assert.Equal(t, "", Name("   "))
}

func TestRatio_Identical(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("abc electric", "abc electric"), 1e-9)
}

func TestRatio_Disjoint(t *testing.T) {
	assert.InDelta(t, 0.0, Ratio("aaaa", "bbbb"), 1e-9)
}

func TestRatio_ExactBoundary(t *testing.T) {
	// 17 shared characters out of 20+20 total: 2*17/40 = 0.85 exactly.
	a := "abcdefghijklmnopqrst"
	b := "abcdefghijklmnopq123"
	assert.InDelta(t, 0.85, Ratio(a, b), 1e-9)
}

func TestRatio_BelowBoundary(t *testing.T) {
	// 16 shared characters out of 40 total: 0.80, below the dedup threshold.
	a := "abcdefghijklmnopwxyz"
	b := "abcdefghijklmnop1234"
	assert.InDelta(t, 0.80, Ratio(a, b), 1e-9)
}

func TestRatio_BothEmpty(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("", ""), 1e-9)
}
