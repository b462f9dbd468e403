package policy

import (
	"testing"

	"github.com/apsisnet/apsis/eris"
)

func TestSizeThreshold(t *testing.T) {
	cases := []struct {
		length int
		want   int
	}{
		{0, eris.BlockSizeSmall},
		{999, eris.BlockSizeSmall},
		{1000, eris.BlockSizeLarge},
		{1_000_000, eris.BlockSizeLarge},
	}
	for _, tc := range cases {
		if got := SizeThreshold.BlockSize(tc.length); got != tc.want {
			t.Errorf("SizeThreshold.BlockSize(%d) = %d, want %d", tc.length, got, tc.want)
		}
	}
}

func TestFixed(t *testing.T) {
	f := Fixed(eris.BlockSizeLarge)
	if got := f.BlockSize(1); got != eris.BlockSizeLarge {
		t.Errorf("Fixed(32768).BlockSize(1) = %d, want %d", got, eris.BlockSizeLarge)
	}
	if got := f.BlockSize(1_000_000); got != eris.BlockSizeLarge {
		t.Errorf("Fixed(32768).BlockSize(1000000) = %d, want %d", got, eris.BlockSizeLarge)
	}
}
