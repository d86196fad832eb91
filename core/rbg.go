package core

import (
	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// BitmapTranslator converts between RBG-granularity allocation bitmaps
// and the physical RB indices they cover. It is pure and stateless
// beyond the per-direction RBG sizes fixed at construction.
type BitmapTranslator struct {
	rbgSize [model.NumDirections]int
}

// NewBitmapTranslator builds a translator from the cell's carrier
// geometry.
func NewBitmapTranslator(cfg model.CellConfig) *BitmapTranslator {
	t := &BitmapTranslator{}
	t.rbgSize[model.Uplink] = cfg.Uplink.RBGSize
	t.rbgSize[model.Downlink] = cfg.Downlink.RBGSize
	return t
}

// RBIndices expands an RBG bitmap to the sorted physical RB indices it
// spans. RBG g covers RBs [g*size, (g+1)*size).
func (t *BitmapTranslator) RBIndices(bitmap []uint8, dir model.Direction) []int {
	size := t.rbgSize[dir]
	rbs := make([]int, 0, len(bitmap)*size)
	for g, set := range bitmap {
		if set == 0 {
			continue
		}
		base := g * size
		for rb := base; rb < base+size; rb++ {
			rbs = append(rbs, rb)
		}
	}
	return rbs
}

// Bitmap reconstructs an RBG bitmap of length numRBGs from a set of RB
// indices. An RBG is marked allocated if any of its RBs appears in the
// set; indices outside the carrier are ignored.
func (t *BitmapTranslator) Bitmap(rbs []int, dir model.Direction, numRBGs int) []uint8 {
	size := t.rbgSize[dir]
	bitmap := make([]uint8, numRBGs)
	for _, rb := range rbs {
		g := rb / size
		if g >= 0 && g < numRBGs {
			bitmap[g] = 1
		}
	}
	return bitmap
}
