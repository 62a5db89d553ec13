package imaging

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Binarize returns a new mask in which every non-zero pixel becomes 255 and
// everything else stays 0.
func Binarize(mask gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.Threshold(mask, &out, 0, 255, gocv.ThresholdBinary)
	return out
}

// Dilate expands the mask foreground with a kernelSize x kernelSize
// rectangular structuring element. A non-positive kernel size disables
// dilation and returns a plain copy. The input mask is left untouched.
func Dilate(mask gocv.Mat, kernelSize int) gocv.Mat {
	if kernelSize <= 0 {
		return mask.Clone()
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernelSize, kernelSize))
	defer kernel.Close()

	out := gocv.NewMat()
	gocv.Dilate(mask, &out, kernel)
	return out
}

// BoxFromMask computes the smallest axis-aligned rectangle enclosing all
// non-zero pixels of the mask. An empty mask yields a zero box.
func BoxFromMask(mask gocv.Mat) Box {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var union image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if union.Empty() {
			union = rect
		} else {
			union = union.Union(rect)
		}
	}

	return BoxFromRect(union)
}

// MeanSquaredDiff computes the mean squared pixel-wise difference between two
// single-channel masks, with pixel values widened to int before subtracting.
// Masks of mismatched size compare as infinitely far apart.
func MeanSquaredDiff(a, b gocv.Mat) float64 {
	ab := a.ToBytes()
	bb := b.ToBytes()
	if len(ab) == 0 || len(ab) != len(bb) {
		return math.Inf(1)
	}

	var sum float64
	for i := range ab {
		d := int(ab[i]) - int(bb[i])
		sum += float64(d * d)
	}
	return sum / float64(len(ab))
}
