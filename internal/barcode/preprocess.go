package barcode

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
)

// Preprocessor produces decode-friendly variants of a raw image
type Preprocessor interface {
	// Grayscale converts the image to an 8-bit grayscale copy
	Grayscale(img image.Image) *image.Gray

	// Normalize produces a binarized, edge-emphasized variant suited to
	// barcode localization
	Normalize(img image.Image) *image.Gray

	// Downscale shrinks the image to fit within the given bounds, preserving
	// aspect ratio. Images already within bounds are returned unchanged.
	Downscale(img image.Image, maxWidth, maxHeight int) image.Image
}

type preprocessor struct{}

// NewPreprocessor creates a new image preprocessor
func NewPreprocessor() Preprocessor {
	return &preprocessor{}
}

func (p *preprocessor) Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// Normalize runs the fixed barcode localization pipeline: grayscale, CLAHE,
// light Gaussian blur, horizontal Sobel gradient, wide morphological closing,
// Otsu threshold, then one erode and one dilate pass to remove speckle.
// Linear barcodes have strong horizontal intensity gradients; the closing
// bridges bar gaps into a single blob region.
func (p *preprocessor) Normalize(img image.Image) *image.Gray {
	gray := p.Grayscale(img)

	equalized := clahe(gray, 8, 8, 2.0)
	blurred := gaussianBlur3(equalized)
	gradient := sobelHorizontal(blurred)
	closed := morphClose(gradient, 21, 7)
	binary := otsuThreshold(closed)
	binary = erode(binary, 3, 3)
	binary = dilate(binary, 3, 3)

	return binary
}

func (p *preprocessor) Downscale(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return img
	}

	scaleW := float64(maxWidth) / float64(width)
	scaleH := float64(maxHeight) / float64(height)
	scale := math.Min(math.Min(scaleW, scaleH), 1.0)
	if scale >= 1.0 {
		return img
	}

	// Box filter gives area-averaged downsampling
	return imaging.Resize(img, int(float64(width)*scale), int(float64(height)*scale), imaging.Box)
}

// clahe applies contrast-limited adaptive histogram equalization over a
// tilesX x tilesY grid. clipLimit is relative to a uniform histogram, as in
// the usual CLAHE formulation.
func clahe(src *image.Gray, tilesX, tilesY int, clipLimit float64) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return src
	}

	tileW := (width + tilesX - 1) / tilesX
	tileH := (height + tilesY - 1) / tilesY
	if tileW < 1 {
		tileW = 1
	}
	if tileH < 1 {
		tileH = 1
	}

	// Per-tile lookup tables built from clipped histograms
	luts := make([][][256]uint8, tilesY)
	for ty := 0; ty < tilesY; ty++ {
		luts[ty] = make([][256]uint8, tilesX)
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := minInt(x0+tileW, width)
			y1 := minInt(y0+tileH, height)
			luts[ty][tx] = tileLUT(src, bounds, x0, y0, x1, y1, clipLimit)
		}
	}

	// Bilinear interpolation between the four surrounding tile mappings
	out := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(fy))
		dy := fy - float64(ty0)
		ty1 := clampInt(ty0+1, 0, tilesY-1)
		ty0 = clampInt(ty0, 0, tilesY-1)

		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(fx))
			dx := fx - float64(tx0)
			tx1 := clampInt(tx0+1, 0, tilesX-1)
			tx0c := clampInt(tx0, 0, tilesX-1)

			v := src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			top := (1-dx)*float64(luts[ty0][tx0c][v]) + dx*float64(luts[ty0][tx1][v])
			bottom := (1-dx)*float64(luts[ty1][tx0c][v]) + dx*float64(luts[ty1][tx1][v])
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, grayValue((1-dy)*top+dy*bottom))
		}
	}

	return out
}

// tileLUT builds the equalization mapping for one tile region
func tileLUT(src *image.Gray, bounds image.Rectangle, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	area := (x1 - x0) * (y1 - y0)
	if area == 0 {
		return identityLUT()
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y]++
		}
	}

	// Clip histogram and redistribute the excess uniformly
	limit := int(clipLimit * float64(area) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i := 0; i < 256; i++ {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	remainder := excess % 256
	for i := 0; i < 256; i++ {
		hist[i] += share
		if i < remainder {
			hist[i]++
		}
	}

	var lut [256]uint8
	cdf := 0
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		lut[i] = grayValue(float64(cdf) * 255.0 / float64(area)).Y
	}
	return lut
}

func identityLUT() [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(i)
	}
	return lut
}

// gaussianBlur3 applies a 3x3 Gaussian kernel [1 2 1; 2 4 2; 1 2 1]/16
// with replicated borders
func gaussianBlur3(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)

	at := func(x, y int) int {
		x = clampInt(x, 0, width-1)
		y = clampInt(y, 0, height-1)
		return int(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1) +
				2*at(x-1, y) + 4*at(x, y) + 2*at(x+1, y) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, grayValue(float64(sum)/16.0))
		}
	}
	return out
}

// sobelHorizontal computes the order-1-in-x Sobel gradient magnitude and
// rescales it to the full 8-bit range via min-max normalization
func sobelHorizontal(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	if width < 3 || height < 3 {
		return out
	}

	at := func(x, y int) int {
		x = clampInt(x, 0, width-1)
		y = clampInt(y, 0, height-1)
		return int(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
	}

	magnitudes := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			magnitudes[y*width+x] = math.Abs(float64(gx))
		}
	}

	lo := floats.Min(magnitudes)
	hi := floats.Max(magnitudes)
	scale := 0.0
	if hi > lo {
		scale = 255.0 / (hi - lo)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, grayValue((magnitudes[y*width+x]-lo)*scale))
		}
	}
	return out
}

// morphClose applies dilation followed by erosion with a kernelW x kernelH
// rectangular structuring element
func morphClose(src *image.Gray, kernelW, kernelH int) *image.Gray {
	return erode(dilate(src, kernelW, kernelH), kernelW, kernelH)
}

func dilate(src *image.Gray, kernelW, kernelH int) *image.Gray {
	return morphRect(src, kernelW, kernelH, true)
}

func erode(src *image.Gray, kernelW, kernelH int) *image.Gray {
	return morphRect(src, kernelW, kernelH, false)
}

// morphRect runs a separable rectangular min/max filter: a horizontal pass
// followed by a vertical pass. Borders are replicated.
func morphRect(src *image.Gray, kernelW, kernelH int, max bool) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	halfW := kernelW / 2
	halfH := kernelH / 2

	pick := func(a, b uint8) uint8 {
		if max == (a > b) {
			return a
		}
		return b
	}

	horizontal := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			extreme := src.GrayAt(bounds.Min.X+clampInt(x-halfW, 0, width-1), bounds.Min.Y+y).Y
			for k := -halfW + 1; k <= halfW; k++ {
				v := src.GrayAt(bounds.Min.X+clampInt(x+k, 0, width-1), bounds.Min.Y+y).Y
				extreme = pick(extreme, v)
			}
			horizontal.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: extreme})
		}
	}

	out := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			extreme := horizontal.GrayAt(bounds.Min.X+x, bounds.Min.Y+clampInt(y-halfH, 0, height-1)).Y
			for k := -halfH + 1; k <= halfH; k++ {
				v := horizontal.GrayAt(bounds.Min.X+x, bounds.Min.Y+clampInt(y+k, 0, height-1)).Y
				extreme = pick(extreme, v)
			}
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: extreme})
		}
	}
	return out
}

// otsuThreshold binarizes the image with the global Otsu threshold, which
// maximizes between-class variance of the two resulting pixel populations
func otsuThreshold(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	total := width * height
	if total == 0 {
		return out
	}

	var hist [256]int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			hist[src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y]++
		}
	}

	sumAll := 0.0
	for i, count := range hist {
		sumAll += float64(i) * float64(count)
	}

	var (
		sumBg, weightBg float64
		bestVariance    float64
		threshold       int
	)
	for t := 0; t < 256; t++ {
		weightBg += float64(hist[t])
		if weightBg == 0 {
			continue
		}
		weightFg := float64(total) - weightBg
		if weightFg == 0 {
			break
		}
		sumBg += float64(t) * float64(hist[t])

		meanBg := sumBg / weightBg
		meanFg := (sumAll - sumBg) / weightFg
		variance := weightBg * weightFg * (meanBg - meanFg) * (meanBg - meanFg)
		if variance > bestVariance {
			bestVariance = variance
			threshold = t
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(0)
			if int(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) > threshold {
				v = 255
			}
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: v})
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func grayValue(v float64) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Gray{Y: uint8(v + 0.5)}
}
