package processor

import (
	"fmt"
	"math"
)

// Decision is either NoChange or Resize(width, height).
type Decision struct {
	resize bool
	Width  int
	Height int
}

func NoChange() Decision {
	return Decision{}
}

func Resize(width, height int) Decision {
	return Decision{resize: true, Width: width, Height: height}
}

func (d Decision) IsResize() bool {
	return d.resize
}

func (d Decision) String() string {
	if !d.resize {
		return "NoChange"
	}
	return fmt.Sprintf("Resize(%d, %d)", d.Width, d.Height)
}

// Validate reports configuration errors in c.
func (c Constraints) Validate() error {
	if c.MaxDimension <= 0 {
		return ConfigError("max dimension must be positive, got %d", c.MaxDimension)
	}
	if c.MinDimension < 0 {
		return ConfigError("min dimension must not be negative, got %d", c.MinDimension)
	}
	if c.MinDimension > c.MaxDimension {
		return ConfigError("min dimension %d exceeds max dimension %d", c.MinDimension, c.MaxDimension)
	}
	if c.MaxMegapixels < 0 || math.IsNaN(c.MaxMegapixels) {
		return ConfigError("max megapixels must be 0 (disabled) or positive, got %g", c.MaxMegapixels)
	}
	if c.Quality < 1 || c.Quality > 95 {
		return ConfigError("quality must be within [1, 95], got %d", c.Quality)
	}
	return nil
}

// Decide returns the target size for a width x height image under c.
//
// The stricter of the violated constraints sets the scale. Target sides
// are rounded half to even. A target below MinDimension (or below one
// pixel), or one that does not shrink either side, yields NoChange.
func Decide(width, height int, c Constraints) Decision {
	if width <= 0 || height <= 0 {
		return NoChange()
	}

	var candidates []float64

	longest := max(width, height)
	if longest > c.MaxDimension {
		candidates = append(candidates, float64(c.MaxDimension)/float64(longest))
	}

	if c.MaxMegapixels > 0 {
		mp := float64(width) * float64(height) / 1_000_000
		if mp > c.MaxMegapixels {
			candidates = append(candidates, math.Sqrt(c.MaxMegapixels/mp))
		}
	}

	if len(candidates) == 0 {
		return NoChange()
	}

	scale := candidates[0]
	for _, s := range candidates[1:] {
		scale = min(scale, s)
	}

	newW := int(math.RoundToEven(float64(width) * scale))
	newH := int(math.RoundToEven(float64(height) * scale))

	floor := max(c.MinDimension, 1)
	if newW < floor || newH < floor {
		return NoChange()
	}
	if newW >= width && newH >= height {
		return NoChange()
	}

	return Resize(newW, newH)
}
