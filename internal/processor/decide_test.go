package processor

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constraints(maxDim int, maxMP float64, minDim int) Constraints {
	return Constraints{MaxDimension: maxDim, MaxMegapixels: maxMP, MinDimension: minDim, Quality: 85}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		c      Constraints
		want   Decision
	}{
		{
			name:  "max dimension binds",
			width: 4000, height: 2000,
			c:    constraints(2048, 0, 128),
			want: Resize(2048, 1024),
		},
		{
			name:  "megapixels bind when dimension is satisfied",
			width: 3000, height: 3000,
			c:    constraints(4096, 4.0, 128),
			want: Resize(2000, 2000),
		},
		{
			name:  "stricter constraint wins over dimension",
			width: 4000, height: 4000,
			c:    constraints(3000, 4.0, 128),
			want: Resize(2000, 2000),
		},
		{
			name:  "stricter constraint wins over megapixels",
			width: 4000, height: 1000,
			c:    constraints(2000, 3.9, 128),
			want: Resize(2000, 500),
		},
		{
			name:  "floor refuses crushing",
			width: 200, height: 200,
			c:    constraints(64, 0, 128),
			want: NoChange(),
		},
		{
			name:  "floor applies to the short side",
			width: 4000, height: 200,
			c:    constraints(2048, 0, 128),
			want: NoChange(),
		},
		{
			name:  "within limits",
			width: 2048, height: 2048,
			c:    constraints(2048, 0, 128),
			want: NoChange(),
		},
		{
			name:  "megapixels exactly at limit",
			width: 2000, height: 2000,
			c:    constraints(4096, 4.0, 128),
			want: NoChange(),
		},
		{
			name:  "zero width",
			width: 0, height: 500,
			c:    constraints(64, 0, 0),
			want: NoChange(),
		},
		{
			name:  "negative height",
			width: 500, height: -1,
			c:    constraints(64, 0, 0),
			want: NoChange(),
		},
		{
			name:  "half rounds to even",
			width: 4096, height: 2049,
			c:    constraints(2048, 0, 128),
			want: Resize(2048, 1024),
		},
		{
			name:  "half rounds to even upwards",
			width: 4096, height: 2051,
			c:    constraints(2048, 0, 128),
			want: Resize(2048, 1026),
		},
		{
			name:  "rounding that shrinks nothing is a no-op",
			width: 1000, height: 1000,
			c:    constraints(4096, 0.9999999, 0),
			want: NoChange(),
		},
		{
			name:  "one pixel over on one side",
			width: 2049, height: 100,
			c:    constraints(2048, 0, 0),
			want: Resize(2048, 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.width, tt.height, tt.c)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestDecideProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		w := 1 + rng.Intn(9000)
		h := 1 + rng.Intn(9000)
		maxDim := 16 + rng.Intn(4096)
		minDim := rng.Intn(maxDim + 1)
		maxMP := 0.0
		if rng.Intn(2) == 0 {
			maxMP = 0.01 + rng.Float64()*20
		}
		c := constraints(maxDim, maxMP, minDim)
		require.NoError(t, c.Validate())

		d := Decide(w, h, c)
		assert.Equal(t, d, Decide(w, h, c), "deterministic")

		satisfied := max(w, h) <= maxDim && (maxMP == 0 || float64(w)*float64(h)/1e6 <= maxMP)
		if satisfied {
			assert.False(t, d.IsResize(), "%dx%d satisfies %+v but got %s", w, h, c, d)
			continue
		}
		if !d.IsResize() {
			continue
		}
		assert.True(t, d.Width < w || d.Height < h, "%dx%d -> %s does not shrink", w, h, d)
		assert.LessOrEqual(t, d.Width, w)
		assert.LessOrEqual(t, d.Height, h)
		assert.GreaterOrEqual(t, d.Width, max(minDim, 1))
		assert.GreaterOrEqual(t, d.Height, max(minDim, 1))
		assert.LessOrEqual(t, max(d.Width, d.Height), maxDim)
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "NoChange", NoChange().String())
	assert.Equal(t, "Resize(10, 20)", Resize(10, 20).String())
	assert.False(t, NoChange().IsResize())
	assert.True(t, Resize(1, 1).IsResize())
}

func TestConstraintsValidate(t *testing.T) {
	assert.NoError(t, constraints(2048, 0, 128).Validate())
	assert.NoError(t, constraints(128, 0, 128).Validate())

	bad := []Constraints{
		constraints(64, 0, 128),
		constraints(0, 0, 0),
		constraints(64, -1, 0),
		constraints(64, 0, -1),
		{MaxDimension: 64, Quality: 0},
		{MaxDimension: 64, Quality: 96},
	}
	for _, c := range bad {
		err := c.Validate()
		require.Error(t, err, "%+v", c)
		assert.True(t, errors.Is(err, ErrConfig), "%v", err)
		assert.False(t, errors.Is(err, ErrDecode))
	}
}
