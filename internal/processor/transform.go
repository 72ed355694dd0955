package processor

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"texshrink/pkg/imgutil"
)

type pipeline struct {
	root string
	opts Options
	log  *zap.Logger
}

// process runs one candidate through inspection, decision and, unless in
// preview mode, the resize and write. It never panics on bad input and
// always returns an outcome.
func (p *pipeline) process(job Job) Outcome {
	out := Outcome{Path: job.Path}
	if job.Err != nil {
		return p.failed(out, newError(ErrKindDecode, job.Path, job.Err))
	}

	file, err := os.Open(job.Path)
	if err != nil {
		return p.failed(out, newError(ErrKindDecode, job.Path, err))
	}
	defer file.Close()

	info, err := p.inspect(file)
	if err != nil {
		return p.failed(out, newError(ErrKindDecode, job.Path, err))
	}
	out.Info = info

	out.Decision = Decide(info.Width, info.Height, p.opts.Constraints)
	p.log.Debug("decision",
		zap.String("path", job.Path),
		zap.Stringer("kind", info.Kind),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Int("orientation", info.Orientation),
		zap.Stringer("decision", out.Decision),
	)

	if !out.Decision.IsResize() {
		out.Status = StatusSkipped
		out.Message = fmt.Sprintf("skip  %s  (%dx%d)", job.Path, info.Width, info.Height)
		return out
	}

	dest, err := p.opts.Policy.Resolve(job.Path, p.root, !p.opts.DryRun)
	if err != nil {
		return p.failed(out, err)
	}
	out.Dest = dest

	msg := fmt.Sprintf("resize %s  %dx%d -> %dx%d", job.Path, info.Width, info.Height, out.Decision.Width, out.Decision.Height)
	if p.opts.Policy.IsMirror() {
		msg += fmt.Sprintf("  =>  %s", dest)
	}
	if info.HasAlpha && !imgutil.KindFromExt(dest).HasAlpha() {
		msg += "  (alpha dropped)"
	}

	if p.opts.DryRun {
		out.Status = StatusChanged
		out.Message = "[dry-run] " + msg
		return out
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return p.failed(out, newError(ErrKindDecode, job.Path, err))
	}
	img, err := imaging.Decode(file)
	if err != nil {
		return p.failed(out, newError(ErrKindDecode, job.Path, err))
	}

	img = orient(img, info.Orientation)
	resized := imaging.Resize(img, out.Decision.Width, out.Decision.Height, imaging.Lanczos)

	srcInfo, err := file.Stat()
	if err != nil {
		return p.failed(out, newError(ErrKindDecode, job.Path, err))
	}
	if err := writeImage(resized, dest, srcInfo.Mode().Perm(), p.opts.Constraints.Quality); err != nil {
		return p.failed(out, err)
	}

	out.Status = StatusChanged
	out.Message = msg
	return out
}

func (p *pipeline) failed(out Outcome, err error) Outcome {
	out.Status = StatusErrored
	out.Err = err
	cause := err
	var perr *Error
	if errors.As(err, &perr) && perr.Err != nil {
		cause = fmt.Errorf("%s: %w", perr.Kind.sentinel(), perr.Err)
	}
	out.Message = fmt.Sprintf("ERROR %s: %v", out.Path, cause)
	p.log.Warn("file failed", zap.String("path", out.Path), zap.Error(err))
	return out
}

// inspect reads the format, stored dimensions and EXIF orientation of an
// image without decoding its pixels. Width and height are upright.
func (p *pipeline) inspect(rs io.ReadSeeker) (ImageInfo, error) {
	info := ImageInfo{Orientation: orientationNormal}

	kind, err := imgutil.SniffReader(rs)
	if err != nil {
		return info, err
	}
	if kind == imgutil.KindUnknown {
		return info, errors.New("unsupported or corrupt image content")
	}
	info.Kind = kind

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return info, err
	}

	var cfg image.Config
	switch kind {
	case imgutil.KindPNG:
		cfg, err = png.DecodeConfig(rs)
	case imgutil.KindJPEG:
		cfg, err = jpeg.DecodeConfig(rs)
	}
	if err != nil {
		return info, err
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	info.HasAlpha = modelHasAlpha(cfg.ColorModel)

	orientation, err := readOrientation(rs)
	if err != nil {
		p.log.Debug("unreadable exif, assuming upright", zap.Error(err))
	}
	info.Orientation = orientation
	if swapsAxes(orientation) {
		info.Width, info.Height = info.Height, info.Width
	}

	return info, nil
}

func modelHasAlpha(m color.Model) bool {
	switch m {
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if palette, ok := m.(color.Palette); ok {
		for _, c := range palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// writeImage encodes img for the format family of dest and replaces dest
// atomically. mode is applied to the new file.
func writeImage(img image.Image, dest string, mode os.FileMode, quality int) error {
	kind := imgutil.KindFromExt(dest)
	if kind == imgutil.KindUnknown {
		return newError(ErrKindEncode, dest, errors.New("no encoder for destination extension"))
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".texshrink-*.tmp")
	if err != nil {
		return newError(ErrKindWrite, dest, err)
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return newError(ErrKindWrite, dest, err)
	}

	bw := bufio.NewWriter(tmpFile)
	if err := encode(bw, img, kind, quality); err != nil {
		_ = tmpFile.Close()
		return newError(ErrKindEncode, dest, err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmpFile.Close()
		return newError(ErrKindWrite, dest, err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return newError(ErrKindWrite, dest, err)
	}
	if err := tmpFile.Close(); err != nil {
		return newError(ErrKindWrite, dest, err)
	}

	if err := replaceFile(tmpFile.Name(), dest); err != nil {
		return newError(ErrKindWrite, dest, err)
	}
	return nil
}

func encode(w io.Writer, img image.Image, kind imgutil.Kind, quality int) error {
	switch kind {
	case imgutil.KindPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case imgutil.KindJPEG:
		return imaging.Encode(w, dropAlpha(img), imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("unsupported output kind %s", kind)
	}
}

// dropAlpha returns an opaque copy of img. Colour values are kept as
// stored; transparency is discarded rather than blended.
func dropAlpha(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
