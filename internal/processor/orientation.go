package processor

import (
	"errors"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

const orientationNormal = 1

// readOrientation returns the EXIF orientation (1-8) stored in rs, or 1
// when there is no usable tag.
func readOrientation(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return orientationNormal, err
	}

	// The EXIF block sits inside an APP1 segment in JPEG and an eXIf
	// chunk in PNG; locate the TIFF header before parsing.
	raw, err := exif.SearchAndExtractExifWithReader(rs)
	if err != nil {
		if errorsIsNoExif(err) {
			return orientationNormal, nil
		}
		return orientationNormal, err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return orientationNormal, err
	}

	for _, tag := range tags {
		// IFD1 describes the embedded thumbnail, not the image.
		if tag.TagName != "Orientation" || tag.IfdPath == "IFD1" {
			continue
		}
		if v, ok := orientationValue(tag); ok {
			return v, nil
		}
	}

	return orientationNormal, nil
}

func orientationValue(tag exif.ExifTag) (int, bool) {
	var v int
	switch value := tag.Value.(type) {
	case []uint16:
		if len(value) == 0 {
			return 0, false
		}
		v = int(value[0])
	case []uint32:
		if len(value) == 0 {
			return 0, false
		}
		v = int(value[0])
	default:
		parsed, err := strconv.Atoi(strings.Trim(tag.FormattedFirst, "[] "))
		if err != nil {
			return 0, false
		}
		v = parsed
	}
	if v < 1 || v > 8 {
		return 0, false
	}
	return v, true
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

// swapsAxes reports whether orientation o stores the image rotated by a
// quarter turn, so the upright width is the stored height.
func swapsAxes(o int) bool {
	return o >= 5 && o <= 8
}

// orient returns img transformed so that it displays upright.
func orient(img image.Image, o int) image.Image {
	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
