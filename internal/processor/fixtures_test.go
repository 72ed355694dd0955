package processor

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

func testPipeline(root string, opts Options) *pipeline {
	return &pipeline{root: root, opts: opts, log: zap.NewNop()}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// halfTransparent is fully transparent on the left half and opaque red on the right.
func halfTransparent(w, h int) *image.NRGBA {
	img := solid(w, h, red)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 0x20, G: 0x40, B: 0x60, A: 0})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeJPEG encodes img and, when orientation is non-zero, inserts an
// APP1 EXIF segment carrying it right after SOI.
func writeJPEG(t *testing.T, path string, img image.Image, orientation uint16) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	data := buf.Bytes()

	if orientation != 0 {
		exif := append([]byte("Exif\x00\x00"), buildOrientationTIFF(orientation)...)
		var seg bytes.Buffer
		seg.Write([]byte{0xff, 0xe1})
		_ = binary.Write(&seg, binary.BigEndian, uint16(len(exif)+2))
		seg.Write(exif)

		out := append([]byte{}, data[:2]...)
		out = append(out, seg.Bytes()...)
		out = append(out, data[2:]...)
		data = out
	}

	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// writePNGWithOrientation encodes img and inserts an eXIf chunk carrying
// orientation right after IHDR.
func writePNGWithOrientation(t *testing.T, path string, img image.Image, orientation uint16) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	data := buf.Bytes()

	// 8-byte signature plus the 25-byte IHDR chunk.
	const afterIHDR = 8 + 25
	out := append([]byte{}, data[:afterIHDR]...)
	out = append(out, buildPNGChunk("eXIf", buildOrientationTIFF(orientation))...)
	out = append(out, data[afterIHDR:]...)
	require.NoError(t, os.WriteFile(path, out, 0o644))
}

func buildPNGChunk(kind string, payload []byte) []byte {
	var chunk bytes.Buffer
	_ = binary.Write(&chunk, binary.BigEndian, uint32(len(payload)))
	chunk.WriteString(kind)
	chunk.Write(payload)
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(payload)
	_ = binary.Write(&chunk, binary.BigEndian, crc.Sum32())
	return chunk.Bytes()
}

func buildOrientationTIFF(orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(1))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0112))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(3))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, orientation)
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	return tiff.Bytes()
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	return img, format
}

func isReddish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xb000 && g < 0x5000 && b < 0x5000
}

func isBluish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return b > 0xb000 && r < 0x5000 && g < 0x5000
}

type fileState struct {
	size    int64
	modTime int64
	content string
}

// snapshot records every file under root so tests can assert on mutations.
func snapshot(t *testing.T, root string) map[string]fileState {
	t.Helper()
	state := map[string]fileState{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			state[path+"/"] = fileState{}
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		state[path] = fileState{size: info.Size(), modTime: info.ModTime().UnixNano(), content: string(data)}
		return nil
	})
	require.NoError(t, err)
	return state
}
