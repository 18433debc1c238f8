package workspace

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/kiesman99/spritepack/internal/atlas"
	"github.com/kiesman99/spritepack/internal/host"
	"github.com/kiesman99/spritepack/pkg/raster"
	"github.com/kiesman99/spritepack/pkg/sheet"
)

func writePNG(t *testing.T, fs afero.Fs, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	for y := 0; y < h; y++ {
		img.SetNRGBA(0, y, color.NRGBA{R: 9, A: 255})
	}
	data, err := raster.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func setup(t *testing.T) (afero.Fs, *Workspace) {
	t.Helper()
	fs := afero.NewMemMapFs()
	writePNG(t, fs, filepath.Join("sprites", "b.png"), 12, 20)
	writePNG(t, fs, filepath.Join("sprites", "a.png"), 16, 8)
	writePNG(t, fs, filepath.Join("extra", "c.png"), 5, 5)
	if err := afero.WriteFile(fs, filepath.Join("sprites", "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	return fs, New(host.New(fs, nil), nil)
}

func TestCollectInputs(t *testing.T) {
	_, ws := setup(t)

	inputs, err := ws.CollectInputs([]string{"sprites", filepath.Join("extra", "c.png")})
	if err != nil {
		t.Fatalf("CollectInputs failed: %v", err)
	}
	var names []string
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	if !reflect.DeepEqual(names, []string{"a.png", "b.png", "c.png"}) {
		t.Errorf("names = %v", names)
	}
}

func TestCollectInputs_Errors(t *testing.T) {
	fs, ws := setup(t)
	if err := fs.MkdirAll("empty", 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := ws.CollectInputs([]string{"empty"}); !sheet.IsKind(err, sheet.ErrEmptyInput) {
		t.Errorf("Expected EMPTY_INPUT, got %v", err)
	}
	if _, err := ws.CollectInputs([]string{"sprites", filepath.Join("sprites", "a.png")}); err == nil ||
		!strings.Contains(err.Error(), "duplicate") {
		t.Errorf("Expected duplicate name error, got %v", err)
	}
	if _, err := ws.CollectInputs([]string{"missing.png"}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPackUnpackConvert(t *testing.T) {
	fs, ws := setup(t)
	ctx := context.Background()

	opts := atlas.DefaultOptions()
	opts.ImageName = "sheet.png"
	opts.ManifestFormat = "plist"
	written, err := ws.Pack(ctx, []string{"sprites", "extra"}, PackOptions{Atlas: opts, OutDir: "out"})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	want := []string{filepath.Join("out", "sheet.png"), filepath.Join("out", "sheet.plist")}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}

	frames, err := ws.Unpack(ctx, UnpackOptions{Manifest: filepath.Join("out", "sheet.plist"), OutDir: "frames"})
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("Expected 3 frames, got %v", frames)
	}
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		orig, _ := afero.ReadFile(fs, filepath.Join("sprites", name))
		if name == "c.png" {
			orig, _ = afero.ReadFile(fs, filepath.Join("extra", name))
		}
		got, err := afero.ReadFile(fs, filepath.Join("frames", name))
		if err != nil {
			t.Fatalf("frame %s not written: %v", name, err)
		}
		a, _, _ := raster.Decode(orig)
		b, _, _ := raster.Decode(got)
		if !reflect.DeepEqual(raster.ToNRGBA(a).Pix, raster.ToNRGBA(b).Pix) {
			t.Errorf("frame %s differs from its source", name)
		}
	}

	zipped, err := ws.Unpack(ctx, UnpackOptions{Manifest: filepath.Join("out", "sheet.plist"), OutDir: "zipped", Zip: true})
	if err != nil {
		t.Fatalf("Unpack zip failed: %v", err)
	}
	if !reflect.DeepEqual(zipped, []string{filepath.Join("zipped", "sheet.zip")}) {
		t.Errorf("zip output = %v", zipped)
	}

	out := filepath.Join("out", "sheet.json")
	if err := ws.Convert(ctx, filepath.Join("out", "sheet.plist"), out); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	data, err := afero.ReadFile(fs, out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"image": "sheet.png"`) {
		t.Errorf("converted manifest:\n%s", data)
	}
}

func TestUnpack_MissingSheetImage(t *testing.T) {
	fs, ws := setup(t)
	manifest := `{"image": "gone.png", "frames": [{"name": "a", "width": 1, "height": 1}]}`
	if err := afero.WriteFile(fs, "m.json", []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ws.Unpack(context.Background(), UnpackOptions{Manifest: "m.json", OutDir: "x"})
	if !sheet.IsKind(err, sheet.ErrMissingImageData) {
		t.Errorf("Expected MISSING_IMAGE_DATA, got %v", err)
	}
}
