package codec

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// sampleConfig mirrors what the pack pipeline produces: ids equal names.
func sampleConfig() *sheet.Config {
	hero := &sheet.Image{ID: "hero.png", Name: "hero.png", Width: 32, Height: 48}
	coin := &sheet.Image{
		ID: "coin.png", Name: "coin.png", Width: 10, Height: 12,
		Source: sheet.Size{W: 16, H: 16},
		Trim:   sheet.Rect{X: 3, Y: 2, W: 10, H: 12},
	}
	odd := &sheet.Image{ID: "a&b <1>.png", Name: "a&b <1>.png", Width: 5, Height: 7}

	layout := &sheet.Layout{
		Width:  64,
		Height: 64,
		Placements: []sheet.Placement{
			{Image: hero, X: 0, Y: 0, Width: 32, Height: 48},
			{Image: coin, X: 32, Y: 0, Width: 12, Height: 10, Rotated: true},
			{Image: odd, X: 32, Y: 10, Width: 5, Height: 7},
		},
	}
	return sheet.NewConfig(layout, "atlas.png", "")
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON{}, Plist{}} {
		t.Run(c.Name(), func(t *testing.T) {
			want := sampleConfig()
			data, err := c.Export(want)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			got, err := c.Parse(data)
			if err != nil {
				t.Fatalf("Parse failed: %v\n%s", err, data)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch\nwant %+v\ngot  %+v", want, got)
			}
		})
	}
}

func TestJSON_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"malformed", `{"frames": [`},
		{"no frames", `{"image": "a.png"}`},
		{"frames not array", `{"frames": {"a": {}}}`},
		{"null frames", `{"frames": null}`},
		{"not an object", `[1, 2]`},
		{"xml", `<?xml version="1.0"?><plist/>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := JSON{}.Parse([]byte(tc.content))
			if !sheet.IsKind(err, sheet.ErrInvalidConfig) {
				t.Errorf("Expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestJSON_ExportIndented(t *testing.T) {
	data, err := JSON{}.Export(sampleConfig())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"image\": \"atlas.png\"") {
		t.Errorf("expected two-space indentation:\n%s", data)
	}
}

func TestPlist_Export(t *testing.T) {
	data, err := Plist{}.Export(sampleConfig())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"<true/>",
		"<false/>",
		"<string>{{32,0},{10,12}}</string>",
		"<string>{{3,2},{10,12}}</string>",
		"<string>{16,16}</string>",
		"<key>a&amp;b &lt;1&gt;.png</key>",
		"<key>textureFileName</key>\n\t\t<string>atlas.png</string>",
		"<integer>2</integer>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export is missing %q", want)
		}
	}
	if strings.Index(out, "<key>frames</key>") > strings.Index(out, "<key>metadata</key>") {
		t.Error("frames must come before metadata")
	}
	// coin: colour rect centre (8,8) equals canvas centre (8,8)
	if !strings.Contains(out, "<key>offset</key>\n\t\t\t<string>{0,0}</string>") {
		t.Errorf("expected centred offset:\n%s", out)
	}
}

func TestPlist_ExportRejectsDuplicateNames(t *testing.T) {
	cfg := sampleConfig()
	cfg.Frames[1].Name = cfg.Frames[0].Name

	if _, err := (Plist{}).Export(cfg); !sheet.IsKind(err, sheet.ErrInvalidConfig) {
		t.Fatalf("Expected INVALID_CONFIG, got %v", err)
	}
}

const trimmedPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>frames</key>
    <dict>
        <key>full.png</key>
        <dict>
            <key>frame</key>
            <string>{{0,0},{10,10}}</string>
            <key>rotated</key>
            <false/>
            <key>sourceColorRect</key>
            <string>{{0,0},{10,10}}</string>
            <key>sourceSize</key>
            <string>{10,10}</string>
        </dict>
        <key>inset.png</key>
        <dict>
            <key>frame</key>
            <string>{{10.4,0},{6,5.6}}</string>
            <key>offset</key>
            <string>{0,-0.5}</string>
            <key>rotated</key>
            <string>true</string>
            <key>sourceColorRect</key>
            <string>{{2,2},{6,6}}</string>
            <key>sourceSize</key>
            <string>{10,10}</string>
        </dict>
        <key>bare.png</key>
        <dict>
            <key>frame</key>
            <string>{{20,0},{4,4}}</string>
        </dict>
    </dict>
    <key>metadata</key>
    <dict>
        <key>format</key>
        <integer>2</integer>
        <key>size</key>
        <string>{32,16}</string>
        <key>textureFileName</key>
        <string>sheet.png</string>
    </dict>
</dict>
</plist>
`

func TestPlist_Parse(t *testing.T) {
	cfg, err := Plist{}.Parse([]byte(trimmedPlist))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Image != "sheet.png" || cfg.Size != (sheet.Size{W: 32, H: 16}) || cfg.Scale != 1 {
		t.Errorf("unexpected header: image=%q size=%v scale=%v", cfg.Image, cfg.Size, cfg.Scale)
	}
	if cfg.Format != sheet.DefaultPixelFormat {
		t.Errorf("format = %q", cfg.Format)
	}
	if len(cfg.Frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(cfg.Frames))
	}

	full, inset, bare := cfg.Frames[0], cfg.Frames[1], cfg.Frames[2]
	if full.Name != "full.png" || full.ID != "full.png" || full.Trimmed {
		t.Errorf("full frame: %+v", full)
	}

	if !inset.Trimmed || !inset.Rotated {
		t.Errorf("inset frame should be trimmed and rotated: %+v", inset)
	}
	if inset.X != 10 || inset.Width != 6 || inset.Height != 6 {
		t.Errorf("fractional geometry not rounded: %+v", inset)
	}
	if *inset.SpriteSourceSize != (sheet.Rect{X: 2, Y: 2, W: 6, H: 6}) {
		t.Errorf("sourceColorRect = %v", *inset.SpriteSourceSize)
	}

	if bare.Trimmed || bare.Rotated {
		t.Errorf("bare frame: %+v", bare)
	}
	if *bare.SourceSize != (sheet.Size{W: 4, H: 4}) || *bare.SpriteSourceSize != (sheet.Rect{W: 4, H: 4}) {
		t.Errorf("bare frame defaults: source=%v color=%v", *bare.SourceSize, *bare.SpriteSourceSize)
	}
}

func TestPlist_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"not xml", `{"frames": []}`},
		{"no dict", `<plist version="1.0"><array/></plist>`},
		{"missing frames", `<plist><dict><key>metadata</key><dict/></dict></plist>`},
		{"missing metadata", `<plist><dict><key>frames</key><dict/></dict></plist>`},
		{"unclosed", `<plist><dict><key>frames</key><dict>`},
		{"missing frame rect", `<plist><dict><key>frames</key><dict><key>a</key><dict/></dict>` +
			`<key>metadata</key><dict/></dict></plist>`},
		{"bad rect", `<plist><dict><key>frames</key><dict><key>a</key><dict>` +
			`<key>frame</key><string>{1,2}</string></dict></dict><key>metadata</key><dict/></dict></plist>`},
		{"bad offset", `<plist><dict><key>frames</key><dict><key>a</key><dict>` +
			`<key>frame</key><string>{{0,0},{1,1}}</string><key>offset</key><string>left</string>` +
			`</dict></dict><key>metadata</key><dict/></dict></plist>`},
		{"duplicate frame name", `<plist><dict><key>frames</key><dict>` +
			`<key>a</key><dict><key>frame</key><string>{{0,0},{1,1}}</string></dict>` +
			`<key>a</key><dict><key>frame</key><string>{{1,0},{1,1}}</string></dict>` +
			`</dict><key>metadata</key><dict/></dict></plist>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Plist{}.Parse([]byte(tc.content))
			if !sheet.IsKind(err, sheet.ErrInvalidConfig) {
				t.Errorf("Expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestParsePlist_GenericValues(t *testing.T) {
	root, err := ParsePlist([]byte(`<dict>
		<key>list</key><array><integer>3</integer><real>1.5</real><true/><string> x </string></array>
		<key>nested</key><dict><key>k</key><false/></dict>
	</dict>`))
	if err != nil {
		t.Fatalf("ParsePlist failed: %v", err)
	}
	if !reflect.DeepEqual(root.Keys(), []string{"list", "nested"}) {
		t.Errorf("keys = %v", root.Keys())
	}

	list, _ := root.Get("list")
	if list.Kind != KindArray || len(list.Array) != 4 {
		t.Fatalf("list = %+v", list)
	}
	if list.Array[0].Int != 3 || list.Array[1].Real != 1.5 || !list.Array[2].Bool || list.Array[3].Str != " x " {
		t.Errorf("array values = %+v", list.Array)
	}

	nested, _ := root.Get("nested")
	if nested.Kind != KindDict {
		t.Fatalf("nested = %+v", nested)
	}
	if k, ok := nested.Dict.Get("k"); !ok || k.Kind != KindBool || k.Truthy() {
		t.Errorf("nested k = %+v", k)
	}
}

func TestGeometry(t *testing.T) {
	r, err := ParseRect(" { {1, 2} , {3,4} } ")
	if err != nil || r != (sheet.Rect{X: 1, Y: 2, W: 3, H: 4}) {
		t.Errorf("ParseRect = %v, %v", r, err)
	}
	p, err := ParsePoint("{-2.5,1e1}")
	if err != nil || p != (sheet.Point{X: -3, Y: 10}) {
		t.Errorf("ParsePoint = %v, %v", p, err)
	}
	for _, bad := range []string{"", "{1}", "{a,b}", "{{1,2},{3}}"} {
		if _, err := ParseRect(bad); err == nil {
			t.Errorf("ParseRect(%q) should fail", bad)
		}
	}
	if got := FormatRect(sheet.Rect{X: 1, Y: 2, W: 3, H: 4}); got != "{{1,2},{3,4}}" {
		t.Errorf("FormatRect = %q", got)
	}
	if got := formatOffset(0.5, -1); got != "{0.5,-1}" {
		t.Errorf("formatOffset = %q", got)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := Default()

	if c, ok := r.ByExtension(".JSON"); !ok || c.Name() != "JSON" {
		t.Errorf("ByExtension(.JSON) = %v, %v", c, ok)
	}
	if c, ok := r.ByFilename("dir/Sheet.PLIST"); !ok || c.Name() != "PLIST" {
		t.Errorf("ByFilename = %v, %v", c, ok)
	}
	if _, ok := r.ByFilename("noext"); ok {
		t.Error("ByFilename should miss names without extension")
	}
	if got := r.Extensions(); !reflect.DeepEqual(got, []string{"json", "plist"}) {
		t.Errorf("Extensions = %v", got)
	}
	if got := len(r.Codecs()); got != 2 {
		t.Errorf("Codecs = %d", got)
	}
}

func TestRegistry_Detect(t *testing.T) {
	r := Default()
	jsonData, _ := JSON{}.Export(sampleConfig())

	testCases := []struct {
		name     string
		content  []byte
		filename string
		want     string
	}{
		{"plist by content", []byte(trimmedPlist), "sheet.txt", "PLIST"},
		{"json by content", jsonData, "sheet.txt", "JSON"},
		{"extension wins", []byte(trimmedPlist), "sheet.json", "JSON"},
		{"no filename", []byte(trimmedPlist), "", "PLIST"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := r.Detect(tc.content, tc.filename)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if c.Name() != tc.want {
				t.Errorf("Detect = %s, want %s", c.Name(), tc.want)
			}
		})
	}

	_, err := r.Detect([]byte("hello"), "notes.txt")
	if !sheet.IsKind(err, sheet.ErrUnsupportedFormat) {
		t.Errorf("Expected UNSUPPORTED_FORMAT, got %v", err)
	}
}

func TestRegistry_ParseAndExport(t *testing.T) {
	r := Default()

	cfg, c, err := r.Parse([]byte(trimmedPlist), "upload.bin")
	if err != nil || c.Name() != "PLIST" || len(cfg.Frames) != 3 {
		t.Fatalf("Parse = %v, %v, %v", cfg, c, err)
	}

	// a known extension does not fall back to other codecs
	if _, _, err := r.Parse([]byte(trimmedPlist), "sheet.json"); !sheet.IsKind(err, sheet.ErrInvalidConfig) {
		t.Errorf("Expected INVALID_CONFIG, got %v", err)
	}

	data, c, err := r.Export(cfg, "out.unknown")
	if err != nil || c.Name() != "JSON" || !strings.HasPrefix(string(data), "{") {
		t.Errorf("Export fallback = %s, %v", c.Name(), err)
	}
	data, c, err = r.Export(cfg, "out.plist")
	if err != nil || c.MimeType() != "application/xml" || !strings.HasPrefix(string(data), "<?xml") {
		t.Errorf("Export plist = %v", err)
	}
}
