package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const cubeCornerASCII = `solid corner
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 2 0 0
      vertex 0 4 0
    endloop
  endfacet
  facet normal 1 0 0
    outer loop
      vertex 0 0 0
      vertex 0 4 0
      vertex 0 0 6
    endloop
  endfacet
endsolid corner
`

func TestParseASCIISwapsYAndZ(t *testing.T) {
	f, err := Parse([]byte(cubeCornerASCII))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Binary {
		t.Fatal("expected ASCII parse")
	}
	if len(f.Facets) != 2 || len(f.Vertices) != 6 {
		t.Fatalf("facets=%d vertices=%d, want 2 and 6", len(f.Facets), len(f.Vertices))
	}
	// file (0 4 0) lands on Z, file normal (0 0 1) lands on Y.
	if got := f.Facets[0].V3; got != (Vec3{X: 0, Y: 0, Z: 4}) {
		t.Fatalf("V3 = %+v", got)
	}
	if got := f.Facets[0].Normal; got != (Vec3{Y: 1}) {
		t.Fatalf("normal = %+v", got)
	}
}

func TestStats(t *testing.T) {
	f, err := Parse([]byte(cubeCornerASCII))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := f.Stats
	if s.Min != (Vec3{}) || s.Max != (Vec3{X: 2, Y: 6, Z: 4}) {
		t.Fatalf("bounds = %+v..%+v", s.Min, s.Max)
	}
	if s.Size != (Vec3{X: 2, Y: 6, Z: 4}) {
		t.Fatalf("size = %+v", s.Size)
	}
	if math.Abs(float64(s.Scale)-1.0/6) > 1e-6 {
		t.Fatalf("scale = %v, want 1/6", s.Scale)
	}
	if s.Translate != (Vec3{X: -1, Y: -3, Z: -2}) {
		t.Fatalf("translate = %+v", s.Translate)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	src, err := Parse([]byte(cubeCornerASCII))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteBinary(&buf, src.Facets); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	if buf.Len() != headerSize+2*facetSize {
		t.Fatalf("encoded length = %d", buf.Len())
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(Signature)) {
		t.Fatal("missing header signature")
	}

	got, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse binary: %v", err)
	}
	if !got.Binary {
		t.Fatal("expected binary parse")
	}
	for i := range src.Facets {
		if got.Facets[i] != src.Facets[i] {
			t.Fatalf("facet %d = %+v, want %+v", i, got.Facets[i], src.Facets[i])
		}
	}
}

func TestBinaryCountMismatchFallsBackToASCII(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBinary(&buf, []Facet{{}}); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[junkSize:], 7)

	// Header junk does not start with "solid", so the ASCII fallback rejects it.
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for inconsistent binary without ASCII content")
	}
}

func TestEmptyMeshRejected(t *testing.T) {
	if _, err := Parse([]byte("solid empty\nendsolid empty\n")); !errors.Is(err, ErrNoFacets) {
		t.Fatalf("err = %v, want ErrNoFacets", err)
	}
	var buf bytes.Buffer
	WriteBinary(&buf, nil)
	if _, err := Parse(buf.Bytes()); !errors.Is(err, ErrNoFacets) {
		t.Fatalf("binary err = %v, want ErrNoFacets", err)
	}
}

func TestASCIIBadNumber(t *testing.T) {
	bad := "solid x\nfacet normal 0 0 q\nouter loop\nvertex 0 0 0\nvertex 0 0 0\nvertex 0 0 0\nendloop\nendfacet\nendsolid\n"
	if _, err := Parse([]byte(bad)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "corner.stl")
	if err := os.WriteFile(in, []byte(cubeCornerASCII), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != in {
		t.Fatalf("Name = %q", f.Name)
	}
	out := filepath.Join(dir, "corner-bin.stl")
	if err := f.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	g, err := Load(out)
	if err != nil {
		t.Fatalf("Load saved: %v", err)
	}
	if g.Stats != f.Stats {
		t.Fatalf("stats differ after save: %+v vs %+v", g.Stats, f.Stats)
	}
	if _, err := Load(filepath.Join(dir, "missing.stl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
