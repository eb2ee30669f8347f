// Package stl reads and writes STL triangle meshes. Vertices are stored
// Y-up: the file's Z axis is read into Y and vice versa.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	headerSize = 84
	junkSize   = 80
	facetSize  = 50

	// Header written by WriteBinary.
	Signature = "deskmirror STL"
)

var ErrNoFacets = errors.New("stl: no facets")

type Vec3 struct {
	X, Y, Z float32
}

type Facet struct {
	Normal     Vec3
	V1, V2, V3 Vec3
}

// Stats is the bounding box of a mesh and the transform that centres it
// and scales its largest extent to 1.
type Stats struct {
	Min, Max  Vec3
	Size      Vec3
	Scale     float32
	Translate Vec3
}

type File struct {
	Name     string
	Binary   bool
	Facets   []Facet
	Vertices []Vec3
	Stats    Stats
}

// Load reads the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Name = path
	return f, nil
}

// Parse decodes binary STL when the length and facet count agree, and falls
// back to ASCII otherwise.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if facets, ok := parseBinary(data); ok {
		f.Facets, f.Binary = facets, true
	} else {
		facets, err := parseASCII(data)
		if err != nil {
			return nil, err
		}
		f.Facets = facets
	}
	if len(f.Facets) == 0 {
		return nil, ErrNoFacets
	}
	f.Vertices = make([]Vec3, 0, len(f.Facets)*3)
	for _, fc := range f.Facets {
		f.Vertices = append(f.Vertices, fc.V1, fc.V2, fc.V3)
	}
	f.Stats = ComputeStats(f.Facets)
	return f, nil
}

func parseBinary(data []byte) ([]Facet, bool) {
	if len(data) < headerSize || (len(data)-headerSize)%facetSize != 0 {
		return nil, false
	}
	n := (len(data) - headerSize) / facetSize
	if binary.LittleEndian.Uint32(data[junkSize:headerSize]) != uint32(n) {
		return nil, false
	}
	facets := make([]Facet, n)
	off := headerSize
	for i := range facets {
		rec := data[off : off+facetSize]
		facets[i] = Facet{
			Normal: readVec(rec[0:]),
			V1:     readVec(rec[12:]),
			V2:     readVec(rec[24:]),
			V3:     readVec(rec[36:]),
		}
		off += facetSize
	}
	return facets, true
}

func readVec(b []byte) Vec3 {
	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])) }
	return Vec3{X: f(0), Z: f(1), Y: f(2)}
}

func parseASCII(data []byte) ([]Facet, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64<<10), 1<<20)

	line := 0
	next := func() ([]string, bool) {
		for sc.Scan() {
			line++
			if fields := strings.Fields(sc.Text()); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}

	head, ok := next()
	if !ok || !strings.EqualFold(head[0], "solid") {
		return nil, errors.New("stl: not a binary STL and missing \"solid\" header")
	}

	var facets []Facet
	for {
		fields, ok := next()
		if !ok || strings.EqualFold(fields[0], "endsolid") {
			break
		}
		if fields[0] != "facet" {
			return nil, fmt.Errorf("stl: line %d: expected facet, got %q", line, fields[0])
		}
		var fc Facet
		var err error
		if fc.Normal, err = asciiVec(fields, 2, line); err != nil {
			return nil, err
		}
		if _, ok := next(); !ok { // outer loop
			return nil, io.ErrUnexpectedEOF
		}
		for _, v := range []*Vec3{&fc.V1, &fc.V2, &fc.V3} {
			fields, ok := next()
			if !ok {
				return nil, io.ErrUnexpectedEOF
			}
			if *v, err = asciiVec(fields, 1, line); err != nil {
				return nil, err
			}
		}
		next() // endloop
		next() // endfacet
		facets = append(facets, fc)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return facets, nil
}

func asciiVec(fields []string, skip, line int) (Vec3, error) {
	if len(fields) < skip+3 {
		return Vec3{}, fmt.Errorf("stl: line %d: want 3 coordinates", line)
	}
	var c [3]float32
	for i := range c {
		v, err := strconv.ParseFloat(fields[skip+i], 32)
		if err != nil {
			return Vec3{}, fmt.Errorf("stl: line %d: %w", line, err)
		}
		c[i] = float32(v)
	}
	return Vec3{X: c[0], Z: c[1], Y: c[2]}, nil
}

// ComputeStats returns the bounding box of facets. facets must not be empty.
func ComputeStats(facets []Facet) Stats {
	lo, hi := facets[0].V1, facets[0].V1
	for _, fc := range facets {
		for _, v := range [3]Vec3{fc.V1, fc.V2, fc.V3} {
			lo = Vec3{min(lo.X, v.X), min(lo.Y, v.Y), min(lo.Z, v.Z)}
			hi = Vec3{max(hi.X, v.X), max(hi.Y, v.Y), max(hi.Z, v.Z)}
		}
	}
	size := Vec3{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z}
	s := Stats{Min: lo, Max: hi, Size: size}
	if extent := max(size.X, size.Y, size.Z); extent > 0 {
		s.Scale = 1 / extent
	} else {
		s.Scale = 1
	}
	s.Translate = Vec3{
		X: -(size.X/2 + lo.X),
		Y: -(size.Y/2 + lo.Y),
		Z: -(size.Z/2 + lo.Z),
	}
	return s
}

// WriteBinary encodes facets as binary STL, swapping Y and Z back so a
// written file reads back to the same mesh.
func WriteBinary(w io.Writer, facets []Facet) error {
	bw := bufio.NewWriter(w)
	var header [headerSize]byte
	copy(header[:junkSize], Signature)
	binary.LittleEndian.PutUint32(header[junkSize:], uint32(len(facets)))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	var rec [facetSize]byte
	for _, fc := range facets {
		for i, v := range [4]Vec3{fc.Normal, fc.V1, fc.V2, fc.V3} {
			o := i * 12
			binary.LittleEndian.PutUint32(rec[o:], math.Float32bits(v.X))
			binary.LittleEndian.PutUint32(rec[o+4:], math.Float32bits(v.Z))
			binary.LittleEndian.PutUint32(rec[o+8:], math.Float32bits(v.Y))
		}
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes f's facets to path as binary STL.
func (f *File) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteBinary(out, f.Facets); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
