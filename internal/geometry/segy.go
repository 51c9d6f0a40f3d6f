package geometry

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
)

// SEG-Y layout constants. Offsets follow the rev1 standard; the trace
// header words are the ones the export tooling around us actually fills.
const (
	segyTextHeaderSize  = 3200
	segyBinHeaderSize   = 400
	segyTraceHeaderSize = 240

	// Binary file header fields (offsets within the 400-byte header).
	binSampleInterval  = 16 // int16, microseconds
	binSamplesPerTrace = 20 // int16
	binFormatCode      = 24 // int16

	// Trace header words holding the 3-D grid coordinates.
	// Primary pair is the rev1 standard INLINE_3D/CROSSLINE_3D; the
	// fallback pair (FieldRecord/TraceNumber) is what older Petrel
	// exports and our own subcube writer use.
	trcInline3D    = 188
	trcCrossline3D = 192
	trcFieldRecord = 8
	trcTraceNumber = 12
)

// Supported sample format codes.
const (
	formatIBMFloat  = 1
	formatInt32     = 2
	formatInt16     = 3
	formatIEEEFloat = 5
)

// SEGY is a Geometry backed by a SEG-Y file. The whole trace index is
// built up front; sample data is read on demand.
type SEGY struct {
	file *os.File
	name string

	ns             int // samples per trace
	sampleInterval int // microseconds
	format         int
	sampleSize     int

	ilines []int32
	xlines []int32
	ilPos  map[int32]int
	xlPos  map[int32]int

	// traceOffset[i*nx+x] is the file offset of the trace's first sample,
	// or -1 for absent (zero) traces.
	traceOffset []int64
	zeroTraces  *Matrix
}

// OpenSEGY reads the file and binary headers and indexes every trace.
func OpenSEGY(path string) (*SEGY, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segy: %w", err)
	}

	g := &SEGY{file: f, name: shortName(path)}
	if err := g.readHeaders(); err != nil {
		f.Close()
		return nil, fmt.Errorf("segy %s: %w", g.name, err)
	}
	if err := g.buildIndex(); err != nil {
		f.Close()
		return nil, fmt.Errorf("segy %s: %w", g.name, err)
	}
	return g, nil
}

func (g *SEGY) readHeaders() error {
	hdr := make([]byte, segyBinHeaderSize)
	if _, err := g.file.ReadAt(hdr, segyTextHeaderSize); err != nil {
		return fmt.Errorf("binary header: %w", err)
	}

	g.ns = int(binary.BigEndian.Uint16(hdr[binSamplesPerTrace:]))
	g.sampleInterval = int(binary.BigEndian.Uint16(hdr[binSampleInterval:]))
	g.format = int(binary.BigEndian.Uint16(hdr[binFormatCode:]))

	if g.ns <= 0 {
		return fmt.Errorf("binary header: non-positive samples per trace %d", g.ns)
	}
	switch g.format {
	case formatIBMFloat, formatInt32, formatIEEEFloat:
		g.sampleSize = 4
	case formatInt16:
		g.sampleSize = 2
	default:
		return fmt.Errorf("binary header: unsupported sample format %d", g.format)
	}
	return nil
}

// traceCoord holds the grid coordinates read from one trace header.
type traceCoord struct {
	il, xl int32
	offset int64 // of the first sample
}

func (g *SEGY) buildIndex() error {
	info, err := g.file.Stat()
	if err != nil {
		return err
	}
	traceSize := int64(segyTraceHeaderSize + g.ns*g.sampleSize)
	dataStart := int64(segyTextHeaderSize + segyBinHeaderSize)
	nTraces := (info.Size() - dataStart) / traceSize
	if nTraces <= 0 {
		return fmt.Errorf("no traces (file size %d)", info.Size())
	}

	coords := make([]traceCoord, 0, nTraces)
	hdr := make([]byte, segyTraceHeaderSize)
	for t := int64(0); t < nTraces; t++ {
		pos := dataStart + t*traceSize
		if _, err := g.file.ReadAt(hdr, pos); err != nil {
			return fmt.Errorf("trace %d header: %w", t, err)
		}
		il := int32(binary.BigEndian.Uint32(hdr[trcInline3D:]))
		xl := int32(binary.BigEndian.Uint32(hdr[trcCrossline3D:]))
		if il == 0 && xl == 0 {
			il = int32(binary.BigEndian.Uint32(hdr[trcFieldRecord:]))
			xl = int32(binary.BigEndian.Uint32(hdr[trcTraceNumber:]))
		}
		coords = append(coords, traceCoord{il: il, xl: xl, offset: pos + segyTraceHeaderSize})
	}

	g.ilines, g.ilPos = uniqueSorted(coords, func(c traceCoord) int32 { return c.il })
	g.xlines, g.xlPos = uniqueSorted(coords, func(c traceCoord) int32 { return c.xl })

	ni, nx := len(g.ilines), len(g.xlines)
	g.traceOffset = make([]int64, ni*nx)
	for i := range g.traceOffset {
		g.traceOffset[i] = -1
	}
	for _, c := range coords {
		g.traceOffset[g.ilPos[c.il]*nx+g.xlPos[c.xl]] = c.offset
	}

	g.zeroTraces = NewMatrix(ni, nx)
	for i := 0; i < ni; i++ {
		for x := 0; x < nx; x++ {
			if g.traceOffset[i*nx+x] < 0 {
				g.zeroTraces.Set(i, x, 1)
			} else {
				g.zeroTraces.Set(i, x, 0)
			}
		}
	}
	return nil
}

func uniqueSorted(coords []traceCoord, pick func(traceCoord) int32) ([]int32, map[int32]int) {
	seen := make(map[int32]struct{})
	for _, c := range coords {
		seen[pick(c)] = struct{}{}
	}
	out := make([]int32, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	pos := make(map[int32]int, len(out))
	for i, v := range out {
		pos[v] = i
	}
	return out, pos
}

func (g *SEGY) ShortName() string        { return g.name }
func (g *SEGY) Lens() [3]int             { return [3]int{len(g.ilines), len(g.xlines), g.ns} }
func (g *SEGY) IndexHeaders() [3]string  { return axisLabels }
func (g *SEGY) Ilines() []int32          { return g.ilines }
func (g *SEGY) Xlines() []int32          { return g.xlines }
func (g *SEGY) ZeroTraces() *Matrix      { return g.zeroTraces }
func (g *SEGY) SampleInterval() int      { return g.sampleInterval }
func (g *SEGY) Close() error             { return g.file.Close() }

// Trace reads the full sample vector at grid position (i, x). Absent
// traces yield all-NaN vectors.
func (g *SEGY) Trace(i, x int) ([]float64, error) {
	out := make([]float64, g.ns)
	off := g.traceOffset[i*len(g.xlines)+x]
	if off < 0 {
		for k := range out {
			out[k] = math.NaN()
		}
		return out, nil
	}
	raw := make([]byte, g.ns*g.sampleSize)
	if _, err := g.file.ReadAt(raw, off); err != nil {
		return nil, fmt.Errorf("segy %s: trace (%d,%d): %w", g.name, i, x, err)
	}
	g.decodeSamples(raw, out)
	return out, nil
}

func (g *SEGY) decodeSamples(raw []byte, out []float64) {
	switch g.format {
	case formatIEEEFloat:
		for k := range out {
			bits := binary.BigEndian.Uint32(raw[k*4:])
			out[k] = float64(math.Float32frombits(bits))
		}
	case formatIBMFloat:
		for k := range out {
			out[k] = ibmToFloat(binary.BigEndian.Uint32(raw[k*4:]))
		}
	case formatInt32:
		for k := range out {
			out[k] = float64(int32(binary.BigEndian.Uint32(raw[k*4:])))
		}
	case formatInt16:
		for k := range out {
			out[k] = float64(int16(binary.BigEndian.Uint16(raw[k*2:])))
		}
	}
}

// ibmToFloat converts a big-endian IBM System/360 hexadecimal float.
func ibmToFloat(bits uint32) float64 {
	if bits == 0 {
		return 0
	}
	sign := 1.0
	if bits&0x80000000 != 0 {
		sign = -1
	}
	exp := int(bits>>24&0x7f) - 64
	frac := float64(bits&0x00ffffff) / float64(1<<24)
	return sign * frac * math.Pow(16, float64(exp))
}

// Slide extracts a 2-D section. Axis 0 fixes an inline (crosslines x
// depth), axis 1 fixes a crossline (inlines x depth), axis 2 fixes a
// depth sample (inlines x crosslines).
func (g *SEGY) Slide(loc, axis int) (*Matrix, error) {
	lens := g.Lens()
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("segy %s: invalid axis %d", g.name, axis)
	}
	if loc < 0 || loc >= lens[axis] {
		return nil, fmt.Errorf("segy %s: slide %d out of range [0, %d) on axis %s",
			g.name, loc, lens[axis], AxisLabel(axis))
	}

	switch axis {
	case AxisInline:
		m := NewMatrix(lens[1], lens[2])
		for x := 0; x < lens[1]; x++ {
			tr, err := g.Trace(loc, x)
			if err != nil {
				return nil, err
			}
			copy(m.Data[x*m.Cols:], tr)
		}
		return m, nil
	case AxisCrossline:
		m := NewMatrix(lens[0], lens[2])
		for i := 0; i < lens[0]; i++ {
			tr, err := g.Trace(i, loc)
			if err != nil {
				return nil, err
			}
			copy(m.Data[i*m.Cols:], tr)
		}
		return m, nil
	default: // AxisDepth
		m := NewMatrix(lens[0], lens[1])
		buf := make([]byte, g.sampleSize)
		one := make([]float64, 1)
		for i := 0; i < lens[0]; i++ {
			for x := 0; x < lens[1]; x++ {
				off := g.traceOffset[i*lens[1]+x]
				if off < 0 {
					continue
				}
				if _, err := g.file.ReadAt(buf, off+int64(loc*g.sampleSize)); err != nil {
					return nil, fmt.Errorf("segy %s: depth slide %d: %w", g.name, loc, err)
				}
				g.decodeSamples(buf, one)
				m.Set(i, x, one[0])
			}
		}
		return m, nil
	}
}
