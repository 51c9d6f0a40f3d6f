package geometry

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// QBlob is the converted cube format: a JSON index followed by the full
// volume as little-endian float32 in (iline, xline, depth) order. Absent
// traces are stored as NaN. Conversion pays off whenever depth slides or
// repeated metric windows are needed, which is exactly the batch
// reporter's access pattern.
//
// Layout: magic "QBLB", uint32 LE header length, JSON header, data.
var qblobMagic = [4]byte{'Q', 'B', 'L', 'B'}

type qblobHeader struct {
	Ilines         []int32 `json:"ilines"`
	Xlines         []int32 `json:"xlines"`
	Samples        int     `json:"samples"`
	SampleInterval int     `json:"sample_interval"`
}

// QBlob implements Geometry over a converted cube file.
type QBlob struct {
	file *os.File
	name string
	hdr  qblobHeader

	dataStart  int64
	zeroTraces *Matrix
}

// OpenQBlob opens a converted cube and scans the per-trace presence mask.
func OpenQBlob(path string) (*QBlob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("qblob: %w", err)
	}
	g := &QBlob{file: f, name: shortName(path)}

	var magic [4]byte
	if _, err := f.ReadAt(magic[:], 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("qblob %s: magic: %w", g.name, err)
	}
	if magic != qblobMagic {
		f.Close()
		return nil, fmt.Errorf("qblob %s: bad magic %q", g.name, magic[:])
	}
	var lenBuf [4]byte
	if _, err := f.ReadAt(lenBuf[:], 4); err != nil {
		f.Close()
		return nil, fmt.Errorf("qblob %s: header length: %w", g.name, err)
	}
	hdrLen := binary.LittleEndian.Uint32(lenBuf[:])
	raw := make([]byte, hdrLen)
	if _, err := f.ReadAt(raw, 8); err != nil {
		f.Close()
		return nil, fmt.Errorf("qblob %s: header: %w", g.name, err)
	}
	if err := json.Unmarshal(raw, &g.hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("qblob %s: header: %w", g.name, err)
	}
	if len(g.hdr.Ilines) == 0 || len(g.hdr.Xlines) == 0 || g.hdr.Samples <= 0 {
		f.Close()
		return nil, fmt.Errorf("qblob %s: degenerate extents", g.name)
	}
	g.dataStart = int64(8 + hdrLen)

	if err := g.scanZeroTraces(); err != nil {
		f.Close()
		return nil, err
	}
	return g, nil
}

// scanZeroTraces marks traces whose first sample is NaN as absent.
// Conversion writes whole-trace NaN for missing grid positions, so one
// sample per trace is enough.
func (g *QBlob) scanZeroTraces() error {
	ni, nx := len(g.hdr.Ilines), len(g.hdr.Xlines)
	g.zeroTraces = NewMatrix(ni, nx)
	buf := make([]byte, 4)
	for i := 0; i < ni; i++ {
		for x := 0; x < nx; x++ {
			off := g.traceStart(i, x)
			if _, err := g.file.ReadAt(buf, off); err != nil {
				return fmt.Errorf("qblob %s: scan (%d,%d): %w", g.name, i, x, err)
			}
			v := math.Float32frombits(binary.LittleEndian.Uint32(buf))
			if math.IsNaN(float64(v)) {
				g.zeroTraces.Set(i, x, 1)
			} else {
				g.zeroTraces.Set(i, x, 0)
			}
		}
	}
	return nil
}

func (g *QBlob) traceStart(i, x int) int64 {
	nx := int64(len(g.hdr.Xlines))
	ns := int64(g.hdr.Samples)
	return g.dataStart + ((int64(i)*nx+int64(x))*ns)*4
}

func (g *QBlob) ShortName() string       { return g.name }
func (g *QBlob) Lens() [3]int            { return [3]int{len(g.hdr.Ilines), len(g.hdr.Xlines), g.hdr.Samples} }
func (g *QBlob) IndexHeaders() [3]string { return axisLabels }
func (g *QBlob) Ilines() []int32         { return g.hdr.Ilines }
func (g *QBlob) Xlines() []int32         { return g.hdr.Xlines }
func (g *QBlob) ZeroTraces() *Matrix     { return g.zeroTraces }
func (g *QBlob) Close() error            { return g.file.Close() }

// Trace reads the full sample vector at grid position (i, x).
func (g *QBlob) Trace(i, x int) ([]float64, error) {
	raw := make([]byte, g.hdr.Samples*4)
	if _, err := g.file.ReadAt(raw, g.traceStart(i, x)); err != nil {
		return nil, fmt.Errorf("qblob %s: trace (%d,%d): %w", g.name, i, x, err)
	}
	out := make([]float64, g.hdr.Samples)
	for k := range out {
		out[k] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[k*4:])))
	}
	return out, nil
}

// Slide extracts a 2-D section; axis semantics match SEGY.Slide.
func (g *QBlob) Slide(loc, axis int) (*Matrix, error) {
	lens := g.Lens()
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("qblob %s: invalid axis %d", g.name, axis)
	}
	if loc < 0 || loc >= lens[axis] {
		return nil, fmt.Errorf("qblob %s: slide %d out of range [0, %d) on axis %s",
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
		buf := make([]byte, 4)
		for i := 0; i < lens[0]; i++ {
			for x := 0; x < lens[1]; x++ {
				off := g.traceStart(i, x) + int64(loc)*4
				if _, err := g.file.ReadAt(buf, off); err != nil {
					return nil, fmt.Errorf("qblob %s: depth slide %d: %w", g.name, loc, err)
				}
				m.Set(i, x, float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))))
			}
		}
		return m, nil
	}
}

// ConvertSEGY writes a SEG-Y cube out in QBlob form. Absent grid
// positions become NaN traces.
func ConvertSEGY(src *SEGY, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("qblob convert: %w", err)
	}
	defer out.Close()

	hdr := qblobHeader{
		Ilines:         src.Ilines(),
		Xlines:         src.Xlines(),
		Samples:        src.Lens()[2],
		SampleInterval: src.SampleInterval(),
	}
	rawHdr, err := json.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("qblob convert: header: %w", err)
	}

	w := bufio.NewWriterSize(out, 1<<20)
	if _, err := w.Write(qblobMagic[:]); err != nil {
		return fmt.Errorf("qblob convert: %w", err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(rawHdr)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("qblob convert: %w", err)
	}
	if _, err := w.Write(rawHdr); err != nil {
		return fmt.Errorf("qblob convert: %w", err)
	}

	lens := src.Lens()
	sample := make([]byte, 4)
	for i := 0; i < lens[0]; i++ {
		for x := 0; x < lens[1]; x++ {
			tr, err := src.Trace(i, x)
			if err != nil {
				return err
			}
			for _, v := range tr {
				binary.LittleEndian.PutUint32(sample, math.Float32bits(float32(v)))
				if _, err := w.Write(sample); err != nil {
					return fmt.Errorf("qblob convert: %w", err)
				}
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("qblob convert: %w", err)
	}
	return nil
}
