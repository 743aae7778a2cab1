package lstm

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileExt is the extension of files written by SaveFile.
const FileExt = ".vanilla"

// A Tensor is the persisted form of a Param.
type Tensor struct {
	Rows int
	Cols int
	V    []float64
	D    []float64
	M    []float64
}

// A Snapshot maps each Param name to a copy of its buffers.
type Snapshot map[string]Tensor

// Snapshot returns a deep copy of all buffers of p.
func (p *Parameters) Snapshot() Snapshot {
	s := make(Snapshot, 10)
	for _, w := range p.All() {
		s[w.Name] = Tensor{
			Rows: w.Rows,
			Cols: w.Cols,
			V:    append([]float64(nil), w.V...),
			D:    append([]float64(nil), w.D...),
			M:    append([]float64(nil), w.M...),
		}
	}
	return s
}

// Restore copies the buffers in s into p.
// Every tensor is validated before p is modified, so a failed Restore leaves p untouched.
func (p *Parameters) Restore(s Snapshot) error {
	for _, w := range p.All() {
		t, ok := s[w.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingParameter, w.Name)
		}
		if t.Rows != w.Rows || t.Cols != w.Cols {
			return fmt.Errorf("%w: %s is %dx%d, got %dx%d", ErrShapeMismatch, w.Name, w.Rows, w.Cols, t.Rows, t.Cols)
		}
		n := w.Len()
		if len(t.V) != n || len(t.D) != n || len(t.M) != n {
			return fmt.Errorf("%w: %s buffers have lengths %d, %d, %d, want %d", ErrShapeMismatch, w.Name, len(t.V), len(t.D), len(t.M), n)
		}
	}
	for _, w := range p.All() {
		t := s[w.Name]
		copy(w.V, t.V)
		copy(w.D, t.D)
		copy(w.M, t.M)
	}
	return nil
}

type weightsFile struct {
	HSize    int
	ZSize    int
	NClasses int
	Params   Snapshot
}

// Save writes p to w in JSON.
func (p *Parameters) Save(w io.Writer) error {
	f := weightsFile{HSize: p.HSize, ZSize: p.ZSize, NClasses: p.NClasses, Params: p.Snapshot()}
	return json.NewEncoder(w).Encode(f)
}

// Load reads Parameters written by Save.
func Load(r io.Reader) (*Parameters, error) {
	var f weightsFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	if f.HSize <= 0 || f.NClasses <= 0 || f.ZSize <= f.HSize {
		return nil, fmt.Errorf("%w: H=%d Z=%d N=%d", ErrInvalidDimension, f.HSize, f.ZSize, f.NClasses)
	}
	p := newEmptyParameters(f.HSize, f.ZSize, f.NClasses)
	if err := p.Restore(f.Params); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveFile writes p to the file at path, which must end in FileExt.
func (p *Parameters) SaveFile(path string) error {
	if filepath.Ext(path) != FileExt {
		return fmt.Errorf("%w: %s", ErrBadExtension, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads Parameters from the file at path, which must end in FileExt.
func LoadFile(path string) (*Parameters, error) {
	if filepath.Ext(path) != FileExt {
		return nil, fmt.Errorf("%w: %s", ErrBadExtension, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
