package imaging

import (
	"bufio"
	"os"
	"sync"
)

// LoadFile opens path and decodes it as a P5 image.
//
// Parameters:
//   - path: Absolute or relative path to a binary PGM file.
//   - opts: Optional decode settings such as WithByteOrder.
//
// Returns:
//   - *Grid: The decoded samples.
//   - error: *IoError if the file cannot be opened or read (use
//     errors.Is(err, fs.ErrNotExist) to detect a missing file),
//     *FormatError if the contents are not a valid P5 stream.
func LoadFile(path string, opts ...DecodeOption) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	g, err := Decode(bufio.NewReader(f), opts...)
	if err != nil {
		if ioErr, ok := err.(*IoError); ok && ioErr.Path == "" {
			ioErr.Path = path
		}
		return nil, err
	}
	return g, nil
}

// SaveFile encodes g as an 8-bit P5 image at path, creating or truncating
// the file.
//
// The file handle is closed on every path. If encoding fails part way, a
// partially written file may remain on disk.
func SaveFile(path string, g *Grid) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &IoError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IoError{Op: "close", Path: path, Err: cerr}
		}
	}()

	w := bufio.NewWriter(f)
	if err := Encode(w, g); err != nil {
		if ioErr, ok := err.(*IoError); ok {
			ioErr.Path = path
		}
		return err
	}
	if err := w.Flush(); err != nil {
		return &IoError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// FileInfo describes a PGM file on disk without decoding its pixels.
type FileInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Maxval is the declared maximum sample value.
	Maxval int `json:"maxval"`

	// BitDepth is "8-bit" or "16-bit", derived from Maxval.
	BitDepth string `json:"bit_depth"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Inspect reads only the header of the PGM file at path.
func Inspect(path string) (*FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, &IoError{Op: "stat", Path: path, Err: err}
	}

	hdr, err := ReadHeader(f)
	if err != nil {
		return nil, err
	}

	depth := "8-bit"
	if hdr.Depth() == Depth16 {
		depth = "16-bit"
	}

	return &FileInfo{
		Width:         hdr.Width,
		Height:        hdr.Height,
		Maxval:        hdr.Maxval,
		BitDepth:      depth,
		FileSizeBytes: stat.Size(),
	}, nil
}

// GridCache provides thread-safe caching of decoded grids keyed by path.
//
// Once a file is decoded, later Load calls for the same path return the
// cached grid without touching the disk. Callers must treat cached grids as
// read-only; every transform returns a fresh grid, so this holds as long as
// nobody calls Set on a cached value.
//
// Cached grids remain in memory until removed via Evict or Clear. A writer
// that replaces a file on disk should Evict its path.
type GridCache struct {
	mu    sync.RWMutex
	grids map[string]*Grid
	opts  []DecodeOption
}

// NewGridCache creates an empty cache. opts are applied to every decode.
func NewGridCache(opts ...DecodeOption) *GridCache {
	return &GridCache{
		grids: make(map[string]*Grid),
		opts:  opts,
	}
}

// Load retrieves a grid from the cache or decodes it from disk.
//
// The grid is cached under the exact path string provided, so relative and
// absolute paths to the same file are separate entries.
func (c *GridCache) Load(path string) (*Grid, error) {
	c.mu.RLock()
	if g, ok := c.grids[path]; ok {
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	g, err := LoadFile(path, c.opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.grids[path] = g
	c.mu.Unlock()

	return g, nil
}

// Evict removes the grid cached for path, if any.
func (c *GridCache) Evict(path string) {
	c.mu.Lock()
	delete(c.grids, path)
	c.mu.Unlock()
}

// Clear removes every cached grid.
func (c *GridCache) Clear() {
	c.mu.Lock()
	c.grids = make(map[string]*Grid)
	c.mu.Unlock()
}

// Len reports the number of cached grids.
func (c *GridCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grids)
}
