// Package pager is the only component allowed to issue file I/O. It reads
// and writes fixed-size pages by number, appends new pages at EOF, and
// keeps the in-header database_size_in_pages counter in sync with every
// successful write, per §4.4. It has no page cache and no dirty list:
// every WritePage flushes immediately.
package pager

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/rowiddb/rowiddb/internal/alias/bx"
)

const FileMode0664 = 0o664

// Pager owns the single database file for the lifetime of the process.
type Pager struct {
	file   *os.File
	header FileHeader
	mu     sync.RWMutex
}

// Create initialises a brand-new database file with the given page size
// and reserved space, writing page 1's file header.
func Create(path string, pageSize int, unusedReservedSpace uint8) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, FileMode0664)
	if err != nil {
		return nil, fmt.Errorf("pager: create database file: %w", err)
	}

	p := &Pager{
		file: file,
		header: FileHeader{
			PageSizeRaw:         encodePageSizeRaw(pageSize),
			UnusedReservedSpace: unusedReservedSpace,
			DatabaseSizeInPages: 1,
		},
	}

	buf := make([]byte, pageSize)
	writeFileHeader(buf, p.header)
	if _, err := file.WriteAt(buf, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("pager: write file header: %w", err)
	}

	slog.Debug("pager: created database", "path", path, "page_size", pageSize)
	return p, nil
}

// Open opens an existing database file and parses its file header.
func Open(path string) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_RDWR, FileMode0664)
	if err != nil {
		return nil, fmt.Errorf("pager: open database file: %w", err)
	}

	buf := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(file, buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("pager: read file header: %w", err)
	}

	p := &Pager{file: file, header: readFileHeader(buf)}

	if !p.header.SizeAuthoritative() {
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("pager: stat database file: %w", err)
		}
		p.header.DatabaseSizeInPages = uint32(info.Size() / int64(p.header.ResolvedPageSize()))
	}

	return p, nil
}

// PageSize returns the on-disk page size in bytes.
func (p *Pager) PageSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.header.ResolvedPageSize()
}

// Usable returns U, the usable page size.
func (p *Pager) Usable() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.header.Usable()
}

// PageCount returns the number of pages currently in the database.
func (p *Pager) PageCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int(p.header.DatabaseSizeInPages)
}

// ReadPage reads page N (1-based) from file offset (N-1)*page_size.
func (p *Pager) ReadPage(n uint32) ([]byte, error) {
	if n == 0 {
		return nil, fmt.Errorf("pager: page numbers are 1-based, got 0")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	pageSize := p.header.ResolvedPageSize()
	buf := make([]byte, pageSize)
	offset := int64(n-1) * int64(pageSize)
	if _, err := p.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("pager: read page %d: %w", n, err)
	}
	return buf, nil
}

// WritePage writes page N at its offset and patches the in-header
// database_size_in_pages, per §4.4. N may exceed the current page count
// only when it immediately extends the file by one page (see AppendPage).
func (p *Pager) WritePage(n uint32, data []byte) error {
	if n == 0 {
		return fmt.Errorf("pager: page numbers are 1-based, got 0")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writePageLocked(n, data)
}

func (p *Pager) writePageLocked(n uint32, data []byte) error {
	pageSize := p.header.ResolvedPageSize()
	if len(data) != pageSize {
		return fmt.Errorf("pager: write page %d: expected %d bytes, got %d", n, pageSize, len(data))
	}

	offset := int64(n-1) * int64(pageSize)
	if _, err := p.file.WriteAt(data, offset); err != nil {
		return fmt.Errorf("pager: write page %d: %w", n, err)
	}

	if uint32(n) > p.header.DatabaseSizeInPages {
		p.header.DatabaseSizeInPages = n
	}
	if err := p.patchDatabaseSizeLocked(); err != nil {
		return err
	}
	return nil
}

func (p *Pager) patchDatabaseSizeLocked() error {
	var sz [4]byte
	bx.PutU32BE(sz[:], p.header.DatabaseSizeInPages)
	if _, err := p.file.WriteAt(sz[:], offDatabaseSizeInPages); err != nil {
		return fmt.Errorf("pager: patch database size: %w", err)
	}
	return nil
}

// AppendPage allocates the next page number (file_length/page_size + 1)
// and writes data to it in one call, per §4.4's "allocate-and-write as
// one operation" guidance: this prevents two logical allocations from
// racing for the same page number.
func (p *Pager) AppendPage(data []byte) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := p.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("pager: stat database file: %w", err)
	}
	pageSize := int64(p.header.ResolvedPageSize())
	next := uint32(info.Size()/pageSize) + 1

	if err := p.writePageLocked(next, data); err != nil {
		return 0, err
	}
	slog.Debug("pager: appended page", "page", next)
	return next, nil
}

// Close flushes nothing (writes are already synchronous) and closes the
// underlying file handle.
func (p *Pager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.Close()
}

// File exposes the underlying file handle for components that need it
// directly. Nothing in the engine calls it: schema discovery reads page 1
// through the b-tree like any other table.
func (p *Pager) File() *os.File {
	return p.file
}
