// Package btree implements the table b-tree engine: root-to-leaf descent,
// point lookup, leaf-local insert, and the leaf/interior split and root
// promotion machinery described in §5. It knows nothing about SQL or
// records; it only maps a (root page, rowid) pair to a payload and back.
package btree

import (
	"errors"
	"fmt"

	"github.com/rowiddb/rowiddb/internal/page"
	"github.com/rowiddb/rowiddb/internal/pager"
)

var (
	// ErrDuplicateRowid is returned when Insert targets a rowid already
	// present in the tree.
	ErrDuplicateRowid = errors.New("btree: rowid already present")
	// ErrTripleSplit is returned when a single split cannot make both
	// halves fit — a case this engine does not implement (see §9).
	ErrTripleSplit = errors.New("btree: split does not fit in two pages")
)

// Tree is a table b-tree backed by a Pager. It holds no state of its own
// beyond the pager handle; every operation is parameterised by the root
// page number, since one file can hold many tables.
type Tree struct {
	pager *pager.Pager
}

func New(p *pager.Pager) *Tree { return &Tree{pager: p} }

func (t *Tree) loadPage(n uint32) (*page.Page, error) {
	buf, err := t.pager.ReadPage(n)
	if err != nil {
		return nil, err
	}
	return page.Load(buf, t.pager.PageSize(), t.pager.Usable(), n == 1)
}

// descend walks from root to the leaf that would hold rowid, returning the
// leaf's page number and buffer together with the page numbers of every
// interior ancestor visited, root first.
func (t *Tree) descend(root uint32, rowid int64) (leafNum uint32, leaf *page.Page, ancestors []uint32, err error) {
	cur := root
	for {
		pg, err := t.loadPage(cur)
		if err != nil {
			return 0, nil, nil, err
		}
		if pg.Type().IsLeaf() {
			return cur, pg, ancestors, nil
		}
		ancestors = append(ancestors, cur)

		h := pg.ReadHeader()
		idx := pg.LowerBound(rowid)
		if idx != int(h.CellCount) {
			cur = pg.LeftChild(pg.CellOffset(idx))
		} else {
			cur = pg.RightMostChild()
		}
	}
}

// Find returns the payload stored under rowid in the table rooted at
// root, and whether it was present.
func (t *Tree) Find(root uint32, rowid int64) ([]byte, bool, error) {
	_, leaf, _, err := t.descend(root, rowid)
	if err != nil {
		return nil, false, err
	}

	idx := leaf.LowerBound(rowid)
	h := leaf.ReadHeader()
	if idx == int(h.CellCount) {
		return nil, false, nil
	}
	off := leaf.CellOffset(idx)
	if leaf.Rowid(off) != rowid {
		return nil, false, nil
	}

	payload, _, err := leaf.AssembleLeafPayload(off, t.pager.ReadPage)
	if err != nil {
		return nil, false, fmt.Errorf("btree: assemble payload for rowid %d: %w", rowid, err)
	}
	return payload, true, nil
}

// Cell pairs a leaf payload with its rowid, returned by Scan in ascending
// rowid order.
type Cell struct {
	Rowid   int64
	Payload []byte
}

// Scan performs a depth-first, left-to-right walk of the table rooted at
// root and returns every leaf cell in ascending rowid order. It is the
// primitive behind an unfiltered SELECT and schema discovery.
func (t *Tree) Scan(root uint32) ([]Cell, error) {
	var out []Cell
	if err := t.scanInto(root, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) scanInto(pageNum uint32, out *[]Cell) error {
	pg, err := t.loadPage(pageNum)
	if err != nil {
		return err
	}

	h := pg.ReadHeader()
	if pg.Type().IsLeaf() {
		for i := 0; i < int(h.CellCount); i++ {
			off := pg.CellOffset(i)
			payload, rowid, err := pg.AssembleLeafPayload(off, t.pager.ReadPage)
			if err != nil {
				return err
			}
			*out = append(*out, Cell{Rowid: rowid, Payload: payload})
		}
		return nil
	}

	for i := 0; i < int(h.CellCount); i++ {
		off := pg.CellOffset(i)
		if err := t.scanInto(pg.LeftChild(off), out); err != nil {
			return err
		}
	}
	return t.scanInto(pg.RightMostChild(), out)
}
