package btree

import (
	"errors"
	"fmt"

	"github.com/rowiddb/rowiddb/internal/page"
)

// Insert adds rowid/payload to the table rooted at root. It descends to
// the owning leaf, inserts directly if there is room, and otherwise
// splits the leaf and walks back up the ancestor stack — gathered during
// descent, so this never needs a fixed-depth parent array — promoting a
// separator key into each ancestor that in turn overflows, up to and
// including the root.
func (t *Tree) Insert(root uint32, rowid int64, payload []byte) error {
	leafNum, leaf, ancestors, err := t.descend(root, rowid)
	if err != nil {
		return err
	}

	idx := leaf.LowerBound(rowid)
	h := leaf.ReadHeader()
	if idx != int(h.CellCount) && leaf.Rowid(leaf.CellOffset(idx)) == rowid {
		return ErrDuplicateRowid
	}

	if err := leaf.InsertLeafCell(rowid, idx, payload, t.pager); err == nil {
		return t.pager.WritePage(leafNum, leaf.Buf)
	} else if !errors.Is(err, page.ErrNotEnoughSpace) {
		return err
	}

	left, right, separator, err := splitLeafPages(leaf, idx, rowid, payload, t.pager)
	if err != nil {
		return err
	}

	if leafNum == root {
		return t.promoteNewRoot(root, leaf, left, right, separator)
	}

	// The leaf keeps its page number and becomes the right half: every
	// ancestor pointer already reaching it stays valid. Only the newly
	// allocated left half needs a fresh pointer, inserted into the parent.
	if err := t.pager.WritePage(leafNum, right.Buf); err != nil {
		return err
	}
	leftNum, err := t.pager.AppendPage(left.Buf)
	if err != nil {
		return err
	}

	return t.propagate(root, ancestors, separator, leftNum)
}

// propagate inserts (key, leftChild) into the innermost ancestor still on
// the stack, splitting and promoting further up on overflow, exactly as
// Insert does for the leaf level. ancestors[0] is always the root.
func (t *Tree) propagate(root uint32, ancestors []uint32, key int64, leftChild uint32) error {
	for i := len(ancestors) - 1; i >= 0; i-- {
		current := ancestors[i]
		pg, err := t.loadPage(current)
		if err != nil {
			return err
		}

		idx := pg.LowerBound(key)
		if err := pg.InsertInteriorCell(key, idx, leftChild); err == nil {
			return t.pager.WritePage(current, pg.Buf)
		} else if !errors.Is(err, page.ErrNotEnoughSpace) {
			return err
		}

		left, right, separator, err := splitInteriorPages(pg, idx, key, leftChild)
		if err != nil {
			return err
		}

		if current == root {
			return t.promoteNewRoot(root, pg, left, right, separator)
		}

		if err := t.pager.WritePage(current, right.Buf); err != nil {
			return err
		}
		leftNum, err := t.pager.AppendPage(left.Buf)
		if err != nil {
			return err
		}
		key, leftChild = separator, leftNum
	}
	return fmt.Errorf("btree: internal error: ancestor stack exhausted before reaching root")
}

// promoteNewRoot handles the case where even the root overflowed: both
// halves become brand-new pages, and the root's own page buffer — whose
// page number every other table's schema entry points to, and which must
// therefore never change — is reinitialised in place as a fresh interior
// page holding a single cell.
func (t *Tree) promoteNewRoot(rootNum uint32, rootPg *page.Page, left, right *page.Page, separator int64) error {
	leftNum, err := t.pager.AppendPage(left.Buf)
	if err != nil {
		return err
	}
	rightNum, err := t.pager.AppendPage(right.Buf)
	if err != nil {
		return err
	}

	rootPg.Reinit(page.TypeInteriorTable)
	if err := rootPg.InsertInteriorCell(separator, 0, leftNum); err != nil {
		return err
	}
	setRightMostChild(rootPg, rightNum)

	return t.pager.WritePage(rootNum, rootPg.Buf)
}
