package btree

import "github.com/rowiddb/rowiddb/internal/page"

// splitLeafPages splits an overfull leaf into a left and right half,
// treating the about-to-be-inserted (rowid, payload) cell as already
// present at insertIdx. Existing cells are relocated verbatim (their
// overflow chains, if any, are untouched); the new cell is encoded fresh
// via w, the only cell in the split that can actually allocate
// overflow pages. The left half keeps cells [0, splitAt); the separator
// is the largest rowid on the left half (rowids[splitAt-1]), matching
// LowerBound descent: LowerBound(separator) lands on the separator's own
// cell and follows LeftChild, which must reach the leaf the separator's
// rowid actually lives in.
func splitLeafPages(pg *page.Page, insertIdx int, rowid int64, payload []byte, w page.OverflowWriter) (left, right *page.Page, separator int64, err error) {
	h := pg.ReadHeader()
	n := int(h.CellCount)

	sizes := make([]int, n+1)
	rowids := make([]int64, n+1)
	for i := 0; i < n; i++ {
		off := pg.CellOffset(i)
		pos := i
		if i >= insertIdx {
			pos++
		}
		sizes[pos] = pg.CellSize(pg.Rowid(off), int(pg.PayloadSize(off)))
		rowids[pos] = pg.Rowid(off)
	}
	sizes[insertIdx] = pg.CellSize(rowid, len(payload))
	rowids[insertIdx] = rowid

	splitAt := page.SplitIndex(sizes)
	hdrSize := page.HeaderSizeFor(pg.Type())
	if !page.CheckSplitFits(pg.Usable, hdrSize, sizes, splitAt) {
		return nil, nil, 0, ErrTripleSplit
	}

	left = page.New(pg.PageSize, pg.Usable, false, pg.Type())
	right = page.New(pg.PageSize, pg.Usable, false, pg.Type())

	for i := 0; i <= n; i++ {
		dst := left
		if i >= splitAt {
			dst = right
		}

		if i == insertIdx {
			slot := int(dst.ReadHeader().CellCount)
			if err := dst.InsertLeafCell(rowid, slot, payload, w); err != nil {
				return nil, nil, 0, err
			}
			continue
		}

		srcIdx := i
		if i > insertIdx {
			srcIdx--
		}
		off := pg.CellOffset(srcIdx)
		size := pg.CellSize(pg.Rowid(off), int(pg.PayloadSize(off)))
		if err := dst.AppendRawLeafCell(pg.RawCellBytes(off, size)); err != nil {
			return nil, nil, 0, err
		}
	}

	return left, right, rowids[splitAt-1], nil
}

// splitInteriorPages splits an overfull interior page, treating the
// about-to-be-inserted (key, leftChild) cell as already present at
// insertIdx. Per §5, the split point for interior pages is the simple
// midpoint of the virtual cell count, since interior cells are all the
// same shape modulo varint width. The median key is promoted to the
// parent and stored in neither half; the child pointer immediately to its
// left becomes the left half's right-most child.
func splitInteriorPages(pg *page.Page, insertIdx int, key int64, leftChild uint32) (left, right *page.Page, separator int64, err error) {
	h := pg.ReadHeader()
	n := int(h.CellCount)

	keys := make([]int64, n+1)
	children := make([]uint32, n+2)
	for i := 0; i < n; i++ {
		off := pg.CellOffset(i)
		keys[i] = pg.Rowid(off)
		children[i] = pg.LeftChild(off)
	}
	children[n] = pg.RightMostChild()

	virtualKeys := make([]int64, n+1)
	virtualChildren := make([]uint32, n+2)
	for j := 0; j <= n; j++ {
		switch {
		case j < insertIdx:
			virtualKeys[j] = keys[j]
		case j == insertIdx:
			virtualKeys[j] = key
		default:
			virtualKeys[j] = keys[j-1]
		}
	}
	for j := 0; j <= n+1; j++ {
		switch {
		case j < insertIdx:
			virtualChildren[j] = children[j]
		case j == insertIdx:
			virtualChildren[j] = leftChild
		default:
			virtualChildren[j] = children[j-1]
		}
	}

	total := n + 1
	mid := total / 2

	maxCellSize := 0
	for _, k := range virtualKeys {
		if sz := pg.CellSize(k, 0); sz > maxCellSize {
			maxCellSize = sz
		}
	}
	hdrSize := page.HeaderSizeFor(pg.Type())
	leftCells, rightCells := mid, total-mid-1
	if hdrSize+2*leftCells+leftCells*maxCellSize > pg.Usable || hdrSize+2*rightCells+rightCells*maxCellSize > pg.Usable {
		return nil, nil, 0, ErrTripleSplit
	}

	left = page.New(pg.PageSize, pg.Usable, false, pg.Type())
	right = page.New(pg.PageSize, pg.Usable, false, pg.Type())

	for j := 0; j < mid; j++ {
		if err := left.InsertInteriorCell(virtualKeys[j], j, virtualChildren[j]); err != nil {
			return nil, nil, 0, err
		}
	}
	setRightMostChild(left, virtualChildren[mid])

	for j := mid + 1; j < total; j++ {
		if err := right.InsertInteriorCell(virtualKeys[j], j-mid-1, virtualChildren[j]); err != nil {
			return nil, nil, 0, err
		}
	}
	setRightMostChild(right, virtualChildren[n+1])

	return left, right, virtualKeys[mid], nil
}

func setRightMostChild(pg *page.Page, child uint32) {
	h := pg.ReadHeader()
	h.RightMostChild = child
	pg.WriteHeader(h)
}
