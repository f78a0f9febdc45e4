package page

// SplitIndex picks the cut point that minimizes the left/right size
// imbalance, treating the about-to-be-inserted cell as a virtual entry
// among the existing ones. cellSizes holds the byte size of every cell
// that will exist after the insertion (including the new one, in its
// sorted position); the caller is responsible for building that array.
//
// sums[i] is the running total of cellSizes[0:i]; the chosen index is the
// one that minimizes |sums[i] - (total - sums[i])|, i.e. splits the total
// byte volume as evenly as possible rather than splitting the cell count
// evenly.
func SplitIndex(cellSizes []int) int {
	n := len(cellSizes)
	sums := make([]int, n+1)
	for i, sz := range cellSizes {
		sums[i+1] = sums[i] + sz
	}
	total := sums[n]

	best, bestDiff := 1, -1
	for i := 1; i < n; i++ {
		diff := sums[i] - (total - sums[i])
		if diff < 0 {
			diff = -diff
		}
		if bestDiff == -1 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

// CheckSplitFits reports whether both halves of a proposed split fit
// within the page's usable cell-content area, given the fixed header
// size and a 2-byte cell pointer per cell.
func CheckSplitFits(usable, headerSize int, cellSizes []int, splitIndex int) bool {
	leftBytes, rightBytes := 0, 0
	for i, sz := range cellSizes {
		if i < splitIndex {
			leftBytes += sz
		} else {
			rightBytes += sz
		}
	}
	leftCells := splitIndex
	rightCells := len(cellSizes) - splitIndex
	leftFits := headerSize+2*leftCells+leftBytes <= usable
	rightFits := headerSize+2*rightCells+rightBytes <= usable
	return leftFits && rightFits
}
