package main

import "errors"

const (
	minBoardSize     = 20
	maxBoardSize     = 150
	defaultBoardSize = 50
)

var errTileOutOfRange = errors.New("tile index out of range")

// clampBoardSize maps any requested size into [minBoardSize, maxBoardSize].
// Zero or negative requests (absent/garbage field in the payload) get the
// default instead of being rejected.
func clampBoardSize(n int) int {
	if n <= 0 {
		n = defaultBoardSize
	}
	if n < minBoardSize {
		return minBoardSize
	}
	if n > maxBoardSize {
		return maxBoardSize
	}
	return n
}

// board is a flat size×size grid of tile states, each 0 or 1.
type board []int

func newBoard(size int) board {
	return make(board, size*size)
}

// toggle flips the tile at i between 0 and 1 and returns the new value.
func (b board) toggle(i int) (int, error) {
	if i < 0 || i >= len(b) {
		return 0, errTileOutOfRange
	}
	if b[i] == 0 {
		b[i] = 1
	} else {
		b[i] = 0
	}
	return b[i], nil
}
