package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is a grid coordinate pair identifying one corn tile
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key returns the store field name for the cell ("x,y")
func (c Cell) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

// ParseCellKey parses a "x,y" store field back into a Cell
func ParseCellKey(key string) (Cell, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Cell{}, fmt.Errorf("malformed cell key %q", key)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Cell{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Cell{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	return Cell{X: x, Y: y}, nil
}
