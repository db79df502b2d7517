package ast

import "fmt"

// Position is a location in a source document. Zero values mean unknown.
type Position struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// Pos returns p. It lets declarations embed Position and satisfy their
// interfaces.
func (p Position) Pos() Position { return p }

func (p Position) String() string {
	if p.Column > 0 {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%d", p.Line)
}
