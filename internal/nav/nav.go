// Package nav implements the per-model walk-through cursor over the flat
// sequence of (instruction, rubric) pairs of a displayed instruction list.
package nav

import "marker/internal/types"

// Cursor is a position in a displayed instruction list: which instruction,
// and which rubric within it. The zero value is the initial position.
type Cursor struct {
	Instruction int
	Rubric      int
}

// Advance moves one rubric forward, crossing to the next instruction's
// first rubric at a boundary. At the terminal position it is a no-op.
func Advance(c Cursor, insts []types.Instruction) (Cursor, error) {
	if len(insts) == 0 {
		return c, &types.EmptyListError{}
	}
	if c.Rubric < len(insts[c.Instruction].Rubrics)-1 {
		c.Rubric++
		return c, nil
	}
	if c.Instruction < len(insts)-1 {
		c.Instruction++
		c.Rubric = 0
		return c, nil
	}
	return c, nil
}

// Retreat moves one rubric backward. Crossing an instruction boundary lands
// on the previous instruction's last rubric, mirroring the order the rubrics
// were walked forward. At (0,0) it is a no-op.
func Retreat(c Cursor, insts []types.Instruction) (Cursor, error) {
	if len(insts) == 0 {
		return c, &types.EmptyListError{}
	}
	if c.Rubric > 0 {
		c.Rubric--
		return c, nil
	}
	if c.Instruction > 0 {
		c.Instruction--
		c.Rubric = len(insts[c.Instruction].Rubrics) - 1
		if c.Rubric < 0 {
			c.Rubric = 0
		}
		return c, nil
	}
	return c, nil
}

// AtStart reports whether the cursor is at the initial position, where
// Retreat is disabled.
func AtStart(c Cursor) bool { return c.Instruction == 0 && c.Rubric == 0 }

// AtEnd reports whether the cursor is at the terminal position, the last
// rubric of the last instruction, where Advance is a no-op.
func AtEnd(c Cursor, insts []types.Instruction) bool {
	if len(insts) == 0 {
		return false
	}
	last := len(insts) - 1
	return c.Instruction == last && c.Rubric >= len(insts[last].Rubrics)-1
}

// Clamp pulls an out-of-range cursor back inside the list bounds. The
// displayed list can shrink underneath a cursor when a type conflict is
// resolved, so positions are clamped rather than trusted.
func Clamp(c Cursor, insts []types.Instruction) Cursor {
	if len(insts) == 0 {
		return Cursor{}
	}
	if c.Instruction >= len(insts) {
		c.Instruction = len(insts) - 1
		c.Rubric = 0
	}
	if c.Instruction < 0 {
		c.Instruction = 0
	}
	if max := len(insts[c.Instruction].Rubrics) - 1; c.Rubric > max {
		if max < 0 {
			max = 0
		}
		c.Rubric = max
	}
	if c.Rubric < 0 {
		c.Rubric = 0
	}
	return c
}
