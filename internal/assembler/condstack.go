package assembler

// condFrame is one level of `.if`/`.else`/`.endif` nesting.
type condFrame struct {
	active       bool // true if lines under this frame should be assembled
	parentActive bool // the enclosing frame's active state, for .else
	branchTaken  bool // whether the `.if` or a prior `.else` branch ran
}

// condStack tracks nested conditional-assembly blocks.
type condStack struct {
	frames []condFrame
}

// active reports whether lines at the current nesting level should be
// assembled: true when the stack is empty (top level) or every enclosing
// frame is active.
func (c *condStack) active() bool {
	if len(c.frames) == 0 {
		return true
	}
	return c.frames[len(c.frames)-1].active
}

// pushIf enters a new `.if` level. If the parent is inactive, the child is
// inactive regardless of the expression's value.
func (c *condStack) pushIf(exprTrue bool) {
	parentActive := c.active()
	frame := condFrame{parentActive: parentActive}
	if parentActive && exprTrue {
		frame.active = true
		frame.branchTaken = true
	}
	c.frames = append(c.frames, frame)
}

// toggleElse flips the top frame's active state, unless its `.if` branch
// already ran or the parent is inactive, in which case inactivity is
// preserved.
func (c *condStack) toggleElse() error {
	if len(c.frames) == 0 {
		return errNoMatchingIf(".else")
	}
	top := &c.frames[len(c.frames)-1]
	if !top.parentActive {
		top.active = false
		return nil
	}
	if top.branchTaken {
		top.active = false
		return nil
	}
	top.active = true
	top.branchTaken = true
	return nil
}

// pop leaves the current `.if`/`.else` level at `.endif`.
func (c *condStack) pop() error {
	if len(c.frames) == 0 {
		return errNoMatchingIf(".endif")
	}
	c.frames = c.frames[:len(c.frames)-1]
	return nil
}
