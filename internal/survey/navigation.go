package survey

import "fmt"

// NavigationState is the question pointer of one session.
type NavigationState struct {
	CurrentIndex int  `json:"current_index"`
	ReviewMode   bool `json:"review_mode"`
	Submitted    bool `json:"submitted"`
}

// NavigationController moves through a question set of fixed length.
//
// States are Answering(i) for 0 <= i < N, Reviewing and Submitted. Advancing
// from the last question enters review; leaving review returns to a chosen
// question; Complete is only legal while reviewing and is terminal.
type NavigationController struct {
	n     int
	state NavigationState
}

func NewNavigationController(n int) (*NavigationController, error) {
	if n <= 0 {
		return nil, ErrEmptyQuestionSet
	}
	return &NavigationController{n: n}, nil
}

// RestoreNavigation rebuilds a controller from a persisted state, clamping a
// stale index into range.
func RestoreNavigation(n int, state NavigationState) (*NavigationController, error) {
	nav, err := NewNavigationController(n)
	if err != nil {
		return nil, err
	}
	if state.CurrentIndex < 0 {
		state.CurrentIndex = 0
	}
	if state.CurrentIndex >= n {
		state.CurrentIndex = n - 1
	}
	nav.state = state
	return nav, nil
}

func (c *NavigationController) State() NavigationState {
	return c.state
}

func (c *NavigationController) Len() int {
	return c.n
}

func (c *NavigationController) LastIndex() int {
	return c.n - 1
}

func (c *NavigationController) Current() int {
	return c.state.CurrentIndex
}

func (c *NavigationController) InReview() bool {
	return c.state.ReviewMode
}

func (c *NavigationController) Submitted() bool {
	return c.state.Submitted
}

// Advance moves to the next question, or into review from the last one.
func (c *NavigationController) Advance() {
	if c.state.Submitted || c.state.ReviewMode {
		return
	}
	if c.state.CurrentIndex < c.LastIndex() {
		c.state.CurrentIndex++
		return
	}
	c.state.ReviewMode = true
}

// Retreat moves to the previous question. It does nothing at index 0.
func (c *NavigationController) Retreat() {
	if c.state.Submitted || c.state.ReviewMode {
		return
	}
	if c.state.CurrentIndex > 0 {
		c.state.CurrentIndex--
	}
}

// EnterReview jumps straight to review, keeping the current index.
func (c *NavigationController) EnterReview() error {
	if c.state.Submitted {
		return ErrAlreadySubmitted
	}
	c.state.ReviewMode = true
	return nil
}

// ExitReview returns to answering at target.
func (c *NavigationController) ExitReview(target int) error {
	if c.state.Submitted {
		return ErrAlreadySubmitted
	}
	if !c.state.ReviewMode {
		return ErrNotInReview
	}
	if target < 0 || target >= c.n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, target, c.n)
	}
	c.state.CurrentIndex = target
	c.state.ReviewMode = false
	return nil
}

// Complete marks the session submitted. Only legal while reviewing.
func (c *NavigationController) Complete() error {
	if c.state.Submitted {
		return ErrAlreadySubmitted
	}
	if !c.state.ReviewMode {
		return ErrNotInReview
	}
	c.state.Submitted = true
	return nil
}
