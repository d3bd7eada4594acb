package standings

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithPoints sets the points awarded for a win, a draw and a loss.
func WithPoints(win, draw, loss int) Option {
	return func(c *Calculator) {
		if win > draw && draw >= loss {
			c.win, c.draw, c.loss = win, draw, loss
		}
	}
}
