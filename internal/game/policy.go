package game

// Policy receives out-of-band notifications about a player's tasks. It is
// bound to the player when the game is created.
type Policy interface {
	// NotifyOverDraw is called once per draw that burned at least one card.
	NotifyOverDraw(meta TaskMeta)
}

// BasicPolicy ignores every notification.
type BasicPolicy struct{}

// NotifyOverDraw implements Policy.
func (BasicPolicy) NotifyOverDraw(TaskMeta) {}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(meta TaskMeta)

// NotifyOverDraw implements Policy.
func (f PolicyFunc) NotifyOverDraw(meta TaskMeta) {
	if f != nil {
		f(meta)
	}
}
