package session

import "github.com/JayWang0902/AI-job-matching/internal/transfer"

// authSignal is the slice of the store the guard needs.
type authSignal interface {
	Authenticated() bool
}

// Guard gates entry to every authenticated surface. When the store reports
// unauthenticated, nothing else may run and the caller sends the user to
// login instead.
type Guard struct {
	store authSignal
}

func NewGuard(store authSignal) *Guard {
	return &Guard{store: store}
}

func (g *Guard) Require() error {
	if !g.store.Authenticated() {
		return transfer.ErrUnauthenticated
	}
	return nil
}
