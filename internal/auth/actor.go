package auth

// Actor is the verified identity behind a request, threaded explicitly
// through every call instead of being read from ambient state.
type Actor struct {
	UserID       string
	Origin       string
	Capabilities []string
}

// Can reports whether the actor holds a named capability.
func (a Actor) Can(capability string) bool {
	for _, c := range a.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
