package navigation

// Action is the outcome kind of a guard decision.
type Action int

const (
	Proceed Action = iota
	Redirect
)

// Decision is what the guard wants done with a navigation.
// For Redirect, To names the destination route.
type Decision struct {
	Action Action
	To     string
}

// Guard decides whether a navigation to a route with the given metadata may
// proceed, given whether a user session is present. It keeps no state.
func Guard(meta Meta, sessionPresent bool) Decision {
	if meta.RequiresAuth && !sessionPresent {
		return Decision{Action: Redirect, To: RouteLogin}
	}
	if meta.GuestOnly && sessionPresent {
		return Decision{Action: Redirect, To: RouteMap}
	}
	return Decision{Action: Proceed}
}
