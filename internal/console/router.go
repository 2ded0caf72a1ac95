package console

import appctx "osiedle/internal/core/context"

// Screen is the top-level state of the console.
type Screen int

const (
	ScreenLoggedOut Screen = iota
	ScreenAdmin
	ScreenResident
)

// Default landing views per role.
const (
	DefaultAdminView    = "budynek"
	DefaultResidentView = "moje-dane"
)

// residentViews are the pages a resident may open.
var residentViews = map[string]struct{}{
	"moje-dane":  {},
	"oplata":     {},
	"naprawa":    {},
	"spotkania":  {},
	"zuzycie":    {},
	"zgloszenie": {},
}

// Router is the view state machine: loggedOut, adminView(x) or
// residentView(x).
type Router struct {
	screen Screen
	active string
}

// NewRouter starts logged out.
func NewRouter() *Router {
	return &Router{screen: ScreenLoggedOut}
}

// Screen returns the current top-level state.
func (r *Router) Screen() Screen {
	return r.screen
}

// ActiveView returns the active entity or page name, "" when logged out.
func (r *Router) ActiveView() string {
	return r.active
}

// Login enters the role's default view. A persisted lastView is restored
// when it is still valid for the role.
func (r *Router) Login(role, lastView string) {
	switch role {
	case appctx.RoleResident:
		r.screen = ScreenResident
		r.active = DefaultResidentView
		if _, ok := residentViews[lastView]; ok {
			r.active = lastView
		}
	default:
		r.screen = ScreenAdmin
		r.active = DefaultAdminView
		if lastView != "" {
			r.active = lastView
		}
	}
}

// Navigate switches the active view. It reports whether the view actually
// changed; the caller resets selection, search and sort on a change.
func (r *Router) Navigate(view string) bool {
	if r.screen == ScreenLoggedOut {
		return false
	}
	if r.screen == ScreenResident {
		if _, ok := residentViews[view]; !ok {
			return false
		}
	}
	if view == r.active {
		return false
	}
	r.active = view
	return true
}

// Logout returns to the logged-out state.
func (r *Router) Logout() {
	r.screen = ScreenLoggedOut
	r.active = ""
}
