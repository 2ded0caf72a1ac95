package console

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appctx "osiedle/internal/core/context"
)

func TestRouterStartsLoggedOut(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, ScreenLoggedOut, r.Screen())
	assert.Equal(t, "", r.ActiveView())
	assert.False(t, r.Navigate("budynek"))
}

func TestRouterAdminLogin(t *testing.T) {
	r := NewRouter()
	r.Login(appctx.RoleAdmin, "")
	assert.Equal(t, ScreenAdmin, r.Screen())
	assert.Equal(t, DefaultAdminView, r.ActiveView())
}

func TestRouterRestoresLastView(t *testing.T) {
	r := NewRouter()
	r.Login(appctx.RoleAdmin, "oplata")
	assert.Equal(t, "oplata", r.ActiveView())
}

func TestRouterResidentRejectsAdminViews(t *testing.T) {
	r := NewRouter()
	r.Login(appctx.RoleResident, "")
	assert.Equal(t, ScreenResident, r.Screen())
	assert.Equal(t, DefaultResidentView, r.ActiveView())

	assert.False(t, r.Navigate("pracownik"))
	assert.True(t, r.Navigate("oplata"))
}

func TestRouterResidentLastViewMustBeValid(t *testing.T) {
	r := NewRouter()
	// A stale admin view persisted before a role change must not leak in.
	r.Login(appctx.RoleResident, "pracownik")
	assert.Equal(t, DefaultResidentView, r.ActiveView())

	r.Login(appctx.RoleResident, "naprawa")
	assert.Equal(t, "naprawa", r.ActiveView())
}

func TestRouterNavigateSameViewIsNoChange(t *testing.T) {
	r := NewRouter()
	r.Login(appctx.RoleAdmin, "")
	assert.False(t, r.Navigate(DefaultAdminView))
	assert.True(t, r.Navigate("mieszkanie"))
}

func TestRouterLogout(t *testing.T) {
	r := NewRouter()
	r.Login(appctx.RoleAdmin, "")
	r.Logout()
	assert.Equal(t, ScreenLoggedOut, r.Screen())
	assert.Equal(t, "", r.ActiveView())
}
