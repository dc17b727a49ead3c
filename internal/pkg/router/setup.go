package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router is one installable route group.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires all route groups onto the app. The web router goes
// first: it initializes the session store, the OAuth providers and the global
// user-context middleware the API routes rely on for checkout and stream
// authorization.
func InstallRouter(app *fiber.App) {
	install(app, NewHttpRouter(), NewApiRouter())
}

func install(app *fiber.App, routers ...Router) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
