package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/deepchat/internal/auth"
	"github.com/Skotchmaster/deepchat/internal/handlers"
)

type Deps struct {
	Guard         *auth.Guard
	Auth          *handlers.AuthHandler
	Presentations *handlers.PresentationHandler
	Purchases     *handlers.PurchaseHandler
	Subscriptions *handlers.SubscriptionHandler
	Search        *handlers.SearchHandler
	Chat          *handlers.ChatHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.POST("/refresh", d.Auth.Refresh)
	e.POST("/logout", d.Auth.Logout)

	pres := e.Group("/presentations", d.Guard.RequireAuth)
	pres.POST("", d.Presentations.Create)
	pres.GET("", d.Presentations.List)
	pres.GET("/:id", d.Presentations.Get)
	pres.PUT("/:id", d.Presentations.Update)
	pres.DELETE("/:id", d.Presentations.Delete)

	purch := e.Group("/purchases", d.Guard.RequireAuth)
	purch.POST("", d.Purchases.Create)
	purch.GET("", d.Purchases.List)
	purch.GET("/user/:user_id", d.Purchases.ListByUser)
	purch.GET("/:id", d.Purchases.Get)
	purch.DELETE("/:id", d.Purchases.Delete)

	subs := e.Group("/subscriptions", d.Guard.RequireAuth)
	subs.POST("", d.Subscriptions.Create)
	subs.GET("", d.Subscriptions.List)
	subs.GET("/:id", d.Subscriptions.Get)
	subs.PUT("/:id", d.Subscriptions.Update)
	subs.DELETE("/:id", d.Subscriptions.Delete)

	if d.Search != nil {
		e.GET("/search", d.Search.Handler, d.Guard.RequireAuth)
	}
	if d.Chat != nil {
		e.GET("/chat", d.Chat.Socket, d.Guard.RequireAuth)
	}
}
