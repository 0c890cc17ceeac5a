package router

import (
	"github.com/coderr/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers of the marketplace API
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Offer   *handler.OfferHandler
	Order   *handler.OrderHandler
	Review  *handler.ReviewHandler
	Stats   *handler.StatsHandler
	System  *handler.SystemHandler
}

// Guards are the per-route middleware chains
type Guards struct {
	// Authenticated rejects requests without a valid token
	Authenticated gin.HandlerFunc
	// Business and Customer admit only users whose stored profile has that
	// type. They run after Authenticated and before the body is read.
	Business gin.HandlerFunc
	Customer gin.HandlerFunc
	// Credentials throttles registration and login. Optional.
	Credentials gin.HandlerFunc
	// Upload caps the body of file uploads. Optional.
	Upload gin.HandlerFunc
	// Swagger serves the API docs when set
	Swagger []gin.HandlerFunc
}

// chain drops the optional guards that are not configured
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Setup registers every marketplace route on engine
func Setup(engine *gin.Engine, h Handlers, g Guards) {
	engine.RedirectTrailingSlash = false
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(h.System.NoRoute)
	engine.NoMethod(h.System.NoMethod)

	engine.GET("/health", h.System.Health)
	engine.GET("/media/*key", h.System.Media)
	engine.GET("/offerdetails/:id/", h.Offer.RedirectDetail)
	engine.GET("/offerdetails/:id", h.Offer.RedirectDetail)
	if len(g.Swagger) > 0 {
		engine.GET("/swagger/*any", g.Swagger...)
	}

	NewRouter(engine, WithPrefix("/api")).
		Register(
			systemRoutes(h),
			authRoutes(h, g),
			profileRoutes(h, g),
			offerRoutes(h, g),
			orderRoutes(h, g),
			reviewRoutes(h, g),
			statsRoutes(h),
		).
		Setup()
}

func systemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "").
		GET("/ping/", h.System.Ping)
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("auth", "").
		POST("/registration/", chain(g.Credentials, h.Auth.Register)...).
		POST("/login/", chain(g.Credentials, h.Auth.Login)...).
		POST("/logout/", g.Authenticated, h.Auth.Logout)
}

func profileRoutes(h Handlers, g Guards) *DomainGroup {
	profiles := NewDomainGroup("profiles", "").Use(g.Authenticated)

	profiles.GET("/profile/", h.Profile.Me)
	// /profiles/{id}/ is served as an alias of /profile/{id}/
	for _, prefix := range []string{"/profile", "/profiles"} {
		profiles.Group("profile", prefix).
			GET("/:id/", h.Profile.Get).
			PATCH("/:id/", h.Profile.Update).
			POST("/:id/file/", chain(g.Upload, h.Profile.UploadFile)...)
	}
	profiles.Group("profile-lists", "/profiles").
		GET("/business/", h.Profile.ListBusiness).
		GET("/customer/", h.Profile.ListCustomer)
	return profiles
}

func offerRoutes(h Handlers, g Guards) *DomainGroup {
	offers := NewDomainGroup("offers", "")
	offers.Group("offers", "/offers").
		GET("/", h.Offer.List).
		POST("/", chain(g.Authenticated, g.Business, h.Offer.Create)...).
		GET("/:id/", g.Authenticated, h.Offer.Get).
		PATCH("/:id/", g.Authenticated, h.Offer.Update).
		DELETE("/:id/", g.Authenticated, h.Offer.Delete).
		POST("/:id/image/", chain(g.Authenticated, g.Upload, h.Offer.UploadImage)...)
	offers.Group("offerdetails", "/offerdetails").
		Use(g.Authenticated).
		GET("/:id/", h.Offer.GetDetail)
	return offers
}

func orderRoutes(h Handlers, g Guards) *DomainGroup {
	orders := NewDomainGroup("orders", "").Use(g.Authenticated)
	orders.Group("orders", "/orders").
		GET("/", h.Order.List).
		POST("/", chain(g.Customer, h.Order.Create)...).
		GET("/:id/", h.Order.Get).
		PATCH("/:id/", chain(g.Business, h.Order.UpdateStatus)...).
		DELETE("/:id/", h.Order.Delete)
	orders.GET("/order-count/:id/", h.Order.CountInProgress)
	orders.GET("/completed-order-count/:id/", h.Order.CountCompleted)
	return orders
}

func reviewRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("reviews", "/reviews").
		Use(g.Authenticated).
		GET("/", h.Review.List).
		POST("/", chain(g.Customer, h.Review.Create)...).
		PATCH("/:id/", h.Review.Update).
		DELETE("/:id/", h.Review.Delete)
}

func statsRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("stats", "").
		GET("/base-info/", h.Stats.BaseInfo)
}
