package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	authsvc "github.com/angelmondragon/storefront-backend/internal/auth"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/session"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	SessionManager  *session.Manager
	ProductService  productsvc.Service
	AuthService     authsvc.Service
	OrderService    ordersvc.Service
	CheckoutService checkoutsvc.Service
	UserRepo        users.Repository
	RedisClient     *redis.Client
	HTTPMetrics     *metrics.HTTPMetrics
	Registry        *prometheus.Registry
	HealthDeps      map[string]controllers.Pinger
}

// NewRouter wires the storefront's route table. Middleware order mirrors
// the request pipeline: infrastructure first, then session, CSRF, cart,
// and auth status, so every handler sees a reconciled cart and resolved
// identity.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.HealthDeps))
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.Session(deps.SessionManager, logg),
			middleware.CSRF(logg),
			middleware.Cart(deps.SessionManager, deps.ProductService, logg),
			middleware.CheckAuth(logg),
		)

		r.Get("/", controllers.Home())
		r.Get("/401", controllers.Unauthorized())
		r.Get("/403", controllers.Forbidden())
		r.Get("/csrf-token", controllers.CSRFToken(logg))

		r.Get("/products", controllers.ListProducts(deps.ProductService, logg))
		r.Get("/products/{id}", controllers.GetProduct(deps.ProductService, logg))

		r.Get("/cart", controllers.GetCart(logg))
		r.Post("/cart/items", controllers.AddCartItem(deps.ProductService, deps.SessionManager, logg))
		r.Patch("/cart/items", controllers.UpdateCartItem(deps.SessionManager, logg))

		r.Get("/signup", controllers.GetSignup(deps.SessionManager, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, deps.RedisClient, logg)).
			Post("/signup", controllers.Signup(deps.AuthService, deps.SessionManager, logg))
		r.Get("/login", controllers.GetLogin(deps.SessionManager, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).
			Post("/login", controllers.Login(deps.AuthService, deps.SessionManager, logg))
		r.Post("/logout", controllers.Logout(deps.SessionManager, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/success", controllers.GetOrderSuccess())
			r.Get("/failure", controllers.GetOrderFailure())

			r.Group(func(r chi.Router) {
				r.Use(middleware.ProtectRoutes())
				r.Post("/", controllers.AddOrder(deps.CheckoutService, deps.UserRepo, deps.SessionManager, logg))
				r.Get("/", controllers.GetOrders(deps.OrderService, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.ProtectRoutes())

			r.Get("/products", controllers.AdminListProducts(deps.ProductService, logg))
			r.Post("/products", controllers.AdminCreateProduct(deps.ProductService, logg))
			r.Get("/products/{id}", controllers.AdminGetProduct(deps.ProductService, logg))
			r.Post("/products/{id}", controllers.AdminUpdateProduct(deps.ProductService, logg))
			r.Delete("/products/{id}", controllers.AdminDeleteProduct(deps.ProductService, logg))

			r.Get("/orders", controllers.AdminListOrders(deps.OrderService, logg))
			r.Patch("/orders/{id}", controllers.AdminUpdateOrder(deps.OrderService, logg))
		})
	})

	return r
}
