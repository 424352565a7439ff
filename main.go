package main

import (
	"fmt"
	"log"
	"os"

	"acropolis-estates-server/routes"
	"acropolis-estates-server/services"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeS3()
	storage.InitializeRedis()

	routes.Mailer = services.NewMailerFromEnv()

	app := iris.New()
	app.Validator = validator.New()

	// CORS for the public site and the office dashboard
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)
	app.Use(func(ctx iris.Context) {
		ctx.Next()
		utils.AppMetrics.HTTPRequestsTotal.WithLabelValues(
			ctx.Method(),
			ctx.GetCurrentRoute().Path(),
			fmt.Sprintf("%d", ctx.GetStatusCode()),
		).Inc()
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})
	app.Get("/metrics", iris.FromStd(utils.AppMetrics.Handler()))

	// Public short-term rental surface, consumed by the website
	listings := app.Party("/short-term-listings")
	{
		listings.Get("/", routes.GetListings)
		listings.Get("/{id:uint}", routes.GetListing)
		listings.Get("/{id:uint}/availability", routes.GetListingAvailability)
	}

	bookings := app.Party("/short-term-bookings")
	{
		bookings.Post("/", routes.CreateBooking)
		bookings.Get("/unavailable-dates", routes.GetUnavailableDates)
		bookings.Get("/confirm/{token}", routes.ConfirmBooking)
	}

	user := app.Party("/api/user")
	{
		user.Post("/login", routes.Login)
		user.Post("/refresh", routes.RefreshToken)
		user.Post("/logout", accessTokenVerifierMiddleware, routes.Logout)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/short-term-listings", routes.AdminListListings)
		admin.Post("/short-term-listings", routes.AdminCreateListing)
		admin.Get("/short-term-listings/{id:uint}", routes.AdminGetListing)
		admin.Put("/short-term-listings/{id:uint}", routes.AdminUpdateListing)
		admin.Delete("/short-term-listings/{id:uint}", routes.AdminDeleteListing)
		admin.Patch("/short-term-listings/{id:uint}/approve", utils.SuperAdminOnlyMiddleware, routes.AdminApproveListing)

		admin.Put("/short-term-listings/{id:uint}/price-overrides", routes.AdminUpsertPriceOverride)
		admin.Delete("/short-term-listings/{id:uint}/price-overrides", routes.AdminDeletePriceOverride)
		admin.Post("/short-term-listings/{id:uint}/seasonal-prices", routes.AdminCreateSeasonalPrice)
		admin.Delete("/short-term-listings/{id:uint}/seasonal-prices/{seasonID:uint}", routes.AdminDeleteSeasonalPrice)

		admin.Post("/short-term-listings/{id:uint}/images", routes.AdminUploadListingImage)
		admin.Delete("/short-term-listings/images/{imageID:uint}", routes.AdminDeleteListingImage)

		admin.Get("/owners", routes.AdminListOwners)
		admin.Post("/owners", routes.AdminCreateOwner)
		admin.Get("/owners/{id:uint}", routes.AdminGetOwner)
		admin.Put("/owners/{id:uint}", routes.AdminUpdateOwner)
		admin.Delete("/owners/{id:uint}", routes.AdminDeleteOwner)

		admin.Get("/short-term-bookings", routes.AdminListBookings)
		admin.Get("/short-term-bookings/statistics", routes.AdminBookingStatistics)
		admin.Get("/short-term-bookings/{id:uint}", routes.GetBooking)
		admin.Patch("/short-term-bookings/{id:uint}/status", routes.AdminUpdateBookingStatus)
		admin.Post("/short-term-bookings/{id:uint}/discount", routes.AdminApplyDiscount)
		admin.Delete("/short-term-bookings/{id:uint}/discount", routes.AdminRemoveDiscount)

		admin.Get("/activity", routes.AdminActivity)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
