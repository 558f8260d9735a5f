package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/config"
	"github.com/docpoint/booking-api/dashboard"
	"github.com/docpoint/booking-api/database"
	"github.com/docpoint/booking-api/handlers"
	"github.com/docpoint/booking-api/ledger"
	"github.com/docpoint/booking-api/middleware"
	"github.com/docpoint/booking-api/storage"
	"github.com/docpoint/booking-api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("config")
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	ctx := context.Background()
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	db := database.New(client, cfg.DatabaseName)
	st := store.New(db)
	slots := ledger.NewMongo(db.Doctors)
	tokens := auth.NewTokens(cfg.JWTSecret)
	bookingSvc := booking.NewService(st, st, st, slots, log)
	dashboardSvc := dashboard.NewService(st)

	var uploader storage.Uploader
	serveUploads := false
	if cfg.CloudinaryURL != "" {
		uploader, err = storage.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal().Err(err).Msg("configure cloudinary")
		}
	} else {
		uploader, err = storage.NewLocal("uploads", "/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("configure local uploads")
		}
		serveUploads = true
		log.Warn().Msg("CLOUDINARY_URL not set, storing avatars on local disk")
	}

	h := handlers.New(cfg, st, bookingSvc, dashboardSvc, tokens, uploader, log)

	app := fiber.New(fiber.Config{BodyLimit: 8 * 1024 * 1024})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if serveUploads {
		app.Static("/uploads", "uploads")
	}

	authUser := middleware.RequireUser(tokens)
	authDoctor := middleware.RequireDoctor(tokens, st)
	authAdmin := middleware.RequireAdmin(tokens, cfg.AdminEmail)

	user := app.Group("/api/user")
	user.Post("/register", h.RegisterUser)
	user.Post("/login", h.LoginUser)
	user.Get("/get-profile", authUser, h.GetProfile)
	user.Post("/update-profile", authUser, h.UpdateProfile)
	user.Post("/book-appointment", authUser, h.BookAppointment)
	user.Get("/appointments", authUser, h.ListUserAppointments)
	user.Post("/cancel-appointment", authUser, h.CancelUserAppointment)

	doctor := app.Group("/api/doctor")
	doctor.Get("/list", h.ListDoctors)
	doctor.Post("/login", h.LoginDoctor)
	doctor.Get("/profile", authDoctor, h.GetDoctorProfile)
	doctor.Put("/update-profile", authDoctor, h.UpdateDoctorProfile)
	doctor.Put("/toggle-availability", authDoctor, h.ToggleDoctorAvailability)
	doctor.Get("/appointments", authDoctor, h.ListDoctorAppointments)
	doctor.Post("/complete-appointment", authDoctor, h.CompleteAppointment)
	doctor.Put("/cancel-appointment", authDoctor, h.CancelDoctorAppointment)
	doctor.Delete("/delete-appointment/:id", authDoctor, h.DeleteDoctorAppointment)
	doctor.Get("/dashboard", authDoctor, h.DoctorDashboard)

	admin := app.Group("/api/admin")
	admin.Post("/login", h.LoginAdmin)
	admin.Post("/add-doctor", authAdmin, h.AddDoctor)
	admin.Post("/all-doctors", authAdmin, h.AllDoctors)
	admin.Post("/change-availability", authAdmin, h.ChangeDoctorAvailability)
	admin.Get("/appointments", authAdmin, h.ListAllAppointments)
	admin.Post("/cancel-appointment", authAdmin, h.CancelAnyAppointment)
	admin.Delete("/delete-appointment", authAdmin, h.DeleteAppointment)
	admin.Get("/dashboard", authAdmin, h.AdminDashboard)

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
