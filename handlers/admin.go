package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/models"
)

// LoginAdmin checks the request against the configured admin credential pair
// and returns an admin token.
func (h *Handler) LoginAdmin(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse request")
	}
	if req.Email != h.cfg.AdminEmail || req.Password != h.cfg.AdminPassword {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.tokens.Mint(h.cfg.AdminEmail, auth.RoleAdmin)
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"token": token})
}

// AddDoctor registers a new doctor from the admin panel's multipart form.
// The avatar image is mandatory here, unlike profile updates.
func (h *Handler) AddDoctor(c *fiber.Ctx) error {
	upd, msg := h.doctorProfileForm(c)
	if msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	email := c.FormValue("email")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return fail(c, fiber.StatusBadRequest, "Please provide all required fields")
	}
	if !validEmail(email) {
		return fail(c, fiber.StatusBadRequest, "Enter a valid email")
	}
	if len(password) < minPasswordLen {
		return fail(c, fiber.StatusBadRequest, "Enter a stronger password")
	}

	if _, err := h.store.FindDoctorByEmail(c.Context(), email); err == nil {
		return fail(c, fiber.StatusConflict, "Doctor already exists")
	} else if !errors.Is(err, booking.ErrNotFound) {
		return h.failErr(c, err)
	}

	if _, err := c.FormFile("image"); err != nil {
		return fail(c, fiber.StatusBadRequest, "Image is required")
	}
	image, err := h.uploadAvatar(c)
	if err != nil {
		return h.failErr(c, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return h.failErr(c, err)
	}

	doctor := &models.Doctor{
		Name:        upd.Name,
		Email:       email,
		Password:    hash,
		Image:       image,
		Speciality:  upd.Speciality,
		Degree:      upd.Degree,
		Experience:  upd.Experience,
		About:       upd.About,
		Fees:        upd.Fees,
		Address:     upd.Address,
		Available:   true,
		Date:        time.Now(),
		SlotsBooked: map[string][]string{},
	}
	if _, err := h.store.InsertDoctor(c.Context(), doctor); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Doctor added"})
}

// AllDoctors returns the full doctor list, including contact details, for
// the admin panel.
func (h *Handler) AllDoctors(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.Context())
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"doctors": doctors})
}

// ChangeDoctorAvailability flips any doctor's booking flag from the admin
// panel.
func (h *Handler) ChangeDoctorAvailability(c *fiber.Ctx) error {
	var req struct {
		DocID string `json:"docId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse request")
	}
	docID, err := primitive.ObjectIDFromHex(req.DocID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid doctor id")
	}

	available, err := h.store.ToggleDoctorAvailability(c.Context(), docID)
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Availability changed", "available": available})
}

// ListAllAppointments returns every booking for the admin panel.
func (h *Handler) ListAllAppointments(c *fiber.Ctx) error {
	appts, err := h.booking.ListAll(c.Context())
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"appointments": appts})
}

// CancelAnyAppointment cancels any booking; the record is hidden from the
// patient's list but kept for the admin panel.
func (h *Handler) CancelAnyAppointment(c *fiber.Ctx) error {
	apptID, err := appointmentIDFromBody(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.booking.Cancel(c.Context(), apptID, booking.Actor{Role: auth.RoleAdmin}); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Appointment cancelled"})
}

// DeleteAppointment removes a terminal booking for good.
func (h *Handler) DeleteAppointment(c *fiber.Ctx) error {
	apptID, err := appointmentIDFromBody(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.booking.Delete(c.Context(), apptID, booking.Actor{Role: auth.RoleAdmin}); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Appointment deleted"})
}

// AdminDashboard returns the admin panel statistics.
func (h *Handler) AdminDashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.AdminStats(c.Context())
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"stats": stats})
}
