package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/middleware"
	"github.com/docpoint/booking-api/models"
	"github.com/docpoint/booking-api/store"
)

// ListDoctors is the public directory for the patient portal; contact
// details stay private.
func (h *Handler) ListDoctors(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.Context())
	if err != nil {
		return h.failErr(c, err)
	}
	for i := range doctors {
		doctors[i].Email = ""
	}
	return ok(c, fiber.Map{"doctors": doctors})
}

// LoginDoctor authenticates a doctor and returns a token.
func (h *Handler) LoginDoctor(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse request")
	}

	doctor, err := h.store.FindDoctorByEmail(c.Context(), req.Email)
	if err != nil || !auth.CheckPassword(doctor.Password, req.Password) {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.tokens.Mint(doctor.ID.Hex(), auth.RoleDoctor)
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"token": token})
}

// GetDoctorProfile returns the authenticated doctor's record.
func (h *Handler) GetDoctorProfile(c *fiber.Ctx) error {
	doctor, err := h.store.FindDoctorByID(c.Context(), middleware.ActorID(c))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"doctor": doctor})
}

// doctorProfileForm reads the shared multipart profile fields.
func (h *Handler) doctorProfileForm(c *fiber.Ctx) (*store.DoctorProfileUpdate, string) {
	name := c.FormValue("name")
	speciality := c.FormValue("speciality")
	degree := c.FormValue("degree")
	experience := c.FormValue("experience")
	about := c.FormValue("about")
	feesRaw := c.FormValue("fees")
	if name == "" || speciality == "" || degree == "" || experience == "" || about == "" || feesRaw == "" {
		return nil, "Please provide all required fields"
	}
	fees, err := strconv.ParseInt(feesRaw, 10, 64)
	if err != nil || fees < 0 {
		return nil, "Invalid fees"
	}

	var address models.Address
	if raw := c.FormValue("address"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			return nil, "Invalid address"
		}
	}

	return &store.DoctorProfileUpdate{
		Name:       name,
		Speciality: speciality,
		Degree:     degree,
		Experience: experience,
		About:      about,
		Fees:       fees,
		Address:    address,
	}, ""
}

// UpdateDoctorProfile applies the multipart profile form for the
// authenticated doctor.
func (h *Handler) UpdateDoctorProfile(c *fiber.Ctx) error {
	upd, msg := h.doctorProfileForm(c)
	if msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	image, err := h.uploadAvatar(c)
	if err != nil {
		return h.failErr(c, err)
	}
	upd.Image = image

	if err := h.store.UpdateDoctorProfile(c.Context(), middleware.ActorID(c), *upd); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Profile updated"})
}

// ToggleDoctorAvailability flips the authenticated doctor's booking flag.
func (h *Handler) ToggleDoctorAvailability(c *fiber.Ctx) error {
	available, err := h.store.ToggleDoctorAvailability(c.Context(), middleware.ActorID(c))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Availability changed", "available": available})
}

// ListDoctorAppointments returns every booking against the authenticated
// doctor.
func (h *Handler) ListDoctorAppointments(c *fiber.Ctx) error {
	appts, err := h.booking.ListForDoctor(c.Context(), middleware.ActorID(c))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"appointments": appts})
}

// CompleteAppointment marks one of the doctor's bookings as done.
func (h *Handler) CompleteAppointment(c *fiber.Ctx) error {
	apptID, err := appointmentIDFromBody(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.booking.Complete(c.Context(), apptID, middleware.ActorID(c)); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Appointment completed"})
}

// CancelDoctorAppointment cancels one of the doctor's own bookings. Unlike
// an admin cancellation it stays visible to the patient.
func (h *Handler) CancelDoctorAppointment(c *fiber.Ctx) error {
	apptID, err := appointmentIDFromBody(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	actor := booking.Actor{ID: middleware.ActorID(c), Role: auth.RoleDoctor}
	if err := h.booking.Cancel(c.Context(), apptID, actor); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Appointment cancelled"})
}

// DeleteDoctorAppointment removes one of the doctor's terminal bookings.
func (h *Handler) DeleteDoctorAppointment(c *fiber.Ctx) error {
	apptID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid appointment id")
	}
	actor := booking.Actor{ID: middleware.ActorID(c), Role: auth.RoleDoctor}
	if err := h.booking.Delete(c.Context(), apptID, actor); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Appointment deleted"})
}

// DoctorDashboard returns the doctor panel statistics.
func (h *Handler) DoctorDashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.DoctorStats(c.Context(), middleware.ActorID(c))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"dashData": stats})
}
