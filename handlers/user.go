package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/middleware"
	"github.com/docpoint/booking-api/models"
	"github.com/docpoint/booking-api/store"
)

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser creates a patient account and returns a login token.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse request")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Missing details")
	}
	if !validEmail(req.Email) {
		return fail(c, fiber.StatusBadRequest, "Enter a valid email")
	}
	if len(req.Password) < minPasswordLen {
		return fail(c, fiber.StatusBadRequest, "Enter a stronger password")
	}

	if _, err := h.store.FindUserByEmail(c.Context(), req.Email); err == nil {
		return fail(c, fiber.StatusConflict, "User already exists")
	} else if !errors.Is(err, booking.ErrNotFound) {
		return h.failErr(c, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return h.failErr(c, err)
	}
	id, err := h.store.InsertUser(c.Context(), models.NewUser(req.Name, req.Email, hash))
	if err != nil {
		return h.failErr(c, err)
	}

	token, err := h.tokens.Mint(id.Hex(), auth.RolePatient)
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"token": token})
}

// LoginUser authenticates a patient and returns a token.
func (h *Handler) LoginUser(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse request")
	}

	user, err := h.store.FindUserByEmail(c.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.tokens.Mint(user.ID.Hex(), auth.RolePatient)
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"token": token})
}

// GetProfile returns the authenticated patient's record.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := h.store.FindUserByID(c.Context(), middleware.ActorID(c))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"userData": user})
}

// UpdateProfile applies the multipart profile form, uploading a new avatar
// when one is attached.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	name := c.FormValue("name")
	phone := c.FormValue("phone")
	dob := c.FormValue("dob")
	gender := c.FormValue("gender")
	if name == "" || phone == "" || dob == "" || gender == "" {
		return fail(c, fiber.StatusBadRequest, "Data missing")
	}

	var address models.Address
	if raw := c.FormValue("address"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid address")
		}
	}

	image, err := h.uploadAvatar(c)
	if err != nil {
		return h.failErr(c, err)
	}

	upd := store.UserProfileUpdate{
		Name:    name,
		Phone:   phone,
		DOB:     dob,
		Gender:  gender,
		Address: address,
		Image:   image,
	}
	if err := h.store.UpdateUserProfile(c.Context(), middleware.ActorID(c), upd); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Profile updated"})
}

// BookAppointment reserves a slot with the chosen doctor for the
// authenticated patient.
func (h *Handler) BookAppointment(c *fiber.Ctx) error {
	var req struct {
		DocID    string `json:"docId"`
		SlotDate string `json:"slotDate"`
		SlotTime string `json:"slotTime"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse request")
	}
	docID, err := primitive.ObjectIDFromHex(req.DocID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid doctor id")
	}

	appt, err := h.booking.Book(c.Context(), middleware.ActorID(c), docID, req.SlotDate, req.SlotTime)
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Appointment booked", "appointment": appt})
}

// ListUserAppointments returns the patient's visible bookings.
func (h *Handler) ListUserAppointments(c *fiber.Ctx) error {
	appts, err := h.booking.ListForUser(c.Context(), middleware.ActorID(c))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"appointments": appts})
}

// CancelUserAppointment cancels one of the patient's own bookings.
func (h *Handler) CancelUserAppointment(c *fiber.Ctx) error {
	apptID, err := appointmentIDFromBody(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	actor := booking.Actor{ID: middleware.ActorID(c), Role: auth.RolePatient}
	if err := h.booking.Cancel(c.Context(), apptID, actor); err != nil {
		return h.failErr(c, err)
	}
	return ok(c, fiber.Map{"message": "Appointment cancelled"})
}

func appointmentIDFromBody(c *fiber.Ctx) (primitive.ObjectID, error) {
	var req struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return primitive.NilObjectID, errors.New("Cannot parse request")
	}
	id, err := primitive.ObjectIDFromHex(req.AppointmentID)
	if err != nil {
		return primitive.NilObjectID, errors.New("Invalid appointment id")
	}
	return id, nil
}
