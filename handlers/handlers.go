// Package handlers is the HTTP boundary: it parses requests, invokes the
// services, and shapes every reply as {success, message?, payload?}.
package handlers

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/config"
	"github.com/docpoint/booking-api/dashboard"
	"github.com/docpoint/booking-api/ledger"
	"github.com/docpoint/booking-api/storage"
	"github.com/docpoint/booking-api/store"
)

const minPasswordLen = 8

// Handler carries every dependency the route handlers share.
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	booking   *booking.Service
	dashboard *dashboard.Service
	tokens    *auth.Tokens
	uploader  storage.Uploader
	log       zerolog.Logger
}

// New wires the handler set.
func New(cfg *config.Config, st *store.Store, bk *booking.Service, dash *dashboard.Service, tokens *auth.Tokens, up storage.Uploader, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     st,
		booking:   bk,
		dashboard: dash,
		tokens:    tokens,
		uploader:  up,
		log:       log,
	}
}

func ok(c *fiber.Ctx, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(body)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// failErr translates the error taxonomy into an HTTP status and a
// caller-facing message. Unrecognized errors become opaque 500s.
func (h *Handler) failErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, booking.ErrValidation):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrSlotUnavailable):
		return fail(c, fiber.StatusConflict, "Slot is not available")
	case errors.Is(err, ledger.ErrDoctorUnavailable):
		return fail(c, fiber.StatusConflict, "Doctor not available for booking")
	case errors.Is(err, ledger.ErrDoctorNotFound):
		return fail(c, fiber.StatusNotFound, "Doctor not found")
	case errors.Is(err, booking.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, booking.ErrInvalidState):
		return fail(c, fiber.StatusConflict, "Action not allowed in the appointment's current state")
	case errors.Is(err, storage.ErrUpload):
		return fail(c, fiber.StatusBadGateway, "Image upload failed")
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return fail(c, fiber.StatusInternalServerError, "Something went wrong")
	}
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// uploadAvatar stores the multipart "image" file, if any, and returns its
// public URL. No file attached returns ("", nil).
func (h *Handler) uploadAvatar(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	tmp := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(fh.Filename))
	if err := c.SaveFile(fh, tmp); err != nil {
		return "", fmt.Errorf("%w: save upload: %v", storage.ErrUpload, err)
	}
	defer os.Remove(tmp)
	return h.uploader.Upload(c.Context(), tmp)
}
