package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/booking"
	"github.com/docpoint/booking-api/models"
)

type fakeDoctors struct {
	known map[primitive.ObjectID]bool
}

func (f *fakeDoctors) FindDoctorByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	if f.known[id] {
		return &models.Doctor{ID: id}, nil
	}
	return nil, booking.ErrNotFound
}

func testApp(tokens *auth.Tokens, doctors DoctorChecker, adminEmail string) *fiber.App {
	app := fiber.New()
	echoActor := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": ActorID(c).Hex(), "role": ActorRole(c)})
	}
	app.Get("/user", RequireUser(tokens), echoActor)
	app.Get("/doctor", RequireDoctor(tokens, doctors), echoActor)
	app.Get("/admin", RequireAdmin(tokens, adminEmail), echoActor)
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGatesRejectMissingToken(t *testing.T) {
	tokens := auth.NewTokens("secret")
	app := testApp(tokens, &fakeDoctors{}, "admin@clinic.test")

	for _, path := range []string{"/user", "/doctor", "/admin"} {
		resp := request(t, app, path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestGatesRejectWrongRole(t *testing.T) {
	tokens := auth.NewTokens("secret")
	app := testApp(tokens, &fakeDoctors{}, "admin@clinic.test")

	patientTok, err := tokens.Mint(primitive.NewObjectID().Hex(), auth.RolePatient)
	require.NoError(t, err)

	resp := request(t, app, "/doctor", patientTok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = request(t, app, "/admin", patientTok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserGateAdmitsValidToken(t *testing.T) {
	tokens := auth.NewTokens("secret")
	app := testApp(tokens, &fakeDoctors{}, "admin@clinic.test")

	tok, err := tokens.Mint(primitive.NewObjectID().Hex(), auth.RolePatient)
	require.NoError(t, err)

	resp := request(t, app, "/user", tok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoctorGateChecksExistence(t *testing.T) {
	tokens := auth.NewTokens("secret")
	liveID := primitive.NewObjectID()
	staleID := primitive.NewObjectID()
	app := testApp(tokens, &fakeDoctors{known: map[primitive.ObjectID]bool{liveID: true}}, "admin@clinic.test")

	liveTok, err := tokens.Mint(liveID.Hex(), auth.RoleDoctor)
	require.NoError(t, err)
	resp := request(t, app, "/doctor", liveTok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	staleTok, err := tokens.Mint(staleID.Hex(), auth.RoleDoctor)
	require.NoError(t, err)
	resp = request(t, app, "/doctor", staleTok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "token for a deleted doctor goes stale")
}

func TestAdminGateChecksSubject(t *testing.T) {
	tokens := auth.NewTokens("secret")
	app := testApp(tokens, &fakeDoctors{}, "admin@clinic.test")

	tok, err := tokens.Mint("admin@clinic.test", auth.RoleAdmin)
	require.NoError(t, err)
	resp := request(t, app, "/admin", tok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	impostor, err := tokens.Mint("other@clinic.test", auth.RoleAdmin)
	require.NoError(t, err)
	resp = request(t, app, "/admin", impostor)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGatesRejectForgedToken(t *testing.T) {
	tokens := auth.NewTokens("secret")
	forger := auth.NewTokens("other-secret")
	app := testApp(tokens, &fakeDoctors{}, "admin@clinic.test")

	tok, err := forger.Mint(primitive.NewObjectID().Hex(), auth.RolePatient)
	require.NoError(t, err)

	resp := request(t, app, "/user", tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
