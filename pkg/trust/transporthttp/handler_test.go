package transporthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/praxis/pkg/clockx"
	"github.com/Abraxas-365/praxis/pkg/trust"
	"github.com/Abraxas-365/praxis/pkg/dispatchx/dispatchconsole"
	"github.com/Abraxas-365/praxis/pkg/trust/challengestore"
	"github.com/Abraxas-365/praxis/pkg/trust/otpsrv"
	"github.com/Abraxas-365/praxis/pkg/trust/sessiongate"
	"github.com/Abraxas-365/praxis/pkg/trust/sessionjwt"
	"github.com/Abraxas-365/praxis/pkg/trust/transporthttp"
	"github.com/Abraxas-365/praxis/pkg/trust/webhookx"
)

type nopAudit struct{}

func (nopAudit) Record(_ context.Context, _ trust.AuditEvent) {}

func newApp(t *testing.T, clock *clockx.Mock) *fiber.App {
	t.Helper()

	sessions := sessionjwt.NewService("test-secret", "praxis", 15*time.Minute, 24*time.Hour, clock)
	otp := otpsrv.NewService(
		challengestore.NewMemoryStore(),
		dispatchconsole.NewConsoleDispatcher(),
		sessions,
		nopAudit{},
		clock,
		otpsrv.Config{DevCodeEcho: true},
	)
	gate := sessiongate.New(sessions, clock, 5*time.Minute)

	handler := transporthttp.NewHandler(
		otp,
		sessions,
		sessiongate.NewMiddleware(sessions, gate),
		webhookx.NewMiddleware(webhookx.NewVerifier(map[string]string{"calendar": "hook-secret"}, false)),
	)

	app := fiber.New(fiber.Config{ErrorHandler: transporthttp.ErrorHandler})
	handler.RegisterRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("response was not JSON: %s", raw)
		}
	}
	return decoded
}

func TestRequestVerifyAndAccessProtectedRoute(t *testing.T) {
	clock := clockx.NewMock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	app := newApp(t, clock)

	resp, issued := postJSON(t, app, "/auth/otp/request", map[string]string{"identity": "+14155550100"})
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("request: status %d", resp.StatusCode)
	}
	code, _ := issued["dev_code"].(string)
	if code == "" {
		t.Fatal("dev echo mode should return the code")
	}

	resp, grant := postJSON(t, app, "/auth/otp/verify", map[string]string{
		"identity": "+14155550100",
		"code":     code,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("verify: status %d (%v)", resp.StatusCode, grant)
	}
	access, _ := grant["access_token"].(string)
	if access == "" {
		t.Fatal("verify should return an access token")
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	meResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	me := decodeBody(t, meResp)
	if meResp.StatusCode != fiber.StatusOK || me["subject"] != "+14155550100" {
		t.Fatalf("me: status %d body %v", meResp.StatusCode, me)
	}
}

func TestVerifyWithWrongCode(t *testing.T) {
	clock := clockx.NewMock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	app := newApp(t, clock)

	postJSON(t, app, "/auth/otp/request", map[string]string{"identity": "+14155550100"})

	resp, body := postJSON(t, app, "/auth/otp/verify", map[string]string{
		"identity": "+14155550100",
		"code":     "000000",
	})
	if resp.StatusCode == fiber.StatusOK {
		t.Fatalf("wrong code accepted: %v", body)
	}
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	clock := clockx.NewMock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	app := newApp(t, clock)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode == fiber.StatusOK {
		t.Fatal("unauthenticated request must be denied")
	}
}

func TestRefreshEndpointRotatesTokens(t *testing.T) {
	clock := clockx.NewMock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	app := newApp(t, clock)

	_, issued := postJSON(t, app, "/auth/otp/request", map[string]string{"identity": "+14155550100"})
	code, _ := issued["dev_code"].(string)
	_, grant := postJSON(t, app, "/auth/otp/verify", map[string]string{
		"identity": "+14155550100",
		"code":     code,
	})
	refresh, _ := grant["refresh_token"].(string)

	clock.Advance(16 * time.Minute)
	resp, rotated := postJSON(t, app, "/auth/session/refresh", map[string]string{"refresh_token": refresh})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("refresh: status %d (%v)", resp.StatusCode, rotated)
	}
	if rotated["access_token"] == "" || rotated["subject"] != "+14155550100" {
		t.Fatalf("unexpected rotated grant: %v", rotated)
	}
}

func TestWebhookIngressEnforcesSignature(t *testing.T) {
	clock := clockx.NewMock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	app := newApp(t, clock)
	payload := []byte(`{"event":"appointment.created"}`)

	signed := httptest.NewRequest(http.MethodPost, "/webhooks/calendar", bytes.NewReader(payload))
	signed.Header.Set(webhookx.SignatureHeader, webhookx.Sign("hook-secret", payload))
	resp, err := app.Test(signed, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("signed delivery rejected: %d", resp.StatusCode)
	}

	forged := httptest.NewRequest(http.MethodPost, "/webhooks/calendar", bytes.NewReader(payload))
	forged.Header.Set(webhookx.SignatureHeader, webhookx.Sign("wrong-secret", payload))
	resp, err = app.Test(forged, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("forged delivery not rejected: %d", resp.StatusCode)
	}
}
