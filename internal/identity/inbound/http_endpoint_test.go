package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/identity/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
)

type fakeUsecase struct {
	requestErr error
	verifyOut  *usecase.OtpVerifyOutput
	verifyErr  error
	accountOut *usecase.AccountOutput
	logoutErr  error

	gotVerify usecase.OtpVerifyInput
	gotLogout usecase.LogoutInput
}

func (f *fakeUsecase) OtpRequest(_ context.Context, in usecase.OtpRequestInput) error {
	return f.requestErr
}

func (f *fakeUsecase) OtpVerify(_ context.Context, in usecase.OtpVerifyInput) (*usecase.OtpVerifyOutput, error) {
	f.gotVerify = in
	return f.verifyOut, f.verifyErr
}

func (f *fakeUsecase) Account(_ context.Context) (*usecase.AccountOutput, error) {
	return f.accountOut, nil
}

func (f *fakeUsecase) Logout(_ context.Context, in usecase.LogoutInput) error {
	f.gotLogout = in
	return f.logoutErr
}

func newTestServer(t *testing.T, uc uc) (*httptest.Server, jwt.JWT) {
	t.Helper()

	tokenizer, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(strings.Repeat("s", 64)),
		Issuer:     "otpgate-test",
		Audiences:  []string{"otpgate"},
		TTLMinutes: 15 * time.Minute,
		Clock:      clock.New(),
		UUID:       uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("failed to build jwt: %v", err)
	}

	r := router.NewRouter(router.Config{
		UUID:       uid.NewUUID(),
		JWT:        tokenizer,
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(r, uc)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, tokenizer
}

func postJSON(t *testing.T, url, body string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf("failed to close response body: %v", err)
		}
	})

	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return envelope
}

func TestHTTPEndpointOtpRequest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeUsecase{})

		resp := postJSON(t, srv.URL+"/api/v1/auth/otp/request", `{"phone":"+15550001111"}`, nil)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		envelope := decodeEnvelope(t, resp)
		if envelope["message"] != "OTP sent successfully." {
			t.Fatalf("unexpected message: %v", envelope["message"])
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeUsecase{})

		resp := postJSON(t, srv.URL+"/api/v1/auth/otp/request", `{"phone":`, nil)

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("Cooldown", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeUsecase{
			requestErr: goerror.NewBusiness(
				"OTP already sent. Please wait before requesting a new code.",
				goerror.CodeTooManyRequest,
			),
		})

		resp := postJSON(t, srv.URL+"/api/v1/auth/otp/request", `{"phone":"+15550001111"}`, nil)

		if resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", resp.StatusCode)
		}
	})

	t.Run("DispatchFailure", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeUsecase{
			requestErr: goerror.NewBusiness("Failed to send OTP. Please try again.", goerror.CodeUnavailable),
		})

		resp := postJSON(t, srv.URL+"/api/v1/auth/otp/request", `{"phone":"+15550001111"}`, nil)

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", resp.StatusCode)
		}
	})
}

func TestHTTPEndpointOtpVerify(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fake := &fakeUsecase{
			verifyOut: &usecase.OtpVerifyOutput{
				Token:       strings.Repeat("a", 64),
				AccessToken: "jwt-token",
				Account: entity.Account{
					ID:          42,
					Phone:       "+15550001111",
					Email:       "abcdef0123@otpgate.sms",
					FullName:    "PhoneUser",
					Status:      entity.AccountStatusActive,
					HasPassword: false,
				},
			},
		}
		srv, _ := newTestServer(t, fake)

		resp := postJSON(t, srv.URL+"/api/v1/auth/otp/verify",
			`{"phone":"+15550001111","otp":"482913"}`,
			map[string]string{"X-Device-ID": "device-1"})

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		envelope := decodeEnvelope(t, resp)
		data, ok := envelope["data"].(map[string]any)
		if !ok {
			t.Fatalf("expected data object, got %v", envelope)
		}
		if data["token"] != strings.Repeat("a", 64) || data["access_token"] != "jwt-token" {
			t.Fatalf("unexpected tokens in response: %v", data)
		}
		account, ok := data["account"].(map[string]any)
		if !ok || account["phone"] != "+15550001111" || account["status"] != "Active" {
			t.Fatalf("unexpected account in response: %v", data["account"])
		}

		if fake.gotVerify.DeviceID != "device-1" {
			t.Fatalf("expected device id from header, got %q", fake.gotVerify.DeviceID)
		}
		if fake.gotVerify.IP == "" {
			t.Fatalf("expected client ip to be forwarded")
		}
	})

	t.Run("InvalidCode", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeUsecase{
			verifyErr: goerror.NewBusiness("Invalid OTP.", goerror.CodeInvalidFormat),
		})

		resp := postJSON(t, srv.URL+"/api/v1/auth/otp/verify", `{"phone":"+15550001111","otp":"000000"}`, nil)

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		envelope := decodeEnvelope(t, resp)
		if envelope["message"] != "Invalid OTP." {
			t.Fatalf("unexpected message: %v", envelope["message"])
		}
	})

	t.Run("Locked", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeUsecase{
			verifyErr: goerror.NewBusiness(
				"Too many failed attempts. Try again in 1 hour.",
				goerror.CodeTooManyRequest,
			),
		})

		resp := postJSON(t, srv.URL+"/api/v1/auth/otp/verify", `{"phone":"+15550001111","otp":"482913"}`, nil)

		if resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", resp.StatusCode)
		}
	})
}

func TestHTTPEndpointAccount(t *testing.T) {
	t.Run("RequiresAuthentication", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeUsecase{})

		resp, err := http.Get(srv.URL + "/api/v1/auth/account")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("ReturnsProfile", func(t *testing.T) {
		fake := &fakeUsecase{
			accountOut: &usecase.AccountOutput{
				Account: entity.Account{
					ID:       42,
					Phone:    "+15550001111",
					Email:    "abcdef0123@otpgate.sms",
					FullName: "PhoneUser",
					Status:   entity.AccountStatusActive,
				},
			},
		}
		srv, tokenizer := newTestServer(t, fake)

		access, err := tokenizer.Generate(42, "abcdef0123@otpgate.sms")
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/auth/account", nil)
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+access)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		envelope := decodeEnvelope(t, resp)
		data, ok := envelope["data"].(map[string]any)
		if !ok || data["phone"] != "+15550001111" {
			t.Fatalf("unexpected profile: %v", envelope)
		}
	})
}

func TestHTTPEndpointLogout(t *testing.T) {
	fake := &fakeUsecase{}
	srv, _ := newTestServer(t, fake)

	resp := postJSON(t, srv.URL+"/api/v1/auth/logout",
		`{"token":"`+strings.Repeat("a", 64)+`"}`, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope["message"] != "Logged out successfully." {
		t.Fatalf("unexpected message: %v", envelope["message"])
	}
	if fake.gotLogout.Token != strings.Repeat("a", 64) {
		t.Fatalf("unexpected logout token: %q", fake.gotLogout.Token)
	}
}
