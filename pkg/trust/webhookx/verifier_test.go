package webhookx_test

import (
	"testing"

	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/trust/webhookx"
)

var payload = []byte(`{"event":"appointment.created","id":"b7c2"}`)

func TestAcceptsPayloadSignedWithConfiguredSecret(t *testing.T) {
	v := webhookx.NewVerifier(map[string]string{"calendar": "secret-one"}, false)

	sig := webhookx.Sign("secret-one", payload)
	if err := v.Verify("calendar", payload, sig); err != nil {
		t.Fatal(err)
	}
}

func TestRejectsPayloadSignedWithOtherSecret(t *testing.T) {
	v := webhookx.NewVerifier(map[string]string{"calendar": "secret-one"}, false)

	sig := webhookx.Sign("secret-two", payload)
	if err := v.Verify("calendar", payload, sig); !errx.IsCode(err, webhookx.CodeSignatureInvalid) {
		t.Fatalf("expected SIGNATURE_INVALID, got %v", err)
	}
}

// Flipping any single byte of the payload must invalidate the signature.
func TestRejectsMutatedPayload(t *testing.T) {
	v := webhookx.NewVerifier(map[string]string{"calendar": "secret-one"}, false)
	sig := webhookx.Sign("secret-one", payload)

	for i := range payload {
		mutated := append([]byte(nil), payload...)
		mutated[i] ^= 0x01
		if err := v.Verify("calendar", mutated, sig); err == nil {
			t.Fatalf("mutation at byte %d was accepted", i)
		}
	}
}

func TestRejectsMalformedSignatures(t *testing.T) {
	v := webhookx.NewVerifier(map[string]string{"calendar": "secret-one"}, false)

	for _, sig := range []string{"", "not-hex", "abcd", "ABCDEF"} {
		if err := v.Verify("calendar", payload, sig); err == nil {
			t.Fatalf("signature %q was accepted", sig)
		}
	}
}

func TestMissingSecretFailsClosed(t *testing.T) {
	v := webhookx.NewVerifier(nil, false)

	sig := webhookx.Sign("whatever", payload)
	if err := v.Verify("calendar", payload, sig); !errx.IsCode(err, webhookx.CodeSecretMissing) {
		t.Fatalf("expected SECRET_MISSING, got %v", err)
	}
}

func TestMissingSecretWithExplicitBypass(t *testing.T) {
	v := webhookx.NewVerifier(map[string]string{"calendar": "secret-one"}, true)

	// unknown integration passes under the bypass
	if err := v.Verify("billing", payload, ""); err != nil {
		t.Fatal(err)
	}

	// the bypass never weakens integrations that do have a secret
	if err := v.Verify("calendar", payload, webhookx.Sign("secret-two", payload)); err == nil {
		t.Fatal("configured integration must still be verified")
	}
}

func TestIntegrationNameIsCaseInsensitive(t *testing.T) {
	v := webhookx.NewVerifier(map[string]string{"Calendar": "secret-one"}, false)

	sig := webhookx.Sign("secret-one", payload)
	if err := v.Verify("CALENDAR", payload, sig); err != nil {
		t.Fatal(err)
	}
}
