package agentfactory

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"ccc-bridge/internal/ccc"
	"ccc-bridge/internal/settings"
)

func storeWith(t *testing.T, s settings.Settings) settings.Store {
	t.Helper()
	store := settings.NewMemoryStore()
	if err := store.Put(context.Background(), s); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	return store
}

func TestAgentService_NotConfigured(t *testing.T) {
	f := New(settings.NewMemoryStore(), &http.Client{}, nil)

	_, err := f.AgentService(context.Background())
	if !errors.Is(err, ccc.ErrNotConfigured) {
		t.Fatalf("expected not-configured error, got %v", err)
	}
}

func TestAgentService_EmptyIntegrationName(t *testing.T) {
	f := New(storeWith(t, settings.Settings{}), &http.Client{}, nil)

	_, err := f.AgentService(context.Background())
	if !errors.Is(err, ccc.ErrNotConfigured) {
		t.Fatalf("expected not-configured error, got %v", err)
	}
}

func TestAgentService_UnknownIntegration(t *testing.T) {
	f := New(storeWith(t, settings.Settings{IntegrationName: "Zendesk"}), &http.Client{}, nil)

	_, err := f.AgentService(context.Background())
	if !errors.Is(err, ccc.ErrNotConfigured) {
		t.Fatalf("expected not-configured error, got %v", err)
	}
}

func TestAgentService_BuildsConfiguredAdapter(t *testing.T) {
	cases := []struct {
		integration string
		fields      map[string]string
		wantName    string
	}{
		{
			integration: IntegrationServiceNow,
			fields:      map[string]string{"instanceUrl": "https://example.service-now.com"},
			wantName:    "servicenow",
		},
		{
			integration: IntegrationFlex,
			fields: map[string]string{
				"accountSid": "AC1", "authToken": "tok",
				"serviceSid": "IS1", "flexFlowSid": "FO1",
			},
			wantName: "flex",
		},
		{
			integration: IntegrationGenesys,
			fields: map[string]string{
				"oAuthUrl": "https://login.example.com", "instanceUrl": "https://api.example.com",
				"clientId": "c1", "clientSecret": "s1", "OMIntegrationId": "int-1",
			},
			wantName: "genesys",
		},
	}

	for _, tc := range cases {
		f := New(storeWith(t, settings.Settings{
			IntegrationName:   tc.integration,
			IntegrationFields: tc.fields,
		}), &http.Client{}, nil)

		svc, err := f.AgentService(context.Background())
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.integration, err)
		}
		if svc.Name() != tc.wantName {
			t.Fatalf("%s: unexpected adapter %q", tc.integration, svc.Name())
		}
	}
}
