package agentfactory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"ccc-bridge/internal/ccc"
	"ccc-bridge/internal/flex"
	"ccc-bridge/internal/genesys"
	"ccc-bridge/internal/servicenow"
	"ccc-bridge/internal/settings"
)

// Integration names as stored in settings.
const (
	IntegrationServiceNow = "ServiceNow"
	IntegrationFlex       = "Flex"
	IntegrationGenesys    = "Genesys"
)

// Factory resolves the active agent-service adapter for the current
// request from the stored integration settings. Exactly one integration
// is active at a time; an unconfigured deployment fails fast with
// ccc.ErrNotConfigured.
type Factory struct {
	store  settings.Store
	client *http.Client
	log    *slog.Logger
}

func New(store settings.Store, client *http.Client, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{store: store, client: client, log: log}
}

func (f *Factory) AgentService(ctx context.Context) (ccc.AgentService, error) {
	s, err := f.store.Get(ctx)
	if errors.Is(err, ccc.ErrNotFound) {
		return nil, ccc.ErrNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return f.build(s)
}

func (f *Factory) build(s settings.Settings) (ccc.AgentService, error) {
	fields := s.IntegrationFields
	if fields == nil {
		fields = map[string]string{}
	}

	switch s.IntegrationName {
	case IntegrationServiceNow:
		return servicenow.NewAdapter(servicenow.Config{
			InstanceURL: fields["instanceUrl"],
		}, f.client), nil

	case IntegrationFlex:
		return flex.NewAdapter(flex.Config{
			Customer: flex.Customer{
				AccountSID:  fields["accountSid"],
				AuthToken:   fields["authToken"],
				ServiceSID:  fields["serviceSid"],
				FlexFlowSID: fields["flexFlowSid"],
			},
			FlexAPIURL:     fields["flexApiUrl"],
			ChatServiceURL: fields["chatServiceUrl"],
		}, f.client, f.log), nil

	case IntegrationGenesys:
		return genesys.NewAdapter(genesys.Config{
			OAuthURL:      fields["oAuthUrl"],
			APIURL:        fields["instanceUrl"],
			ClientID:      fields["clientId"],
			ClientSecret:  fields["clientSecret"],
			GrantType:     fields["grantType"],
			IntegrationID: fields["OMIntegrationId"],
		}, f.client), nil

	case "":
		return nil, ccc.ErrNotConfigured

	default:
		return nil, fmt.Errorf("%w: unknown integration %q", ccc.ErrNotConfigured, s.IntegrationName)
	}
}
