package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "suggestDevices",
		Method:      http.MethodGet,
		Path:        "/api/v1/devices",
		Summary:     "Suggest devices",
		Description: "Autocompletes device names from uploaded profiles. Tolerates one typo per word",
		Tags:        []string{"Devices"},
	}, s.handleSuggestDevices)
}

// SuggestDevicesInput is a partially typed device name.
type SuggestDevicesInput struct {
	Query string `query:"q" doc:"Partial device name; blank lists every device"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum suggestions (default 20)"`
}

// DevicesResponse lists device names.
type DevicesResponse struct {
	Devices []string `json:"devices" doc:"Matching device names, best first"`
}

// DevicesOutput wraps the suggestions for Huma.
type DevicesOutput struct {
	Body DevicesResponse
}

func (s *Server) handleSuggestDevices(ctx context.Context, input *SuggestDevicesInput) (*DevicesOutput, error) {
	names, err := s.services.Profile.SuggestDevices(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, s.serviceError("suggestDevices", err)
	}
	return &DevicesOutput{Body: DevicesResponse{Devices: names}}, nil
}
