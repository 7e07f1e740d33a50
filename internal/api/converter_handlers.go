package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/service"
)

func (s *Server) registerConverterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/games",
		Summary:     "List games",
		Description: "Returns the supported games, scope tiers and the sensitivity range",
		Tags:        []string{"Converter"},
	}, s.handleListGames)

	huma.Register(s.api, huma.Operation{
		OperationID: "getConversionTable",
		Method:      http.MethodGet,
		Path:        "/api/v1/conversion-table",
		Summary:     "Get conversion table",
		Description: "Returns the authored ratio for every game pair",
		Tags:        []string{"Converter"},
	}, s.handleGetConversionTable)

	huma.Register(s.api, huma.Operation{
		OperationID: "convert",
		Method:      http.MethodPost,
		Path:        "/api/v1/convert",
		Summary:     "Convert sensitivity",
		Description: "Rescales a per-scope sensitivity vector from one game to another",
		Tags:        []string{"Converter"},
	}, s.handleConvert)

	huma.Register(s.api, huma.Operation{
		OperationID: "convertDPI",
		Method:      http.MethodPost,
		Path:        "/api/v1/convert/dpi",
		Summary:     "Convert between DPIs",
		Description: "Rescales a sensitivity value tuned on one touch DPI for another",
		Tags:        []string{"Converter"},
	}, s.handleConvertDPI)
}

// TierInfo names one scope tier.
type TierInfo struct {
	ID    sensitivity.ScopeTier `json:"id" doc:"Tier key used in sensitivity objects"`
	Label string                `json:"label" doc:"Display label"`
}

// RangeInfo describes the slider bounds.
type RangeInfo struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// GamesResponse lists what the converter supports.
type GamesResponse struct {
	Games []sensitivity.Game `json:"games" doc:"Supported games"`
	Tiers []TierInfo         `json:"tiers" doc:"Scope tiers in display order"`
	Range RangeInfo          `json:"range" doc:"Valid sensitivity values"`
}

// GamesOutput wraps the games response for Huma.
type GamesOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         GamesResponse
}

func (s *Server) handleListGames(_ context.Context, _ *struct{}) (*GamesOutput, error) {
	tiers := make([]TierInfo, 0, len(sensitivity.Tiers()))
	for _, t := range sensitivity.Tiers() {
		tiers = append(tiers, TierInfo{ID: t, Label: t.Label()})
	}

	return &GamesOutput{
		CacheControl: CacheOneHour,
		Body: GamesResponse{
			Games: sensitivity.Games(),
			Tiers: tiers,
			Range: RangeInfo{
				Min:     sensitivity.MinValue,
				Max:     sensitivity.MaxValue,
				Default: sensitivity.DefaultValue,
			},
		},
	}, nil
}

// ConversionTableResponse lists the authored ratios.
type ConversionTableResponse struct {
	Pairs []sensitivity.Pair `json:"pairs" doc:"Authored ratios; unlisted pairs convert at 1.0"`
}

// ConversionTableOutput wraps the table for Huma.
type ConversionTableOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ConversionTableResponse
}

func (s *Server) handleGetConversionTable(_ context.Context, _ *struct{}) (*ConversionTableOutput, error) {
	return &ConversionTableOutput{
		// The table can be hot-reloaded.
		CacheControl: CacheNoStore,
		Body: ConversionTableResponse{
			Pairs: s.services.Converter.Table().Pairs(),
		},
	}, nil
}

// ConvertInput is the body of a conversion request.
type ConvertInput struct {
	Body service.ConvertRequest
}

// ConvertOutput wraps a conversion result.
type ConvertOutput struct {
	Body *service.ConvertResult
}

func (s *Server) handleConvert(_ context.Context, input *ConvertInput) (*ConvertOutput, error) {
	res, err := s.services.Converter.Convert(input.Body)
	if err != nil {
		return nil, s.serviceError("convert", err)
	}
	return &ConvertOutput{Body: res}, nil
}

// DPIInput is the body of a DPI conversion.
type DPIInput struct {
	Body service.DPIRequest
}

// DPIResponse holds the rescaled value.
type DPIResponse struct {
	Value int `json:"value" doc:"Converted sensitivity"`
}

// DPIOutput wraps the DPI response.
type DPIOutput struct {
	Body DPIResponse
}

func (s *Server) handleConvertDPI(_ context.Context, input *DPIInput) (*DPIOutput, error) {
	v, err := s.services.Converter.ConvertDPI(input.Body)
	if err != nil {
		return nil, s.serviceError("convertDPI", err)
	}
	return &DPIOutput{Body: DPIResponse{Value: v}}, nil
}
