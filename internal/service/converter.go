package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	domainerrors "github.com/sensifinder/sensifinder-server/internal/errors"
	"github.com/sensifinder/sensifinder-server/internal/ratios"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/store"
)

// ConvertRequest asks for one sensitivity vector to be rescaled between games.
type ConvertRequest struct {
	From   string                       `json:"from_game" doc:"Game the values come from"`
	To     string                       `json:"to_game" doc:"Game to convert into"`
	Values sensitivity.ScopeSensitivity `json:"values" doc:"Sensitivity per scope tier"`
}

// TierConversion is one row of a conversion, in canonical tier order.
type TierConversion struct {
	Tier      sensitivity.ScopeTier `json:"tier"`
	Label     string                `json:"label"`
	Source    int                   `json:"source"`
	Converted int                   `json:"converted"`
}

// ConvertResult carries both vectors and the ratio that produced them.
type ConvertResult struct {
	From      sensitivity.Game             `json:"from_game"`
	To        sensitivity.Game             `json:"to_game"`
	Ratio     float64                      `json:"ratio"`
	Source    sensitivity.ScopeSensitivity `json:"source"`
	Converted sensitivity.ScopeSensitivity `json:"converted"`
	Rows      []TierConversion             `json:"rows"`
}

// DPIRequest rescales one value between two touch DPIs.
type DPIRequest struct {
	Value   int `json:"value" doc:"Sensitivity value"`
	FromDPI int `json:"from_dpi" doc:"DPI the value was tuned on"`
	ToDPI   int `json:"to_dpi" doc:"Target device DPI"`
}

// ConverterService converts sensitivities with the active ratio table.
type ConverterService struct {
	source *ratios.Source
	store  store.Store
	logger *slog.Logger
}

// NewConverterService creates a new converter service.
func NewConverterService(source *ratios.Source, store store.Store, logger *slog.Logger) *ConverterService {
	return &ConverterService{
		source: source,
		store:  store,
		logger: logger,
	}
}

// converter snapshots the active table so one request never mixes versions.
func (s *ConverterService) converter() sensitivity.Converter {
	return sensitivity.NewConverter(s.source.Table())
}

// Table returns the active ratio table.
func (s *ConverterService) Table() *sensitivity.Table {
	return s.source.Table()
}

// Convert rescales req.Values from req.From to req.To.
func (s *ConverterService) Convert(req ConvertRequest) (*ConvertResult, error) {
	from, to, err := parseGamePair(req.From, req.To)
	if err != nil {
		return nil, err
	}

	c := s.converter()
	if from != to && !c.Table().Has(from, to) {
		s.logger.Warn("no authored ratio, converting as identity", "from", from, "to", to)
	}
	converted := c.Vector(req.Values, from, to)

	rows := make([]TierConversion, 0, len(sensitivity.Tiers()))
	for _, tier := range sensitivity.Tiers() {
		src, _ := req.Values.Get(tier)
		dst, _ := converted.Get(tier)
		rows = append(rows, TierConversion{
			Tier:      tier,
			Label:     tier.Label(),
			Source:    src,
			Converted: dst,
		})
	}

	return &ConvertResult{
		From:      from,
		To:        to,
		Ratio:     c.Table().Ratio(from, to),
		Source:    req.Values,
		Converted: converted,
		Rows:      rows,
	}, nil
}

// ConvertProfile returns the stored profile rescaled into game to.
func (s *ConverterService) ConvertProfile(ctx context.Context, id, to string) (*domain.SensitivityProfile, error) {
	target, err := sensitivity.ParseGame(to)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid target game",
			map[string]string{"to": err.Error()})
	}

	p, err := s.store.GetProfile(ctx, id)
	if errors.Is(err, store.ErrProfileNotFound) {
		return nil, domainerrors.NotFound("profile not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load profile")
	}

	return p.ConvertTo(s.converter(), target), nil
}

// ConvertDPI rescales a value between two DPIs.
func (s *ConverterService) ConvertDPI(req DPIRequest) (int, error) {
	details := map[string]string{}
	if req.FromDPI <= 0 {
		details["from_dpi"] = "must be greater than 0"
	}
	if req.ToDPI <= 0 {
		details["to_dpi"] = "must be greater than 0"
	}
	if len(details) > 0 {
		return 0, domainerrors.ValidationWithDetails("validation failed", details)
	}
	return sensitivity.ConvertDPI(req.Value, req.FromDPI, req.ToDPI), nil
}

func parseGamePair(fromName, toName string) (from, to sensitivity.Game, err error) {
	details := map[string]string{}

	from, ferr := sensitivity.ParseGame(fromName)
	if ferr != nil {
		details["from_game"] = ferr.Error()
	}
	to, terr := sensitivity.ParseGame(toName)
	if terr != nil {
		details["to_game"] = terr.Error()
	}
	if len(details) > 0 {
		return "", "", domainerrors.ValidationWithDetails("invalid game", details)
	}
	return from, to, nil
}
