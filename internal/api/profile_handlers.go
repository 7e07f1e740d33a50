package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProfiles",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles",
		Summary:     "List profiles",
		Description: "Returns community profiles ranked by upvotes, optionally filtered by game and a device or share code search",
		Tags:        []string{"Profiles"},
	}, s.handleListProfiles)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createProfile",
		Method:        http.MethodPost,
		Path:          "/api/v1/profiles",
		Summary:       "Upload profile",
		Description:   "Shares a sensitivity profile with the community. Blank scope tiers default to 100",
		Tags:          []string{"Profiles"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   s.writeMiddlewares(),
	}, s.handleCreateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{id}",
		Summary:     "Get profile",
		Description: "Returns one profile",
		Tags:        []string{"Profiles"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "convertProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{id}/convert",
		Summary:     "Convert profile",
		Description: "Returns the profile with every vector rescaled into another game",
		Tags:        []string{"Profiles", "Converter"},
	}, s.handleConvertProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "upvoteProfile",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{id}/upvote",
		Summary:     "Upvote profile",
		Description: "Adds one upvote. Each session may upvote a profile once",
		Tags:        []string{"Profiles"},
		Middlewares: s.writeMiddlewares(),
	}, s.handleUpvoteProfile)
}

// ListProfilesInput selects a ranked page.
type ListProfilesInput struct {
	Game  string `query:"game" doc:"Only profiles for this game"`
	Query string `query:"q" doc:"Case-insensitive search over device name and share code"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum profiles to return (default 20)"`
}

// ProfileListResponse is a ranked page of profiles.
type ProfileListResponse struct {
	Profiles []domain.SensitivityProfile `json:"profiles" doc:"Profiles, most upvoted first"`
	Count    int                         `json:"count" doc:"Number of profiles returned"`
}

// ProfileListOutput wraps the list for Huma.
type ProfileListOutput struct {
	Body ProfileListResponse
}

func (s *Server) handleListProfiles(ctx context.Context, input *ListProfilesInput) (*ProfileListOutput, error) {
	profiles, err := s.services.Profile.ListProfiles(ctx, service.ListProfilesRequest{
		Game:  input.Game,
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, s.serviceError("listProfiles", err)
	}

	return &ProfileListOutput{
		Body: ProfileListResponse{Profiles: profiles, Count: len(profiles)},
	}, nil
}

// CreateProfileInput is the upload body.
type CreateProfileInput struct {
	Body service.CreateProfileRequest
}

// ProfileOutput wraps a single profile.
type ProfileOutput struct {
	Body *domain.SensitivityProfile
}

func (s *Server) handleCreateProfile(ctx context.Context, input *CreateProfileInput) (*ProfileOutput, error) {
	p, err := s.services.Profile.CreateProfile(ctx, input.Body)
	if err != nil {
		return nil, s.serviceError("createProfile", err)
	}
	return &ProfileOutput{Body: p}, nil
}

// ProfileIDInput addresses one profile.
type ProfileIDInput struct {
	ID string `path:"id" doc:"Profile ID"`
}

func (s *Server) handleGetProfile(ctx context.Context, input *ProfileIDInput) (*ProfileOutput, error) {
	p, err := s.services.Profile.GetProfile(ctx, input.ID)
	if err != nil {
		return nil, s.serviceError("getProfile", err)
	}
	return &ProfileOutput{Body: p}, nil
}

// ConvertProfileInput names the target game.
type ConvertProfileInput struct {
	ID string `path:"id" doc:"Profile ID"`
	To string `query:"to" required:"true" doc:"Game to convert into"`
}

func (s *Server) handleConvertProfile(ctx context.Context, input *ConvertProfileInput) (*ProfileOutput, error) {
	p, err := s.services.Converter.ConvertProfile(ctx, input.ID, input.To)
	if err != nil {
		return nil, s.serviceError("convertProfile", err)
	}
	return &ProfileOutput{Body: p}, nil
}

// UpvoteInput identifies the voter by session.
type UpvoteInput struct {
	ID        string `path:"id" doc:"Profile ID"`
	SessionID string `header:"X-Session-ID" doc:"Session created via POST /api/v1/sessions"`
}

// UpvoteResponse reports the new total.
type UpvoteResponse struct {
	ID      string `json:"id" doc:"Profile ID"`
	Upvotes int    `json:"upvotes" doc:"Upvote count after this vote"`
}

// UpvoteOutput wraps the upvote response.
type UpvoteOutput struct {
	Body UpvoteResponse
}

func (s *Server) handleUpvoteProfile(ctx context.Context, input *UpvoteInput) (*UpvoteOutput, error) {
	n, err := s.services.Profile.Upvote(ctx, input.SessionID, input.ID)
	if err != nil {
		return nil, s.serviceError("upvoteProfile", err)
	}
	return &UpvoteOutput{Body: UpvoteResponse{ID: input.ID, Upvotes: n}}, nil
}
