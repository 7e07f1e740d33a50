package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/service"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create session",
		Description:   "Starts an anonymous session. Send its ID in the X-Session-ID header to upvote",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   s.writeMiddlewares(),
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session",
		Description: "Returns a session and extends its lifetime",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSession",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/{id}",
		Summary:       "End session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLikedProfiles",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/likes",
		Summary:     "List upvoted profiles",
		Description: "Returns the profiles this session has upvoted",
		Tags:        []string{"Sessions", "Profiles"},
	}, s.handleListLikedProfiles)
}

// CreateSessionInput is the session creation body.
type CreateSessionInput struct {
	Body service.CreateSessionRequest
}

// SessionOutput wraps a session.
type SessionOutput struct {
	Body *domain.Session
}

func (s *Server) handleCreateSession(ctx context.Context, input *CreateSessionInput) (*SessionOutput, error) {
	sess, err := s.services.Session.CreateSession(ctx, input.Body)
	if err != nil {
		return nil, s.serviceError("createSession", err)
	}
	return &SessionOutput{Body: sess}, nil
}

// SessionIDInput addresses one session.
type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

func (s *Server) handleGetSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	sess, err := s.services.Session.GetSession(ctx, input.ID)
	if err != nil {
		return nil, s.serviceError("getSession", err)
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, input *SessionIDInput) (*struct{}, error) {
	if err := s.services.Session.DeleteSession(ctx, input.ID); err != nil {
		return nil, s.serviceError("deleteSession", err)
	}
	return nil, nil //nolint:nilnil // huma treats a nil output as an empty response
}

func (s *Server) handleListLikedProfiles(ctx context.Context, input *SessionIDInput) (*ProfileListOutput, error) {
	profiles, err := s.services.Session.LikedProfiles(ctx, input.ID)
	if err != nil {
		return nil, s.serviceError("listLikedProfiles", err)
	}
	return &ProfileListOutput{
		Body: ProfileListResponse{Profiles: profiles, Count: len(profiles)},
	}, nil
}
