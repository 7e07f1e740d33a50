package api

import (
	"github.com/sensifinder/sensifinder-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Converter *service.ConverterService
	Profile   *service.ProfileService
	Session   *service.SessionService
}
