package domain

import (
	"time"

	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

// SensitivityProfile is one community-submitted configuration.
//
// Profiles are created by the store on upload and afterwards only their
// upvote count changes. Ranking and conversion treat them as immutable.
type SensitivityProfile struct {
	ID          string                        `json:"id"`
	Game        sensitivity.Game              `json:"game_name"`
	DeviceName  string                        `json:"device_name"`
	ShareCode   string                        `json:"share_code"`
	Camera      sensitivity.ScopeSensitivity  `json:"camera_sensitivity"`
	ADS         sensitivity.ScopeSensitivity  `json:"ads_sensitivity"`
	Gyro        *sensitivity.ScopeSensitivity `json:"gyro_sensitivity"`
	GyroEnabled bool                          `json:"is_gyro_enabled"`
	Upvotes     int                           `json:"upvotes"`
	CreatedAt   time.Time                     `json:"created_at"`
}

// EffectiveGyro returns the gyro vector only when gyro is enabled.
// A disabled profile reports no gyro even if a value was stored.
func (p *SensitivityProfile) EffectiveGyro() *sensitivity.ScopeSensitivity {
	if !p.GyroEnabled || p.Gyro == nil {
		return nil
	}
	g := *p.Gyro
	return &g
}

// ConvertTo returns a copy of the profile with its vectors rescaled to game to.
// The identity, share code and upvotes are kept; gyro stays absent when disabled.
func (p *SensitivityProfile) ConvertTo(c sensitivity.Converter, to sensitivity.Game) *SensitivityProfile {
	out := *p
	out.Game = to
	out.Camera = c.Vector(p.Camera, p.Game, to)
	out.ADS = c.Vector(p.ADS, p.Game, to)
	out.Gyro = nil
	if g := p.EffectiveGyro(); g != nil {
		converted := c.Vector(*g, p.Game, to)
		out.Gyro = &converted
	}
	return &out
}
