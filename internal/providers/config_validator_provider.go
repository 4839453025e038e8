package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"barbuddy/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid configuration: %s", v.Errors.One())
	}

	// Cross-field checks the tag language cannot express.
	w := cv.conf.Windows
	if w.ResetHour == w.LikeResetHour && w.LikeResetMinute == 0 {
		return fmt.Errorf("invalid configuration: visit and like windows reset at the same instant")
	}
	if cv.conf.Sync.Enabled && cv.conf.Sync.DSN == "" {
		return fmt.Errorf("invalid configuration: sync.dsn is required when sync is enabled")
	}
	return nil
}
