package providers

import (
	"errors"
	"ratingd/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	v.StopOnError = false
	if !v.Validate() {
		return errors.New(v.Errors.String())
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.Size < 0 {
		return errors.New("cache.size: must not be negative")
	}
	return nil
}
