package config

import (
	"sync"

	"github.com/grovetools/tabpresence/schema"
)

var (
	sitesValidator     *schema.Validator
	sitesValidatorErr  error
	sitesValidatorOnce sync.Once
)

// SitesValidator returns the compiled validator for site configuration
// documents. The schema is generated from SitesDocument on first use.
func SitesValidator() (*schema.Validator, error) {
	sitesValidatorOnce.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			sitesValidatorErr = err
			return
		}
		sitesValidator, sitesValidatorErr = schema.NewValidator("sites.schema.json", data)
	})
	return sitesValidator, sitesValidatorErr
}
