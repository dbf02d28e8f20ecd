package mpesa

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://sandbox.safaricom.co.ke"

// Config holds everything the client needs to talk to Daraja. All fields
// except BaseURL are required.
type Config struct {
	ConsumerKey    string `validate:"required"`
	ConsumerSecret string `validate:"required"`
	ShortCode      string `validate:"required,numeric"`
	Passkey        string `validate:"required"`
	CallbackURL    string `validate:"required,url"`
	BaseURL        string `validate:"required,url"`
}

var validate = validator.New()

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate mpesa config")
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return errors.Errorf("invalid mpesa config: missing or malformed %s", strings.Join(fields, ", "))
}
