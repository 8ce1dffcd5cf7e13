package v1alpha1

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode converts a raw resource property value into out.
// CloudFormation delivers every scalar as a string, so decoding is weakly typed
// ("true" becomes a bool, a single string becomes a one-element list).
func Decode(raw interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create property decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode resource properties: %w", err)
	}
	return nil
}
