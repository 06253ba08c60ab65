package common

import (
	"errors"
	"fmt"
)

// CodeInvalidConfig — код ошибки конфигурации декоратора.
const CodeInvalidConfig = "INVALID_CONFIGURATION"

// ErrConfiguration для errors.Is.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigurationError возвращается, если опции не позволяют построить схему.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: option %q %s", ErrConfiguration, e.Option, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigurationError) Code() string { return CodeInvalidConfig }
