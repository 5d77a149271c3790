// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/waribei/unit-economics/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateStoreBackend checks if the store backend is supported.
func ValidateStoreBackend(backend string) error {
	if backend != constants.StoreBackendMemory && backend != constants.StoreBackendRedis {
		return fmt.Errorf("expected store backend of %s or %s, got %s",
			constants.StoreBackendMemory, constants.StoreBackendRedis, backend)
	}
	return nil
}
