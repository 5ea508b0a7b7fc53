package adapter

import (
	"fmt"
	"strings"
)

// ConfigError reports an operation the vendor configuration cannot
// serve. Never retried.
type ConfigError struct {
	Vendor    string
	Operation string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("vendor %s: operation %s: %s", e.Vendor, e.Operation, e.Reason)
}

// MissingFieldsError reports a singular-operation response whose
// required identity fields are entirely absent after extraction. It
// names what was expected against what actually arrived, because "the
// vendor changed its response shape again" is the usual diagnosis.
type MissingFieldsError struct {
	Vendor    string
	Operation string
	Expected  []string
	Received  []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("vendor %s: operation %s: response missing required fields (expected one of [%s], received fields [%s])",
		e.Vendor, e.Operation,
		strings.Join(e.Expected, " "),
		strings.Join(e.Received, " "))
}
