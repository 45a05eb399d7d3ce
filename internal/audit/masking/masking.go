package masking

import "strings"

const maskToken = "****"

// sensitiveKeys are metadata keys whose string values never reach the
// audit table in clear text.
var sensitiveKeys = map[string]bool{
	"phone":          true,
	"email":          true,
	"gstin":          true,
	"customer_phone": true,
	"customer_gstin": true,
}

// MaskSecret keeps the last four characters of value.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskPII returns a copy of input with sensitive string values masked.
// Nested maps are walked.
func MaskPII(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		masked[trimmedKey] = maskValue(trimmedKey, value)
	}

	if len(masked) == 0 {
		return nil
	}
	return masked
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if sensitiveKeys[strings.ToLower(key)] {
			return MaskSecret(cast)
		}
		return cast
	case map[string]any:
		return MaskPII(cast)
	default:
		return value
	}
}
