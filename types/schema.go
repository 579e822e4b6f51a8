package types

import "strings"

// SchemaField is the heterogeneous value a caller may supply per field in
// ParseRequest.OutputSchema: a bare type-hint string, a descriptor object
// that may mark the field optional, or an arbitrary object treated as
// opaque metadata. Modeling it as a small tagged variant (rather than `any`)
// centralizes the two pure functions (DetectValidationType, IsFieldOptional)
// callers otherwise have to reimplement per resolver.
type SchemaField struct {
	// Hint is set when the caller supplied a bare string, e.g. "email".
	Hint string
	// Descriptor is set when the caller supplied an object. Optional and
	// Type are read from it when present; any other keys are preserved in
	// Raw for resolvers/postprocessors that want to inspect them.
	Descriptor *SchemaDescriptor
	// Opaque is set when the caller supplied something that is neither a
	// string nor a recognizable descriptor object (e.g. a nested schema for
	// ValidationObject). Treated as metadata only.
	Opaque map[string]any
}

// SchemaDescriptor is the structured form of a schema field: a type hint
// plus an explicit optionality marker.
type SchemaDescriptor struct {
	Type     string
	Optional bool
	Raw      map[string]any
}

// NewHintField builds a SchemaField from a bare type-hint string.
func NewHintField(hint string) SchemaField {
	return SchemaField{Hint: hint}
}

// NewDescriptorField builds a SchemaField from a structured descriptor.
func NewDescriptorField(d SchemaDescriptor) SchemaField {
	return SchemaField{Descriptor: &d}
}

// NewOpaqueField builds a SchemaField from an arbitrary metadata object.
func NewOpaqueField(raw map[string]any) SchemaField {
	return SchemaField{Opaque: raw}
}

// typeHint returns the type-hint string this field declares, if any, and
// whether one was found at all (an opaque object has none).
func (f SchemaField) typeHint() (string, bool) {
	switch {
	case f.Hint != "":
		return f.Hint, true
	case f.Descriptor != nil && f.Descriptor.Type != "":
		return f.Descriptor.Type, true
	default:
		return "", false
	}
}

// IsFieldOptional reports whether a schema field declares itself optional.
// Only descriptor objects with Optional: true are considered optional; bare
// hints and opaque objects default to required, matching spec.md §4.4
// ("Required-ness is inferred by looking for optional: true on the
// descriptor").
func IsFieldOptional(f SchemaField) bool {
	return f.Descriptor != nil && f.Descriptor.Optional
}

// DetectValidationType infers a ValidationType for a field from its schema
// declaration first, falling back to the field name when the declaration
// carries no usable type hint (opaque objects, or a descriptor with no
// Type). The field-name heuristics mirror spec.md §4.4's checklist in
// priority order; the fall-through is ValidationString.
func DetectValidationType(fieldName string, f SchemaField) ValidationType {
	if hint, ok := f.typeHint(); ok {
		if vt, ok := validationTypeFromHint(hint); ok {
			return vt
		}
	}
	return validationTypeFromFieldName(fieldName)
}

func validationTypeFromHint(hint string) (ValidationType, bool) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "string":
		return ValidationString, true
	case "number", "int", "integer", "float":
		return ValidationNumber, true
	case "boolean", "bool":
		return ValidationBoolean, true
	case "email":
		return ValidationEmail, true
	case "phone", "telephone":
		return ValidationPhone, true
	case "date":
		return ValidationDate, true
	case "iso_date", "isodate":
		return ValidationISODate, true
	case "url", "uri", "link":
		return ValidationURL, true
	case "string_array", "list", "ids":
		return ValidationStringArray, true
	case "number_array":
		return ValidationNumberArray, true
	case "currency", "money", "price":
		return ValidationCurrency, true
	case "percentage", "percent":
		return ValidationPercentage, true
	case "address":
		return ValidationAddress, true
	case "name":
		return ValidationName, true
	case "object":
		return ValidationObject, true
	case "custom":
		return ValidationCustom, true
	default:
		return "", false
	}
}

// fieldNameSignals maps substrings commonly found in field names to the
// ValidationType spec.md §4.4 asks us to infer for them. Checked in order;
// the first match wins.
var fieldNameSignals = []struct {
	substr string
	vt     ValidationType
}{
	{"email", ValidationEmail},
	{"phone", ValidationPhone},
	{"telephone", ValidationPhone},
	{"iso_date", ValidationISODate},
	{"isodate", ValidationISODate},
	{"date", ValidationDate},
	{"url", ValidationURL},
	{"link", ValidationURL},
	{"website", ValidationURL},
	{"ids", ValidationStringArray},
	{"list", ValidationStringArray},
	{"tags", ValidationStringArray},
	{"price", ValidationCurrency},
	{"amount", ValidationCurrency},
	{"cost", ValidationCurrency},
	{"total", ValidationCurrency},
	{"currency", ValidationCurrency},
	{"percent", ValidationPercentage},
	{"rate", ValidationPercentage},
	{"address", ValidationAddress},
	{"location", ValidationAddress},
	{"name", ValidationName},
	{"count", ValidationNumber},
	{"number", ValidationNumber},
	{"qty", ValidationNumber},
	{"quantity", ValidationNumber},
	{"age", ValidationNumber},
	{"is_", ValidationBoolean},
	{"has_", ValidationBoolean},
	{"active", ValidationBoolean},
	{"enabled", ValidationBoolean},
}

func validationTypeFromFieldName(fieldName string) ValidationType {
	lower := strings.ToLower(fieldName)
	for _, sig := range fieldNameSignals {
		if strings.Contains(lower, sig.substr) {
			return sig.vt
		}
	}
	return ValidationString
}
