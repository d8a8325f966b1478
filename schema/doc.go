// Package schema is the shape-validation capability used by the di engine.
//
// A Shape maps field names to Types. Parse validates and coerces a raw value
// (usually a map decoded from YAML, JSON or the environment) against a Shape
// and returns the parsed Values or a *ValidationError listing every failing
// field.
//
// Two modes exist:
//
//   - Strict: unknown keys are rejected and every field is required unless
//     its Type accepts absence (Optional, Default, Void, Any, or an Object
//     whose fields all accept absence).
//   - Partial: every field is optional, supplied fields are still parsed and
//     unknown keys are still rejected.
//
// Example:
//
//	shape := schema.Shape{
//	    "url":     schema.URL(),
//	    "retries": schema.Default(schema.Int(), 3),
//	    "timeout": schema.Optional(schema.Duration()),
//	}
//	values, err := schema.Parse(shape, raw, schema.Strict)
//	if err != nil {
//	    for _, issue := range schema.Issues(err) {
//	        fmt.Println(issue.Path, issue.Reason)
//	    }
//	}
//	retries := values.Int("retries")
//
// Shapes are plain runtime data. They can be built from type strings with
// ParseTypeMap and round-trip through YAML:
//
//	url: url
//	retries: int
//	tags: "[string]"
//	timeout: duration?
package schema
