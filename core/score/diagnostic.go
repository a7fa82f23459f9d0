package score

import "fmt"

// Diagnostic is a non-fatal finding. The operation that produced it left the
// document unchanged for that step and the caller decides how to surface it.
type Diagnostic struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Operation, d.Message)
}

// Diagnostics is an ordered collection of findings.
type Diagnostics []Diagnostic

// Add appends a formatted diagnostic.
func (ds *Diagnostics) Add(operation, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Operation: operation, Message: fmt.Sprintf(format, args...)})
}
