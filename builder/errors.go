package builder

import "fmt"

// Pipeline steps reported by StepError
const (
	StepList    = "list"
	StepRead    = "read"
	StepParse   = "parse"
	StepRender  = "render"
	StepWrite   = "write"
	StepPublish = "publish"
)

// StepError is returned when a pipeline step fails; nothing is written to final destinations
type StepError struct {
	Header string
	Step   string
	Err    error
}

func (e *StepError) Error() string {
	if e.Header == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Step, e.Header, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
