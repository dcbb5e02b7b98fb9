package weather

// Current is the presentation model extracted from a successful provider
// response. Temperatures are whole degrees Celsius.
type Current struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Condition   Condition `json:"condition"`
	Main        string    `json:"main"` // raw provider label, e.g. "Rain"
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	TempC       int       `json:"temp_c"`
	MinC        int       `json:"min_c"`
	MaxC        int       `json:"max_c"`
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeEmptyQuery
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeEmptyQuery:
		return "empty_query"
	}
	return "unknown"
}

// Outcome is the immutable result of one pipeline run. The zero value is
// a success with an empty report and should not be used; build outcomes
// with Success, NotFound or EmptyQuery.
type Outcome struct {
	kind    OutcomeKind
	current Current
}

// Success wraps a populated report.
func Success(c Current) Outcome {
	return Outcome{kind: OutcomeSuccess, current: c}
}

// NotFound is returned when the provider could not answer for the query.
func NotFound() Outcome {
	return Outcome{kind: OutcomeNotFound}
}

// EmptyQuery is returned when the query was empty and no fallback city applies.
func EmptyQuery() Outcome {
	return Outcome{kind: OutcomeEmptyQuery}
}

// Kind reports which variant the outcome holds.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Current returns the report and true for a success.
func (o Outcome) Current() (Current, bool) {
	if o.kind != OutcomeSuccess {
		return Current{}, false
	}
	return o.current, true
}

// Condition returns the condition kind, Unknown for anything but a success.
func (o Outcome) Condition() Condition {
	if o.kind != OutcomeSuccess {
		return Unknown
	}
	return o.current.Condition
}
