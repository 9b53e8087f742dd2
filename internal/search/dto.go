package search

// Default pagination forwarded by paginated routes.
const (
	DefaultPage    = 1
	DefaultPerPage = 5
)

// Request is one caller query as received by a proxy endpoint.
type Request struct {
	Query    string
	Category string
	Page     int
	PerPage  int
}

// Result is one hit produced by the backend.
type Result struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	CategoryID  string  `json:"category_id"`
}

// ErrorPayload is the error arm of a backend or gateway body.
type ErrorPayload struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Payload holds exactly one of Results or Err.
type Payload struct {
	Results []Result
	Err     *ErrorPayload
}

// Failed reports whether p is the error arm.
func (p Payload) Failed() bool { return p.Err != nil }

// Answer is a RAG answer body. Fields other than answer stay in Raw.
type Answer struct {
	Answer string `json:"answer"`
	Raw    []byte `json:"-"`
}
