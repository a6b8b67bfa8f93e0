package model

// Initiator identifies the HTML/CSS construct that caused a resource
// to be discovered. The set is closed; extraction dispatches on these
// tags and nothing else.
type Initiator string

const (
	InitiatorDocument    Initiator = "document"
	InitiatorScript      Initiator = "script"
	InitiatorImg         Initiator = "img"
	InitiatorImgSrcset   Initiator = "img-srcset"
	InitiatorStylesheet  Initiator = "stylesheet"
	InitiatorPreload     Initiator = "preload"
	InitiatorIframe      Initiator = "iframe"
	InitiatorMedia       Initiator = "media"
	InitiatorInlineStyle Initiator = "inline-style"
	InitiatorStyleTag    Initiator = "style-tag"
	InitiatorCSSURL      Initiator = "css-url"
)

// ProbeResult is the terminal outcome of probing one discovered resource.
// Exactly one of Status or Error is set: a response yields Status (with
// ok/contentType/size as available), a network-level failure yields Error.
// TimeMs is recorded either way.
type ProbeResult struct {
	URL         string    `json:"url"`
	Status      *int      `json:"status"`
	OK          bool      `json:"ok"`
	ContentType *string   `json:"contentType"`
	Size        *int64    `json:"size"`
	TimeMs      int64     `json:"timeMs"`
	Method      *string   `json:"methodTried"`
	Error       *string   `json:"error"`
	Initiator   Initiator `json:"initiator"`
}

// MainResult reports the outcome of the initial document fetch. The main
// document is never re-probed; these values come from that single fetch.
type MainResult struct {
	Status      int     `json:"status"`
	OK          bool    `json:"ok"`
	ContentType *string `json:"contentType"`
	TimeMs      int64   `json:"timeMs"`
}

// InspectionReport is the complete result of inspecting a page.
type InspectionReport struct {
	FetchedURL string        `json:"fetchedUrl"`
	Main       *MainResult   `json:"main"`
	Resources  []ProbeResult `json:"resources"`
	Note       string        `json:"note"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
