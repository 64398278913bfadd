package templates

// DefaultFooterNote is shown in the shared layout when a page does not supply custom text.
const DefaultFooterNote = "Keywords are generated through OpenRouter. Generated lists replace the document's current keywords."

// SettingsPageData contains the stored credential values shown on the settings screen.
type SettingsPageData struct {
	Namespace  string
	Configured bool
	MaskedKey  string
	Model      string
	FooterNote string
}

// SessionPanelData describes one editing session and its document.
type SessionPanelData struct {
	SessionID         string
	DocumentID        string
	IsLoading         bool
	LastError         string
	MaxKeywords       int
	MaxKeywordOptions []int
	Keywords          []string
	KeywordsSet       bool
	FooterNote        string
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	StatusLabel string
	Message     string
}
