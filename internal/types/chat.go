package types

// FileContent is one extracted document attached to a chat turn. Content is
// plain text produced by the extractor; raw bytes never travel past upload.
type FileContent struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ChatRequest is the JSON body of POST /v1/chat. BYOK fields may also arrive
// as headers (X-User-API-Key, X-AI-Provider, X-AI-Model) so that secrets stay
// out of logged request bodies; headers take precedence.
type ChatRequest struct {
	Message      string        `json:"message"`
	FileContents []FileContent `json:"fileContents,omitempty"`
	UseOwnKey    bool          `json:"useOwnKey,omitempty"`
	Provider     string        `json:"provider,omitempty"`
	Model        string        `json:"model,omitempty"`
	DriveFileIDs []string      `json:"driveFileIDs,omitempty"`
}

// Message is one turn in a provider conversation envelope.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
