package variable

// Context is the editor state variables are resolved against.
type Context interface {
	SelectedText() string
	CurrentWord() string
	CurrentLine() string
	PreviousLine() string
	LineIndex() int
	TabWidth() int
	SoftTabs() bool
	Clipboard() string
	FilePath() string
	BlockCommentStart() string
	BlockCommentEnd() string
	LineComment() string
}
