package templates

// PageContext provides shared layout context for admin pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	Title        string
	CurrentPath  string
	CurrentQuery string
	// Messages are the flash messages drained for this render.
	Messages []FlashMessage
}

// FlashMessage is one queued user-facing message.
type FlashMessage struct {
	Text  string
	Level string
}
