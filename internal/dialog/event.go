package dialog

import "context"

// Kind — форма входящего события из чата.
type Kind int

const (
	KindText Kind = iota
	KindPhoto
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Event is one inbound conversational event. Exactly one of Text, PhotoRef
// or Data is meaningful depending on Kind.
type Event struct {
	ActorID  int64
	Kind     Kind
	Text     string
	PhotoRef string
	Data     string
}

// Button — inline-кнопка; Data для callback, URL для внешней ссылки.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Renderer is the outbound sink. The dialogue layer never talks to the
// chat transport directly.
type Renderer interface {
	// Send delivers a message with optional inline buttons.
	Send(ctx context.Context, actorID int64, text string, buttons [][]Button) error
	// SendMenu delivers a message with a persistent reply keyboard.
	SendMenu(ctx context.Context, actorID int64, text string, rows [][]string) error
}
