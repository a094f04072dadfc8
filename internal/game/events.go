package game

// EventType identifies a round event delivered to listeners.
type EventType string

const (
	EventBettingOpened EventType = "betting_opened"
	EventBettingClosed EventType = "betting_closed"
	EventDoubled       EventType = "doubled"
	EventCardDealt     EventType = "card_dealt"
	EventHoleRevealed  EventType = "hole_revealed"
	EventScoreUpdated  EventType = "score_updated"
	EventRoundSettled  EventType = "round_settled"
)

func (et EventType) String() string {
	return string(et)
}

// Seat is the owner of a hand.
type Seat string

const (
	SeatPlayer Seat = "player"
	SeatDealer Seat = "dealer"
)

// Event is a single observable step of a round. Only the fields relevant to
// Type are set.
type Event struct {
	Type    EventType `json:"type"`
	Seat    Seat      `json:"seat,omitempty"`
	Card    *Card     `json:"card,omitempty"`
	FaceUp  bool      `json:"face_up,omitempty"`
	Score   int       `json:"score,omitempty"`
	Outcome Outcome   `json:"outcome,omitempty"`
	Bet     int       `json:"bet,omitempty"`
	Payout  int       `json:"payout,omitempty"`
}

// Listener consumes round events. HandleEvent runs synchronously inside the
// action that produced the event.
type Listener interface {
	HandleEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) HandleEvent(e Event) { f(e) }

// Listeners fans an event out to every listener in order.
type Listeners []Listener

func (ls Listeners) HandleEvent(e Event) {
	for _, l := range ls {
		if l != nil {
			l.HandleEvent(e)
		}
	}
}

type nopListener struct{}

func (nopListener) HandleEvent(Event) {}
