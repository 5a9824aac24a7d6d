package rules

import (
	"encoding/json"
	"sync"
)

// EventType is the category of a player input.
type EventType string

const (
	EventEndTurn              EventType = "END_TURN"
	EventClickAbilityToken    EventType = "CLICK_ABILITY_TOKEN"
	EventClickHandCard        EventType = "CLICK_HAND_CARD"
	EventClickHandCardAbility EventType = "CLICK_HAND_CARD_ABILITY"
	EventClickMarketDeck      EventType = "CLICK_MARKET_DECK"
	EventClickMarketTable     EventType = "CLICK_MARKET_TABLE_CARD"
	EventClickBorrowed        EventType = "CLICK_BORROWED_ELEMENT"
	EventClickPlayerHand      EventType = "CLICK_PLAYER_HAND"
	EventConfirmStage         EventType = "CONFIRM_STAGE"
	EventClickAcquiredPolicy  EventType = "CLICK_ACQUIRED_POLICY"
	EventCancelAbility        EventType = "CANCEL_ABILITY"
	EventCancelPolicy         EventType = "CANCEL_POLICY"
	// EventForceContext replaces or merges state fields. Tooling only.
	EventForceContext EventType = "FORCE_CONTEXT"
)

// IsPrivileged reports whether only tooling may send the event.
func (et EventType) IsPrivileged() bool {
	return et == EventForceContext
}

// Family names a market.
type Family string

const (
	FamilyAnimal     Family = "animal"
	FamilyPlant      Family = "plant"
	FamilyElement    Family = "element"
	FamilyDisaster   Family = "disaster"
	FamilyHabitat    Family = "habitat"
	FamilyExtinction Family = "extinction"
	FamilyPolicy     Family = "policy"
)

// Event is a player input.
type Event struct {
	Type EventType `json:"type"`
	// UID is the clicked card, token or player.
	UID    string `json:"uid,omitempty"`
	Family Family `json:"family,omitempty"`
	// Name selects a card by name inside a market deck, e.g. the element to borrow.
	Name string `json:"name,omitempty"`
	// Context is the force-context payload.
	Context json.RawMessage `json:"context,omitempty"`
	// Merge applies Context as a JSON merge patch instead of a replacement.
	Merge bool `json:"merge,omitempty"`
}

func EndTurn() Event                 { return Event{Type: EventEndTurn} }
func ClickToken(uid string) Event    { return Event{Type: EventClickAbilityToken, UID: uid} }
func ClickHandCard(uid string) Event { return Event{Type: EventClickHandCard, UID: uid} }
func ClickCardAbility(uid string) Event {
	return Event{Type: EventClickHandCardAbility, UID: uid}
}
func ClickMarketDeck(f Family, name string) Event {
	return Event{Type: EventClickMarketDeck, Family: f, Name: name}
}
func ClickMarketCard(f Family, uid string) Event {
	return Event{Type: EventClickMarketTable, Family: f, UID: uid}
}
func ClickBorrowed(uid string) Event       { return Event{Type: EventClickBorrowed, UID: uid} }
func ClickPlayerHand(player string) Event  { return Event{Type: EventClickPlayerHand, UID: player} }
func Confirm() Event                       { return Event{Type: EventConfirmStage} }
func ClickAcquiredPolicy(uid string) Event { return Event{Type: EventClickAcquiredPolicy, UID: uid} }
func CancelAbility() Event                 { return Event{Type: EventCancelAbility} }
func CancelPolicy() Event                  { return Event{Type: EventCancelPolicy} }

// ForceContext replaces the whole game state with context.
func ForceContext(context json.RawMessage) Event {
	return Event{Type: EventForceContext, Context: context}
}

// MergeContext applies patch to the game state as an RFC 7386 merge patch.
func MergeContext(patch json.RawMessage) Event {
	return Event{Type: EventForceContext, Context: patch, Merge: true}
}

// Listener reacts to published events.
type Listener func(Event)

// TypedListener reacts to one event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus is a synchronous publish/subscribe hub for accepted inputs.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for one event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers event to every matching listener synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}
