package component

import "github.com/bootzin/BootEngine-sub000/event"

// Every event kind gets its own wrapper kind so systems can filter event
// entities by kind without inspecting payloads.
var eventComponents = func() [event.KindCount]ComponentHandle[event.Event] {
	var out [event.KindCount]ComponentHandle[event.Event]
	for _, k := range event.Kinds() {
		out[k] = NewNamedComponent[event.Event](k.String() + "Event")
	}
	return out
}()

// EventComponent returns the wrapper kind for event kind k.
func EventComponent(k event.Kind) ComponentHandle[event.Event] {
	return eventComponents[k]
}
