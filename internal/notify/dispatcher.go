package notify

// Dispatcher delivers notifications to their recipients. Implementations
// must not block: they are called while the controller holds its lock.
type Dispatcher interface {
	Dispatch(n Notification)
}

// Sink keeps notifications durably. Implementations must not block.
type Sink interface {
	Store(n Notification)
	ContactChanged(id, address string)
}

// Dispatchers fans a notification out to several dispatchers in order.
type Dispatchers []Dispatcher

// Dispatch implements Dispatcher.
func (ds Dispatchers) Dispatch(n Notification) {
	for _, d := range ds {
		if d != nil {
			d.Dispatch(n)
		}
	}
}
