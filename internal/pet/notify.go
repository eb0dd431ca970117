package pet

// Severity is the tone of a notification.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

// Notification is a fire-and-forget message for the user.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Sink receives notifications after the state change that produced them has
// been committed. Implementations must not call back into the engine
// synchronously with a mutation that expects to observe ordering with the
// current one.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

// Notify implements Sink.
func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

// outbox collects notifications during one transition.
type outbox []Notification

func (o *outbox) info(title, desc string) {
	*o = append(*o, Notification{Title: title, Description: desc, Severity: SeverityInfo})
}

func (o *outbox) destructive(title, desc string) {
	*o = append(*o, Notification{Title: title, Description: desc, Severity: SeverityDestructive})
}
