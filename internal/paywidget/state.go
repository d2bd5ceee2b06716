package paywidget

// State is the lifecycle position of one widget.
type State int

const (
	Unloaded State = iota
	SdkReady
	LoadError
	Mounted
	AwaitingOrder
	Approved
	Cancelled
	Errored
	Unmounted
)

var stateNames = [...]string{
	Unloaded:      "unloaded",
	SdkReady:      "sdk_ready",
	LoadError:     "load_error",
	Mounted:       "mounted",
	AwaitingOrder: "awaiting_order",
	Approved:      "approved",
	Cancelled:     "cancelled",
	Errored:       "errored",
	Unmounted:     "unmounted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
