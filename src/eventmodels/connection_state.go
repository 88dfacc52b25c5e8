package eventmodels

type ConnectionState int32

const (
	Disconnected ConnectionState = iota
	Connecting
	Authenticating
	Subscribed
	Closing
	Failed
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Authenticating:
		return "authenticating"
	case Subscribed:
		return "subscribed"
	case Closing:
		return "closing"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
