package vtcore

// NotificationPayload carries a desktop notification request (OSC 777 / OSC 99).
// Fields follow the iTerm2/kitty desktop-notification conventions: a payload
// is assembled across possibly several OSC writes and delivered whole when
// Done is set.
type NotificationPayload struct {
	// ID identifies the notification for later close/update requests.
	ID string
	// Done is true once the payload is complete and should be delivered.
	Done bool
	// PayloadType names the field this chunk carries: "title", "body",
	// "?" for a capability query, etc.
	PayloadType string
	// Encoding is the payload transfer encoding ("" for plain text, "1" for base64).
	Encoding string
	// Actions lists button labels offered on the notification.
	Actions []string
	// TrackClose requests a close-event report back to the terminal.
	TrackClose bool
	// Timeout is the requested auto-dismiss delay in milliseconds (0 = no timeout).
	Timeout int
	// AppName identifies the application raising the notification.
	AppName string
	// Type is an application-defined notification category.
	Type string
	// IconName names a themed icon to display.
	IconName string
	// IconCacheID lets the provider avoid re-transmitting a previously sent icon.
	IconCacheID string
	// Sound names a notification sound to play.
	Sound string
	// Urgency follows the freedesktop urgency levels: 0 low, 1 normal, 2 critical.
	Urgency int
	// Occasion restricts when the notification should be shown ("always", "unfocused", ...).
	Occasion string
	// Data is the raw payload bytes for PayloadType (decoded if Encoding is set).
	Data []byte
}

// NotificationProvider delivers desktop notifications requested via OSC 777/99.
type NotificationProvider interface {
	// Notify is called with each payload chunk. For query payloads
	// (PayloadType == "?") the return value is written back to the PTY
	// as the capability response; otherwise the return value is ignored.
	Notify(payload *NotificationPayload) string
}

// NoopNotification discards all notification requests.
type NoopNotification struct{}

func (NoopNotification) Notify(payload *NotificationPayload) string { return "" }

var _ NotificationProvider = NoopNotification{}

// WithNotification sets the handler for desktop notification requests (OSC 777/99).
// Defaults to a no-op if not set.
func WithNotification(p NotificationProvider) Option {
	return func(t *Terminal) {
		t.notificationProvider = p
	}
}

// SetNotificationProvider sets the notification provider at runtime.
func (t *Terminal) SetNotificationProvider(p NotificationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationProvider = p
}

// NotificationProvider returns the current notification provider.
func (t *Terminal) NotificationProvider() NotificationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notificationProvider
}

// DesktopNotification processes a desktop notification payload (OSC 777/99).
func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	if t.middleware != nil && t.middleware.DesktopNotification != nil {
		t.middleware.DesktopNotification(payload, t.desktopNotificationInternal)
		return
	}
	t.desktopNotificationInternal(payload)
}

func (t *Terminal) desktopNotificationInternal(payload *NotificationPayload) {
	t.mu.RLock()
	provider := t.notificationProvider
	t.mu.RUnlock()

	if provider == nil {
		return
	}

	reply := provider.Notify(payload)
	if reply != "" {
		t.writeResponseString(reply)
	}
}
