package styles

// Checkbox and state markers used by the item list.
var (
	IconChecked    = "[x]"
	IconUnchecked  = "[ ]"
	IconIneligible = " - "
	IconCursor     = ">"
	IconOffline    = "!"
)

// Notification markers.
var (
	IconNotifyInfo    = "i"
	IconNotifyWarning = "!"
	IconNotifyError   = "x"
)
