package ui

// Table Column Titles
const (
	ColLocal       = "LOCAL"
	ColDestination = "DESTINATION"
	ColProto       = "PROTO"
	ColStatus      = "STATUS"
	ColPID         = "PID"
)

// Status Strings - display-only
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusStale    = "No rule" // running forward whose rule left the file
)

// Numeric Constants for Layout
const (
	HeaderHeightEstimate = 3 // Lines used by the header section
	MinTableHeight       = 4 // Minimum table height after calculation
	ViewOffset           = 7 // Non-table lines in the main view for height calc
)

// Lipgloss Colors
const (
	ColorBorder     = "240"
	ColorSelectedFg = "229"
	ColorSelectedBg = "57"
	ColorTitle      = "14"  // Cyan for titles
	ColorHelp       = "245" // Grey for help text
	ColorError      = "9"   // Red for errors
	ColorActive     = "10"  // Green for active forwards
)

// Key hint line
const ActionForwardsNav = "↑/↓: Navigate | space: Start/Stop | r: Restart All | R: Reload Rules | q: Quit"
