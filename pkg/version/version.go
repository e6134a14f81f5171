package version

// Version is the server release version reported during initialize.
const Version = "0.2.0"

// ProtocolVersion is the MCP revision this server speaks by default.
const ProtocolVersion = "2025-03-26"

// SupportedProtocolVersions lists the revisions the server can negotiate,
// newest first.
var SupportedProtocolVersions = []string{
	"2025-06-18",
	"2025-03-26",
	"2024-11-05",
}
