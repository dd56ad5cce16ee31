package version

// Version is overridden at build time with -ldflags "-X github.com/alucardeht/x-mcp/pkg/version.Version=...".
var Version = "0.1.0"

const (
	ServerName      = "x-mcp-server"
	ProtocolVersion = "2024-11-05"
)

var SupportedProtocolVersions = []string{
	"2024-11-05",
	"2025-03-26",
	"2025-06-18",
}
