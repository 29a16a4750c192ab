package constants

// Origin of a prediction request, recorded with every cycle and
// carried in queue payloads.
const (
	OriginAPI          = "api"
	OriginCLI          = "cli"
	OriginScheduleScan = "schedule_scan"
)
