// Vigil validates runtime-verifiable behavioral properties of
// message-passing systems, written in the Vigil Property Language (VPL).
//
// Usage:
//
//	# Validate property documents
//	vigil check --file props.yaml
//
//	# Start the daemon: load, watch, and serve telemetry
//	vigil serve --config /etc/vigil/config.yaml
//
//	# Query the validation audit trail
//	vigil audit recent --db /var/lib/vigil/audit.db
//
//	# Show version information
//	vigil version
package main

func main() {
	Execute()
}
