// ksqlquery runs queries against a streaming SQL engine and prints the JSON or Arrow result.
//
// The connection comes from --dsn, or from a named entry of connections.toml in $GOKSQL_HOME.
package main

import (
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}
