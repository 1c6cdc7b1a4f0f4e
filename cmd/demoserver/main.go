// Command demoserver starts a self-contained reviewers API with demo
// addon versions, for exercising the review server without a real addons
// backend.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Happy-Ferret/addons-code-manager/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   Demo Reviewers API")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Serves demo addons with multiple versions so the")
	fmt.Println("compare flow can be exercised end to end:")
	fmt.Println()
	fmt.Println("  - version metadata + file content endpoints")
	fmt.Println("  - compare endpoints with generated diffs")
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
