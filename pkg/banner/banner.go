package banner

import (
	"fmt"
)

const banner = `
██╗    ██╗██╗██╗  ██╗██╗██████╗
██║    ██║██║██║ ██╔╝██║██╔══██╗
██║ █╗ ██║██║█████╔╝ ██║██║  ██║
██║███╗██║██║██╔═██╗ ██║██║  ██║
╚███╔███╔╝██║██║  ██╗██║██████╔╝
 ╚══╝╚══╝ ╚═╝╚═╝  ╚═╝╚═╝╚═════╝
`

// Print writes the startup banner with the effective listen address,
// database location, config source and build version.
func Print(addr, dbPath, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/signup | /v1/login | /v1/logout")
	fmt.Println("GET/POST /v1/namespaces, POST /v1/namespaces/{ns}/members, PUT /v1/namespaces/{ns}/mode")
	fmt.Println("GET/POST /v1/namespaces/{ns}/pages, GET/PUT /v1/namespaces/{ns}/pages/{slug}")
	fmt.Println("GET /v1/namespaces/{ns}/pages/{slug}/history, GET /v1/search?q=")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/signup' -d '{\"username\":\"alice\",\"password\":\"s3cret\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/search?q=hello'\n", addr)
	fmt.Println("\n== Production? =================================================")
	fmt.Println("Set a proper storage path (--db)")
	fmt.Println("Configure signing keys (WIKID_SIGNING_KEYS) before exposing the API")
}
