// issue-token prints a bearer token for the API.
//
// Usage:
//   API_SECRET=... go run ./cmd/issue-token -username alice -groups store_administrators
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/shop_backend/utils"
)

func main() {
	username := flag.String("username", "", "Required: token subject")
	groups := flag.String("groups", "", "Comma-separated groups, e.g. store_administrators")
	flag.Parse()

	if strings.TrimSpace(*username) == "" {
		fmt.Fprintln(os.Stderr, "--username is required")
		os.Exit(1)
	}

	var groupList []string
	for _, g := range strings.Split(*groups, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groupList = append(groupList, g)
		}
	}

	token, err := utils.JwtGenerate(strings.TrimSpace(*username), groupList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
