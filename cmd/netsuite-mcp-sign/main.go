// netsuite-mcp-sign prints the OAuth 1.0a Authorization header for a given
// method and URL using the configured credentials. Useful for reproducing a
// server request with curl when debugging 401s.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/suitebridge/netsuite-mcp/internal/config"
	"github.com/suitebridge/netsuite-mcp/internal/oauth"
)

func main() {
	method := flag.String("method", "GET", "HTTP method the header is for")
	rawURL := flag.String("url", "", "absolute request URL, including any query string")
	configPath := flag.String("config", "", "config file (yaml/json)")
	flag.Parse()

	if *rawURL == "" {
		fail("missing -url", nil)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("load config", err)
	}
	u, err := url.Parse(*rawURL)
	if err != nil {
		fail("parse url", err)
	}
	if !u.IsAbs() {
		fail("url must be absolute", nil)
	}

	fmt.Println(oauth.NewSigner(cfg.Credentials()).Header(strings.ToUpper(*method), u))
}

func fail(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
