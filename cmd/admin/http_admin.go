package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	run(getAndPrint(os.Stdout, adminURL(*baseURL, "/admin/v1/state", "")))
}

func auditsCmd(args []string) {
	fs := flag.NewFlagSet("audits", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	actor := fs.String("actor", "", "player or chest id (optional; empty prints counts by action)")
	_ = fs.Parse(args)

	run(getAndPrint(os.Stdout, adminURL(*baseURL, "/admin/v1/audits", *actor)))
}

func adminURL(base, path, actor string) string {
	u := strings.TrimRight(strings.TrimSpace(base), "/") + path
	if a := strings.TrimSpace(actor); a != "" {
		u += "?actor=" + url.QueryEscape(a)
	}
	return u
}

// getAndPrint copies the response body to w. Non-2xx statuses are errors
// after the body has been printed.
func getAndPrint(w io.Writer, u string) error {
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Fprintln(w, strings.TrimRight(string(b), "\n"))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status %s", resp.Status)
	}
	return nil
}

func run(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
