// Command reviewctl submits a source file to a running review backend and
// records feedback on the returned suggestions. It is a development aid.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type suggestion struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	server := flag.String("server", envOr("REVIEW_SERVER", "http://localhost:8000"), "backend base URL")
	token := flag.String("token", os.Getenv("REVIEW_TOKEN"), "bearer token (optional)")
	file := flag.String("file", "", "source file to review")
	language := flag.String("language", "", "language of the file (defaults to the extension)")
	session := flag.String("session", "", "session id (defaults to the file path)")
	accept := flag.Int("accept", 0, "accept suggestion N after reviewing")
	reject := flag.Int("reject", 0, "reject suggestion N after reviewing")
	reason := flag.String("reason", "", "reason sent with -reject")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: reviewctl -file path [-language go] [-session id] [-accept N | -reject N -reason text]")
		os.Exit(2)
	}

	code, err := os.ReadFile(*file)
	if err != nil {
		fail(err)
	}
	if *language == "" {
		*language = strings.TrimPrefix(filepath.Ext(*file), ".")
	}
	if *session == "" {
		*session = *file
	}

	c := &client{baseURL: strings.TrimRight(*server, "/"), token: *token, http: &http.Client{Timeout: 5 * time.Minute}}

	var resp struct {
		Suggestions []suggestion `json:"suggestions"`
	}
	err = c.post("/api/v1/review", map[string]any{
		"code":       string(code),
		"language":   *language,
		"session_id": *session,
		"file_path":  *file,
	}, &resp)
	if err != nil {
		fail(err)
	}

	for _, s := range resp.Suggestions {
		fmt.Printf("[%d] (%s)\n%s\n\n", s.ID, s.Severity, s.Text)
	}

	switch {
	case *accept > 0:
		s := find(resp.Suggestions, *accept)
		var out struct {
			ModifiedCode string `json:"modified_code"`
		}
		err = c.post("/api/v1/suggestions/accept", map[string]any{
			"session_id":      *session,
			"suggestion_id":   s.ID,
			"suggestion_text": s.Text,
			"original_code":   string(code),
			"language":        *language,
			"file_path":       *file,
		}, &out)
		if err != nil {
			fail(err)
		}
		fmt.Println(out.ModifiedCode)
	case *reject > 0:
		s := find(resp.Suggestions, *reject)
		err = c.post("/api/v1/suggestions/reject", map[string]any{
			"session_id":      *session,
			"suggestion_id":   s.ID,
			"suggestion_text": s.Text,
			"reject_reason":   *reason,
			"language":        *language,
			"file_path":       *file,
		}, nil)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Rejected suggestion %d\n", s.ID)
	}
}

func (c *client) post(path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func find(suggestions []suggestion, id int) suggestion {
	for _, s := range suggestions {
		if s.ID == id {
			return s
		}
	}
	fail(fmt.Errorf("no suggestion %d in this review", id))
	return suggestion{}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "reviewctl:", err)
	os.Exit(1)
}
