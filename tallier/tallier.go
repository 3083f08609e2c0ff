// Package tallier implements the HTTP client to the untrusted tallier
// service (spec.md §6): fetching the current ballot count, fetching one
// ballot by 1-indexed height, submitting a new ballot, and an escape
// hatch for arbitrary text GETs the UI shell issues directly. The plain
// net/http + encoding/json client shape, including timeout handling and
// status-code branching, follows
// vocdoni-davinci-node/sequencer/worker.go's fetchProcessFromMaster/
// fetchJobFromMaster — the teacher's own HTTP-client-to-an-untrusted-peer
// code (there: sequencer worker to master; here: voting client to
// tallier).
package tallier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vocdoni/zvote/ballot"
	"github.com/vocdoni/zvote/errs"
)

// Client talks to one tallier base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client against baseURL (no trailing slash expected).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NumBallots fetches the tallier's current ballot count.
func (c *Client) NumBallots() (uint32, error) {
	resp, err := c.http.Get(c.baseURL + "/num_ballots")
	if err != nil {
		return 0, errs.Wrap(errs.Io, "tallier: num_ballots request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errs.Wrap(errs.Io, "tallier: num_ballots read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, errs.New(errs.Io, fmt.Sprintf("tallier: num_ballots status %d: %s", resp.StatusCode, body))
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 32)
	if err != nil {
		return 0, errs.Wrap(errs.InvalidEncoding, "tallier: malformed num_ballots response", err)
	}
	return uint32(n), nil
}

// BallotAtHeight fetches the ballot at 1-indexed height i.
func (c *Client) BallotAtHeight(i uint32) (*ballot.Ballot, error) {
	url := fmt.Sprintf("%s/ballot/height/%d", c.baseURL, i)
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, errs.Wrap(errs.Io, "tallier: ballot fetch failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errs.New(errs.Io, fmt.Sprintf("tallier: ballot height %d status %d: %s", i, resp.StatusCode, body))
	}
	var b ballot.Ballot
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, errs.Wrap(errs.InvalidEncoding, "tallier: malformed ballot JSON", err)
	}
	return &b, nil
}

// SubmitBallot POSTs b as JSON; the response body is ignored on success.
func (c *Client) SubmitBallot(b *ballot.Ballot) error {
	data, err := json.Marshal(b)
	if err != nil {
		return errs.Wrap(errs.Programmer, "tallier: ballot marshal failed", err)
	}
	resp, err := c.http.Post(c.baseURL+"/ballot", "application/json", bytes.NewReader(data))
	if err != nil {
		return errs.Wrap(errs.Io, "tallier: ballot submit failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return errs.New(errs.Io, fmt.Sprintf("tallier: submit status %d: %s", resp.StatusCode, body))
	}
	return nil
}

// Fetch is the escape hatch of spec.md §6: "GET {base}/{url} is an
// escape hatch used by the UI for arbitrary text fetches."
func (c *Client) Fetch(url string) (string, error) {
	resp, err := c.http.Get(c.baseURL + "/" + strings.TrimLeft(url, "/"))
	if err != nil {
		return "", errs.Wrap(errs.Io, "tallier: escape-hatch fetch failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.Io, "tallier: escape-hatch read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.New(errs.Io, fmt.Sprintf("tallier: escape-hatch status %d", resp.StatusCode))
	}
	return string(body), nil
}
