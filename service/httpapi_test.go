package service_test

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/zvote/election"
	"github.com/vocdoni/zvote/service"
)

func TestHTTPAPISetElectionAndComputeRoots(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)
	svc := service.New(store, "", "", rand.New(rand.NewSource(1)))
	api := service.NewHTTPAPI(svc)
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	el := election.Election{ID: "http-e1", StartHeight: 1, EndHeight: 100, DomainSeed: []byte("d")}
	body, err := json.Marshal(struct {
		ID          string `json:"id"`
		StartHeight uint32 `json:"start_height"`
		EndHeight   uint32 `json:"end_height"`
		DomainSeed  string `json:"domain_seed"`
	}{el.ID, el.StartHeight, el.EndHeight, string(el.DomainSeed)})
	c.Assert(err, qt.IsNil)

	resp, err := http.Post(srv.URL+"/election", "application/json", bytes.NewReader(body))
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)

	resp2, err := http.Post(srv.URL+"/roots", "application/json", nil)
	c.Assert(err, qt.IsNil)
	defer resp2.Body.Close()
	c.Assert(resp2.StatusCode, qt.Equals, http.StatusOK)

	var roots service.Roots
	c.Assert(json.NewDecoder(resp2.Body).Decode(&roots), qt.IsNil)
	c.Assert(len(roots.NfRoot) > 0, qt.IsTrue)
	c.Assert(len(roots.CmxRoot) > 0, qt.IsTrue)
}

func TestHTTPAPICORSPreflight(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)
	svc := service.New(store, "", "", rand.New(rand.NewSource(1)))
	api := service.NewHTTPAPI(svc)
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/address", nil)
	c.Assert(err, qt.IsNil)
	req.Header.Set("Origin", "https://voter.example")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	c.Assert(resp.Header.Get("Access-Control-Allow-Origin"), qt.Equals, "*")
}

func TestHTTPAPIUnknownPropReturnsError(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)
	svc := service.New(store, "", "", rand.New(rand.NewSource(1)))
	api := service.NewHTTPAPI(svc)
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/prop/does-not-exist")
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusPreconditionFailed)

	var payload map[string]string
	c.Assert(json.NewDecoder(resp.Body).Decode(&payload), qt.IsNil)
	c.Assert(payload["code"], qt.Equals, "missing_property")
}
