package visits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KamdynS/petclinic-genai/rest"
)

const petID = 1

type mockServer struct {
	*httptest.Server
	hits     atomic.Int32
	lastPath atomic.Value
}

func newMockServer(t *testing.T, status int, body string) *mockServer {
	t.Helper()
	m := &mockServer{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		m.lastPath.Store(r.URL.RequestURI())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(m.Close)
	return m
}

func newTestClient(server *mockServer) *Client {
	c := NewClient(Config{Timeout: 2 * time.Second})
	c.SetHostname(server.URL + "/")
	return c
}

func TestGetVisitsForPets_WithAvailableVisitsService(t *testing.T) {
	server := newMockServer(t, http.StatusOK,
		`{"items":[{"id":5,"date":"2018-11-15","description":"test visit","petId":1}]}`)
	c := newTestClient(server)

	visits, err := c.GetVisitsForPets(context.Background(), []int{petID}).Await(context.Background())
	require.NoError(t, err)

	require.Len(t, visits.Items, 1)
	assert.Equal(t, petID, visits.Items[0].PetID)
	assert.Equal(t, "test visit", visits.Items[0].Description)
	assert.Equal(t, "2018-11-15", visits.Items[0].Date.String())
	assert.Equal(t, "/visits?petId=1", server.lastPath.Load())
	assert.EqualValues(t, 1, server.hits.Load())
}

func TestGetVisitsForPets_MultiplePetIDsKeepServerOrder(t *testing.T) {
	server := newMockServer(t, http.StatusOK,
		`{"items":[{"id":9,"petId":7,"description":"b"},{"id":2,"petId":3,"description":"a"}]}`)
	c := newTestClient(server)

	visits, err := c.GetVisitsForPets(context.Background(), []int{3, 7}).Await(context.Background())
	require.NoError(t, err)
	require.Len(t, visits.Items, 2)
	assert.Equal(t, 9, visits.Items[0].ID)
	assert.Equal(t, 2, visits.Items[1].ID)
	assert.Equal(t, "/visits?petId=3&petId=7", server.lastPath.Load())
}

func TestGetVisitsForPets_EmptyIDs(t *testing.T) {
	server := newMockServer(t, http.StatusOK, `{"items":[]}`)
	c := newTestClient(server)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	visits, err := c.GetVisitsForPets(ctx, nil).Await(ctx)
	require.NoError(t, err)
	assert.NotNil(t, visits.Items)
	assert.Empty(t, visits.Items)
	assert.Equal(t, "/visits", server.lastPath.Load())
}

func TestGetVisitsForPets_Non2xxFailsFuture(t *testing.T) {
	server := newMockServer(t, http.StatusInternalServerError, `{"error":"boom"}`)
	c := newTestClient(server)

	_, err := c.GetVisitsForPets(context.Background(), []int{petID}).Await(context.Background())
	require.Error(t, err)
	assert.True(t, rest.IsStatus(err, http.StatusInternalServerError))
	assert.EqualValues(t, 1, server.hits.Load(), "no retries expected")
}

func TestGetVisitsForPets_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(Config{Hostname: server.URL, Timeout: 5 * time.Second})
	f := c.GetVisitsForPets(context.Background(), []int{petID})

	if _, _, ok := f.Result(); ok {
		t.Fatalf("future resolved before the server answered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHostnameDefaultAndOverride(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, DefaultHostname, c.Hostname())
	c.SetHostname("http://localhost:9999/")
	assert.Equal(t, "http://localhost:9999/visits?petId=4", c.visitsURL([]int{4}))
}
