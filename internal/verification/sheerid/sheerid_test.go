package sheerid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string, retries int) *Client {
	return New(Config{
		APIBaseURL: url,
		APIToken:   "tok_test",
		ProgramID:  "prog_1",
		Timeout:    time.Second,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	})
}

func TestInitiateSendsProgramAndPerson(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/verification" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok_test" {
			t.Errorf("unexpected auth header: %s", got)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["programId"] != "prog_1" {
			t.Errorf("program id missing: %v", body)
		}
		person, _ := body["personInfo"].(map[string]interface{})
		if person["email"] != "jane@college.edu" {
			t.Errorf("person email missing: %v", person)
		}
		_, _ = w.Write([]byte(`{"token":"sess_1","status":"PENDING","verificationUrl":"https://verify.example/sess_1"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL, 0).Initiate(context.Background(), InitiateInput{
		Person:     PersonInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@college.edu"},
		SchoolName: "College",
		StudentID:  "S-1",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if result.Token != "sess_1" || result.Status != StatusPending || result.VerificationURL == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestInitiateWithoutCredentialsIsFatal(t *testing.T) {
	client := New(Config{})
	_, err := client.Initiate(context.Background(), InitiateInput{})
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
}

func TestRetriesServerErrorsOnly(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"token":"sess_2","status":"verified"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL, 2).Status(context.Background(), "sess_2")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if result.Status != StatusVerified {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Initiate(context.Background(), InitiateInput{Person: PersonInfo{Email: "a@b.edu"}})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("4xx must not be retried, calls=%d", calls)
	}
}

func TestTimeoutSurfacesAsRequestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(Config{APIBaseURL: srv.URL, APIToken: "t", ProgramID: "p", Timeout: 20 * time.Millisecond, Backoff: time.Millisecond})
	_, err := client.Initiate(context.Background(), InitiateInput{})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed on timeout, got %v", err)
	}
}

func TestTimeoutBoundsAllRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(60 * time.Millisecond)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(Config{APIBaseURL: srv.URL, APIToken: "t", ProgramID: "p", Timeout: 100 * time.Millisecond, MaxRetries: 2, Backoff: time.Millisecond})
	started := time.Now()
	_, err := client.Initiate(context.Background(), InitiateInput{})
	elapsed := time.Since(started)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if elapsed >= 170*time.Millisecond {
		t.Fatalf("retries should stop at the call timeout, took %s", elapsed)
	}
	if got := atomic.LoadInt32(&hits); got > 2 {
		t.Fatalf("expected at most 2 attempts within the timeout, got %d", got)
	}
}

func TestResponseWithoutTokenIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"pending"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Status(context.Background(), "x")
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected ErrResponseInvalid, got %v", err)
	}
}
