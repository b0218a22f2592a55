package webfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	// WHAT: Only absolute http/https URLs with a host pass.
	for _, ok := range []string{
		"http://example.com/menu",
		"https://example.com",
	} {
		if err := ValidateURL(ok); err != nil {
			t.Errorf("ValidateURL(%q): unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{
		"ftp://example.com/file",
		"file:///etc/passwd",
		"javascript:alert(1)",
		"/relative/path",
		"https://",
	} {
		if err := ValidateURL(bad); !errors.Is(err, ErrBlockedURL) {
			t.Errorf("ValidateURL(%q): got %v, want ErrBlockedURL", bad, err)
		}
	}
}

func TestGet_CapsBodyAtMaxBytes(t *testing.T) {
	// WHAT: Responses larger than MaxBytes are truncated, not errored.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 4096))
	}))
	defer srv.Close()

	f := New(Config{MaxBytes: 1024})
	res, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(res.Body) != 1024 {
		t.Errorf("body length: got %d, want 1024", len(res.Body))
	}
}

func TestGet_FollowsRedirectsAndReportsFinalURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		fmt.Fprint(w, "landed")
	}))
	defer srv.Close()

	f := New(Config{})
	res, err := f.Get(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(res.Body) != "landed" {
		t.Errorf("body: got %q", res.Body)
	}
	if res.FinalURL != srv.URL+"/new" {
		t.Errorf("FinalURL: got %s, want %s/new", res.FinalURL, srv.URL)
	}
}

func TestGet_RedirectLoopCapped(t *testing.T) {
	// WHAT: A redirect loop fails after 5 hops instead of hanging.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	f := New(Config{})
	if _, err := f.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected redirect-loop error")
	}
}

func TestGet_ValidatorAppliedToRedirectTarget(t *testing.T) {
	// WHAT: A custom validator sees the redirect target, not just the
	// initial URL. A hop onto a denied path aborts the fetch.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/denied", http.StatusFound)
			return
		}
		fmt.Fprint(w, "should not be served")
	}))
	defer srv.Close()

	f := New(Config{URLValidator: func(raw string) error {
		if strings.Contains(raw, "/denied") {
			return ErrBlockedURL
		}
		return ValidateURL(raw)
	}})
	if _, err := f.Get(context.Background(), srv.URL+"/start"); err == nil {
		t.Fatal("expected blocked-redirect error")
	}
}

func TestGet_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Config{})
	res, err := f.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if res == nil || res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status should be reported alongside the error: %+v", res)
	}
}

func TestGetJSON_Headers(t *testing.T) {
	// WHAT: GetJSON sends Accept plus caller headers verbatim.
	var gotAccept, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	f := New(Config{})
	if _, err := f.GetJSON(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer tok"}); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept: got %q", gotAccept)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
}

func TestIsSufficient(t *testing.T) {
	prose := strings.Repeat("<p>Fresh pasta made daily in our open kitchen.</p>\n", 20)

	cases := []struct {
		name string
		body string
		want bool
	}{
		{"static page with real text", "<html><body>" + prose + "</body></html>", true},
		{"tiny body", "<html></html>", false},
		{"react shell", `<html><head><script src="/static/js/main.8f3a.js"></script></head>` +
			`<body><div id="root"></div>` + strings.Repeat("<!-- -->", 100) + `</body></html>`, false},
		{"noscript warning", "<html><body>" + prose +
			"<noscript>You need to enable JavaScript to run this app.</noscript></body></html>", false},
		{"script-heavy shell", "<html><body><script>" + strings.Repeat("var x=1;", 200) +
			"</script><p>Menu</p></body></html>", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSufficient([]byte(tc.body)); got != tc.want {
				t.Errorf("IsSufficient: got %v, want %v", got, tc.want)
			}
		})
	}
}
