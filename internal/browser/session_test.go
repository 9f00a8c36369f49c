package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The session test drives a real Chromium and is skipped when none is
// installed locally.
func launchOrSkip(t *testing.T) *Session {
	t.Helper()

	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no local Chromium")
	}

	s, err := Launch(context.Background(), Options{Bin: bin, Timeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestSession_LoginFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			http.Redirect(w, r, "/book/x", http.StatusSeeOther)
			return
		}
		fmt.Fprint(w, `<form method="post" action="/login">
<input id="username" name="u"><input type="password" name="p">
<button type="submit">Entrar</button></form>`)
	})
	mux.HandleFunc("/book/x", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Libro</h1></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := launchOrSkip(t)
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/login"))
	require.NoError(t, s.WaitElement(ctx, "#username"))
	require.NoError(t, s.Type(ctx, "#username", "lector@example.org"))
	require.NoError(t, s.Type(ctx, `input[type="password"]`, "secreto"))
	require.NoError(t, s.ClickAndWait(ctx, `button[type="submit"]`))

	u, err := s.URL(ctx)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/book/x", u)

	html, err := s.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Libro</h1>")

	cookies, err := s.Cookies(ctx)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc", cookies[0].Value)
}

func TestSession_WaitElementTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer srv.Close()

	s := launchOrSkip(t)
	s.timeout = 300 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, srv.URL))
	assert.ErrorContains(t, s.WaitElement(ctx, "#readerBox"), "wait for #readerBox")
}
