/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"krishimitra/internal/prefs"
)

func serve(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" || r.URL.Query().Get("format") != "json" || r.Header.Get("User-Agent") == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNameFallbackChain(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"address":{"city":"Hyderabad","town":"x","state":"Telangana"}}`, "Hyderabad, Telangana"},
		{`{"address":{"town":"Nalgonda","village":"x","state":"Telangana"}}`, "Nalgonda, Telangana"},
		{`{"address":{"village":"Kothapet","state":"Telangana"}}`, "Kothapet, Telangana"},
		{`{"address":{"state":"Telangana"}}`, "Telangana"},
		{`{"address":{"city":"Hyderabad"}}`, "Hyderabad"},
		{`{"address":{}}`, ""},
	}
	for _, tc := range cases {
		srv := serve(t, tc.body, http.StatusOK)
		g := NewGeocoder(srv.URL, 0, zerolog.Nop())
		name, err := g.Name(context.Background(), prefs.Coords{Lat: 17.38, Lon: 78.48})
		require.NoError(t, err, tc.body)
		require.Equal(t, tc.want, name, tc.body)
	}
}

func TestDescribeFallsBack(t *testing.T) {
	srv := serve(t, "oops", http.StatusBadGateway)
	g := NewGeocoder(srv.URL, 0, zerolog.Nop())
	require.Equal(t, "Location saved", g.Describe(context.Background(), prefs.Coords{}, "Location saved"))

	bad := serve(t, "{not json", http.StatusOK)
	g = NewGeocoder(bad.URL, 0, zerolog.Nop())
	require.Equal(t, "Location saved", g.Describe(context.Background(), prefs.Coords{}, "Location saved"))
}
