package artwork

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/genricoloni/nowcord/internal/config"
	"github.com/genricoloni/nowcord/internal/domain"
	"go.uber.org/zap"
)

const releaseID = "76df3287-6cda-33eb-8e9a-044b5e15ffdd"

// metadataServer fakes both MusicBrainz and the Cover Art Archive on a single host.
type metadataServer struct {
	*httptest.Server
	searchStatus int
	searchBody   string
	coverStatus  int
	coverBody    string
	calls        atomic.Int32
	lastQuery    atomic.Value
	lastAgent    atomic.Value
}

func newMetadataServer(t *testing.T, setup func(*metadataServer)) *metadataServer {
	t.Helper()
	s := &metadataServer{
		searchStatus: http.StatusOK,
		searchBody:   `{"releases":[{"id":"` + releaseID + `"},{"id":"11111111-2222-3333-4444-555555555555"}]}`,
		coverStatus:  http.StatusOK,
		coverBody:    `{"images":[{"thumbnails":{"250":"https://img.example/250.jpg","500":"https://img.example/500.jpg"}},{"thumbnails":{"250":"https://img.example/other.jpg"}}]}`,
	}
	if setup != nil {
		setup(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.lastAgent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/ws/2/release/":
			s.lastQuery.Store(r.URL.Query().Get("query"))
			w.WriteHeader(s.searchStatus)
			_, _ = w.Write([]byte(s.searchBody))
		case r.URL.Path == "/release/"+releaseID+"/":
			w.WriteHeader(s.coverStatus)
			_, _ = w.Write([]byte(s.coverBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestResolver(srv *metadataServer) *Resolver {
	cfg := config.Load(zap.NewNop(), config.FromMap(map[string]string{
		"NOWCORD_MUSICBRAINZ_URL": srv.URL,
		"NOWCORD_COVERART_URL":    srv.URL,
		"NOWCORD_HTTP_TIMEOUT":    "2s",
		"NOWCORD_USER_AGENT":      "nowcord-test/1.0",
	}))
	return NewResolver(zap.NewNop(), cfg)
}

var albumTrack = domain.Track{
	Title:  "Song A",
	Artist: "Artist A",
	Album:  "Album A",
	State:  domain.StatePlaying,
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(*metadataServer)
		expectedURL  string
		expectedHits int32
	}{
		{
			name:         "Success - First Release First Image",
			expectedURL:  "https://img.example/250.jpg",
			expectedHits: 2,
		},
		{
			name: "Zero Releases",
			setup: func(s *metadataServer) {
				s.searchBody = `{"releases":[]}`
			},
			expectedURL:  "",
			expectedHits: 1,
		},
		{
			name: "Search 503",
			setup: func(s *metadataServer) {
				s.searchStatus = http.StatusServiceUnavailable
			},
			expectedURL:  "",
			expectedHits: 1,
		},
		{
			name: "Search Malformed JSON",
			setup: func(s *metadataServer) {
				s.searchBody = `<html>rate limited</html>`
			},
			expectedURL:  "",
			expectedHits: 1,
		},
		{
			name: "Release ID Not An MBID",
			setup: func(s *metadataServer) {
				s.searchBody = `{"releases":[{"id":"not-a-uuid"}]}`
			},
			expectedURL:  "",
			expectedHits: 1,
		},
		{
			name: "Cover Art 404",
			setup: func(s *metadataServer) {
				s.coverStatus = http.StatusNotFound
			},
			expectedURL:  "",
			expectedHits: 2,
		},
		{
			name: "No Images",
			setup: func(s *metadataServer) {
				s.coverBody = `{"images":[]}`
			},
			expectedURL:  "",
			expectedHits: 2,
		},
		{
			name: "Missing 250 Thumbnail",
			setup: func(s *metadataServer) {
				s.coverBody = `{"images":[{"thumbnails":{"500":"https://img.example/500.jpg"}}]}`
			},
			expectedURL:  "",
			expectedHits: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMetadataServer(t, tt.setup)
			r := newTestResolver(srv)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			got := r.Resolve(ctx, albumTrack)
			if got != tt.expectedURL {
				t.Errorf("expected url %q, got %q", tt.expectedURL, got)
			}
			if n := srv.calls.Load(); n != tt.expectedHits {
				t.Errorf("expected %d requests, got %d", tt.expectedHits, n)
			}

			// A second lookup for the same key is served from the cache,
			// whether the first one succeeded or not.
			again := r.Resolve(ctx, albumTrack)
			if again != got {
				t.Errorf("cached value %q differs from first result %q", again, got)
			}
			if n := srv.calls.Load(); n != tt.expectedHits {
				t.Errorf("second lookup hit the network: %d requests", n)
			}
		})
	}
}

func TestResolver_CacheKeyedByArtistAndAlbum(t *testing.T) {
	srv := newMetadataServer(t, nil)
	r := newTestResolver(srv)
	ctx := context.Background()

	r.Resolve(ctx, albumTrack)

	// Another song from the same album reuses the entry.
	sameAlbum := albumTrack
	sameAlbum.Title = "Song B"
	r.Resolve(ctx, sameAlbum)
	if n := srv.calls.Load(); n != 2 {
		t.Errorf("expected 2 requests after same-album lookup, got %d", n)
	}

	otherAlbum := albumTrack
	otherAlbum.Album = "Album B"
	r.Resolve(ctx, otherAlbum)
	if n := srv.calls.Load(); n != 4 {
		t.Errorf("expected 4 requests after new album lookup, got %d", n)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 cache entries, got %d", r.Len())
	}
}

func TestResolver_RequestShape(t *testing.T) {
	srv := newMetadataServer(t, nil)
	r := newTestResolver(srv)

	r.Resolve(context.Background(), albumTrack)

	query, _ := srv.lastQuery.Load().(string)
	if !strings.Contains(query, `artist:"Artist A"`) || !strings.Contains(query, `release:"Album A"`) {
		t.Errorf("unexpected search query %q", query)
	}
	if agent, _ := srv.lastAgent.Load().(string); agent != "nowcord-test/1.0" {
		t.Errorf("unexpected User-Agent %q", agent)
	}
}

func TestResolver_LookupErrorsWrapMetadataFailure(t *testing.T) {
	srv := newMetadataServer(t, func(s *metadataServer) {
		s.searchBody = `{"releases":[]}`
	})
	r := newTestResolver(srv)

	_, err := r.lookup(context.Background(), "Artist A", "Album A")
	if !errors.Is(err, domain.ErrMetadataLookup) {
		t.Fatalf("expected ErrMetadataLookup, got %v", err)
	}
	if !strings.Contains(err.Error(), "no releases found") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResolver_ContextCancelled(t *testing.T) {
	srv := newMetadataServer(t, nil)
	r := newTestResolver(srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := r.Resolve(ctx, albumTrack); got != "" {
		t.Errorf("expected empty url on cancelled context, got %q", got)
	}
}

func TestCacheKey(t *testing.T) {
	if CacheKey("X", "Y") == CacheKey("XY", "") {
		t.Error("cache keys must separate artist from album")
	}
}
