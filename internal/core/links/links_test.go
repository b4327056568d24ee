package links

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

const testArticleHTML = `<!DOCTYPE html>
<html><head>
<title>Page title</title>
<meta property="og:title" content="뉴진스, 새 앨범 발표">
<meta property="og:description" content="그룹 뉴진스가 새 앨범을 발표했다.">
<meta property="og:image" content="/images/nj.jpg">
<meta property="article:published_time" content="2025-10-13T09:00:00+09:00">
</head><body>
<nav>menu</nav>
<article><h1>뉴진스, 새 앨범 발표</h1>
<p>그룹 뉴진스가 다음 달 새 앨범을 발표한다고 소속사가 13일 밝혔다. 이번 앨범에는 모두 다섯 곡이 수록된다.</p>
<p>멤버들은 작사와 작곡에도 참여한 것으로 알려졌다. 소속사는 뮤직비디오 촬영도 마쳤다고 덧붙였다.</p>
<p>팬들은 공식 발표 이후 온라인에서 뜨거운 반응을 보이고 있다. 컴백 쇼케이스 일정은 추후 공개된다.</p>
</article></body></html>`

func TestExtractArticle(t *testing.T) {
	a := ExtractArticle([]byte(testArticleHTML), "https://news.example.com/ent/1", 0)

	assert.Equal(t, "뉴진스, 새 앨범 발표", a.Title)
	assert.Equal(t, "그룹 뉴진스가 새 앨범을 발표했다.", a.Description)
	assert.Equal(t, "https://news.example.com/images/nj.jpg", a.ImageURL)
	assert.Equal(t, time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), a.PublishedAt)
	assert.Contains(t, a.Text, "다섯 곡")
	assert.NotContains(t, a.Text, "\n")
}

func TestExtractArticle_Truncates(t *testing.T) {
	a := ExtractArticle([]byte(testArticleHTML), "https://news.example.com/ent/1", 20)

	assert.LessOrEqual(t, len([]rune(a.Text)), 21)
	assert.True(t, strings.HasSuffix(a.Text, "…"))
}

func TestExtractArticle_MetaOnly(t *testing.T) {
	a := ExtractArticle([]byte(`<html><head><title>Only title</title></head></html>`), "::bad url", 0)

	assert.Equal(t, "Only title", a.Title)
	assert.Empty(t, a.Text)
	assert.Empty(t, a.ImageURL)
}

func TestHTTPSImage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		page string
		want string
	}{
		{name: "absolute https", raw: "https://img.example.com/a.jpg", page: "https://x.com/p", want: "https://img.example.com/a.jpg"},
		{name: "plain http rejected", raw: "http://img.example.com/a.jpg", page: "https://x.com/p", want: ""},
		{name: "relative on https page", raw: "/a.jpg", page: "https://x.com/p/q", want: "https://x.com/a.jpg"},
		{name: "relative on http page", raw: "/a.jpg", page: "http://x.com/p", want: ""},
		{name: "protocol relative upgraded", raw: "//cdn.x.com/a.jpg", page: "http://x.com/p", want: "https://cdn.x.com/a.jpg"},
		{name: "empty", raw: " ", page: "https://x.com", want: ""},
		{name: "data uri", raw: "data:image/png;base64,AAAA", page: "https://x.com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ExtractArticle([]byte(`<html><head><meta property="og:image" content="`+tt.raw+`"></head></html>`), tt.page, 0)
			assert.Equal(t, tt.want, a.ImageURL)
		})
	}
}

func TestNewWebFetcher(t *testing.T) {
	tests := []struct {
		name    string
		rps     float64
		timeout time.Duration
	}{
		{name: "defaults", rps: 0, timeout: 0},
		{name: "custom timeout", rps: 5, timeout: 10 * time.Second},
		{name: "negative timeout uses default", rps: 1, timeout: -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := NewWebFetcher(tt.rps, tt.timeout)

			require.NotNil(t, fetcher.client)
			require.NotNil(t, fetcher.globalLimiter)
			assert.Positive(t, fetcher.client.Timeout)
			assert.NotEmpty(t, fetcher.userAgent)
		})
	}
}

func TestWebFetcher_DomainLimiterShared(t *testing.T) {
	fetcher := NewWebFetcher(1, time.Second)

	assert.Same(t, fetcher.getDomainLimiter("example.com"), fetcher.getDomainLimiter("example.com"))
	assert.NotSame(t, fetcher.getDomainLimiter("example.com"), fetcher.getDomainLimiter("other.com"))
}

func TestWebFetcher_Fetch(t *testing.T) {
	eucKR, err := korean.EUCKR.NewEncoder().String("<html><body>연합뉴스 기사</body></html>")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/utf8", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>한글 본문</body></html>"))
	})
	mux.HandleFunc("/euckr-header", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=EUC-KR")
		_, _ = w.Write([]byte(eucKR))
	})
	mux.HandleFunc("/euckr-meta", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<meta charset="euc-kr">` + eucKR))
	})
	mux.HandleFunc("/missing", http.NotFound)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := NewWebFetcher(100, time.Second)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "utf-8 passthrough", path: "/utf8", want: "한글 본문"},
		{name: "euc-kr from header", path: "/euckr-header", want: "연합뉴스 기사"},
		{name: "euc-kr from meta", path: "/euckr-meta", want: "연합뉴스 기사"},
		{name: "not found", path: "/missing", wantErr: ErrHTTPStatusNotOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			body, err := fetcher.Fetch(ctx, srv.URL+tt.path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, string(body), tt.want)
		})
	}
}

func TestWebFetcher_RejectsScheme(t *testing.T) {
	_, err := NewWebFetcher(1, time.Second).Fetch(context.Background(), "ftp://example.com/file")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestWebFetcher_RedirectLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/next", http.StatusFound)
	}))
	defer server.Close()

	_, err := NewWebFetcher(100, time.Second).Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrTooManyRedirects)
}
