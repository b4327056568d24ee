package links

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"

	"github.com/lueurxax/kenter-news-bot/internal/platform/htmlutils"
)

// DefaultMaxArticleRunes bounds the article text handed to the summarizer.
const DefaultMaxArticleRunes = 1500

// Article is the readable part of a news page.
type Article struct {
	Title       string
	Description string
	Text        string
	ImageURL    string
	PublishedAt time.Time
}

type pageMeta struct {
	title         string
	ogTitle       string
	description   string
	ogDescription string
	ogImage       string
	publishedTime string
}

var (
	ogImageSelectors   = []string{`meta[property="og:image"]`, `meta[name="og:image"]`, `meta[name="twitter:image"]`}
	publishedSelectors = []string{`meta[property="article:published_time"]`, `meta[name="article:published_time"]`, `meta[name="pubdate"]`, `meta[itemprop="datePublished"]`}
)

// ExtractArticle runs readability over a page and reads its meta tags. The
// text is truncated to maxLen runes (DefaultMaxArticleRunes when <= 0) and
// only an absolute HTTPS og:image is returned. A page readability cannot
// parse still yields its meta data.
func ExtractArticle(htmlBytes []byte, rawURL string, maxLen int) Article {
	if maxLen <= 0 {
		maxLen = DefaultMaxArticleRunes
	}

	pageURL, _ := url.Parse(rawURL) //nolint:errcheck // nil URL is accepted below

	meta := extractPageMeta(htmlBytes)

	out := Article{
		Title:       coalesce(meta.ogTitle, meta.title),
		Description: coalesce(meta.ogDescription, meta.description),
		ImageURL:    httpsImage(meta.ogImage, pageURL),
		PublishedAt: parseDate(meta.publishedTime),
	}

	if pageURL == nil {
		return out
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return out
	}

	out.Title = coalesce(strings.TrimSpace(article.Title), out.Title)
	out.Description = coalesce(out.Description, strings.TrimSpace(article.Excerpt))
	out.Text = htmlutils.TruncateRunes(htmlutils.CollapseWhitespace(article.TextContent), maxLen)

	if out.ImageURL == "" {
		out.ImageURL = httpsImage(article.Image, pageURL)
	}

	return out
}

func extractPageMeta(htmlBytes []byte) pageMeta {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return pageMeta{}
	}

	return pageMeta{
		title:         strings.TrimSpace(doc.Find("title").First().Text()),
		ogTitle:       metaContent(doc, `meta[property="og:title"]`),
		description:   metaContent(doc, `meta[name="description"]`),
		ogDescription: metaContent(doc, `meta[property="og:description"]`),
		ogImage:       metaContent(doc, ogImageSelectors...),
		publishedTime: metaContent(doc, publishedSelectors...),
	}
}

// metaContent returns the content of the first selector that has one.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(doc.Find(sel).First().AttrOr("content", "")); v != "" {
			return v
		}
	}

	return ""
}

// httpsImage resolves raw against the page and keeps it only when it is HTTPS.
// Protocol-relative URLs are upgraded.
func httpsImage(raw string, base *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	if base != nil {
		u = base.ResolveReference(u)
	}

	if u.Scheme != "https" || u.Host == "" {
		return ""
	}

	return u.String()
}

func coalesce(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}

	return ""
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}

	return t.UTC()
}
