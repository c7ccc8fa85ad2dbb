package resolver

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/opentracing/opentracing-go"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

const (
	ChallengeFilePath = "/.well-known/calcbuilder-verification.txt"
	ChallengeMetaName = "calcbuilder-verification"

	defaultHTTPTimeout = 10 * time.Second
	maxChallengeFile   = 4 << 10
	maxChallengePage   = 1 << 20
	userAgent          = "Mozilla/5.0 (compatible; CalcBuilder-DomainVerifier/1.0)"
)

type httpChallengeVerifier struct {
	log    logger.Logger
	client *http.Client
	// baseURL returns the origin a domain's challenge is served from
	baseURL func(domain string) string
}

func NewHTTPChallengeVerifier(cfg *config.DomainConfig, log logger.Logger) interfaces.HTTPChallengeVerifier {
	timeout := defaultHTTPTimeout
	if cfg != nil && cfg.HTTPChallengeTimeout > 0 {
		timeout = cfg.HTTPChallengeTimeout
	}

	return &httpChallengeVerifier{
		log:    log,
		client: &http.Client{Timeout: timeout},
		baseURL: func(domain string) string {
			return "https://" + domain
		},
	}
}

// Verify reports whether the domain serves the token through the challenge of the given type.
// Fetch and parse failures count as not verified.
func (h *httpChallengeVerifier) Verify(ctx context.Context, domain string, verificationType enum.VerificationType, token string) bool {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HTTPChallengeVerifier.Verify")
	defer span.Finish()
	tracing.TagComponentExternal(span)
	tracing.TagDomain(span, domain)
	span.LogKV("type", verificationType.String())

	var verified bool
	switch verificationType {
	case enum.VerificationTypeFile:
		verified = h.verifyFile(ctx, domain, token)
	case enum.VerificationTypeMeta:
		verified = h.verifyMeta(ctx, domain, token)
	}

	span.LogKV("verified", verified)
	return verified
}

func (h *httpChallengeVerifier) verifyFile(ctx context.Context, domain, token string) bool {
	body, ok := h.fetch(ctx, h.baseURL(domain)+ChallengeFilePath)
	if !ok {
		return false
	}
	defer body.Close()

	scanner := bufio.NewScanner(io.LimitReader(body, maxChallengeFile))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == token {
			return true
		}
	}
	return false
}

func (h *httpChallengeVerifier) verifyMeta(ctx context.Context, domain, token string) bool {
	body, ok := h.fetch(ctx, h.baseURL(domain)+"/")
	if !ok {
		return false
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxChallengePage))
	if err != nil {
		h.log.Warnf("Failed to parse challenge page for %s: %v", domain, err)
		return false
	}

	found := false
	doc.Find(`meta[name="` + ChallengeMetaName + `"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, exists := s.Attr("content"); exists && strings.TrimSpace(content) == token {
			found = true
			return false
		}
		return true
	})
	return found
}

func (h *httpChallengeVerifier) fetch(ctx context.Context, url string) (io.ReadCloser, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		h.log.Warnf("Failed to create challenge request for %s: %v", url, err)
		return nil, false
	}
	// customer hosts are third parties, trace headers stay internal
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warnf("Failed to fetch challenge %s: %v", url, err)
		return nil, false
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		h.log.Infof("Challenge %s returned status %d", url, resp.StatusCode)
		return nil, false
	}
	return resp.Body, true
}
