package resolver

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/opentracing/opentracing-go"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultResolvConf = "/etc/resolv.conf"
)

var fallbackNameservers = []string{"1.1.1.1:53", "8.8.8.8:53"}

type dnsResolver struct {
	log       logger.Logger
	udpClient *dns.Client
	tcpClient *dns.Client
	servers   []string
	timeout   time.Duration
}

func NewDNSResolver(cfg *config.DomainConfig, log logger.Logger) interfaces.DNSResolver {
	timeout := defaultTimeout
	var servers []string
	if cfg != nil {
		if cfg.DNSTimeout > 0 {
			timeout = cfg.DNSTimeout
		}
		servers = cfg.DNSNameservers
	}

	return &dnsResolver{
		log:       log,
		udpClient: &dns.Client{Net: "udp", Timeout: timeout},
		tcpClient: &dns.Client{Net: "tcp", Timeout: timeout},
		servers:   resolveNameservers(servers, log),
		timeout:   timeout,
	}
}

// Resolve returns the values of the records of recordType published at name.
// Lookup failures, timeouts and NXDOMAIN all yield an empty result.
func (r *dnsResolver) Resolve(ctx context.Context, name string, recordType enum.DNSRecordType) []string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DNSResolver.Resolve")
	defer span.Finish()
	tracing.TagComponentExternal(span)
	span.LogKV("name", name, "type", recordType.String())

	qtype, ok := queryType(recordType)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	for _, server := range r.servers {
		resp, _, err := r.udpClient.ExchangeContext(ctx, msg, server)
		if err == nil && resp != nil && resp.Truncated {
			resp, _, err = r.tcpClient.ExchangeContext(ctx, msg, server)
		}
		if err != nil {
			r.log.Warnf("DNS %s lookup for %s via %s failed: %v", recordType, name, server, err)
			if ctx.Err() != nil {
				span.LogKV("result", "timeout")
				return nil
			}
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			values := extractValues(resp, qtype)
			span.LogKV("result.count", len(values))
			return values
		case dns.RcodeNameError:
			span.LogKV("result", "nxdomain")
			return nil
		default:
			r.log.Warnf("DNS %s lookup for %s via %s returned %s", recordType, name, server, dns.RcodeToString[resp.Rcode])
		}
	}

	return nil
}

func queryType(recordType enum.DNSRecordType) (uint16, bool) {
	switch recordType {
	case enum.DNSRecordTXT:
		return dns.TypeTXT, true
	case enum.DNSRecordCNAME:
		return dns.TypeCNAME, true
	}
	return 0, false
}

func extractValues(resp *dns.Msg, qtype uint16) []string {
	var values []string
	for _, answer := range resp.Answer {
		switch rr := answer.(type) {
		case *dns.TXT:
			if qtype == dns.TypeTXT {
				// long TXT values are split into 255 byte strings
				values = append(values, strings.Join(rr.Txt, ""))
			}
		case *dns.CNAME:
			if qtype == dns.TypeCNAME {
				values = append(values, strings.TrimSuffix(rr.Target, "."))
			}
		}
	}
	return values
}

func resolveNameservers(configured []string, log logger.Logger) []string {
	var servers []string
	for _, server := range configured {
		if server = strings.TrimSpace(server); server != "" {
			servers = append(servers, withPort(server, "53"))
		}
	}
	if len(servers) > 0 {
		return servers
	}

	resolvConf, err := dns.ClientConfigFromFile(defaultResolvConf)
	if err != nil {
		log.Warnf("Unable to read %s, using public resolvers: %v", defaultResolvConf, err)
		return fallbackNameservers
	}
	for _, server := range resolvConf.Servers {
		servers = append(servers, withPort(server, resolvConf.Port))
	}
	if len(servers) == 0 {
		return fallbackNameservers
	}
	return servers
}

func withPort(server, port string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(strings.Trim(server, "[]"), port)
}
