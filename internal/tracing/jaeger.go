package tracing

import (
	"io"
	"net"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	"github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-client-go/log/zap"

	"github.com/calcbuilder/adminstack/internal/logger"
)

const SpanTagPod = "pod"

type JaegerConfig struct {
	Endpoint     string            `env:"JAEGER_ENDPOINT"`
	ServiceName  string            `env:"JAEGER_SERVICE_NAME" envDefault:"adminstack"`
	AgentHost    string            `env:"JAEGER_AGENT_HOST" envDefault:"localhost"`
	AgentPort    string            `env:"JAEGER_AGENT_PORT" envDefault:"6831"`
	Enabled      bool              `env:"JAEGER_ENABLED" envDefault:"true"`
	LogSpans     bool              `env:"JAEGER_REPORTER_LOG_SPANS" envDefault:"false"`
	SamplerType  string            `env:"JAEGER_SAMPLER_TYPE" envDefault:"const"`
	SamplerParam float64           `env:"JAEGER_SAMPLER_PARAM" envDefault:"1"`
	Tags         map[string]string `env:"JAEGER_TAGS"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var samplerTypes = map[string]bool{
	jaeger.SamplerTypeConst:         true,
	jaeger.SamplerTypeProbabilistic: true,
	jaeger.SamplerTypeRateLimiting:  true,
	jaeger.SamplerTypeRemote:        true,
}

// NewJaegerTracer builds the process tracer. A missing or disabled config yields a noop tracer.
func NewJaegerTracer(jaegerConfig *JaegerConfig, log logger.Logger, podName string) (opentracing.Tracer, io.Closer, error) {
	if jaegerConfig == nil || !jaegerConfig.Enabled {
		return opentracing.NoopTracer{}, nopCloser{}, nil
	}

	cfg, err := jaegerConfiguration(jaegerConfig, podName)
	if err != nil {
		return nil, nil, err
	}
	return cfg.NewTracer(config.Logger(zap.NewLogger(log.Logger())))
}

func jaegerConfiguration(jaegerConfig *JaegerConfig, podName string) (*config.Configuration, error) {
	if jaegerConfig.ServiceName == "" {
		return nil, errors.New("jaeger service name is required")
	}
	if !samplerTypes[jaegerConfig.SamplerType] {
		return nil, errors.Errorf("unknown jaeger sampler type %q", jaegerConfig.SamplerType)
	}

	cfg := &config.Configuration{
		ServiceName: jaegerConfig.ServiceName,
		Sampler: &config.SamplerConfig{
			Type:  jaegerConfig.SamplerType,
			Param: jaegerConfig.SamplerParam,
		},
		Reporter: &config.ReporterConfig{
			LogSpans: jaegerConfig.LogSpans,
		},
	}

	// collector endpoint wins over the agent
	if jaegerConfig.Endpoint != "" {
		cfg.Reporter.CollectorEndpoint = jaegerConfig.Endpoint
	} else {
		cfg.Reporter.LocalAgentHostPort = net.JoinHostPort(jaegerConfig.AgentHost, jaegerConfig.AgentPort)
	}

	for key, value := range jaegerConfig.Tags {
		cfg.Tags = append(cfg.Tags, opentracing.Tag{Key: key, Value: value})
	}
	if podName != "" {
		cfg.Tags = append(cfg.Tags, opentracing.Tag{Key: SpanTagPod, Value: podName})
	}

	return cfg, nil
}
