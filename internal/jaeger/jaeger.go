package jaeger

import (
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/jaeger"
)

// MustNewExporter builds the span exporter. A collector URL takes precedence over the agent address.
func MustNewExporter() *jaeger.Exporter {
	var endpoint jaeger.EndpointOption
	if url := viper.GetString("otel.jaeger_endpoint"); url != "" {
		endpoint = jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url))
	} else {
		endpoint = jaeger.WithAgentEndpoint(
			jaeger.WithAgentHost(viper.GetString("otel.jaeger_agent_host")),
			jaeger.WithAgentPort(viper.GetString("otel.jaeger_agent_port")),
		)
	}

	exp, err := jaeger.New(endpoint)
	if err != nil {
		panic(err)
	}

	return exp
}
